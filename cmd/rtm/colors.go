/*
 * RTM - The transaction manifest language and resource engine
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"github.com/logrusorgru/aurora/v4"
)

func newAurora(colored bool) *aurora.Aurora {
	return aurora.New(aurora.WithColors(colored))
}

func colorizeError(message string, colored bool) string {
	au := newAurora(colored)
	return au.Bold(au.Red(message)).String()
}

func colorizeValue(literal string, colored bool) string {
	return newAurora(colored).Yellow(literal).String()
}

func colorizeStatus(committed bool, status string, colored bool) string {
	au := newAurora(colored)
	if committed {
		return au.Bold(au.Green(status)).String()
	}
	return au.Bold(au.Red(status)).String()
}

func colorizeLabel(label string, colored bool) string {
	return newAurora(colored).Faint(label).String()
}
