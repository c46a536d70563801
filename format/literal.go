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

package format

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const Unit = "()"

func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Integer returns an integer literal with its type suffix, e.g. 5u8.
func Integer(digits string, suffix string) string {
	return digits + suffix
}

// Call returns a constructor literal, e.g. Tuple(1u8, "a").
func Call(name string, arguments ...string) string {
	return fmt.Sprintf("%s(%s)", name, strings.Join(arguments, ", "))
}

// TypedCall returns a constructor literal with a type argument, e.g. Array<U8>(1u8).
func TypedCall(name string, typeArgument string, arguments ...string) string {
	return fmt.Sprintf("%s<%s>(%s)", name, typeArgument, strings.Join(arguments, ", "))
}

// Bytes returns the lower-case hex encoding used in Bytes literals.
func Bytes(b []byte) string {
	return hex.EncodeToString(b)
}

func PadLeft(value string, separator rune, minLength uint) string {
	length := uint(len(value))
	if length >= minLength {
		return value
	}
	return strings.Repeat(string(separator), int(minLength-length)) + value
}
