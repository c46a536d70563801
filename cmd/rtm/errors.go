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
	goerrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/errors"
)

// printError prints the error, and for errors with a position,
// the source line and a marker under the error column.
func printError(w io.Writer, err error, code []byte, colored bool) {
	message := err.Error()
	if kind := errors.KindOf(err); kind != errors.KindUnknown {
		message = fmt.Sprintf("%s [%s]", message, kind)
	}
	fmt.Fprintln(w, colorizeError(message, colored))

	var secondaryError errors.SecondaryError
	if goerrors.As(err, &secondaryError) {
		if secondary := secondaryError.SecondaryError(); secondary != "" {
			fmt.Fprintln(w, colorizeLabel(secondary, colored))
		}
	}

	var positioned ast.HasPosition
	if !goerrors.As(err, &positioned) || code == nil {
		return
	}

	position := positioned.StartPosition()
	lines := strings.Split(string(code), "\n")
	if position.Line < 1 || position.Line > len(lines) {
		return
	}

	line := lines[position.Line-1]
	prefix := fmt.Sprintf("%4d | ", position.Line)

	fmt.Fprintln(w, colorizeLabel(prefix, colored)+line)
	fmt.Fprintln(w,
		strings.Repeat(" ", len(prefix)+position.Column)+
			colorizeError("^", colored),
	)
}
