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

package ast

import (
	"fmt"

	"github.com/ledgerworks/rtm/errors"
)

// ArgumentCountError is reported when an instruction has the wrong number of arguments.
type ArgumentCountError struct {
	Opcode   Opcode
	Expected int
	Variadic bool
	Found    int
}

var _ errors.UserError = ArgumentCountError{}

func (ArgumentCountError) IsUserError() {}

func (ArgumentCountError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e ArgumentCountError) Error() string {
	atLeast := ""
	if e.Variadic {
		atLeast = "at least "
	}
	return fmt.Sprintf(
		"%s expects %s%d arguments, got %d",
		e.Opcode,
		atLeast,
		e.Expected,
		e.Found,
	)
}

// ArgumentError is reported when an argument of an instruction is invalid.
type ArgumentError struct {
	Index int
	Err   error
}

var _ errors.UserError = ArgumentError{}

func (ArgumentError) IsUserError() {}

func (e ArgumentError) Unwrap() error {
	return e.Err
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %d: %s", e.Index, e.Err.Error())
}

// UnknownOpcodeError is reported for opcodes which are not in the instruction set.
type UnknownOpcodeError struct {
	Name string
	// Suggestion is the closest known opcode, if any
	Suggestion Opcode
}

var _ errors.UserError = UnknownOpcodeError{}

func (UnknownOpcodeError) IsUserError() {}

func (UnknownOpcodeError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode `%s`", e.Name)
}

func (e UnknownOpcodeError) SecondaryError() string {
	if e.Suggestion == OpcodeUnknown {
		return ""
	}
	return fmt.Sprintf("did you mean `%s`?", e.Suggestion)
}
