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

package parser

import (
	"fmt"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/errors"
)

// ParseError

type ParseError interface {
	error
	ast.HasPosition
	isParseError()
}

// SyntaxError is reported for manifests and values which cannot be parsed,
// including instructions whose arguments do not match the opcode.
//
// The position refers to the source before placeholder substitution.
type SyntaxError struct {
	Pos      ast.Position
	Expected string
	Found    string
	Message  string
	// Err is the cause, if any, e.g. a malformed literal
	Err error
}

var _ ParseError = &SyntaxError{}
var _ errors.UserError = &SyntaxError{}

func (*SyntaxError) isParseError() {}

func (*SyntaxError) IsUserError() {}

func (e *SyntaxError) StartPosition() ast.Position {
	return e.Pos
}

func (e *SyntaxError) EndPosition() ast.Position {
	return e.Pos
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ErrorKind is the kind of the cause, if it has one,
// e.g. a value type mismatch for an argument of the wrong shape.
func (e *SyntaxError) ErrorKind() errors.Kind {
	if e.Err != nil {
		switch kind := errors.KindOf(e.Err); kind {
		case errors.KindUnknown, errors.KindInternal:
			break
		default:
			return kind
		}
	}
	return errors.KindSyntax
}

func (e *SyntaxError) SecondaryError() string {
	if secondaryError, ok := e.Err.(errors.SecondaryError); ok {
		return secondaryError.SecondaryError()
	}
	return ""
}

func (e *SyntaxError) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Expected != "":
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Found)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "invalid syntax"
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.message())
}

// UnresolvedPlaceholderError is reported for placeholders
// which are not in the substitution table.
type UnresolvedPlaceholderError struct {
	Name string
}

var _ errors.UserError = UnresolvedPlaceholderError{}

func (UnresolvedPlaceholderError) IsUserError() {}

func (UnresolvedPlaceholderError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder `{%s}`", e.Name)
}

// UndeclaredNameError is reported for references to bucket or proof names
// which were not declared by an earlier instruction.
type UndeclaredNameError struct {
	Declaration ast.Declaration
	Name        string
}

var _ errors.UserError = UndeclaredNameError{}

func (UndeclaredNameError) IsUserError() {}

func (UndeclaredNameError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e UndeclaredNameError) Error() string {
	return fmt.Sprintf("%s(%q) is not declared", e.Declaration, e.Name)
}

// RedeclarationError is reported when a bucket or proof name is declared twice.
type RedeclarationError struct {
	Declaration ast.Declaration
	Name        string
}

var _ errors.UserError = RedeclarationError{}

func (RedeclarationError) IsUserError() {}

func (RedeclarationError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e RedeclarationError) Error() string {
	return fmt.Sprintf("%s(%q) is already declared", e.Declaration, e.Name)
}
