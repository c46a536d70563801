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

package values

import (
	"fmt"

	"github.com/ledgerworks/rtm/errors"
)

// ValueTypeMismatchError is reported when a value does not have
// the shape its consumer expects.
type ValueTypeMismatchError struct {
	// Path locates the mismatching value inside the checked value,
	// e.g. "[2].fields[0]". Empty for the checked value itself.
	Path     string
	Expected string
	Found    string
}

var _ errors.UserError = ValueTypeMismatchError{}

func (ValueTypeMismatchError) IsUserError() {}

func (ValueTypeMismatchError) ErrorKind() errors.Kind {
	return errors.KindValueTypeMismatch
}

func (e ValueTypeMismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("value type mismatch: expected %s, got %s", e.Expected, e.Found)
	}
	return fmt.Sprintf(
		"value type mismatch at %s: expected %s, got %s",
		e.Path,
		e.Expected,
		e.Found,
	)
}

// MalformedLiteralError is reported for literals which have the right shape,
// but an invalid content, e.g. an integer out of range.
type MalformedLiteralError struct {
	Kind    Kind
	Message string
	Err     error
}

var _ errors.UserError = MalformedLiteralError{}

func NewMalformedLiteralError(kind Kind, message string, params ...any) MalformedLiteralError {
	return MalformedLiteralError{
		Kind:    kind,
		Message: fmt.Sprintf(message, params...),
	}
}

func (MalformedLiteralError) IsUserError() {}

func (MalformedLiteralError) ErrorKind() errors.Kind {
	return errors.KindMalformedLiteral
}

func (e MalformedLiteralError) Unwrap() error {
	return e.Err
}

func (e MalformedLiteralError) Error() string {
	message := e.Message
	if message == "" && e.Err != nil {
		message = e.Err.Error()
	}
	return fmt.Sprintf("malformed %s literal: %s", e.Kind, message)
}
