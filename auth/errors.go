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

package auth

import (
	"fmt"

	"github.com/ledgerworks/rtm/errors"
)

// AuthImmutableError is reported when the rules of an action can no longer be changed,
// or the change is not allowed by the current mutability.
type AuthImmutableError struct {
	Action     Action
	Mutability AccessRule
	Reason     string
}

var _ errors.UserError = AuthImmutableError{}

func (AuthImmutableError) IsUserError() {}

func (AuthImmutableError) ErrorKind() errors.Kind {
	return errors.KindAuthImmutable
}

func (e AuthImmutableError) Error() string {
	return fmt.Sprintf(
		"cannot change the rules of action %s with mutability %s: %s",
		e.Action,
		e.Mutability,
		e.Reason,
	)
}

// AuthDeniedError is reported when the permission of an action is not satisfied.
type AuthDeniedError struct {
	Action     Action
	Permission AccessRule
}

var _ errors.UserError = AuthDeniedError{}

func (AuthDeniedError) IsUserError() {}

func (AuthDeniedError) ErrorKind() errors.Kind {
	return errors.KindAuthDenied
}

func (e AuthDeniedError) Error() string {
	return fmt.Sprintf(
		"action %s is not authorized by permission %s",
		e.Action,
		e.Permission,
	)
}

// DuplicateRuleError is reported when a rules array declares an action more than once.
type DuplicateRuleError struct {
	Action Action
}

var _ errors.UserError = DuplicateRuleError{}

func (DuplicateRuleError) IsUserError() {}

func (DuplicateRuleError) ErrorKind() errors.Kind {
	return errors.KindValueTypeMismatch
}

func (e DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rules for action %s", e.Action)
}
