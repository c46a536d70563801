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

package stdlib

import (
	"fmt"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
)

// ArgumentCountError is reported when a native function is called
// with the wrong number of arguments.
type ArgumentCountError struct {
	Function string
	Expected int
	Found    int
}

var _ errors.UserError = ArgumentCountError{}

func (ArgumentCountError) IsUserError() {}

func (ArgumentCountError) ErrorKind() errors.Kind {
	return errors.KindValueTypeMismatch
}

func (e ArgumentCountError) Error() string {
	return fmt.Sprintf(
		"%s expects %d arguments, got %d",
		e.Function,
		e.Expected,
		e.Found,
	)
}

// OwnerDeniedError is reported when the proofs of the caller
// do not satisfy the owner rule of a component.
type OwnerDeniedError struct {
	Component common.ComponentAddress
	Method    string
}

var _ errors.UserError = OwnerDeniedError{}

func (OwnerDeniedError) IsUserError() {}

func (OwnerDeniedError) ErrorKind() errors.Kind {
	return errors.KindAuthDenied
}

func (e OwnerDeniedError) Error() string {
	return fmt.Sprintf(
		"not authorized to call %s on %s: the owner rule is not satisfied",
		e.Method,
		e.Component,
	)
}

// UnknownBlueprintError is reported for blueprints which are not native.
type UnknownBlueprintError struct {
	Package   common.PackageAddress
	Blueprint string
}

var _ errors.UserError = UnknownBlueprintError{}

func (UnknownBlueprintError) IsUserError() {}

func (UnknownBlueprintError) ErrorKind() errors.Kind {
	return errors.KindComponentNotFound
}

func (e UnknownBlueprintError) Error() string {
	return fmt.Sprintf("package %s has no blueprint %s", e.Package, e.Blueprint)
}
