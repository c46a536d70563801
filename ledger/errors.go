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

package ledger

import (
	"fmt"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
)

// ComponentNotFoundError is reported for unknown component addresses.
type ComponentNotFoundError struct {
	Component common.ComponentAddress
}

var _ errors.UserError = ComponentNotFoundError{}

func (ComponentNotFoundError) IsUserError() {}

func (ComponentNotFoundError) ErrorKind() errors.Kind {
	return errors.KindComponentNotFound
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %s does not exist", e.Component)
}

// PackageNotFoundError is reported for unknown package addresses.
type PackageNotFoundError struct {
	Package common.PackageAddress
}

var _ errors.UserError = PackageNotFoundError{}

func (PackageNotFoundError) IsUserError() {}

func (PackageNotFoundError) ErrorKind() errors.Kind {
	return errors.KindComponentNotFound
}

func (e PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %s does not exist", e.Package)
}

// EntityExistsError is reported when an entity is inserted at an address which is already taken.
type EntityExistsError struct {
	Address common.Address
}

var _ errors.InternalError = EntityExistsError{}

func (EntityExistsError) IsInternalError() {}

func (e EntityExistsError) Error() string {
	return fmt.Sprintf("entity %s already exists", e.Address.Hex())
}
