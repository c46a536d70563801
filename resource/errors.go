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

package resource

import (
	"fmt"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// InsufficientBalanceError is reported when more of a resource is requested than is available.
type InsufficientBalanceError struct {
	Resource  common.ResourceAddress
	Requested string
	Available string
}

var _ errors.UserError = InsufficientBalanceError{}

func (InsufficientBalanceError) IsUserError() {}

func (InsufficientBalanceError) ErrorKind() errors.Kind {
	return errors.KindInsufficientBalance
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance of %s: requested %s, available %s",
		e.Resource,
		e.Requested,
		e.Available,
	)
}

// InvalidAmountError is reported for negative amounts,
// or amounts which violate the divisibility of the resource.
type InvalidAmountError struct {
	Amount fixedpoint.Decimal
	Reason string
}

var _ errors.UserError = InvalidAmountError{}

func (InvalidAmountError) IsUserError() {}

func (InvalidAmountError) ErrorKind() errors.Kind {
	return errors.KindInvalidAmount
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: %s", e.Amount, e.Reason)
}

// DuplicateNonFungibleIdError is reported when a non-fungible id occurs twice
// where ids must be unique.
type DuplicateNonFungibleIdError struct {
	Id values.NonFungibleId
}

var _ errors.UserError = DuplicateNonFungibleIdError{}

func (DuplicateNonFungibleIdError) IsUserError() {}

func (DuplicateNonFungibleIdError) ErrorKind() errors.Kind {
	return errors.KindInvalidAmount
}

func (e DuplicateNonFungibleIdError) Error() string {
	return fmt.Sprintf("duplicate non-fungible id %s", e.Id)
}

// NonFungibleAlreadyExistsError is reported when minting an id which was already minted.
type NonFungibleAlreadyExistsError struct {
	Resource common.ResourceAddress
	Id       values.NonFungibleId
}

var _ errors.UserError = NonFungibleAlreadyExistsError{}

func (NonFungibleAlreadyExistsError) IsUserError() {}

func (NonFungibleAlreadyExistsError) ErrorKind() errors.Kind {
	return errors.KindInvalidAmount
}

func (e NonFungibleAlreadyExistsError) Error() string {
	return fmt.Sprintf("non-fungible %s of %s already exists", e.Id, e.Resource)
}

// ResourceMismatchError is reported when resources of different addresses are combined.
type ResourceMismatchError struct {
	Expected common.ResourceAddress
	Found    common.ResourceAddress
}

var _ errors.UserError = ResourceMismatchError{}

func (ResourceMismatchError) IsUserError() {}

func (ResourceMismatchError) ErrorKind() errors.Kind {
	return errors.KindValueTypeMismatch
}

func (e ResourceMismatchError) Error() string {
	return fmt.Sprintf("expected resource %s, got %s", e.Expected, e.Found)
}

// KindMismatchError is reported when an operation does not apply to the kind of the resource,
// e.g. taking ids of a fungible resource, or minting ids of the wrong id kind.
type KindMismatchError struct {
	Resource common.ResourceAddress
	Expected string
	Found    string
}

var _ errors.UserError = KindMismatchError{}

func (KindMismatchError) IsUserError() {}

func (KindMismatchError) ErrorKind() errors.Kind {
	return errors.KindValueTypeMismatch
}

func (e KindMismatchError) Error() string {
	return fmt.Sprintf(
		"resource %s: expected %s, got %s",
		e.Resource,
		e.Expected,
		e.Found,
	)
}

// ResourceNotFoundError is reported for unknown resource addresses.
type ResourceNotFoundError struct {
	Resource common.ResourceAddress
}

var _ errors.UserError = ResourceNotFoundError{}

func (ResourceNotFoundError) IsUserError() {}

func (ResourceNotFoundError) ErrorKind() errors.Kind {
	return errors.KindResourceNotFound
}

func (e ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %s does not exist", e.Resource)
}
