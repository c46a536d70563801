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
	"math/big"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// Container holds an owned quantity of one resource:
// an amount for fungible resources, a set of ids for non-fungible resources.
//
// Containers are the only place balances are changed.
// Every operation either applies fully or leaves the container unchanged,
// and no operation results in a negative balance.
type Container struct {
	resource common.ResourceAddress
	typ      Type
	amount   fixedpoint.Decimal
	ids      map[values.NonFungibleId]struct{}
}

// NewContainer returns an empty container.
func NewContainer(resource common.ResourceAddress, typ Type) *Container {
	return &Container{
		resource: resource,
		typ:      typ,
		ids:      map[values.NonFungibleId]struct{}{},
	}
}

func NewFungibleContainer(
	resource common.ResourceAddress,
	typ Type,
	amount fixedpoint.Decimal,
) (*Container, error) {
	if !typ.IsFungible() {
		return nil, KindMismatchError{
			Resource: resource,
			Expected: "fungible resource",
			Found:    "non-fungible resource",
		}
	}

	err := typ.CheckAmount(amount)
	if err != nil {
		return nil, err
	}

	container := NewContainer(resource, typ)
	container.amount = amount
	return container, nil
}

func NewNonFungibleContainer(
	resource common.ResourceAddress,
	typ Type,
	ids []values.NonFungibleId,
) (*Container, error) {
	container := NewContainer(resource, typ)

	err := container.checkIds(ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		container.ids[id] = struct{}{}
	}
	return container, nil
}

// checkIds checks that the container's resource is non-fungible,
// and that the ids are unique and of the resource's id kind.
func (c *Container) checkIds(ids []values.NonFungibleId) error {
	if c.typ.IsFungible() {
		return KindMismatchError{
			Resource: c.resource,
			Expected: "non-fungible resource",
			Found:    "fungible resource",
		}
	}

	seen := make(map[values.NonFungibleId]struct{}, len(ids))
	for _, id := range ids {
		if id.IdKind() != c.typ.IdKind {
			return KindMismatchError{
				Resource: c.resource,
				Expected: fmt.Sprintf("%s non-fungible id", c.typ.IdKind),
				Found:    id.String(),
			}
		}
		if _, ok := seen[id]; ok {
			return DuplicateNonFungibleIdError{Id: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *Container) ResourceAddress() common.ResourceAddress {
	return c.resource
}

func (c *Container) Type() Type {
	return c.typ
}

// Amount returns the fungible amount,
// or the number of ids of a non-fungible container.
func (c *Container) Amount() fixedpoint.Decimal {
	if c.typ.IsFungible() {
		return c.amount
	}
	return fixedpoint.NewDecimalFromInt(int64(len(c.ids)))
}

// NonFungibleIds returns the ids of a non-fungible container, in canonical order.
func (c *Container) NonFungibleIds() []values.NonFungibleId {
	ids := make([]values.NonFungibleId, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	values.SortNonFungibleIds(ids)
	return ids
}

func (c *Container) IsEmpty() bool {
	if c.typ.IsFungible() {
		return c.amount.IsZero()
	}
	return len(c.ids) == 0
}

func (c *Container) ContainsAmount(amount fixedpoint.Decimal) bool {
	return c.Amount().Cmp(amount) >= 0
}

func (c *Container) ContainsIds(ids []values.NonFungibleId) bool {
	for _, id := range ids {
		if _, ok := c.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (c *Container) Clone() *Container {
	clone := NewContainer(c.resource, c.typ)
	clone.amount = c.amount
	for id := range c.ids {
		clone.ids[id] = struct{}{}
	}
	return clone
}

// Put moves all of the other container's resource into this container.
// The other container is empty afterwards.
func (c *Container) Put(other *Container) error {
	if other.resource != c.resource {
		return ResourceMismatchError{
			Expected: c.resource,
			Found:    other.resource,
		}
	}

	if c.typ.IsFungible() {
		sum, err := c.amount.Add(other.amount)
		if err != nil {
			return err
		}
		c.amount = sum
		other.amount = fixedpoint.Zero
		return nil
	}

	for id := range other.ids {
		if _, ok := c.ids[id]; ok {
			return DuplicateNonFungibleIdError{Id: id}
		}
	}
	for id := range other.ids {
		c.ids[id] = struct{}{}
	}
	clear(other.ids)
	return nil
}

// TakeAmount moves the given amount into a new container.
// Non-fungible containers give up their first ids, in canonical order.
func (c *Container) TakeAmount(amount fixedpoint.Decimal) (*Container, error) {
	err := c.typ.CheckAmount(amount)
	if err != nil {
		return nil, err
	}

	if !c.ContainsAmount(amount) {
		return nil, InsufficientBalanceError{
			Resource:  c.resource,
			Requested: amount.String(),
			Available: c.Amount().String(),
		}
	}

	if c.typ.IsFungible() {
		remaining, err := c.amount.Sub(amount)
		if err != nil {
			return nil, err
		}
		c.amount = remaining

		taken := NewContainer(c.resource, c.typ)
		taken.amount = amount
		return taken, nil
	}

	count := amount.Truncate()
	ids := c.NonFungibleIds()
	if count.Cmp(big.NewInt(int64(len(ids)))) < 0 {
		ids = ids[:count.Int64()]
	}

	return c.TakeIds(ids)
}

// TakeIds moves the given non-fungibles into a new container.
func (c *Container) TakeIds(ids []values.NonFungibleId) (*Container, error) {
	err := c.checkIds(ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := c.ids[id]; !ok {
			return nil, InsufficientBalanceError{
				Resource:  c.resource,
				Requested: id.String(),
				Available: fmt.Sprintf("%d ids", len(c.ids)),
			}
		}
	}

	taken := NewContainer(c.resource, c.typ)
	for _, id := range ids {
		delete(c.ids, id)
		taken.ids[id] = struct{}{}
	}
	return taken, nil
}

// TakeAll moves everything into a new container.
func (c *Container) TakeAll() *Container {
	taken := NewContainer(c.resource, c.typ)
	taken.amount = c.amount
	taken.ids, c.ids = c.ids, taken.ids
	c.amount = fixedpoint.Zero
	return taken
}

func (c *Container) String() string {
	if c.typ.IsFungible() {
		return fmt.Sprintf("%s of %s", c.amount, c.resource)
	}
	return fmt.Sprintf("%v of %s", c.NonFungibleIds(), c.resource)
}
