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
	"maps"
	"slices"
	"strings"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

// Component is the ledger state of a component:
// an instance of a blueprint owning vaults and arbitrary state.
type Component struct {
	Address   common.ComponentAddress
	Package   common.PackageAddress
	Blueprint string
	// Owner protects the privileged methods of the component,
	// e.g. withdrawals from an account
	Owner  auth.AccessRule
	Vaults map[common.ResourceAddress]*resource.Container
	State  map[string]values.Value
}

func NewComponent(
	address common.ComponentAddress,
	pkg common.PackageAddress,
	blueprint string,
	owner auth.AccessRule,
) *Component {
	return &Component{
		Address:   address,
		Package:   pkg,
		Blueprint: blueprint,
		Owner:     owner,
		Vaults:    map[common.ResourceAddress]*resource.Container{},
		State:     map[string]values.Value{},
	}
}

// Vault returns the vault of the resource, creating an empty one if needed.
func (c *Component) Vault(address common.ResourceAddress, typ resource.Type) *resource.Container {
	vault, ok := c.Vaults[address]
	if !ok {
		vault = resource.NewContainer(address, typ)
		c.Vaults[address] = vault
	}
	return vault
}

// Balance returns the amount of the resource held by the component.
func (c *Component) Balance(address common.ResourceAddress) fixedpoint.Decimal {
	vault, ok := c.Vaults[address]
	if !ok {
		return fixedpoint.Zero
	}
	return vault.Amount()
}

// VaultAddresses returns the resources of the component's vaults, in address order.
func (c *Component) VaultAddresses() []common.ResourceAddress {
	return slices.SortedFunc(
		maps.Keys(c.Vaults),
		func(a, b common.ResourceAddress) int {
			return a.Address().Compare(b.Address())
		},
	)
}

func (c *Component) Clone() *Component {
	vaults := make(map[common.ResourceAddress]*resource.Container, len(c.Vaults))
	for address, vault := range c.Vaults {
		vaults[address] = vault.Clone()
	}
	return &Component{
		Address:   c.Address,
		Package:   c.Package,
		Blueprint: c.Blueprint,
		Owner:     c.Owner,
		Vaults:    vaults,
		State:     maps.Clone(c.State),
	}
}

// ToValue returns the canonical form of the component.
// Empty vaults are omitted, so a drained vault does not change the state.
func (c *Component) ToValue() values.Value {
	vaults := make([]values.Value, 0, len(c.Vaults))
	for _, address := range c.VaultAddresses() {
		vault := c.Vaults[address]
		if vault.IsEmpty() {
			continue
		}
		vaults = append(vaults, containerValue(vault))
	}

	keys := slices.Sorted(maps.Keys(c.State))
	state := make([]values.Value, len(keys))
	for i, key := range keys {
		state[i] = values.NewTuple(values.NewString(key), c.State[key])
	}

	return values.NewTuple(
		values.ComponentAddress(c.Address),
		values.PackageAddress(c.Package),
		values.NewString(c.Blueprint),
		c.Owner.ToValue(),
		values.MustArray(values.KindTuple, vaults...),
		values.MustArray(values.KindTuple, state...),
	)
}

func containerValue(container *resource.Container) values.Value {
	return values.NewTuple(
		values.ResourceAddress(container.ResourceAddress()),
		values.NewDecimal(container.Amount()),
		idsValue(container.NonFungibleIds()),
	)
}

func idsValue(ids []values.NonFungibleId) values.Value {
	elements := make([]values.Value, len(ids))
	for i, id := range ids {
		elements[i] = id
	}
	return values.MustArray(values.KindNonFungibleId, elements...)
}

// ResourceValue returns the canonical form of a resource manager.
func ResourceValue(manager *resource.Manager) values.Value {
	ids := slices.Collect(maps.Keys(manager.NonFungibles))
	values.SortNonFungibleIds(ids)

	return values.NewTuple(
		values.ResourceAddress(manager.Address),
		manager.Type.ToValue(),
		resource.MetadataValue(manager.Metadata),
		manager.Matrix.ToValue(),
		values.NewDecimal(manager.TotalSupply),
		idsValue(ids),
	)
}

// Package is a named set of blueprints.
// Only native blueprints exist, packages are never published by transactions.
type Package struct {
	Address    common.PackageAddress
	Name       string
	Blueprints []string
}

func (p *Package) HasBlueprint(name string) bool {
	return slices.Contains(p.Blueprints, name)
}

func (p *Package) Clone() *Package {
	return &Package{
		Address:    p.Address,
		Name:       p.Name,
		Blueprints: slices.Clone(p.Blueprints),
	}
}

func (p *Package) ToValue() values.Value {
	blueprints := slices.Clone(p.Blueprints)
	slices.SortFunc(blueprints, strings.Compare)

	elements := make([]values.Value, len(blueprints))
	for i, blueprint := range blueprints {
		elements[i] = values.NewString(blueprint)
	}

	return values.NewTuple(
		values.PackageAddress(p.Address),
		values.NewString(p.Name),
		values.MustArray(values.KindString, elements...),
	)
}
