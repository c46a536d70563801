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
	"slices"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/encoding/canonical"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

// Track is the transactional view of a store used by one transaction.
//
// Entities are copied from the store on first access,
// and all changes stay in the track until its delta is committed.
// Discarding the track discards all changes.
// A track is not safe for concurrent use.
type Track struct {
	store      *Store
	txHash     common.Hash
	nextIndex  uint32
	components map[common.ComponentAddress]*Component
	resources  map[common.ResourceAddress]*resource.Manager
	packages   map[common.PackageAddress]*Package
	// loaded holds the state hashes of the entities read from the store.
	// Entities created in the track are not in it
	loaded map[common.Address]common.Hash
}

func newTrack(store *Store, txHash common.Hash) *Track {
	return &Track{
		store:      store,
		txHash:     txHash,
		components: map[common.ComponentAddress]*Component{},
		resources:  map[common.ResourceAddress]*resource.Manager{},
		packages:   map[common.PackageAddress]*Package{},
		loaded:     map[common.Address]common.Hash{},
	}
}

// TransactionHash is the hash the addresses of created entities are derived from.
func (t *Track) TransactionHash() common.Hash {
	return t.txHash
}

func (t *Track) load(address common.Address, value values.Value) error {
	hash, err := canonical.HashValue(value)
	if err != nil {
		return err
	}
	t.loaded[address] = hash
	return nil
}

// Component returns the component, which may be modified in place.
func (t *Track) Component(address common.ComponentAddress) (*Component, error) {
	if component, ok := t.components[address]; ok {
		return component, nil
	}

	component, ok := t.store.Component(address)
	if !ok {
		return nil, ComponentNotFoundError{Component: address}
	}

	err := t.load(common.Address(address), component.ToValue())
	if err != nil {
		return nil, err
	}
	t.components[address] = component
	return component, nil
}

// Resource returns the resource manager, which may be modified in place.
func (t *Track) Resource(address common.ResourceAddress) (*resource.Manager, error) {
	if manager, ok := t.resources[address]; ok {
		return manager, nil
	}

	manager, ok := t.store.Resource(address)
	if !ok {
		return nil, resource.ResourceNotFoundError{Resource: address}
	}

	err := t.load(common.Address(address), ResourceValue(manager))
	if err != nil {
		return nil, err
	}
	t.resources[address] = manager
	return manager, nil
}

// ResourceType returns the type of the resource.
func (t *Track) ResourceType(address common.ResourceAddress) (resource.Type, error) {
	manager, err := t.Resource(address)
	if err != nil {
		return resource.Type{}, err
	}
	return manager.Type, nil
}

func (t *Track) Package(address common.PackageAddress) (*Package, error) {
	if pkg, ok := t.packages[address]; ok {
		return pkg, nil
	}

	pkg, ok := t.store.Package(address)
	if !ok {
		return nil, PackageNotFoundError{Package: address}
	}

	err := t.load(common.Address(address), pkg.ToValue())
	if err != nil {
		return nil, err
	}
	t.packages[address] = pkg
	return pkg, nil
}

// NewAddress allocates the address of a new entity.
func (t *Track) NewAddress(entityType common.EntityType) common.Address {
	address := common.NewAddress(entityType, t.txHash, t.nextIndex)
	t.nextIndex++
	return address
}

// CreateResource creates a new resource manager without supply.
func (t *Track) CreateResource(
	typ resource.Type,
	metadata map[string]string,
	matrix *auth.Matrix,
) *resource.Manager {
	address := common.ResourceAddress(t.NewAddress(common.EntityTypeResource))
	manager := resource.NewManager(address, typ, metadata, matrix)
	t.resources[address] = manager
	return manager
}

// CreateComponent creates a new component of the blueprint.
// The entity type of the address depends on the kind of component, e.g. accounts.
func (t *Track) CreateComponent(
	entityType common.EntityType,
	pkg common.PackageAddress,
	blueprint string,
	owner auth.AccessRule,
) *Component {
	address := common.ComponentAddress(t.NewAddress(entityType))
	component := NewComponent(address, pkg, blueprint, owner)
	t.components[address] = component
	return component
}

// CreatePackage creates a new package with the given blueprints.
func (t *Track) CreatePackage(name string, blueprints ...string) *Package {
	address := common.PackageAddress(t.NewAddress(common.EntityTypePackage))
	pkg := &Package{
		Address:    address,
		Name:       name,
		Blueprints: blueprints,
	}
	t.packages[address] = pkg
	return pkg
}

// Delta returns the entities which were created or changed in the track.
// Entities which were only read, or changed back to their original state, are not included.
func (t *Track) Delta() (*Delta, error) {
	delta := &Delta{}

	changed := func(address common.Address, value values.Value) (bool, error) {
		base, ok := t.loaded[address]
		if !ok {
			delta.Created = append(delta.Created, address)
			return true, nil
		}
		hash, err := canonical.HashValue(value)
		if err != nil {
			return false, err
		}
		return hash != base, nil
	}

	for address, component := range t.components {
		ok, err := changed(common.Address(address), component.ToValue())
		if err != nil {
			return nil, err
		}
		if ok {
			delta.Components = append(delta.Components, component)
		}
	}

	for address, manager := range t.resources {
		ok, err := changed(common.Address(address), ResourceValue(manager))
		if err != nil {
			return nil, err
		}
		if ok {
			delta.Resources = append(delta.Resources, manager)
		}
	}

	for address, pkg := range t.packages {
		ok, err := changed(common.Address(address), pkg.ToValue())
		if err != nil {
			return nil, err
		}
		if ok {
			delta.Packages = append(delta.Packages, pkg)
		}
	}

	delta.sort()
	return delta, nil
}

// Delta is the set of entities changed by a transaction.
type Delta struct {
	Components []*Component
	Resources  []*resource.Manager
	Packages   []*Package
	// Created are the addresses of the entities created by the transaction
	Created []common.Address
}

func (d *Delta) sort() {
	slices.SortFunc(d.Components, func(a, b *Component) int {
		return a.Address.Address().Compare(b.Address.Address())
	})
	slices.SortFunc(d.Resources, func(a, b *resource.Manager) int {
		return a.Address.Address().Compare(b.Address.Address())
	})
	slices.SortFunc(d.Packages, func(a, b *Package) int {
		return a.Address.Address().Compare(b.Address.Address())
	})
	slices.SortFunc(d.Created, common.Address.Compare)
}

func (d *Delta) IsEmpty() bool {
	return len(d.Components) == 0 &&
		len(d.Resources) == 0 &&
		len(d.Packages) == 0
}

// Addresses returns the addresses of all changed entities, in address order.
func (d *Delta) Addresses() []common.Address {
	addresses := make([]common.Address, 0, len(d.Components)+len(d.Resources)+len(d.Packages))
	for _, component := range d.Components {
		addresses = append(addresses, common.Address(component.Address))
	}
	for _, manager := range d.Resources {
		addresses = append(addresses, common.Address(manager.Address))
	}
	for _, pkg := range d.Packages {
		addresses = append(addresses, common.Address(pkg.Address))
	}
	slices.SortFunc(addresses, common.Address.Compare)
	return addresses
}
