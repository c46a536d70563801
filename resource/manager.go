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
	"maps"
	"slices"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// Manager is the ledger state of a resource:
// its type, metadata, behavior matrix and supply.
type Manager struct {
	Address     common.ResourceAddress
	Type        Type
	Metadata    map[string]string
	Matrix      *auth.Matrix
	TotalSupply fixedpoint.Decimal
	// NonFungibles are the ids of all existing non-fungibles
	NonFungibles map[values.NonFungibleId]struct{}
}

func NewManager(
	address common.ResourceAddress,
	typ Type,
	metadata map[string]string,
	matrix *auth.Matrix,
) *Manager {
	if metadata == nil {
		metadata = map[string]string{}
	}
	if matrix == nil {
		matrix = &auth.Matrix{}
	}
	return &Manager{
		Address:      address,
		Type:         typ,
		Metadata:     metadata,
		Matrix:       matrix,
		NonFungibles: map[values.NonFungibleId]struct{}{},
	}
}

// Mint creates a new fungible amount. Authorization is checked by the caller.
func (m *Manager) Mint(amount fixedpoint.Decimal) (*Container, error) {
	container, err := NewFungibleContainer(m.Address, m.Type, amount)
	if err != nil {
		return nil, err
	}

	supply, err := m.TotalSupply.Add(amount)
	if err != nil {
		return nil, err
	}
	m.TotalSupply = supply

	return container, nil
}

// MintIds creates new non-fungibles. Authorization is checked by the caller.
func (m *Manager) MintIds(ids []values.NonFungibleId) (*Container, error) {
	container, err := NewNonFungibleContainer(m.Address, m.Type, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := m.NonFungibles[id]; ok {
			return nil, NonFungibleAlreadyExistsError{
				Resource: m.Address,
				Id:       id,
			}
		}
	}

	supply, err := m.TotalSupply.Add(container.Amount())
	if err != nil {
		return nil, err
	}
	m.TotalSupply = supply

	for _, id := range ids {
		m.NonFungibles[id] = struct{}{}
	}

	return container, nil
}

// MintSupply creates the initial supply of a new resource.
func (m *Manager) MintSupply(supply Supply) (*Container, error) {
	if supply.Kind != m.Type.Kind {
		return nil, KindMismatchError{
			Resource: m.Address,
			Expected: m.Type.Kind.String() + " supply",
			Found:    supply.Kind.String() + " supply",
		}
	}

	if supply.Kind == KindFungible {
		return m.Mint(supply.Amount)
	}
	return m.MintIds(supply.Ids)
}

// Burn destroys the resource of the container. Authorization is checked by the caller.
func (m *Manager) Burn(container *Container) error {
	if container.ResourceAddress() != m.Address {
		return ResourceMismatchError{
			Expected: m.Address,
			Found:    container.ResourceAddress(),
		}
	}

	supply, err := m.TotalSupply.Sub(container.Amount())
	if err != nil {
		return err
	}
	m.TotalSupply = supply

	for _, id := range container.NonFungibleIds() {
		delete(m.NonFungibles, id)
	}

	container.TakeAll()
	return nil
}

// MetadataKeys returns the metadata keys, sorted.
func (m *Manager) MetadataKeys() []string {
	return slices.Sorted(maps.Keys(m.Metadata))
}

func (m *Manager) Clone() *Manager {
	return &Manager{
		Address:      m.Address,
		Type:         m.Type,
		Metadata:     maps.Clone(m.Metadata),
		Matrix:       m.Matrix.Clone(),
		TotalSupply:  m.TotalSupply,
		NonFungibles: maps.Clone(m.NonFungibles),
	}
}
