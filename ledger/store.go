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
	"encoding/binary"
	"slices"
	"sync"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/encoding/canonical"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

// Store is the in-memory ledger state.
//
// Transactions never write to the store directly:
// they read through a Track, and the track's delta is applied by Commit.
// The store is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	components   map[common.ComponentAddress]*Component
	resources    map[common.ResourceAddress]*resource.Manager
	packages     map[common.PackageAddress]*Package
	transactions uint64
}

func NewStore() *Store {
	return &Store{
		components: map[common.ComponentAddress]*Component{},
		resources:  map[common.ResourceAddress]*resource.Manager{},
		packages:   map[common.PackageAddress]*Package{},
	}
}

// NewTrack returns a new transactional view of the store.
//
// The addresses of the entities created in the track are derived from the seed
// (usually the manifest hash) and the number of tracks created before,
// so the same sequence of transactions always creates the same addresses.
func (s *Store) NewTrack(seed common.Hash) *Track {
	s.mu.Lock()
	nonce := s.transactions
	s.transactions++
	s.mu.Unlock()

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)

	return newTrack(s, common.HashOf(seed[:], nonceBytes[:]))
}

// Component returns a copy of the component's state.
func (s *Store) Component(address common.ComponentAddress) (*Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	component, ok := s.components[address]
	if !ok {
		return nil, false
	}
	return component.Clone(), true
}

// Resource returns a copy of the resource manager.
func (s *Store) Resource(address common.ResourceAddress) (*resource.Manager, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	manager, ok := s.resources[address]
	if !ok {
		return nil, false
	}
	return manager.Clone(), true
}

// Package returns a copy of the package.
func (s *Store) Package(address common.PackageAddress) (*Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[address]
	if !ok {
		return nil, false
	}
	return pkg.Clone(), true
}

// Commit applies the delta of a track.
//
// Commits of tracks which were created concurrently are not checked for conflicts,
// the last commit wins. Callers which execute concurrently must serialize
// execution and commit.
func (s *Store) Commit(delta *Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, component := range delta.Components {
		s.components[component.Address] = component.Clone()
	}
	for _, manager := range delta.Resources {
		s.resources[manager.Address] = manager.Clone()
	}
	for _, pkg := range delta.Packages {
		s.packages[pkg.Address] = pkg.Clone()
	}
}

// Addresses returns the addresses of all entities, in address order.
func (s *Store) Addresses() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.addresses()
}

func (s *Store) addresses() []common.Address {
	addresses := make([]common.Address, 0, len(s.components)+len(s.resources)+len(s.packages))
	for address := range s.components {
		addresses = append(addresses, common.Address(address))
	}
	for address := range s.resources {
		addresses = append(addresses, common.Address(address))
	}
	for address := range s.packages {
		addresses = append(addresses, common.Address(address))
	}
	slices.SortFunc(addresses, common.Address.Compare)
	return addresses
}

func (s *Store) entityValue(address common.Address) values.Value {
	if component, ok := s.components[common.ComponentAddress(address)]; ok {
		return component.ToValue()
	}
	if manager, ok := s.resources[common.ResourceAddress(address)]; ok {
		return ResourceValue(manager)
	}
	if pkg, ok := s.packages[common.PackageAddress(address)]; ok {
		return pkg.ToValue()
	}
	return nil
}

// StateHash returns the hash of the canonical encoding of all entities, in address order.
// Two stores with the same entities have the same state hash.
func (s *Store) StateHash() (common.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addresses := s.addresses()
	data := make([][]byte, 0, len(addresses)*2)
	for _, address := range addresses {
		encoded, err := canonical.Encode(s.entityValue(address))
		if err != nil {
			return common.Hash{}, err
		}
		data = append(data, address[:], encoded)
	}
	return common.HashOf(data...), nil
}
