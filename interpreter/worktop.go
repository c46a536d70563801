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

package interpreter

import (
	"maps"
	"slices"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

// ResourceTypes resolves the types of resources which are not on the worktop.
type ResourceTypes interface {
	ResourceType(address common.ResourceAddress) (resource.Type, error)
}

// Flow is the total amount of a resource put on and taken from the worktop.
type Flow struct {
	Put   fixedpoint.Decimal
	Taken fixedpoint.Decimal
}

// Worktop is the temporary holding area of the resources of one execution.
//
// It holds at most one container per resource, and never holds empty containers.
type Worktop struct {
	types      ResourceTypes
	containers map[common.ResourceAddress]*resource.Container
	flows      map[common.ResourceAddress]Flow
}

func NewWorktop(types ResourceTypes) *Worktop {
	return &Worktop{
		types:      types,
		containers: map[common.ResourceAddress]*resource.Container{},
		flows:      map[common.ResourceAddress]Flow{},
	}
}

// Put moves the resources of the container onto the worktop.
// The container is empty afterwards.
func (w *Worktop) Put(container *resource.Container) error {
	if container.IsEmpty() {
		return nil
	}

	address := container.ResourceAddress()
	amount := container.Amount()

	existing, ok := w.containers[address]
	if !ok {
		w.containers[address] = container.TakeAll()
	} else {
		err := existing.Put(container)
		if err != nil {
			return err
		}
	}

	flow := w.flows[address]
	put, err := flow.Put.Add(amount)
	if err != nil {
		return err
	}
	flow.Put = put
	w.flows[address] = flow
	return nil
}

func (w *Worktop) recordTaken(taken *resource.Container) error {
	address := taken.ResourceAddress()

	if existing, ok := w.containers[address]; ok && existing.IsEmpty() {
		delete(w.containers, address)
	}

	if taken.IsEmpty() {
		return nil
	}

	flow := w.flows[address]
	sum, err := flow.Taken.Add(taken.Amount())
	if err != nil {
		return err
	}
	flow.Taken = sum
	w.flows[address] = flow
	return nil
}

// emptyContainer returns an empty container of a resource which is not on the worktop.
func (w *Worktop) emptyContainer(address common.ResourceAddress) (*resource.Container, error) {
	typ, err := w.types.ResourceType(address)
	if err != nil {
		return nil, err
	}
	return resource.NewContainer(address, typ), nil
}

// Take moves the amount of the resource into a new container.
func (w *Worktop) Take(address common.ResourceAddress, amount fixedpoint.Decimal) (*resource.Container, error) {
	container, ok := w.containers[address]
	if !ok {
		var err error
		container, err = w.emptyContainer(address)
		if err != nil {
			return nil, err
		}
	}

	taken, err := container.TakeAmount(amount)
	if err != nil {
		return nil, err
	}

	err = w.recordTaken(taken)
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// TakeIds moves the non-fungibles into a new container.
func (w *Worktop) TakeIds(address common.ResourceAddress, ids []values.NonFungibleId) (*resource.Container, error) {
	container, ok := w.containers[address]
	if !ok {
		var err error
		container, err = w.emptyContainer(address)
		if err != nil {
			return nil, err
		}
	}

	taken, err := container.TakeIds(ids)
	if err != nil {
		return nil, err
	}

	err = w.recordTaken(taken)
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// TakeAll moves all of the resource into a new container.
// The container is empty if the resource is not on the worktop.
func (w *Worktop) TakeAll(address common.ResourceAddress) (*resource.Container, error) {
	container, ok := w.containers[address]
	if !ok {
		return w.emptyContainer(address)
	}

	taken := container.TakeAll()
	err := w.recordTaken(taken)
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// Drain moves all resources into new containers, in resource address order.
func (w *Worktop) Drain() ([]*resource.Container, error) {
	addresses := w.Resources()
	result := make([]*resource.Container, 0, len(addresses))
	for _, address := range addresses {
		taken, err := w.TakeAll(address)
		if err != nil {
			return nil, err
		}
		result = append(result, taken)
	}
	return result, nil
}

// Resources returns the resources on the worktop, in address order.
func (w *Worktop) Resources() []common.ResourceAddress {
	return slices.SortedFunc(
		maps.Keys(w.containers),
		func(a, b common.ResourceAddress) int {
			return a.Address().Compare(b.Address())
		},
	)
}

func (w *Worktop) IsEmpty() bool {
	return len(w.containers) == 0
}

// Amount returns the amount of the resource on the worktop.
func (w *Worktop) Amount(address common.ResourceAddress) fixedpoint.Decimal {
	container, ok := w.containers[address]
	if !ok {
		return fixedpoint.Zero
	}
	return container.Amount()
}

// AssertContains fails if none of the resource is on the worktop.
func (w *Worktop) AssertContains(address common.ResourceAddress) error {
	if _, ok := w.containers[address]; !ok {
		return WorktopAssertionFailedError{
			Resource: address,
			Expected: "a non-zero amount",
			Found:    "nothing",
		}
	}
	return nil
}

// AssertContainsAmount fails if less than the amount of the resource is on the worktop.
func (w *Worktop) AssertContainsAmount(address common.ResourceAddress, amount fixedpoint.Decimal) error {
	found := w.Amount(address)
	if found.Cmp(amount) < 0 {
		return WorktopAssertionFailedError{
			Resource: address,
			Expected: "at least " + amount.String(),
			Found:    found.String(),
		}
	}
	return nil
}

// AssertContainsIds fails if any of the non-fungibles is not on the worktop.
func (w *Worktop) AssertContainsIds(address common.ResourceAddress, ids []values.NonFungibleId) error {
	container, ok := w.containers[address]
	if !ok || !container.ContainsIds(ids) {
		found := "nothing"
		if ok {
			found = container.String()
		}
		return WorktopAssertionFailedError{
			Resource: address,
			Expected: values.MustArray(values.KindNonFungibleId, nonFungibleIdValues(ids)...).String(),
			Found:    found,
		}
	}
	return nil
}

// Flows returns the totals put on and taken from the worktop, per resource.
func (w *Worktop) Flows() map[common.ResourceAddress]Flow {
	return maps.Clone(w.flows)
}

func nonFungibleIdValues(ids []values.NonFungibleId) []values.Value {
	result := make([]values.Value, len(ids))
	for i, id := range ids {
		result[i] = id
	}
	return result
}
