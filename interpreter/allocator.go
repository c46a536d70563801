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

	"github.com/bits-and-blooms/bitset"

	"github.com/ledgerworks/rtm/resource"
)

// Allocator holds the buckets and proofs of one execution.
//
// Bucket and proof ids are allocated from separate counters starting at 1,
// and are never reused. Consumed buckets and dropped or moved proofs
// are tracked so that later references fail.
type Allocator struct {
	nextBucket uint32
	nextProof  uint32
	buckets    map[uint32]*resource.Container
	proofs     map[uint32]*Proof
	consumed   bitset.BitSet
	dropped    bitset.BitSet
	moved      bitset.BitSet
	// locks counts the proofs showing each bucket
	locks map[uint32]int
}

func NewAllocator() *Allocator {
	return &Allocator{
		nextBucket: 1,
		nextProof:  1,
		buckets:    map[uint32]*resource.Container{},
		proofs:     map[uint32]*Proof{},
		locks:      map[uint32]int{},
	}
}

// NewBucket allocates a bucket holding the container.
func (a *Allocator) NewBucket(container *resource.Container) uint32 {
	id := a.nextBucket
	a.nextBucket++
	a.buckets[id] = container
	return id
}

// Bucket returns the container of a bucket which was not consumed yet.
func (a *Allocator) Bucket(id uint32) (*resource.Container, error) {
	container, ok := a.buckets[id]
	if !ok {
		return nil, BucketAlreadyConsumedError{Bucket: id}
	}
	return container, nil
}

// ConsumeBucket moves the container out of the bucket.
// The bucket can not be referenced anymore.
func (a *Allocator) ConsumeBucket(id uint32) (*resource.Container, error) {
	container, err := a.Bucket(id)
	if err != nil {
		return nil, err
	}

	if locks := a.locks[id]; locks > 0 {
		return nil, BucketLockedError{
			Bucket: id,
			Proofs: locks,
		}
	}

	delete(a.buckets, id)
	a.consumed.Set(uint(id))
	return container, nil
}

// IsConsumed returns true if the bucket was created and consumed since.
func (a *Allocator) IsConsumed(id uint32) bool {
	return a.consumed.Test(uint(id))
}

// Buckets returns the ids of all buckets which were not consumed yet, in order.
func (a *Allocator) Buckets() []uint32 {
	return slices.Sorted(maps.Keys(a.buckets))
}

// Lock locks the buckets the proof shows.
func (a *Allocator) Lock(proof *Proof) {
	for _, bucket := range proof.buckets {
		a.locks[bucket]++
	}
}

// Release unlocks the buckets the proof shows.
// Every proof must be released exactly once, when it is dropped.
func (a *Allocator) Release(proof *Proof) {
	for _, bucket := range proof.buckets {
		a.locks[bucket]--
		if a.locks[bucket] <= 0 {
			delete(a.locks, bucket)
		}
	}
}

// NewProof allocates a named proof and locks the buckets it shows.
func (a *Allocator) NewProof(proof *Proof) uint32 {
	id := a.nextProof
	a.nextProof++
	a.proofs[id] = proof
	a.Lock(proof)
	return id
}

// AddProof allocates a named proof which already holds its locks,
// e.g. a proof popped from the auth zone.
func (a *Allocator) AddProof(proof *Proof) uint32 {
	id := a.nextProof
	a.nextProof++
	a.proofs[id] = proof
	return id
}

// Proof returns a proof which was not dropped.
func (a *Allocator) Proof(id uint32) (*Proof, error) {
	proof, ok := a.proofs[id]
	if !ok {
		return nil, ProofNotFoundError{Proof: id}
	}
	return proof, nil
}

// TakeProof moves the proof out of the allocator, keeping its locks,
// e.g. when it is pushed to the auth zone or moved into a call.
// The id can not be referenced anymore.
func (a *Allocator) TakeProof(id uint32) (*Proof, error) {
	proof, err := a.Proof(id)
	if err != nil {
		return nil, err
	}
	delete(a.proofs, id)
	a.moved.Set(uint(id))
	return proof, nil
}

// DropProof drops the proof and releases its locks.
// Dropping an already dropped proof has no effect,
// dropping a moved proof fails.
func (a *Allocator) DropProof(id uint32) error {
	if a.dropped.Test(uint(id)) {
		return nil
	}
	if a.moved.Test(uint(id)) {
		return ProofNotFoundError{Proof: id}
	}

	proof, err := a.Proof(id)
	if err != nil {
		return err
	}
	delete(a.proofs, id)
	a.dropped.Set(uint(id))
	a.Release(proof)
	return nil
}

// DropAllProofs drops all named proofs.
func (a *Allocator) DropAllProofs() {
	for _, id := range slices.Sorted(maps.Keys(a.proofs)) {
		proof := a.proofs[id]
		delete(a.proofs, id)
		a.dropped.Set(uint(id))
		a.Release(proof)
	}
}

// Proofs returns the ids of all proofs which were not dropped yet, in order.
func (a *Allocator) Proofs() []uint32 {
	return slices.Sorted(maps.Keys(a.proofs))
}
