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
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strings"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

// Proof is evidence of possession of a resource.
//
// A proof does not own the resource it shows. It shows the resource of one or more sources,
// e.g. a bucket or a vault, and the buckets it shows are locked until the proof is dropped.
type Proof struct {
	resource common.ResourceAddress
	typ      resource.Type
	// amounts holds the fungible amount shown of each source
	amounts map[string]fixedpoint.Decimal
	// ids holds the non-fungibles shown, in canonical order
	ids []values.NonFungibleId
	// buckets are the runtime ids of the buckets the proof shows
	buckets []uint32
}

var _ auth.Evidence = &Proof{}

// NewProof returns a proof of the container's resource.
// The source names where the resource is held, e.g. a vault of a component.
func NewProof(container *resource.Container, source string) (*Proof, error) {
	if container.IsEmpty() {
		return nil, EmptyProofError{Resource: container.ResourceAddress()}
	}

	proof := &Proof{
		resource: container.ResourceAddress(),
		typ:      container.Type(),
	}
	if container.Type().IsFungible() {
		proof.amounts = map[string]fixedpoint.Decimal{
			source: container.Amount(),
		}
	} else {
		proof.ids = container.NonFungibleIds()
	}
	return proof, nil
}

func bucketSource(bucket uint32) string {
	return fmt.Sprintf("bucket/%d", bucket)
}

// newBucketProof returns a proof of a bucket's resource, which locks the bucket.
func newBucketProof(bucket uint32, container *resource.Container) (*Proof, error) {
	proof, err := NewProof(container, bucketSource(bucket))
	if err != nil {
		return nil, err
	}
	proof.buckets = []uint32{bucket}
	return proof, nil
}

func (p *Proof) ResourceAddress() common.ResourceAddress {
	return p.resource
}

func (p *Proof) Type() resource.Type {
	return p.typ
}

// Amount returns the fungible amount shown,
// or the number of non-fungibles shown.
func (p *Proof) Amount() fixedpoint.Decimal {
	if !p.typ.IsFungible() {
		return fixedpoint.NewDecimalFromInt(int64(len(p.ids)))
	}

	total := fixedpoint.Zero
	for _, amount := range p.amounts {
		// the amounts are bounded by the balances of the sources
		sum, err := total.Add(amount)
		if err != nil {
			panic(err)
		}
		total = sum
	}
	return total
}

func (p *Proof) NonFungibleIds() []values.NonFungibleId {
	return slices.Clone(p.ids)
}

func (p *Proof) Clone() *Proof {
	return &Proof{
		resource: p.resource,
		typ:      p.typ,
		amounts:  maps.Clone(p.amounts),
		ids:      slices.Clone(p.ids),
		buckets:  slices.Clone(p.buckets),
	}
}

func (p *Proof) String() string {
	if p.typ.IsFungible() {
		return fmt.Sprintf("proof of %s of %s", p.Amount(), p.resource)
	}
	return fmt.Sprintf("proof of %v of %s", p.ids, p.resource)
}

// proofRequest is what a composed proof must show:
// everything, an amount, or specific non-fungibles.
type proofRequest struct {
	amount *fixedpoint.Decimal
	ids    []values.NonFungibleId
}

// composeProof creates a proof of the resource from the given proofs.
//
// Proofs of the same source overlap, so the amount available from a source
// is the largest amount any of the proofs shows of it.
func composeProof(
	address common.ResourceAddress,
	proofs []*Proof,
	request proofRequest,
) (*Proof, error) {

	var matching []*Proof
	for _, proof := range proofs {
		if proof.resource == address {
			matching = append(matching, proof)
		}
	}
	if len(matching) == 0 {
		return nil, resource.InsufficientBalanceError{
			Resource:  address,
			Requested: "a proof",
			Available: "no proofs",
		}
	}

	typ := matching[0].typ

	composed := &Proof{
		resource: address,
		typ:      typ,
	}

	buckets := map[uint32]struct{}{}
	for _, proof := range matching {
		for _, bucket := range proof.buckets {
			buckets[bucket] = struct{}{}
		}
	}
	composed.buckets = slices.Sorted(maps.Keys(buckets))

	var err error
	if typ.IsFungible() {
		err = composed.composeFungible(matching, request)
	} else {
		err = composed.composeNonFungible(matching, request)
	}
	if err != nil {
		return nil, err
	}

	if composed.Amount().IsZero() {
		return nil, EmptyProofError{Resource: address}
	}
	return composed, nil
}

func (p *Proof) composeFungible(proofs []*Proof, request proofRequest) error {
	if request.ids != nil {
		return resource.KindMismatchError{
			Resource: p.resource,
			Expected: "non-fungible resource",
			Found:    "fungible resource",
		}
	}

	available := map[string]fixedpoint.Decimal{}
	for _, proof := range proofs {
		for source, amount := range proof.amounts {
			if current, ok := available[source]; !ok || amount.Cmp(current) > 0 {
				available[source] = amount
			}
		}
	}

	if request.amount == nil {
		p.amounts = available
		return nil
	}

	amount := *request.amount
	err := p.typ.CheckAmount(amount)
	if err != nil {
		return err
	}

	// take from the sources in a deterministic order
	p.amounts = map[string]fixedpoint.Decimal{}
	remaining := amount
	for _, source := range slices.SortedFunc(maps.Keys(available), strings.Compare) {
		if remaining.IsZero() {
			break
		}
		take := available[source]
		if take.Cmp(remaining) > 0 {
			take = remaining
		}
		p.amounts[source] = take
		remaining, err = remaining.Sub(take)
		if err != nil {
			return err
		}
	}

	if !remaining.IsZero() {
		p.amounts = nil
		total := fixedpoint.Zero
		for _, a := range available {
			total, _ = total.Add(a)
		}
		return resource.InsufficientBalanceError{
			Resource:  p.resource,
			Requested: amount.String(),
			Available: total.String(),
		}
	}
	return nil
}

func (p *Proof) composeNonFungible(proofs []*Proof, request proofRequest) error {
	available := map[values.NonFungibleId]struct{}{}
	for _, proof := range proofs {
		for _, id := range proof.ids {
			available[id] = struct{}{}
		}
	}
	ids := slices.Collect(maps.Keys(available))
	values.SortNonFungibleIds(ids)

	switch {
	case request.ids != nil:
		for _, id := range request.ids {
			if _, ok := available[id]; !ok {
				return resource.InsufficientBalanceError{
					Resource:  p.resource,
					Requested: id.String(),
					Available: fmt.Sprintf("%d ids", len(ids)),
				}
			}
		}
		p.ids = slices.Clone(request.ids)
		values.SortNonFungibleIds(p.ids)
		p.ids = slices.Compact(p.ids)

	case request.amount != nil:
		amount := *request.amount
		err := p.typ.CheckAmount(amount)
		if err != nil {
			return err
		}
		count := amount.Truncate()
		if count.Cmp(big.NewInt(int64(len(ids)))) > 0 {
			return resource.InsufficientBalanceError{
				Resource:  p.resource,
				Requested: amount.String(),
				Available: fmt.Sprintf("%d ids", len(ids)),
			}
		}
		p.ids = ids[:count.Int64()]

	default:
		p.ids = ids
	}

	return nil
}

func evidence(proofs []*Proof) []auth.Evidence {
	result := make([]auth.Evidence, len(proofs))
	for i, proof := range proofs {
		result[i] = proof
	}
	return result
}
