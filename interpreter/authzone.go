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
	"slices"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// AuthZone is the stack of proofs which authorize the actions of an execution.
type AuthZone struct {
	proofs []*Proof
}

func NewAuthZone() *AuthZone {
	return &AuthZone{}
}

func (z *AuthZone) Push(proof *Proof) {
	z.proofs = append(z.proofs, proof)
}

// Pop removes the most recently pushed proof.
func (z *AuthZone) Pop() (*Proof, error) {
	if len(z.proofs) == 0 {
		return nil, EmptyAuthZoneError{}
	}
	last := len(z.proofs) - 1
	proof := z.proofs[last]
	z.proofs[last] = nil
	z.proofs = z.proofs[:last]
	return proof, nil
}

// Clear removes all proofs and returns them, so their locks can be released.
func (z *AuthZone) Clear() []*Proof {
	proofs := z.proofs
	z.proofs = nil
	return proofs
}

// Proofs returns the proofs, from the bottom to the top of the stack.
func (z *AuthZone) Proofs() []*Proof {
	return slices.Clone(z.proofs)
}

func (z *AuthZone) Len() int {
	return len(z.proofs)
}

// Evidence returns the proofs as evidence for authorization.
func (z *AuthZone) Evidence() []auth.Evidence {
	return evidence(z.proofs)
}

// Authorizer returns an authorizer which asks the oracle about the proofs in the zone.
func (z *AuthZone) Authorizer(oracle auth.Oracle) auth.Authorizer {
	return auth.NewAuthorizer(oracle, z.Evidence())
}

// CreateProof composes a proof of all of the resource shown by the proofs in the zone.
func (z *AuthZone) CreateProof(resource common.ResourceAddress) (*Proof, error) {
	return composeProof(resource, z.proofs, proofRequest{})
}

// CreateProofByAmount composes a proof of the amount of the resource.
func (z *AuthZone) CreateProofByAmount(resource common.ResourceAddress, amount fixedpoint.Decimal) (*Proof, error) {
	return composeProof(resource, z.proofs, proofRequest{amount: &amount})
}

// CreateProofByIds composes a proof of the non-fungibles of the resource.
func (z *AuthZone) CreateProofByIds(resource common.ResourceAddress, ids []values.NonFungibleId) (*Proof, error) {
	if ids == nil {
		ids = []values.NonFungibleId{}
	}
	return composeProof(resource, z.proofs, proofRequest{ids: ids})
}
