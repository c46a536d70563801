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

//go:generate mockgen -source oracle.go -destination oracle_mock.go -package auth

package auth

import (
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// Evidence is what a proof shows about the resources the transaction possesses.
type Evidence interface {
	ResourceAddress() common.ResourceAddress
	Amount() fixedpoint.Decimal
	NonFungibleIds() []values.NonFungibleId
}

// Oracle decides if a rule node is satisfied by the presented proofs.
type Oracle interface {
	Authorize(node RuleNode, proofs []Evidence) bool
}

// NewAuthorizer returns an authorizer which asks the oracle about the given proofs.
func NewAuthorizer(oracle Oracle, proofs []Evidence) Authorizer {
	return func(node RuleNode) bool {
		return oracle.Authorize(node, proofs)
	}
}

// ProofOracle is the default oracle. It evaluates rules against the proofs only.
type ProofOracle struct{}

var _ Oracle = ProofOracle{}

func (o ProofOracle) Authorize(node RuleNode, proofs []Evidence) bool {
	switch node := node.(type) {
	case ProofRuleNode:
		return o.checkProofRule(node.Rule, proofs)

	case AnyOfNode:
		for _, inner := range node.Nodes {
			if o.Authorize(inner, proofs) {
				return true
			}
		}
		return false

	case AllOfNode:
		for _, inner := range node.Nodes {
			if !o.Authorize(inner, proofs) {
				return false
			}
		}
		return true
	}

	panic(errors.NewUnreachableError())
}

func (o ProofOracle) checkProofRule(rule ProofRule, proofs []Evidence) bool {
	switch rule := rule.(type) {
	case RequireRule:
		return o.hasResource(rule.Resource, proofs)

	case AmountOfRule:
		// a single proof must show the whole amount
		for _, proof := range proofs {
			if proof.ResourceAddress() == rule.Resource &&
				proof.Amount().Cmp(rule.Amount) >= 0 {

				return true
			}
		}
		return false

	case AllOfRule:
		for _, resource := range rule.Resources {
			if !o.hasResource(resource, proofs) {
				return false
			}
		}
		return true

	case AnyOfRule:
		for _, resource := range rule.Resources {
			if o.hasResource(resource, proofs) {
				return true
			}
		}
		return false

	case CountOfRule:
		remaining := int(rule.Count)
		if remaining == 0 {
			return true
		}
		for _, resource := range rule.Resources {
			if o.hasResource(resource, proofs) {
				remaining--
				if remaining == 0 {
					return true
				}
			}
		}
		return false
	}

	panic(errors.NewUnreachableError())
}

func (ProofOracle) hasResource(resource ResourceOrNonFungible, proofs []Evidence) bool {
	for _, proof := range proofs {
		if proof.ResourceAddress() != resource.Resource {
			continue
		}

		if !resource.IsNonFungible {
			return true
		}

		for _, id := range proof.NonFungibleIds() {
			if id == resource.Id {
				return true
			}
		}
	}
	return false
}
