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

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

func testResource(index uint32) common.ResourceAddress {
	return common.ResourceAddress(common.NewAddress(
		common.EntityTypeResource,
		common.HashOf([]byte("auth")),
		index,
	))
}

type testEvidence struct {
	resource common.ResourceAddress
	amount   fixedpoint.Decimal
	ids      []values.NonFungibleId
}

var _ Evidence = testEvidence{}

func (e testEvidence) ResourceAddress() common.ResourceAddress {
	return e.resource
}

func (e testEvidence) Amount() fixedpoint.Decimal {
	return e.amount
}

func (e testEvidence) NonFungibleIds() []values.NonFungibleId {
	return e.ids
}

func always(result bool) Authorizer {
	return func(RuleNode) bool {
		return result
	}
}

func requireBadge(index uint32) RuleNode {
	return ProofRuleNode{
		Rule: RequireRule{Resource: RequireResource(testResource(index))},
	}
}

func TestMatrix_Defaults(t *testing.T) {

	t.Parallel()

	var matrix Matrix

	for _, action := range Actions() {
		permission, mutability := matrix.Resolve(action)
		assert.Equal(t, DenyAll, permission)
		assert.Equal(t, DenyAll, mutability)

		err := matrix.Check(action, always(true))
		require.Error(t, err)
		assert.Equal(t, errors.KindAuthDenied, errors.KindOf(err))
	}
}

func TestNewMatrix(t *testing.T) {

	t.Parallel()

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		matrix, err := NewMatrix([]Rule{
			{Action: ActionWithdraw, Permission: AllowAll, Mutability: DenyAll},
			{Action: ActionDeposit, Permission: AllowAll, Mutability: AllowAll},
		})
		require.NoError(t, err)

		permission, mutability := matrix.Resolve(ActionDeposit)
		assert.Equal(t, AllowAll, permission)
		assert.Equal(t, AllowAll, mutability)

		permission, mutability = matrix.Resolve(ActionMint)
		assert.Equal(t, DenyAll, permission)
		assert.Equal(t, DenyAll, mutability)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()

		_, err := NewMatrix([]Rule{
			{Action: ActionWithdraw, Permission: AllowAll},
			{Action: ActionWithdraw, Permission: DenyAll},
		})
		require.ErrorAs(t, err, &DuplicateRuleError{})
	})
}

func TestMatrix_Check(t *testing.T) {

	t.Parallel()

	badge := requireBadge(1)

	matrix, err := NewMatrix([]Rule{
		{Action: ActionWithdraw, Permission: AllowAll},
		{Action: ActionMint, Permission: Protected(badge)},
	})
	require.NoError(t, err)

	require.NoError(t, matrix.Check(ActionWithdraw, nil))
	require.NoError(t, matrix.Check(ActionMint, always(true)))

	err = matrix.Check(ActionMint, always(false))
	var deniedErr AuthDeniedError
	require.ErrorAs(t, err, &deniedErr)
	assert.Equal(t, ActionMint, deniedErr.Action)

	// no authorizer means no proofs
	require.Error(t, matrix.Check(ActionMint, nil))
}

func TestMatrix_Update(t *testing.T) {

	t.Parallel()

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()

		matrix, err := NewMatrix([]Rule{
			{Action: ActionDeposit, Permission: DenyAll, Mutability: AllowAll},
		})
		require.NoError(t, err)

		require.NoError(t, matrix.Update(ActionDeposit, AllowAll, nil))

		permission, mutability := matrix.Resolve(ActionDeposit)
		assert.Equal(t, AllowAll, permission)
		assert.Equal(t, AllowAll, mutability)
	})

	t.Run("protected", func(t *testing.T) {
		t.Parallel()

		matrix, err := NewMatrix([]Rule{
			{Action: ActionBurn, Permission: DenyAll, Mutability: Protected(requireBadge(2))},
		})
		require.NoError(t, err)

		err = matrix.Update(ActionBurn, AllowAll, always(false))
		require.Error(t, err)
		assert.Equal(t, errors.KindAuthImmutable, errors.KindOf(err))

		require.NoError(t, matrix.Update(ActionBurn, AllowAll, always(true)))
	})

	t.Run("terminal", func(t *testing.T) {
		t.Parallel()

		matrix, err := NewMatrix([]Rule{
			{Action: ActionWithdraw, Permission: AllowAll, Mutability: DenyAll},
		})
		require.NoError(t, err)

		for _, permission := range []AccessRule{AllowAll, DenyAll, Protected(requireBadge(3))} {
			err := matrix.Update(ActionWithdraw, permission, always(true))
			var immutableErr AuthImmutableError
			require.ErrorAs(t, err, &immutableErr)
			assert.Equal(t, ActionWithdraw, immutableErr.Action)
		}

		for _, mutability := range []AccessRule{AllowAll, DenyAll, Protected(requireBadge(3))} {
			err := matrix.Narrow(ActionWithdraw, mutability, always(true))
			require.Error(t, err)
			assert.Equal(t, errors.KindAuthImmutable, errors.KindOf(err))
		}

		permission, mutability := matrix.Resolve(ActionWithdraw)
		assert.Equal(t, AllowAll, permission)
		assert.Equal(t, DenyAll, mutability)
	})
}

func TestMatrix_Narrow(t *testing.T) {

	t.Parallel()

	matrix, err := NewMatrix([]Rule{
		{Action: ActionMint, Permission: AllowAll, Mutability: AllowAll},
	})
	require.NoError(t, err)

	badge := requireBadge(4)

	require.NoError(t, matrix.Narrow(ActionMint, Protected(badge), nil))

	// widening is never allowed
	err = matrix.Narrow(ActionMint, AllowAll, always(true))
	require.Error(t, err)
	assert.Equal(t, errors.KindAuthImmutable, errors.KindOf(err))

	// same strictness is not narrowing
	err = matrix.Narrow(ActionMint, Protected(requireBadge(5)), always(true))
	require.Error(t, err)

	// narrowing a protected mutability requires authorization
	err = matrix.Narrow(ActionMint, DenyAll, always(false))
	require.Error(t, err)

	require.NoError(t, matrix.Narrow(ActionMint, DenyAll, always(true)))

	_, mutability := matrix.Resolve(ActionMint)
	assert.Equal(t, DenyAll, mutability)
}

func TestMatrix_Clone(t *testing.T) {

	t.Parallel()

	matrix, err := NewMatrix([]Rule{
		{Action: ActionDeposit, Permission: AllowAll, Mutability: AllowAll},
	})
	require.NoError(t, err)

	clone := matrix.Clone()
	require.NoError(t, clone.Update(ActionDeposit, DenyAll, nil))

	permission, _ := matrix.Resolve(ActionDeposit)
	assert.Equal(t, AllowAll, permission)
}

func TestDecodeRules(t *testing.T) {

	t.Parallel()

	badge := testResource(7)

	rules := []Rule{
		{
			Action:     ActionWithdraw,
			Permission: AllowAll,
			Mutability: DenyAll,
		},
		{
			Action: ActionMint,
			Permission: Protected(AnyOfNode{
				Nodes: []RuleNode{
					ProofRuleNode{Rule: RequireRule{Resource: RequireNonFungible(badge, values.NewNonFungibleIdU32(1))}},
					ProofRuleNode{Rule: AmountOfRule{Amount: fixedpoint.MustDecimal("2.5"), Resource: badge}},
					ProofRuleNode{Rule: CountOfRule{Count: 1, Resources: []ResourceOrNonFungible{RequireResource(badge)}}},
				},
			}),
			Mutability: Protected(AllOfNode{
				Nodes: []RuleNode{
					ProofRuleNode{Rule: AllOfRule{Resources: []ResourceOrNonFungible{RequireResource(badge)}}},
					ProofRuleNode{Rule: AnyOfRule{Resources: []ResourceOrNonFungible{RequireResource(badge)}}},
				},
			}),
		},
	}

	value := RulesValue(rules)

	decoded, err := DecodeRules(value)
	require.NoError(t, err)
	assert.Equal(t, rules, decoded)

	assert.True(t, values.Equal(value, RulesValue(decoded)))
}

func TestDecodeRules_Invalid(t *testing.T) {

	t.Parallel()

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()

		value := values.MustArray(values.KindTuple,
			values.NewTuple(
				values.NewEnum("Steal"),
				values.NewTuple(values.NewEnum("AllowAll"), values.NewEnum("DenyAll")),
			),
		)
		_, err := DecodeRules(value)
		require.Error(t, err)
		assert.Equal(t, errors.KindValueTypeMismatch, errors.KindOf(err))
	})

	t.Run("protected without node", func(t *testing.T) {
		t.Parallel()

		value := values.MustArray(values.KindTuple,
			values.NewTuple(
				values.NewEnum("Withdraw"),
				values.NewTuple(values.NewEnum("Protected"), values.NewEnum("DenyAll")),
			),
		)
		_, err := DecodeRules(value)
		require.Error(t, err)
		assert.Equal(t, errors.KindValueTypeMismatch, errors.KindOf(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		t.Parallel()

		node := values.NewEnum("ProofRule",
			values.NewEnum("AmountOf",
				values.NewDecimal(fixedpoint.MustDecimal("-1")),
				values.ResourceAddress(testResource(1)),
			),
		)
		_, err := DecodeRuleNode(node)
		require.Error(t, err)
		assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
	})
}

func TestProofOracle(t *testing.T) {

	t.Parallel()

	badge := testResource(1)
	other := testResource(2)
	nft := testResource(3)

	proofs := []Evidence{
		testEvidence{resource: badge, amount: fixedpoint.MustDecimal("3")},
		testEvidence{resource: badge, amount: fixedpoint.MustDecimal("2")},
		testEvidence{
			resource: nft,
			amount:   fixedpoint.NewDecimalFromInt(1),
			ids:      []values.NonFungibleId{values.NewNonFungibleIdU32(9)},
		},
	}

	proofRule := func(rule ProofRule) RuleNode {
		return ProofRuleNode{Rule: rule}
	}

	type testCase struct {
		name     string
		node     RuleNode
		expected bool
	}

	for _, test := range []testCase{
		{"require resource", proofRule(RequireRule{Resource: RequireResource(badge)}), true},
		{"require missing", proofRule(RequireRule{Resource: RequireResource(other)}), false},
		{"require id", proofRule(RequireRule{Resource: RequireNonFungible(nft, values.NewNonFungibleIdU32(9))}), true},
		{"require missing id", proofRule(RequireRule{Resource: RequireNonFungible(nft, values.NewNonFungibleIdU32(8))}), false},
		{"amount of", proofRule(AmountOfRule{Amount: fixedpoint.MustDecimal("3"), Resource: badge}), true},
		// amounts of separate proofs are not added up
		{"amount of split", proofRule(AmountOfRule{Amount: fixedpoint.MustDecimal("5"), Resource: badge}), false},
		{"all of", proofRule(AllOfRule{Resources: []ResourceOrNonFungible{RequireResource(badge), RequireResource(nft)}}), true},
		{"all of missing", proofRule(AllOfRule{Resources: []ResourceOrNonFungible{RequireResource(badge), RequireResource(other)}}), false},
		{"any of", proofRule(AnyOfRule{Resources: []ResourceOrNonFungible{RequireResource(other), RequireResource(nft)}}), true},
		{"any of empty", proofRule(AnyOfRule{}), false},
		{"count of", proofRule(CountOfRule{Count: 2, Resources: []ResourceOrNonFungible{RequireResource(badge), RequireResource(other), RequireResource(nft)}}), true},
		{"count of too few", proofRule(CountOfRule{Count: 3, Resources: []ResourceOrNonFungible{RequireResource(badge), RequireResource(other), RequireResource(nft)}}), false},
		{"count of zero", proofRule(CountOfRule{Count: 0}), true},
		{"any of nodes", AnyOfNode{Nodes: []RuleNode{requireBadge(2), proofRule(RequireRule{Resource: RequireResource(badge)})}}, true},
		{"all of nodes", AllOfNode{Nodes: []RuleNode{requireBadge(2), proofRule(RequireRule{Resource: RequireResource(badge)})}}, false},
		{"all of no nodes", AllOfNode{}, true},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, ProofOracle{}.Authorize(test.node, proofs))
		})
	}
}

func TestNewAuthorizer(t *testing.T) {

	t.Parallel()

	ctrl := gomock.NewController(t)

	node := requireBadge(1)
	proofs := []Evidence{testEvidence{resource: testResource(1)}}

	oracle := NewMockOracle(ctrl)
	oracle.EXPECT().Authorize(node, proofs).Return(true)

	matrix, err := NewMatrix([]Rule{
		{Action: ActionMint, Permission: Protected(node)},
	})
	require.NoError(t, err)

	require.NoError(t, matrix.Check(ActionMint, NewAuthorizer(oracle, proofs)))
}
