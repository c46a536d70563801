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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/values"
)

func TestNewProof(t *testing.T) {

	t.Parallel()

	address := testResource(1)

	_, err := NewProof(fungibleContainer(t, address, 0), "vault")
	var emptyErr EmptyProofError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, errors.KindInsufficientBalance, errors.KindOf(err))

	proof, err := NewProof(fungibleContainer(t, address, 3), "vault")
	require.NoError(t, err)
	assert.Equal(t, address, proof.ResourceAddress())
	assert.Equal(t, decimal(3), proof.Amount())
	assert.Empty(t, proof.NonFungibleIds())

	proof, err = NewProof(nonFungibleContainer(t, address, 4, 2), "vault")
	require.NoError(t, err)
	assert.Equal(t, decimal(2), proof.Amount())
	assert.Equal(t,
		[]values.NonFungibleId{values.NewNonFungibleIdU32(2), values.NewNonFungibleIdU32(4)},
		proof.NonFungibleIds(),
	)
}

func TestAuthZone(t *testing.T) {

	t.Parallel()

	t.Run("stack", func(t *testing.T) {
		t.Parallel()

		zone := NewAuthZone()

		_, err := zone.Pop()
		var emptyErr EmptyAuthZoneError
		require.ErrorAs(t, err, &emptyErr)

		first, err := NewProof(fungibleContainer(t, testResource(1), 1), "a")
		require.NoError(t, err)
		second, err := NewProof(fungibleContainer(t, testResource(2), 1), "b")
		require.NoError(t, err)

		zone.Push(first)
		zone.Push(second)
		assert.Equal(t, 2, zone.Len())
		assert.Equal(t, []*Proof{first, second}, zone.Proofs())

		popped, err := zone.Pop()
		require.NoError(t, err)
		assert.Same(t, second, popped)

		cleared := zone.Clear()
		assert.Equal(t, []*Proof{first}, cleared)
		assert.Equal(t, 0, zone.Len())
	})

	t.Run("overlapping sources", func(t *testing.T) {
		t.Parallel()

		address := testResource(1)
		zone := NewAuthZone()

		vault, err := NewProof(fungibleContainer(t, address, 10), "vault")
		require.NoError(t, err)

		// the same vault shown twice is not twice the amount
		zone.Push(vault)
		zone.Push(vault.Clone())

		other, err := NewProof(fungibleContainer(t, address, 5), "other")
		require.NoError(t, err)
		zone.Push(other)

		proof, err := zone.CreateProof(address)
		require.NoError(t, err)
		assert.Equal(t, decimal(15), proof.Amount())

		proof, err = zone.CreateProofByAmount(address, decimal(12))
		require.NoError(t, err)
		assert.Equal(t, decimal(12), proof.Amount())

		_, err = zone.CreateProofByAmount(address, decimal(16))
		require.Error(t, err)
		assert.Equal(t, errors.KindInsufficientBalance, errors.KindOf(err))

		_, err = zone.CreateProofByAmount(address, decimal(0))
		require.ErrorAs(t, err, new(EmptyProofError))

		_, err = zone.CreateProofByIds(address, nil)
		require.Error(t, err)

		_, err = zone.CreateProof(testResource(2))
		require.Error(t, err)
		assert.Equal(t, errors.KindInsufficientBalance, errors.KindOf(err))
	})

	t.Run("non-fungible", func(t *testing.T) {
		t.Parallel()

		address := testResource(1)
		zone := NewAuthZone()

		first, err := NewProof(nonFungibleContainer(t, address, 1, 2), "a")
		require.NoError(t, err)
		second, err := NewProof(nonFungibleContainer(t, address, 2, 3), "b")
		require.NoError(t, err)
		zone.Push(first)
		zone.Push(second)

		proof, err := zone.CreateProof(address)
		require.NoError(t, err)
		assert.Equal(t, decimal(3), proof.Amount())

		proof, err = zone.CreateProofByIds(address, []values.NonFungibleId{
			values.NewNonFungibleIdU32(3),
			values.NewNonFungibleIdU32(1),
		})
		require.NoError(t, err)
		assert.Equal(t,
			[]values.NonFungibleId{values.NewNonFungibleIdU32(1), values.NewNonFungibleIdU32(3)},
			proof.NonFungibleIds(),
		)

		proof, err = zone.CreateProofByAmount(address, decimal(2))
		require.NoError(t, err)
		assert.Equal(t,
			[]values.NonFungibleId{values.NewNonFungibleIdU32(1), values.NewNonFungibleIdU32(2)},
			proof.NonFungibleIds(),
		)

		_, err = zone.CreateProofByIds(address, []values.NonFungibleId{values.NewNonFungibleIdU32(4)})
		require.Error(t, err)
	})

	t.Run("authorizer", func(t *testing.T) {
		t.Parallel()

		address := testResource(1)
		zone := NewAuthZone()

		rule := auth.Protected(auth.ProofRuleNode{
			Rule: auth.RequireRule{Resource: auth.RequireResource(address)},
		})
		matrix, err := auth.NewMatrix([]auth.Rule{
			{Action: auth.ActionMint, Permission: rule, Mutability: auth.DenyAll},
		})
		require.NoError(t, err)

		err = matrix.Check(auth.ActionMint, zone.Authorizer(auth.ProofOracle{}))
		require.Error(t, err)

		proof, err := NewProof(fungibleContainer(t, address, 1), "vault")
		require.NoError(t, err)
		zone.Push(proof)

		err = matrix.Check(auth.ActionMint, zone.Authorizer(auth.ProofOracle{}))
		require.NoError(t, err)
	})
}
