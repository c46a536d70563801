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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSeed = common.HashOf([]byte("ledger"))

type testLedger struct {
	store     *Store
	resource  common.ResourceAddress
	component common.ComponentAddress
}

// newTestLedger returns a store with a fungible resource
// and an account holding 100 of it
func newTestLedger(t *testing.T) testLedger {
	store := NewStore()
	track := store.NewTrack(testSeed)

	typ, err := resource.Fungible(18)
	require.NoError(t, err)

	matrix, err := auth.NewMatrix([]auth.Rule{
		{Action: auth.ActionWithdraw, Permission: auth.AllowAll, Mutability: auth.DenyAll},
		{Action: auth.ActionDeposit, Permission: auth.AllowAll, Mutability: auth.DenyAll},
	})
	require.NoError(t, err)

	manager := track.CreateResource(typ, map[string]string{"symbol": "XRD"}, matrix)
	supply, err := manager.Mint(fixedpoint.NewDecimalFromInt(100))
	require.NoError(t, err)

	pkg := track.CreatePackage("native", "Account")
	component := track.CreateComponent(common.EntityTypeAccountComponent, pkg.Address, "Account", auth.AllowAll)
	require.NoError(t, component.Vault(manager.Address, typ).Put(supply))

	delta, err := track.Delta()
	require.NoError(t, err)
	store.Commit(delta)

	return testLedger{
		store:     store,
		resource:  manager.Address,
		component: component.Address,
	}
}

func TestTrack_Commit(t *testing.T) {

	t.Parallel()

	ledger := newTestLedger(t)

	component, ok := ledger.store.Component(ledger.component)
	require.True(t, ok)
	assert.Equal(t, "Account", component.Blueprint)
	assert.Equal(t, fixedpoint.NewDecimalFromInt(100), component.Balance(ledger.resource))

	manager, ok := ledger.store.Resource(ledger.resource)
	require.True(t, ok)
	assert.Equal(t, fixedpoint.NewDecimalFromInt(100), manager.TotalSupply)

	assert.Len(t, ledger.store.Addresses(), 3)
}

func TestTrack_Isolation(t *testing.T) {

	t.Parallel()

	ledger := newTestLedger(t)

	before, err := ledger.store.StateHash()
	require.NoError(t, err)

	track := ledger.store.NewTrack(testSeed)
	component, err := track.Component(ledger.component)
	require.NoError(t, err)

	vault := component.Vaults[ledger.resource]
	_, err = vault.TakeAmount(fixedpoint.NewDecimalFromInt(40))
	require.NoError(t, err)

	// the store is unchanged until the delta is committed
	stored, ok := ledger.store.Component(ledger.component)
	require.True(t, ok)
	assert.Equal(t, fixedpoint.NewDecimalFromInt(100), stored.Balance(ledger.resource))

	after, err := ledger.store.StateHash()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// reads within the track see the change
	again, err := track.Component(ledger.component)
	require.NoError(t, err)
	assert.Same(t, component, again)
	assert.Equal(t, fixedpoint.NewDecimalFromInt(60), again.Balance(ledger.resource))
}

func TestTrack_Delta(t *testing.T) {

	t.Parallel()

	t.Run("reads only", func(t *testing.T) {
		t.Parallel()

		ledger := newTestLedger(t)
		track := ledger.store.NewTrack(testSeed)

		_, err := track.Component(ledger.component)
		require.NoError(t, err)
		_, err = track.Resource(ledger.resource)
		require.NoError(t, err)

		delta, err := track.Delta()
		require.NoError(t, err)
		assert.True(t, delta.IsEmpty())
	})

	t.Run("change reverted", func(t *testing.T) {
		t.Parallel()

		ledger := newTestLedger(t)
		track := ledger.store.NewTrack(testSeed)

		component, err := track.Component(ledger.component)
		require.NoError(t, err)

		vault := component.Vaults[ledger.resource]
		taken, err := vault.TakeAmount(fixedpoint.NewDecimalFromInt(1))
		require.NoError(t, err)
		require.NoError(t, vault.Put(taken))

		delta, err := track.Delta()
		require.NoError(t, err)
		assert.True(t, delta.IsEmpty())
	})

	t.Run("changed and created", func(t *testing.T) {
		t.Parallel()

		ledger := newTestLedger(t)
		track := ledger.store.NewTrack(testSeed)

		manager, err := track.Resource(ledger.resource)
		require.NoError(t, err)
		manager.Metadata["name"] = "Radix"

		typ, err := resource.Fungible(0)
		require.NoError(t, err)
		created := track.CreateResource(typ, nil, nil)

		delta, err := track.Delta()
		require.NoError(t, err)

		require.Len(t, delta.Resources, 2)
		assert.Empty(t, delta.Components)
		assert.Equal(t, []common.Address{common.Address(created.Address)}, delta.Created)
		assert.ElementsMatch(t,
			[]common.Address{common.Address(ledger.resource), common.Address(created.Address)},
			delta.Addresses(),
		)

		ledger.store.Commit(delta)

		stored, ok := ledger.store.Resource(ledger.resource)
		require.True(t, ok)
		assert.Equal(t, "Radix", stored.Metadata["name"])

		_, ok = ledger.store.Resource(created.Address)
		assert.True(t, ok)
	})
}

func TestTrack_NotFound(t *testing.T) {

	t.Parallel()

	store := NewStore()
	track := store.NewTrack(testSeed)

	_, err := track.Component(common.ComponentAddress(track.NewAddress(common.EntityTypeNormalComponent)))
	require.Error(t, err)
	assert.Equal(t, errors.KindComponentNotFound, errors.KindOf(err))

	_, err = track.Resource(common.ResourceAddress(track.NewAddress(common.EntityTypeResource)))
	require.Error(t, err)
	assert.Equal(t, errors.KindResourceNotFound, errors.KindOf(err))

	_, err = track.Package(common.PackageAddress(track.NewAddress(common.EntityTypePackage)))
	require.Error(t, err)
	assert.Equal(t, errors.KindComponentNotFound, errors.KindOf(err))
}

func TestStore_Determinism(t *testing.T) {

	t.Parallel()

	a := newTestLedger(t)
	b := newTestLedger(t)

	assert.Equal(t, a.resource, b.resource)
	assert.Equal(t, a.component, b.component)

	hashA, err := a.store.StateHash()
	require.NoError(t, err)
	hashB, err := b.store.StateHash()
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)

	// tracks of later transactions derive different addresses from the same seed
	first := a.store.NewTrack(testSeed)
	second := a.store.NewTrack(testSeed)
	assert.NotEqual(t, first.TransactionHash(), second.TransactionHash())

	track := b.store.NewTrack(testSeed)
	component, err := track.Component(b.component)
	require.NoError(t, err)
	component.State["greeting"] = values.NewString("hello")

	delta, err := track.Delta()
	require.NoError(t, err)
	b.store.Commit(delta)

	hashB, err = b.store.StateHash()
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)
}

func TestComponent_ToValue(t *testing.T) {

	t.Parallel()

	typ, err := resource.Fungible(18)
	require.NoError(t, err)

	resourceAddress := common.ResourceAddress(common.NewAddress(common.EntityTypeResource, testSeed, 0))
	component := NewComponent(
		common.ComponentAddress(common.NewAddress(common.EntityTypeNormalComponent, testSeed, 1)),
		common.PackageAddress{},
		"Test",
		auth.DenyAll,
	)
	before := component.ToValue()

	// empty vaults are not part of the state
	component.Vault(resourceAddress, typ)
	assert.True(t, values.Equal(before, component.ToValue()))

	clone := component.Clone()
	clone.State["x"] = values.NewU8(1)
	assert.Empty(t, component.State)
}
