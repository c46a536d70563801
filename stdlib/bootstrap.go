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

package stdlib

import (
	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/ledger"
	"github.com/ledgerworks/rtm/resource"
)

const NativePackageName = "native"

const FeeResourceSymbol = "XRD"

const FeeResourceDivisibility = 18

// GenesisResource is a fungible resource created when the ledger is bootstrapped.
// Its supply is deposited into the genesis account with the index Holder.
type GenesisResource struct {
	Symbol       string
	Divisibility uint8
	Supply       fixedpoint.Decimal
	Holder       int
}

// GenesisAccount is an account created when the ledger is bootstrapped.
type GenesisAccount struct {
	Owner auth.AccessRule
	// OwnerBadge is the symbol of a genesis resource.
	// If set, the account is protected by a proof of the resource instead of Owner
	OwnerBadge string
	// Balance is the amount of the fee resource held by the account
	Balance fixedpoint.Decimal
}

// Genesis is the initial state of a ledger.
type Genesis struct {
	Resources []GenesisResource
	Accounts  []GenesisAccount
}

// Environment holds the addresses of the entities created at genesis.
type Environment struct {
	Package     common.PackageAddress
	System      common.ComponentAddress
	FeeResource common.ResourceAddress
	Accounts    []common.ComponentAddress
	// Resources are the genesis resources by symbol, including the fee resource
	Resources map[string]common.ResourceAddress
}

var genesisSeed = common.HashOf([]byte("genesis"))

var transferableRules = []auth.Rule{
	{Action: auth.ActionWithdraw, Permission: auth.AllowAll, Mutability: auth.DenyAll},
	{Action: auth.ActionDeposit, Permission: auth.AllowAll, Mutability: auth.DenyAll},
}

// Bootstrap creates the native package, the fee resource, the system component,
// and the genesis resources and accounts in an empty store.
func Bootstrap(store *ledger.Store, genesis Genesis) (*Environment, error) {
	if len(store.Addresses()) > 0 {
		return nil, errors.NewDefaultUserError("cannot bootstrap a non-empty ledger")
	}

	track := store.NewTrack(genesisSeed)

	blueprintNames := make([]string, len(NativeBlueprints))
	for i, blueprint := range NativeBlueprints {
		blueprintNames[i] = blueprint.Name
	}
	pkg := track.CreatePackage(NativePackageName, blueprintNames...)

	fee, err := createGenesisResource(track, FeeResourceSymbol, FeeResourceDivisibility)
	if err != nil {
		return nil, err
	}

	system := track.CreateComponent(
		common.EntityTypeSystemComponent,
		pkg.Address,
		SystemBlueprintName,
		auth.DenyAll,
	)

	environment := &Environment{
		Package:     pkg.Address,
		System:      system.Address,
		FeeResource: fee.Address,
		Resources: map[string]common.ResourceAddress{
			FeeResourceSymbol: fee.Address,
		},
	}

	managers := make([]*resource.Manager, len(genesis.Resources))
	for i, genesisResource := range genesis.Resources {
		if _, ok := environment.Resources[genesisResource.Symbol]; ok {
			return nil, errors.NewDefaultUserError(
				"duplicate genesis resource %s",
				genesisResource.Symbol,
			)
		}
		manager, err := createGenesisResource(
			track,
			genesisResource.Symbol,
			genesisResource.Divisibility,
		)
		if err != nil {
			return nil, err
		}
		managers[i] = manager
		environment.Resources[genesisResource.Symbol] = manager.Address
	}

	accounts := make([]*ledger.Component, len(genesis.Accounts))
	for i, genesisAccount := range genesis.Accounts {
		owner := genesisAccount.Owner
		if genesisAccount.OwnerBadge != "" {
			badge, ok := environment.Resources[genesisAccount.OwnerBadge]
			if !ok {
				return nil, errors.NewDefaultUserError(
					"unknown owner badge %s of genesis account %d",
					genesisAccount.OwnerBadge,
					i,
				)
			}
			owner = auth.Protected(auth.ProofRuleNode{
				Rule: auth.RequireRule{
					Resource: auth.RequireResource(badge),
				},
			})
		}

		account := track.CreateComponent(
			common.EntityTypeAccountComponent,
			pkg.Address,
			AccountBlueprintName,
			owner,
		)
		accounts[i] = account
		environment.Accounts = append(environment.Accounts, account.Address)

		err := mintInto(account, fee, genesisAccount.Balance)
		if err != nil {
			return nil, err
		}
	}

	for i, genesisResource := range genesis.Resources {
		if genesisResource.Holder < 0 || genesisResource.Holder >= len(accounts) {
			return nil, errors.NewDefaultUserError(
				"genesis resource %s is held by unknown account %d",
				genesisResource.Symbol,
				genesisResource.Holder,
			)
		}
		err := mintInto(accounts[genesisResource.Holder], managers[i], genesisResource.Supply)
		if err != nil {
			return nil, err
		}
	}

	delta, err := track.Delta()
	if err != nil {
		return nil, err
	}
	store.Commit(delta)

	return environment, nil
}

// createGenesisResource creates a freely transferable fungible resource.
// Nobody can mint or burn it, except the genesis and the faucet.
func createGenesisResource(
	track *ledger.Track,
	symbol string,
	divisibility uint8,
) (*resource.Manager, error) {
	typ, err := resource.Fungible(divisibility)
	if err != nil {
		return nil, err
	}

	matrix, err := auth.NewMatrix(transferableRules)
	if err != nil {
		return nil, err
	}

	return track.CreateResource(
		typ,
		map[string]string{"symbol": symbol},
		matrix,
	), nil
}

func mintInto(component *ledger.Component, manager *resource.Manager, amount fixedpoint.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	minted, err := manager.Mint(amount)
	if err != nil {
		return err
	}
	return component.Vault(manager.Address, manager.Type).Put(minted)
}
