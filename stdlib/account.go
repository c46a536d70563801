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
	"fmt"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

const AccountBlueprintName = "Account"

var nonFungibleIdsType = values.ArrayOf(values.KindNonFungibleId)

// Functions

const AccountNewFunctionName = "new"

const accountNewFunctionDocString = `
Creates an account which is owned by the given access rule.
`

var AccountNewFunction = NewStandardLibraryFunction(
	AccountNewFunctionName,
	[]values.Type{auth.AccessRuleType},
	accountNewFunctionDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		address, err := newAccount(invocation, invocation.Call.Arguments[0])
		if err != nil {
			return interpreter.CallResult{}, err
		}
		return interpreter.CallResult{
			Output: values.ComponentAddress(address),
		}, nil
	},
)

const AccountWithBucketFunctionName = "with_bucket"

const accountWithBucketFunctionDocString = `
Creates an account which is owned by the given access rule,
and deposits the resources of the bucket into it.
`

var AccountWithBucketFunction = NewStandardLibraryFunction(
	AccountWithBucketFunctionName,
	[]values.Type{auth.AccessRuleType, values.KindBucket},
	accountWithBucketFunctionDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		address, err := newAccount(invocation, invocation.Call.Arguments[0])
		if err != nil {
			return interpreter.CallResult{}, err
		}

		invocation.Component, err = invocation.Track.Component(address)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		container, err := bucketArgument(invocation, invocation.Call.Arguments[1])
		if err != nil {
			return interpreter.CallResult{}, err
		}

		err = deposit(invocation, container)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		return interpreter.CallResult{
			Output: values.ComponentAddress(address),
		}, nil
	},
)

func newAccount(invocation *Invocation, owner values.Value) (common.ComponentAddress, error) {
	rule, err := auth.DecodeAccessRule(owner)
	if err != nil {
		return common.ComponentAddress{}, err
	}

	component := invocation.Track.CreateComponent(
		common.EntityTypeAccountComponent,
		invocation.Call.Package,
		AccountBlueprintName,
		rule,
	)

	invocation.Logger.
		WithField("account", component.Address).
		Debug("created account")

	return component.Address, nil
}

// Methods

const AccountDepositMethodName = "deposit"

const accountDepositMethodDocString = `
Deposits the resources of the bucket into the account.
`

var AccountDepositMethod = NewStandardLibraryFunction(
	AccountDepositMethodName,
	[]values.Type{values.KindBucket},
	accountDepositMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		container, err := bucketArgument(invocation, invocation.Call.Arguments[0])
		if err != nil {
			return interpreter.CallResult{}, err
		}
		return interpreter.CallResult{}, deposit(invocation, container)
	},
)

const AccountDepositBatchMethodName = "deposit_batch"

const accountDepositBatchMethodDocString = `
Deposits the resources of all buckets into the account.
`

var AccountDepositBatchMethod = NewStandardLibraryFunction(
	AccountDepositBatchMethodName,
	[]values.Type{values.ArrayOf(values.KindBucket)},
	accountDepositBatchMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		for _, element := range invocation.Call.Arguments[0].(values.Array).Elements {
			container, err := bucketArgument(invocation, element)
			if err != nil {
				return interpreter.CallResult{}, err
			}
			err = deposit(invocation, container)
			if err != nil {
				return interpreter.CallResult{}, err
			}
		}
		return interpreter.CallResult{}, nil
	},
)

const AccountWithdrawMethodName = "withdraw"

const accountWithdrawMethodDocString = `
Withdraws all of the resource from the account.
`

var AccountWithdrawMethod = NewStandardLibraryFunction(
	AccountWithdrawMethodName,
	[]values.Type{values.KindResourceAddress},
	accountWithdrawMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		return withdraw(
			invocation,
			resourceArgument(invocation.Call.Arguments[0]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault.TakeAll(), nil
			},
		)
	},
)

const AccountWithdrawByAmountMethodName = "withdraw_by_amount"

const accountWithdrawByAmountMethodDocString = `
Withdraws the amount of the resource from the account.
`

var AccountWithdrawByAmountMethod = NewStandardLibraryFunction(
	AccountWithdrawByAmountMethodName,
	[]values.Type{values.KindDecimal, values.KindResourceAddress},
	accountWithdrawByAmountMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		amount := invocation.Call.Arguments[0].(values.Decimal).Decimal
		return withdraw(
			invocation,
			resourceArgument(invocation.Call.Arguments[1]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault.TakeAmount(amount)
			},
		)
	},
)

const AccountWithdrawByIdsMethodName = "withdraw_by_ids"

const accountWithdrawByIdsMethodDocString = `
Withdraws the non-fungibles of the resource from the account.
`

var AccountWithdrawByIdsMethod = NewStandardLibraryFunction(
	AccountWithdrawByIdsMethodName,
	[]values.Type{nonFungibleIdsType, values.KindResourceAddress},
	accountWithdrawByIdsMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		ids, err := resource.DecodeIds(invocation.Call.Arguments[0])
		if err != nil {
			return interpreter.CallResult{}, err
		}
		return withdraw(
			invocation,
			resourceArgument(invocation.Call.Arguments[1]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault.TakeIds(ids)
			},
		)
	},
)

const AccountLockFeeMethodName = "lock_fee"

const accountLockFeeMethodDocString = `
Locks the amount of the fee resource held by the account as the fee of the transaction.
The fee is recorded in the receipt, but never charged.
`

var AccountLockFeeMethod = NewStandardLibraryFunction(
	AccountLockFeeMethodName,
	[]values.Type{values.KindDecimal},
	accountLockFeeMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		err := invocation.checkOwner()
		if err != nil {
			return interpreter.CallResult{}, err
		}

		amount := invocation.Call.Arguments[0].(values.Decimal).Decimal
		feeResource := invocation.Environment.FeeResource

		typ, err := invocation.Track.ResourceType(feeResource)
		if err != nil {
			return interpreter.CallResult{}, err
		}
		err = typ.CheckAmount(amount)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		balance := invocation.Component.Balance(feeResource)
		if balance.Cmp(amount) < 0 {
			return interpreter.CallResult{}, resource.InsufficientBalanceError{
				Resource:  feeResource,
				Requested: amount.String(),
				Available: balance.String(),
			}
		}

		return interpreter.CallResult{
			LockedFee: amount,
		}, nil
	},
)

const AccountCreateProofMethodName = "create_proof"

const accountCreateProofMethodDocString = `
Creates a proof of all of the resource held by the account.
The proof is put into the auth zone.
`

var AccountCreateProofMethod = NewStandardLibraryFunction(
	AccountCreateProofMethodName,
	[]values.Type{values.KindResourceAddress},
	accountCreateProofMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		return createProof(
			invocation,
			resourceArgument(invocation.Call.Arguments[0]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault, nil
			},
		)
	},
)

const AccountCreateProofByAmountMethodName = "create_proof_by_amount"

const accountCreateProofByAmountMethodDocString = `
Creates a proof of the amount of the resource held by the account.
The proof is put into the auth zone.
`

var AccountCreateProofByAmountMethod = NewStandardLibraryFunction(
	AccountCreateProofByAmountMethodName,
	[]values.Type{values.KindDecimal, values.KindResourceAddress},
	accountCreateProofByAmountMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		amount := invocation.Call.Arguments[0].(values.Decimal).Decimal
		return createProof(
			invocation,
			resourceArgument(invocation.Call.Arguments[1]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault.Clone().TakeAmount(amount)
			},
		)
	},
)

const AccountCreateProofByIdsMethodName = "create_proof_by_ids"

const accountCreateProofByIdsMethodDocString = `
Creates a proof of the non-fungibles of the resource held by the account.
The proof is put into the auth zone.
`

var AccountCreateProofByIdsMethod = NewStandardLibraryFunction(
	AccountCreateProofByIdsMethodName,
	[]values.Type{nonFungibleIdsType, values.KindResourceAddress},
	accountCreateProofByIdsMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		ids, err := resource.DecodeIds(invocation.Call.Arguments[0])
		if err != nil {
			return interpreter.CallResult{}, err
		}
		return createProof(
			invocation,
			resourceArgument(invocation.Call.Arguments[1]),
			func(vault *resource.Container) (*resource.Container, error) {
				return vault.Clone().TakeIds(ids)
			},
		)
	},
)

const AccountBalanceMethodName = "balance"

const accountBalanceMethodDocString = `
Returns the amount of the resource held by the account.
`

var AccountBalanceMethod = NewStandardLibraryFunction(
	AccountBalanceMethodName,
	[]values.Type{values.KindResourceAddress},
	accountBalanceMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		address := resourceArgument(invocation.Call.Arguments[0])
		return interpreter.CallResult{
			Output: values.NewDecimal(invocation.Component.Balance(address)),
		}, nil
	},
)

var AccountBlueprint = NewBlueprint(
	AccountBlueprintName,
	[]*Function{
		AccountNewFunction,
		AccountWithBucketFunction,
	},
	[]*Function{
		AccountDepositMethod,
		AccountDepositBatchMethod,
		AccountWithdrawMethod,
		AccountWithdrawByAmountMethod,
		AccountWithdrawByIdsMethod,
		AccountLockFeeMethod,
		AccountCreateProofMethod,
		AccountCreateProofByAmountMethod,
		AccountCreateProofByIdsMethod,
		AccountBalanceMethod,
	},
)

func resourceArgument(value values.Value) common.ResourceAddress {
	return value.(values.ResourceAddress).Address()
}

// bucketArgument returns the container of a bucket moved into the call.
func bucketArgument(invocation *Invocation, value values.Value) (*resource.Container, error) {
	id := uint32(value.(values.Bucket))
	container, ok := invocation.Call.Buckets[id]
	if !ok {
		return nil, interpreter.BucketAlreadyConsumedError{Bucket: id}
	}
	return container, nil
}

// checkOwner fails if the auth zone of the caller does not satisfy the owner rule of the receiver.
func (invocation *Invocation) checkOwner() error {
	component := invocation.Component
	owner := component.Owner

	denied := OwnerDeniedError{
		Component: component.Address,
		Method:    invocation.Call.Method,
	}

	switch owner.Kind {
	case auth.AccessRuleKindAllowAll:
		return nil

	case auth.AccessRuleKindDenyAll:
		return denied

	case auth.AccessRuleKindProtected:
		if invocation.Call.Authorizer()(owner.Node) {
			return nil
		}
		return denied
	}

	panic(errors.NewUnreachableError())
}

// deposit puts the container into the vault of its resource,
// if the deposit permission of the resource is satisfied.
func deposit(invocation *Invocation, container *resource.Container) error {
	address := container.ResourceAddress()

	manager, err := invocation.Track.Resource(address)
	if err != nil {
		return err
	}

	err = manager.Matrix.Check(auth.ActionDeposit, invocation.Call.Authorizer())
	if err != nil {
		return err
	}

	return invocation.Component.Vault(address, manager.Type).Put(container)
}

func withdraw(
	invocation *Invocation,
	address common.ResourceAddress,
	take func(vault *resource.Container) (*resource.Container, error),
) (interpreter.CallResult, error) {
	err := invocation.checkOwner()
	if err != nil {
		return interpreter.CallResult{}, err
	}

	manager, err := invocation.Track.Resource(address)
	if err != nil {
		return interpreter.CallResult{}, err
	}

	err = manager.Matrix.Check(auth.ActionWithdraw, invocation.Call.Authorizer())
	if err != nil {
		return interpreter.CallResult{}, err
	}

	taken, err := take(invocation.Component.Vault(address, manager.Type))
	if err != nil {
		return interpreter.CallResult{}, err
	}

	return interpreter.CallResult{
		Resources: []*resource.Container{taken},
	}, nil
}

func vaultSource(component common.ComponentAddress, address common.ResourceAddress) string {
	return fmt.Sprintf("vault/%s/%s", component, address)
}

// createProof returns a proof of the resources of the vault selected by show.
// The vault is not changed.
func createProof(
	invocation *Invocation,
	address common.ResourceAddress,
	show func(vault *resource.Container) (*resource.Container, error),
) (interpreter.CallResult, error) {
	err := invocation.checkOwner()
	if err != nil {
		return interpreter.CallResult{}, err
	}

	typ, err := invocation.Track.ResourceType(address)
	if err != nil {
		return interpreter.CallResult{}, err
	}

	shown, err := show(invocation.Component.Vault(address, typ))
	if err != nil {
		return interpreter.CallResult{}, err
	}

	proof, err := interpreter.NewProof(shown, vaultSource(invocation.Component.Address, address))
	if err != nil {
		return interpreter.CallResult{}, err
	}

	return interpreter.CallResult{
		Proofs: []*interpreter.Proof{proof},
	}, nil
}
