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
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

const SystemBlueprintName = "System"

// FaucetAmount is the amount of the fee resource handed out by the faucet.
var FaucetAmount = fixedpoint.NewDecimalFromInt(1000)

const SystemFreeXrdMethodName = "free_xrd"

const systemFreeXrdMethodDocString = `
Mints an amount of the fee resource and returns it.
The system component is the only minter of the fee resource.
`

var SystemFreeXrdMethod = NewStandardLibraryFunction(
	SystemFreeXrdMethodName,
	nil,
	systemFreeXrdMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		manager, err := invocation.Track.Resource(invocation.Environment.FeeResource)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		minted, err := manager.Mint(FaucetAmount)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		invocation.Logger.
			WithField("amount", FaucetAmount).
			Debug("minted from faucet")

		return interpreter.CallResult{
			Resources: []*resource.Container{minted},
		}, nil
	},
)

const SystemLockFeeMethodName = "lock_fee"

const systemLockFeeMethodDocString = `
Locks the amount as the fee of the transaction, on behalf of the faucet.
`

var SystemLockFeeMethod = NewStandardLibraryFunction(
	SystemLockFeeMethodName,
	[]values.Type{values.KindDecimal},
	systemLockFeeMethodDocString,
	func(invocation *Invocation) (interpreter.CallResult, error) {
		amount := invocation.Call.Arguments[0].(values.Decimal).Decimal

		typ, err := invocation.Track.ResourceType(invocation.Environment.FeeResource)
		if err != nil {
			return interpreter.CallResult{}, err
		}
		err = typ.CheckAmount(amount)
		if err != nil {
			return interpreter.CallResult{}, err
		}

		return interpreter.CallResult{
			LockedFee: amount,
		}, nil
	},
)

var SystemBlueprint = NewBlueprint(
	SystemBlueprintName,
	nil,
	[]*Function{
		SystemFreeXrdMethod,
		SystemLockFeeMethod,
	},
)
