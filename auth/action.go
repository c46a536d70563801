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
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/values"
)

// Action is a resource operation governed by the behavior matrix.
type Action uint8

const (
	ActionWithdraw Action = iota
	ActionDeposit
	ActionMint
	ActionBurn
	ActionUpdateMetadata

	// NOTE: add new actions before this line
	actionCount
)

// Actions returns all actions, in discriminant order.
func Actions() []Action {
	actions := make([]Action, 0, actionCount)
	for action := Action(0); action < actionCount; action++ {
		actions = append(actions, action)
	}
	return actions
}

func (a Action) String() string {
	switch a {
	case ActionWithdraw:
		return "Withdraw"
	case ActionDeposit:
		return "Deposit"
	case ActionMint:
		return "Mint"
	case ActionBurn:
		return "Burn"
	case ActionUpdateMetadata:
		return "UpdateMetadata"
	}

	panic(errors.NewUnreachableError())
}

// ActionType is the schema of actions in manifests, e.g. Enum("Withdraw").
var ActionType = func() *values.EnumType {
	variants := make([]values.EnumVariant, 0, actionCount)
	for _, action := range Actions() {
		variants = append(variants, values.EnumVariant{Name: action.String()})
	}
	return &values.EnumType{
		Name:     "Action",
		Variants: variants,
	}
}()

func (a Action) ToValue() values.Value {
	return values.NewEnum(a.String())
}

// DecodeAction decodes an action from its enum value.
func DecodeAction(value values.Value) (Action, error) {
	err := values.Conforms(value, ActionType)
	if err != nil {
		return 0, err
	}

	name := value.(values.Enum).Name
	for _, action := range Actions() {
		if action.String() == name {
			return action, nil
		}
	}

	panic(errors.NewUnreachableError())
}
