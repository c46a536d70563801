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

package ast

import (
	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

type Opcode uint8

const (
	OpcodeUnknown Opcode = iota
	OpcodeCallMethod
	OpcodeCallFunction
	OpcodeCallMethodWithAllResources
	OpcodeTakeFromWorktop
	OpcodeTakeFromWorktopByAmount
	OpcodeTakeFromWorktopByIds
	OpcodeReturnToWorktop
	OpcodeAssertWorktopContains
	OpcodeAssertWorktopContainsByAmount
	OpcodeAssertWorktopContainsByIds
	OpcodePopFromAuthZone
	OpcodePushToAuthZone
	OpcodeClearAuthZone
	OpcodeCreateProofFromAuthZone
	OpcodeCreateProofFromAuthZoneByAmount
	OpcodeCreateProofFromAuthZoneByIds
	OpcodeCreateProofFromBucket
	OpcodeCloneProof
	OpcodeDropProof
	OpcodeDropAllProofs
	OpcodeCreateResource
	OpcodeMintFungible
	OpcodeMintNonFungible
	OpcodeBurnBucket
	OpcodeUpdateResourceAuth
	OpcodeUpdateResourceMutability
	OpcodeSetMetadata

	// NOTE: add new opcodes before this line
	opcodeCount
)

// Opcodes returns all opcodes, in discriminant order.
func Opcodes() []Opcode {
	opcodes := make([]Opcode, 0, opcodeCount-1)
	for opcode := OpcodeUnknown + 1; opcode < opcodeCount; opcode++ {
		opcodes = append(opcodes, opcode)
	}
	return opcodes
}

func (o Opcode) String() string {
	switch o {
	case OpcodeUnknown:
		return "UNKNOWN"
	case OpcodeCallMethod:
		return "CALL_METHOD"
	case OpcodeCallFunction:
		return "CALL_FUNCTION"
	case OpcodeCallMethodWithAllResources:
		return "CALL_METHOD_WITH_ALL_RESOURCES"
	case OpcodeTakeFromWorktop:
		return "TAKE_FROM_WORKTOP"
	case OpcodeTakeFromWorktopByAmount:
		return "TAKE_FROM_WORKTOP_BY_AMOUNT"
	case OpcodeTakeFromWorktopByIds:
		return "TAKE_FROM_WORKTOP_BY_IDS"
	case OpcodeReturnToWorktop:
		return "RETURN_TO_WORKTOP"
	case OpcodeAssertWorktopContains:
		return "ASSERT_WORKTOP_CONTAINS"
	case OpcodeAssertWorktopContainsByAmount:
		return "ASSERT_WORKTOP_CONTAINS_BY_AMOUNT"
	case OpcodeAssertWorktopContainsByIds:
		return "ASSERT_WORKTOP_CONTAINS_BY_IDS"
	case OpcodePopFromAuthZone:
		return "POP_FROM_AUTH_ZONE"
	case OpcodePushToAuthZone:
		return "PUSH_TO_AUTH_ZONE"
	case OpcodeClearAuthZone:
		return "CLEAR_AUTH_ZONE"
	case OpcodeCreateProofFromAuthZone:
		return "CREATE_PROOF_FROM_AUTH_ZONE"
	case OpcodeCreateProofFromAuthZoneByAmount:
		return "CREATE_PROOF_FROM_AUTH_ZONE_BY_AMOUNT"
	case OpcodeCreateProofFromAuthZoneByIds:
		return "CREATE_PROOF_FROM_AUTH_ZONE_BY_IDS"
	case OpcodeCreateProofFromBucket:
		return "CREATE_PROOF_FROM_BUCKET"
	case OpcodeCloneProof:
		return "CLONE_PROOF"
	case OpcodeDropProof:
		return "DROP_PROOF"
	case OpcodeDropAllProofs:
		return "DROP_ALL_PROOFS"
	case OpcodeCreateResource:
		return "CREATE_RESOURCE"
	case OpcodeMintFungible:
		return "MINT_FUNGIBLE"
	case OpcodeMintNonFungible:
		return "MINT_NON_FUNGIBLE"
	case OpcodeBurnBucket:
		return "BURN_BUCKET"
	case OpcodeUpdateResourceAuth:
		return "UPDATE_RESOURCE_AUTH"
	case OpcodeUpdateResourceMutability:
		return "UPDATE_RESOURCE_MUTABILITY"
	case OpcodeSetMetadata:
		return "SET_METADATA"
	}

	panic(errors.NewUnreachableError())
}

// Declaration is the kind of handle an instruction declares.
type Declaration uint8

const (
	DeclarationNone Declaration = iota
	DeclarationBucket
	DeclarationProof
)

func (d Declaration) String() string {
	switch d {
	case DeclarationNone:
		return "none"
	case DeclarationBucket:
		return "Bucket"
	case DeclarationProof:
		return "Proof"
	}

	panic(errors.NewUnreachableError())
}

// OpcodeInfo is the signature of an opcode.
type OpcodeInfo struct {
	Opcode     Opcode
	Parameters []values.Type
	// Variadic opcodes accept any number of further arguments of any type
	Variadic bool
	// Declaration is the kind of handle declared by the instruction's last operand
	Declaration Declaration
	// Check validates the arguments beyond their shape, if set
	Check func(arguments []values.Value) error
}

var nonFungibleIdsType = values.ArrayOf(values.KindNonFungibleId)

var opcodeInfos = [opcodeCount]OpcodeInfo{
	OpcodeCallMethod: {
		Parameters: []values.Type{values.KindComponentAddress, values.KindString},
		Variadic:   true,
	},
	OpcodeCallFunction: {
		Parameters: []values.Type{values.KindPackageAddress, values.KindString, values.KindString},
		Variadic:   true,
	},
	OpcodeCallMethodWithAllResources: {
		Parameters: []values.Type{values.KindComponentAddress, values.KindString},
	},
	OpcodeTakeFromWorktop: {
		Parameters:  []values.Type{values.KindResourceAddress},
		Declaration: DeclarationBucket,
	},
	OpcodeTakeFromWorktopByAmount: {
		Parameters:  []values.Type{values.KindDecimal, values.KindResourceAddress},
		Declaration: DeclarationBucket,
	},
	OpcodeTakeFromWorktopByIds: {
		Parameters:  []values.Type{nonFungibleIdsType, values.KindResourceAddress},
		Declaration: DeclarationBucket,
	},
	OpcodeReturnToWorktop: {
		Parameters: []values.Type{values.KindBucket},
	},
	OpcodeAssertWorktopContains: {
		Parameters: []values.Type{values.KindResourceAddress},
	},
	OpcodeAssertWorktopContainsByAmount: {
		Parameters: []values.Type{values.KindDecimal, values.KindResourceAddress},
	},
	OpcodeAssertWorktopContainsByIds: {
		Parameters: []values.Type{nonFungibleIdsType, values.KindResourceAddress},
	},
	OpcodePopFromAuthZone: {
		Declaration: DeclarationProof,
	},
	OpcodePushToAuthZone: {
		Parameters: []values.Type{values.KindProof},
	},
	OpcodeClearAuthZone: {},
	OpcodeCreateProofFromAuthZone: {
		Parameters:  []values.Type{values.KindResourceAddress},
		Declaration: DeclarationProof,
	},
	OpcodeCreateProofFromAuthZoneByAmount: {
		Parameters:  []values.Type{values.KindDecimal, values.KindResourceAddress},
		Declaration: DeclarationProof,
	},
	OpcodeCreateProofFromAuthZoneByIds: {
		Parameters:  []values.Type{nonFungibleIdsType, values.KindResourceAddress},
		Declaration: DeclarationProof,
	},
	OpcodeCreateProofFromBucket: {
		Parameters:  []values.Type{values.KindBucket},
		Declaration: DeclarationProof,
	},
	OpcodeCloneProof: {
		Parameters:  []values.Type{values.KindProof},
		Declaration: DeclarationProof,
	},
	OpcodeDropProof: {
		Parameters: []values.Type{values.KindProof},
	},
	OpcodeDropAllProofs: {},
	OpcodeCreateResource: {
		Parameters: []values.Type{
			resource.TypeType,
			resource.MetadataType,
			auth.RulesType,
			values.OptionOf(resource.SupplyType),
		},
		Check: checkCreateResource,
	},
	OpcodeMintFungible: {
		Parameters: []values.Type{values.KindResourceAddress, values.KindDecimal},
	},
	OpcodeMintNonFungible: {
		Parameters: []values.Type{values.KindResourceAddress, nonFungibleIdsType},
	},
	OpcodeBurnBucket: {
		Parameters: []values.Type{values.KindBucket},
	},
	OpcodeUpdateResourceAuth: {
		Parameters: []values.Type{values.KindResourceAddress, auth.ActionType, auth.AccessRuleType},
		Check:      checkAccessRule,
	},
	OpcodeUpdateResourceMutability: {
		Parameters: []values.Type{values.KindResourceAddress, auth.ActionType, auth.AccessRuleType},
		Check:      checkAccessRule,
	},
	OpcodeSetMetadata: {
		Parameters: []values.Type{values.KindResourceAddress, values.KindString, values.KindString},
	},
}

func init() {
	for opcode := range opcodeInfos {
		opcodeInfos[opcode].Opcode = Opcode(opcode)
	}
}

func (o Opcode) Info() OpcodeInfo {
	if o == OpcodeUnknown || o >= opcodeCount {
		panic(errors.NewUnreachableError())
	}
	return opcodeInfos[o]
}

// CheckArguments validates the arguments of an instruction against the opcode's signature.
// The declared handle is not part of the arguments.
func (info OpcodeInfo) CheckArguments(arguments []values.Value) error {
	parameterCount := len(info.Parameters)

	if len(arguments) < parameterCount ||
		(!info.Variadic && len(arguments) > parameterCount) {

		return ArgumentCountError{
			Opcode:   info.Opcode,
			Expected: parameterCount,
			Variadic: info.Variadic,
			Found:    len(arguments),
		}
	}

	for i, parameter := range info.Parameters {
		err := values.Conforms(arguments[i], parameter)
		if err != nil {
			return ArgumentError{
				Index: i,
				Err:   err,
			}
		}
	}

	for i := parameterCount; i < len(arguments); i++ {
		err := values.Conforms(arguments[i], values.AnyType{})
		if err != nil {
			return ArgumentError{
				Index: i,
				Err:   err,
			}
		}
	}

	if info.Check != nil {
		return info.Check(arguments)
	}
	return nil
}

// CreateResourceArguments are the decoded arguments of CREATE_RESOURCE.
type CreateResourceArguments struct {
	Type     resource.Type
	Metadata map[string]string
	Rules    []auth.Rule
	Supply   *resource.Supply
}

// DecodeCreateResource decodes the arguments of CREATE_RESOURCE,
// which are known to have the right shape.
func DecodeCreateResource(arguments []values.Value) (CreateResourceArguments, error) {
	typ, err := resource.DecodeType(arguments[0])
	if err != nil {
		return CreateResourceArguments{}, ArgumentError{Index: 0, Err: err}
	}

	metadata, err := resource.DecodeMetadata(arguments[1])
	if err != nil {
		return CreateResourceArguments{}, ArgumentError{Index: 1, Err: err}
	}

	rules, err := auth.DecodeRules(arguments[2])
	if err != nil {
		return CreateResourceArguments{}, ArgumentError{Index: 2, Err: err}
	}

	_, err = auth.NewMatrix(rules)
	if err != nil {
		return CreateResourceArguments{}, ArgumentError{Index: 2, Err: err}
	}

	result := CreateResourceArguments{
		Type:     typ,
		Metadata: metadata,
		Rules:    rules,
	}

	option := arguments[3].(values.Option)
	if option.IsSome() {
		supply, err := resource.DecodeSupply(option.Inner)
		if err != nil {
			return CreateResourceArguments{}, ArgumentError{Index: 3, Err: err}
		}
		if supply.Kind != typ.Kind {
			return CreateResourceArguments{}, ArgumentError{
				Index: 3,
				Err: values.ValueTypeMismatchError{
					Path:     ".some",
					Expected: typ.Kind.String() + " supply",
					Found:    supply.Kind.String() + " supply",
				},
			}
		}
		result.Supply = &supply
	}

	return result, nil
}

func checkCreateResource(arguments []values.Value) error {
	_, err := DecodeCreateResource(arguments)
	return err
}

func checkAccessRule(arguments []values.Value) error {
	_, err := auth.DecodeAccessRule(arguments[2])
	if err != nil {
		return ArgumentError{Index: 2, Err: err}
	}
	return nil
}
