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

package manifest

import (
	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/stdlib"
	"github.com/ledgerworks/rtm/values"
)

// BucketFunc continues building with a newly declared bucket.
type BucketFunc func(builder *Builder, bucket values.Bucket)

// ProofFunc continues building with a newly declared proof.
type ProofFunc func(builder *Builder, proof values.Proof)

// Builder builds manifests instruction by instruction.
//
// Buckets and proofs are declared by the builder and passed to continuations,
// they are named bucket1, bucket2, ... and proof1, proof2, ... in declaration order.
// The manifest is checked when it is built.
type Builder struct {
	instructions []*ast.Instruction
	counter      ast.HandleCounter
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(opcode ast.Opcode, arguments ...values.Value) uint32 {
	declaration := b.counter.Declare(opcode.Info().Declaration)
	b.instructions = append(b.instructions, &ast.Instruction{
		Opcode:      opcode,
		Arguments:   arguments,
		Declaration: declaration,
	})
	return declaration
}

func (b *Builder) addBucket(then BucketFunc, opcode ast.Opcode, arguments ...values.Value) *Builder {
	bucket := b.add(opcode, arguments...)
	if then != nil {
		then(b, values.Bucket(bucket))
	}
	return b
}

func (b *Builder) addProof(then ProofFunc, opcode ast.Opcode, arguments ...values.Value) *Builder {
	proof := b.add(opcode, arguments...)
	if then != nil {
		then(b, values.Proof(proof))
	}
	return b
}

func idsValue(ids []values.NonFungibleId) values.Value {
	elements := make([]values.Value, len(ids))
	for i, id := range ids {
		elements[i] = id
	}
	return values.MustArray(values.KindNonFungibleId, elements...)
}

// Calls

func (b *Builder) CallMethod(
	component common.ComponentAddress,
	method string,
	arguments ...values.Value,
) *Builder {
	b.add(
		ast.OpcodeCallMethod,
		append(
			[]values.Value{
				values.ComponentAddress(component),
				values.NewString(method),
			},
			arguments...,
		)...,
	)
	return b
}

func (b *Builder) CallFunction(
	pkg common.PackageAddress,
	blueprint string,
	function string,
	arguments ...values.Value,
) *Builder {
	b.add(
		ast.OpcodeCallFunction,
		append(
			[]values.Value{
				values.PackageAddress(pkg),
				values.NewString(blueprint),
				values.NewString(function),
			},
			arguments...,
		)...,
	)
	return b
}

func (b *Builder) CallMethodWithAllResources(component common.ComponentAddress, method string) *Builder {
	b.add(
		ast.OpcodeCallMethodWithAllResources,
		values.ComponentAddress(component),
		values.NewString(method),
	)
	return b
}

// Worktop

func (b *Builder) TakeFromWorktop(address common.ResourceAddress, then BucketFunc) *Builder {
	return b.addBucket(
		then,
		ast.OpcodeTakeFromWorktop,
		values.ResourceAddress(address),
	)
}

func (b *Builder) TakeFromWorktopByAmount(
	amount fixedpoint.Decimal,
	address common.ResourceAddress,
	then BucketFunc,
) *Builder {
	return b.addBucket(
		then,
		ast.OpcodeTakeFromWorktopByAmount,
		values.NewDecimal(amount),
		values.ResourceAddress(address),
	)
}

func (b *Builder) TakeFromWorktopByIds(
	ids []values.NonFungibleId,
	address common.ResourceAddress,
	then BucketFunc,
) *Builder {
	return b.addBucket(
		then,
		ast.OpcodeTakeFromWorktopByIds,
		idsValue(ids),
		values.ResourceAddress(address),
	)
}

func (b *Builder) ReturnToWorktop(bucket values.Bucket) *Builder {
	b.add(ast.OpcodeReturnToWorktop, bucket)
	return b
}

func (b *Builder) AssertWorktopContains(address common.ResourceAddress) *Builder {
	b.add(ast.OpcodeAssertWorktopContains, values.ResourceAddress(address))
	return b
}

func (b *Builder) AssertWorktopContainsByAmount(amount fixedpoint.Decimal, address common.ResourceAddress) *Builder {
	b.add(
		ast.OpcodeAssertWorktopContainsByAmount,
		values.NewDecimal(amount),
		values.ResourceAddress(address),
	)
	return b
}

func (b *Builder) AssertWorktopContainsByIds(ids []values.NonFungibleId, address common.ResourceAddress) *Builder {
	b.add(
		ast.OpcodeAssertWorktopContainsByIds,
		idsValue(ids),
		values.ResourceAddress(address),
	)
	return b
}

// Auth zone

func (b *Builder) PopFromAuthZone(then ProofFunc) *Builder {
	return b.addProof(then, ast.OpcodePopFromAuthZone)
}

func (b *Builder) PushToAuthZone(proof values.Proof) *Builder {
	b.add(ast.OpcodePushToAuthZone, proof)
	return b
}

func (b *Builder) ClearAuthZone() *Builder {
	b.add(ast.OpcodeClearAuthZone)
	return b
}

func (b *Builder) CreateProofFromAuthZone(address common.ResourceAddress, then ProofFunc) *Builder {
	return b.addProof(
		then,
		ast.OpcodeCreateProofFromAuthZone,
		values.ResourceAddress(address),
	)
}

func (b *Builder) CreateProofFromAuthZoneByAmount(
	amount fixedpoint.Decimal,
	address common.ResourceAddress,
	then ProofFunc,
) *Builder {
	return b.addProof(
		then,
		ast.OpcodeCreateProofFromAuthZoneByAmount,
		values.NewDecimal(amount),
		values.ResourceAddress(address),
	)
}

func (b *Builder) CreateProofFromAuthZoneByIds(
	ids []values.NonFungibleId,
	address common.ResourceAddress,
	then ProofFunc,
) *Builder {
	return b.addProof(
		then,
		ast.OpcodeCreateProofFromAuthZoneByIds,
		idsValue(ids),
		values.ResourceAddress(address),
	)
}

// Proofs

func (b *Builder) CreateProofFromBucket(bucket values.Bucket, then ProofFunc) *Builder {
	return b.addProof(then, ast.OpcodeCreateProofFromBucket, bucket)
}

func (b *Builder) CloneProof(proof values.Proof, then ProofFunc) *Builder {
	return b.addProof(then, ast.OpcodeCloneProof, proof)
}

func (b *Builder) DropProof(proof values.Proof) *Builder {
	b.add(ast.OpcodeDropProof, proof)
	return b
}

func (b *Builder) DropAllProofs() *Builder {
	b.add(ast.OpcodeDropAllProofs)
	return b
}

// Resources

// CreateResource creates a resource with the given rules, and optionally an initial supply.
func (b *Builder) CreateResource(
	typ resource.Type,
	metadata map[string]string,
	rules []auth.Rule,
	supply *resource.Supply,
) *Builder {
	supplyValue := values.None
	if supply != nil {
		supplyValue = values.NewSome(supply.ToValue())
	}

	b.add(
		ast.OpcodeCreateResource,
		typ.ToValue(),
		resource.MetadataValue(metadata),
		auth.RulesValue(rules),
		supplyValue,
	)
	return b
}

func (b *Builder) MintFungible(address common.ResourceAddress, amount fixedpoint.Decimal) *Builder {
	b.add(
		ast.OpcodeMintFungible,
		values.ResourceAddress(address),
		values.NewDecimal(amount),
	)
	return b
}

func (b *Builder) MintNonFungible(address common.ResourceAddress, ids []values.NonFungibleId) *Builder {
	b.add(
		ast.OpcodeMintNonFungible,
		values.ResourceAddress(address),
		idsValue(ids),
	)
	return b
}

func (b *Builder) BurnBucket(bucket values.Bucket) *Builder {
	b.add(ast.OpcodeBurnBucket, bucket)
	return b
}

func (b *Builder) UpdateResourceAuth(
	address common.ResourceAddress,
	action auth.Action,
	permission auth.AccessRule,
) *Builder {
	b.add(
		ast.OpcodeUpdateResourceAuth,
		values.ResourceAddress(address),
		action.ToValue(),
		permission.ToValue(),
	)
	return b
}

func (b *Builder) UpdateResourceMutability(
	address common.ResourceAddress,
	action auth.Action,
	mutability auth.AccessRule,
) *Builder {
	b.add(
		ast.OpcodeUpdateResourceMutability,
		values.ResourceAddress(address),
		action.ToValue(),
		mutability.ToValue(),
	)
	return b
}

func (b *Builder) SetMetadata(address common.ResourceAddress, key string, value string) *Builder {
	b.add(
		ast.OpcodeSetMetadata,
		values.ResourceAddress(address),
		values.NewString(key),
		values.NewString(value),
	)
	return b
}

// Accounts

func (b *Builder) LockFee(account common.ComponentAddress, amount fixedpoint.Decimal) *Builder {
	return b.CallMethod(account, stdlib.AccountLockFeeMethodName, values.NewDecimal(amount))
}

func (b *Builder) WithdrawFromAccount(account common.ComponentAddress, address common.ResourceAddress) *Builder {
	return b.CallMethod(account, stdlib.AccountWithdrawMethodName, values.ResourceAddress(address))
}

func (b *Builder) WithdrawFromAccountByAmount(
	account common.ComponentAddress,
	amount fixedpoint.Decimal,
	address common.ResourceAddress,
) *Builder {
	return b.CallMethod(
		account,
		stdlib.AccountWithdrawByAmountMethodName,
		values.NewDecimal(amount),
		values.ResourceAddress(address),
	)
}

func (b *Builder) CreateProofFromAccount(account common.ComponentAddress, address common.ResourceAddress) *Builder {
	return b.CallMethod(account, stdlib.AccountCreateProofMethodName, values.ResourceAddress(address))
}

// DepositBatch deposits all resources of the worktop and all remaining buckets into the account.
func (b *Builder) DepositBatch(account common.ComponentAddress) *Builder {
	return b.CallMethodWithAllResources(account, stdlib.AccountDepositBatchMethodName)
}

// Build checks the instructions and returns the manifest.
func (b *Builder) Build() (*ast.Manifest, error) {
	counter, err := ast.Check(b.instructions)
	if err != nil {
		return nil, err
	}

	return &ast.Manifest{
		Instructions: b.instructions,
		BucketCount:  counter.Buckets,
		ProofCount:   counter.Proofs,
	}, nil
}
