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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

func testResource(index uint32) values.ResourceAddress {
	return values.ResourceAddress(common.NewAddress(
		common.EntityTypeResource,
		common.HashOf([]byte("ast")),
		index,
	))
}

func testComponent(index uint32) values.ComponentAddress {
	return values.ComponentAddress(common.NewAddress(
		common.EntityTypeAccountComponent,
		common.HashOf([]byte("ast")),
		index,
	))
}

func decimal(literal string) values.Decimal {
	return values.NewDecimal(fixedpoint.MustDecimal(literal))
}

func TestRange_Source(t *testing.T) {

	t.Parallel()

	input := []byte("DROP_ALL_PROOFS;")

	r := NewRange(
		Position{Offset: 0, Line: 1, Column: 0},
		Position{Offset: 14, Line: 1, Column: 14},
	)
	assert.Equal(t, "DROP_ALL_PROOFS", string(r.Source(input)))
	assert.Equal(t, "1:0-1:14", r.String())

	assert.Nil(t, NewRange(Position{Offset: 20}, Position{Offset: 21}).Source(input))

	assert.Equal(t,
		Position{Offset: 3, Line: 1, Column: 3},
		Position{Line: 1}.Shifted(3),
	)
	assert.Equal(t, -1, Position{Offset: 1}.Compare(Position{Offset: 2}))
}

func TestOpcodes(t *testing.T) {

	t.Parallel()

	seen := map[string]struct{}{}
	for _, opcode := range Opcodes() {
		name := opcode.String()
		_, ok := seen[name]
		require.False(t, ok, name)
		seen[name] = struct{}{}

		assert.Equal(t, opcode, opcode.Info().Opcode)
	}

	assert.Len(t, seen, int(opcodeCount)-1)
}

func TestOpcodeInfo_CheckArguments(t *testing.T) {

	t.Parallel()

	t.Run("count", func(t *testing.T) {
		t.Parallel()

		err := OpcodeTakeFromWorktopByAmount.Info().CheckArguments([]values.Value{decimal("1")})

		var countErr ArgumentCountError
		require.ErrorAs(t, err, &countErr)
		assert.Equal(t, 2, countErr.Expected)
		assert.Equal(t, 1, countErr.Found)
		assert.Equal(t, errors.KindSyntax, errors.KindOf(err))
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()

		err := OpcodeTakeFromWorktopByAmount.Info().CheckArguments([]values.Value{
			testResource(0),
			decimal("1"),
		})

		var argumentErr ArgumentError
		require.ErrorAs(t, err, &argumentErr)
		assert.Equal(t, 0, argumentErr.Index)
		assert.Equal(t, errors.KindValueTypeMismatch, errors.KindOf(err))
	})

	t.Run("variadic", func(t *testing.T) {
		t.Parallel()

		info := OpcodeCallMethod.Info()

		require.NoError(t, info.CheckArguments([]values.Value{
			testComponent(0),
			values.NewString("lock_fee"),
			decimal("10"),
			values.NewTuple(values.NewU8(1)),
		}))

		err := info.CheckArguments([]values.Value{testComponent(0)})
		var countErr ArgumentCountError
		require.ErrorAs(t, err, &countErr)
		assert.True(t, countErr.Variadic)
		assert.Contains(t, err.Error(), "at least 2")
	})

	t.Run("access rule", func(t *testing.T) {
		t.Parallel()

		info := OpcodeUpdateResourceAuth.Info()

		require.NoError(t, info.CheckArguments([]values.Value{
			testResource(0),
			auth.ActionWithdraw.ToValue(),
			auth.AllowAll.ToValue(),
		}))

		err := info.CheckArguments([]values.Value{
			testResource(0),
			auth.ActionWithdraw.ToValue(),
			values.NewEnum("Protected", values.NewEnum("ProofRule",
				values.NewEnum("AmountOf", decimal("-1"), testResource(1)),
			)),
		})
		require.Error(t, err)
		assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
	})
}

func createResourceArguments(supply values.Value) []values.Value {
	return []values.Value{
		values.NewEnum("Fungible", values.NewU8(18)),
		values.MustArray(values.KindTuple,
			values.NewTuple(values.NewString("name"), values.NewString("Token")),
		),
		auth.RulesValue([]auth.Rule{
			{
				Action:     auth.ActionWithdraw,
				Permission: auth.AllowAll,
				Mutability: auth.DenyAll,
			},
		}),
		supply,
	}
}

func TestDecodeCreateResource(t *testing.T) {

	t.Parallel()

	t.Run("fungible with supply", func(t *testing.T) {
		t.Parallel()

		arguments := createResourceArguments(
			values.NewSome(values.NewEnum("Fungible", decimal("100"))),
		)
		require.NoError(t, OpcodeCreateResource.Info().CheckArguments(arguments))

		decoded, err := DecodeCreateResource(arguments)
		require.NoError(t, err)

		assert.True(t, decoded.Type.IsFungible())
		assert.Equal(t, map[string]string{"name": "Token"}, decoded.Metadata)
		require.Len(t, decoded.Rules, 1)
		assert.Equal(t, auth.DenyAll, decoded.Rules[0].Mutability)
		require.NotNil(t, decoded.Supply)
		assert.Equal(t, "100", decoded.Supply.Amount.String())
	})

	t.Run("without supply", func(t *testing.T) {
		t.Parallel()

		decoded, err := DecodeCreateResource(createResourceArguments(values.None))
		require.NoError(t, err)
		assert.Nil(t, decoded.Supply)
	})

	t.Run("supply of other kind", func(t *testing.T) {
		t.Parallel()

		arguments := createResourceArguments(
			values.NewSome(values.NewEnum(
				"NonFungible",
				values.MustArray(values.KindNonFungibleId, values.NewNonFungibleIdU32(1)),
			)),
		)

		err := OpcodeCreateResource.Info().CheckArguments(arguments)

		var argumentErr ArgumentError
		require.ErrorAs(t, err, &argumentErr)
		assert.Equal(t, 3, argumentErr.Index)
		assert.Equal(t, errors.KindValueTypeMismatch, errors.KindOf(err))
	})

	t.Run("divisibility out of range", func(t *testing.T) {
		t.Parallel()

		arguments := createResourceArguments(values.None)
		arguments[0] = values.NewEnum("Fungible", values.NewU8(19))

		err := OpcodeCreateResource.Info().CheckArguments(arguments)
		require.Error(t, err)
		assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
	})
}

func TestCheck(t *testing.T) {

	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		counter, err := Check([]*Instruction{
			{
				Opcode:      OpcodeTakeFromWorktop,
				Arguments:   []values.Value{testResource(0)},
				Declaration: 1,
			},
			{
				Opcode:      OpcodeCreateProofFromBucket,
				Arguments:   []values.Value{values.Bucket(1)},
				Declaration: 1,
			},
			{
				Opcode:    OpcodeDropProof,
				Arguments: []values.Value{values.Proof(1)},
			},
			{
				Opcode: OpcodeCallMethod,
				Arguments: []values.Value{
					testComponent(0),
					values.NewString("deposit_batch"),
					values.MustArray(values.KindBucket, values.Bucket(1)),
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, HandleCounter{Buckets: 1, Proofs: 1}, counter)
	})

	t.Run("undeclared nested bucket", func(t *testing.T) {
		t.Parallel()

		_, err := Check([]*Instruction{
			{
				Opcode: OpcodeCallMethod,
				Arguments: []values.Value{
					testComponent(0),
					values.NewString("deposit_batch"),
					values.MustArray(values.KindBucket, values.Bucket(1)),
				},
			},
		})

		var instructionErr InvalidInstructionError
		require.ErrorAs(t, err, &instructionErr)
		assert.Equal(t, 0, instructionErr.Index)

		var undeclaredErr UndeclaredHandleError
		require.ErrorAs(t, err, &undeclaredErr)
		assert.Equal(t, DeclarationBucket, undeclaredErr.Declaration)
		assert.Equal(t, errors.KindSyntax, errors.KindOf(err))
	})

	t.Run("declaration out of order", func(t *testing.T) {
		t.Parallel()

		_, err := Check([]*Instruction{
			{
				Opcode:      OpcodePopFromAuthZone,
				Declaration: 2,
			},
		})

		var declarationErr InvalidDeclarationError
		require.ErrorAs(t, err, &declarationErr)
		assert.Equal(t, uint32(1), declarationErr.Expected)
	})

	t.Run("unknown opcode", func(t *testing.T) {
		t.Parallel()

		_, err := Check([]*Instruction{{Opcode: opcodeCount}})

		var opcodeErr UnknownOpcodeError
		require.ErrorAs(t, err, &opcodeErr)
	})
}

func TestManifest_Format(t *testing.T) {

	t.Parallel()

	resource := testResource(0)
	account := testComponent(0)

	manifest := &Manifest{
		Instructions: []*Instruction{
			{
				Opcode:      OpcodeTakeFromWorktop,
				Arguments:   []values.Value{resource},
				Declaration: 1,
			},
			{
				Opcode: OpcodeCallMethod,
				Arguments: []values.Value{
					account,
					values.NewString("deposit"),
					values.Bucket(1),
				},
			},
		},
		Names: Names{
			Buckets: map[uint32]string{1: "xrd"},
		},
		BucketCount: 1,
	}

	assert.Equal(t,
		"TAKE_FROM_WORKTOP "+resource.String()+` Bucket("xrd");`+"\n"+
			"CALL_METHOD "+account.String()+` "deposit" Bucket("xrd");`,
		manifest.String(),
	)

	manifest.Names = Names{}
	assert.Contains(t, manifest.String(), `Bucket("bucket1");`)

	narrow := manifest.Format(common.SimulatorAddressCodec, 20)
	assert.Contains(t, narrow, "CALL_METHOD\n    ")
}
