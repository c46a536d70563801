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

package canonical

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

func testAddress(entityType common.EntityType, index uint32) common.Address {
	return common.NewAddress(entityType, common.HashOf([]byte("canonical")), index)
}

func testValues(t *testing.T) []values.Value {
	stringId, err := values.NewNonFungibleIdString("ticket")
	require.NoError(t, err)

	bytesId, err := values.NewNonFungibleIdBytes([]byte{1, 2, 3})
	require.NoError(t, err)

	uuidId, err := values.NewNonFungibleIdUUID(uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
	require.NoError(t, err)

	i128Min, _ := values.IntegerRange(values.KindI128)
	_, u128Max := values.IntegerRange(values.KindU128)

	return []values.Value{
		values.NewUnit(),
		values.NewBool(true),
		values.NewBool(false),
		values.NewI8(-128),
		values.NewI16(300),
		values.NewI32(-70_000),
		values.NewI64(1 << 40),
		values.MustInteger(values.KindI128, i128Min),
		values.NewU8(255),
		values.NewU16(65535),
		values.NewU32(1),
		values.NewU64(1 << 63),
		values.MustInteger(values.KindU128, u128Max),
		values.NewString(""),
		values.NewString("ünïcode"),
		values.NewEnum("DenyAll"),
		values.NewEnum("Fungible", values.NewU8(18)),
		values.NewTuple(),
		values.NewTuple(values.NewString("a"), values.NewU8(1)),
		values.MustArray(values.KindU8),
		values.MustArray(values.KindNonFungibleId, values.NewNonFungibleIdU32(1), values.NewNonFungibleIdU32(2)),
		values.NewBytes([]byte{}),
		values.NewBytes([]byte{0xca, 0xfe}),
		values.NewDecimal(fixedpoint.MustDecimal("-1.000000000000000001")),
		values.NewDecimal(fixedpoint.Zero),
		values.ComponentAddress(testAddress(common.EntityTypeAccountComponent, 0)),
		values.ResourceAddress(testAddress(common.EntityTypeResource, 1)),
		values.PackageAddress(testAddress(common.EntityTypePackage, 2)),
		values.NewNonFungibleIdU64(7),
		stringId,
		bytesId,
		uuidId,
		values.ExpressionEntireWorktop,
		values.Bucket(3),
		values.Proof(4),
		values.None,
		values.NewSome(values.NewSome(values.NewUnit())),
	}
}

func TestEncodeDecode(t *testing.T) {

	t.Parallel()

	for _, value := range testValues(t) {
		value := value

		t.Run(value.String(), func(t *testing.T) {
			t.Parallel()

			encoded, err := Encode(value)
			require.NoError(t, err)

			decoded, err := Decode(encoded)
			require.NoError(t, err)

			assert.True(t, values.Equal(value, decoded), "decoded %s", decoded)
			assert.Equal(t, encoded, MustEncode(decoded))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {

	t.Parallel()

	properties := gopter.NewProperties(nil)

	properties.Property("equal values have equal encodings", prop.ForAll(
		func(a int64, s string, b uint32) bool {
			first := values.NewTuple(values.NewI64(a), values.NewString(s), values.Bucket(b))
			second := values.NewTuple(values.NewI64(a), values.NewString(s), values.Bucket(b))
			return string(MustEncode(first)) == string(MustEncode(second))
		},
		gen.Int64(),
		gen.AnyString(),
		gen.UInt32(),
	))

	properties.Property("decoding reverses encoding", prop.ForAll(
		func(raw int64, id uint64) bool {
			value := values.NewEnum(
				"AmountOf",
				values.NewDecimal(mustDecimalFromRaw(raw)),
				values.NewNonFungibleIdU64(id),
			)
			decoded, err := Decode(MustEncode(value))
			return err == nil && values.Equal(value, decoded)
		},
		gen.Int64(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func mustDecimalFromRaw(raw int64) fixedpoint.Decimal {
	d, err := fixedpoint.NewDecimalFromRaw(big.NewInt(raw))
	if err != nil {
		panic(err)
	}
	return d
}

func TestDecode_Invalid(t *testing.T) {

	t.Parallel()

	t.Run("trailing bytes", func(t *testing.T) {
		t.Parallel()

		encoded := MustEncode(values.NewU8(1))
		_, err := Decode(append(encoded, 0x00))
		require.Error(t, err)
		assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
	})

	t.Run("unknown tag", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte{0xd8, 0x20, 0xf6})
		var decodingErr DecodingError
		require.ErrorAs(t, err, &decodingErr)
	})

	t.Run("integer out of range", func(t *testing.T) {
		t.Parallel()

		encoded := MustEncode(values.NewU16(256))
		// re-tag the U16 as U8
		encoded[1] = byte(valueTag(values.KindU8))

		_, err := Decode(encoded)
		require.Error(t, err)
		assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
	})

	t.Run("heterogeneous array", func(t *testing.T) {
		t.Parallel()

		encoded := MustEncode(values.Array{
			ElementKind: values.KindU8,
			Elements:    []values.Value{values.NewU8(1), values.NewString("x")},
		})

		_, err := Decode(encoded)
		require.Error(t, err)
		assert.Equal(t, errors.KindValueTypeMismatch, errors.KindOf(err))
	})

	t.Run("resource address of component", func(t *testing.T) {
		t.Parallel()

		encoded := MustEncode(values.ComponentAddress(testAddress(common.EntityTypeNormalComponent, 0)))
		encoded[1] = byte(CBORTagResourceAddress)

		_, err := Decode(encoded)
		require.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()

		encoded := MustEncode(values.NewString("truncated"))
		_, err := Decode(encoded[:len(encoded)-2])
		require.Error(t, err)
	})
}

func testManifest() *ast.Manifest {
	resource := values.ResourceAddress(testAddress(common.EntityTypeResource, 0))
	account := values.ComponentAddress(testAddress(common.EntityTypeAccountComponent, 0))

	return &ast.Manifest{
		Instructions: []*ast.Instruction{
			{
				Opcode: ast.OpcodeCallMethod,
				Arguments: []values.Value{
					account,
					values.NewString("withdraw_by_amount"),
					values.NewDecimal(fixedpoint.NewDecimalFromInt(5)),
					resource,
				},
			},
			{
				Opcode:      ast.OpcodeTakeFromWorktop,
				Arguments:   []values.Value{resource},
				Declaration: 1,
			},
			{
				Opcode: ast.OpcodeCallMethod,
				Arguments: []values.Value{
					account,
					values.NewString("deposit"),
					values.Bucket(1),
				},
			},
		},
		Names: ast.Names{
			Buckets: map[uint32]string{1: "xrd"},
		},
		BucketCount: 1,
	}
}

func TestEncodeManifest(t *testing.T) {

	t.Parallel()

	manifest := testManifest()

	encoded, err := EncodeManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xd8, byte(CBORTagManifest), 0x82, ManifestVersion}, encoded[:4])

	decoded, err := DecodeManifest(encoded)
	require.NoError(t, err)

	require.Len(t, decoded.Instructions, 3)
	assert.Equal(t, uint32(1), decoded.BucketCount)
	for i, instruction := range decoded.Instructions {
		expected := manifest.Instructions[i]
		assert.Equal(t, expected.Opcode, instruction.Opcode)
		assert.Equal(t, expected.Declaration, instruction.Declaration)
		require.Len(t, instruction.Arguments, len(expected.Arguments))
		for j, argument := range instruction.Arguments {
			assert.True(t, values.Equal(expected.Arguments[j], argument))
		}
	}

	// names are not encoded
	assert.Equal(t, "bucket1", decoded.Names.BucketName(1))
}

func TestHashManifest(t *testing.T) {

	t.Parallel()

	manifest := testManifest()

	hash, err := HashManifest(manifest)
	require.NoError(t, err)

	renamed := testManifest()
	renamed.Names = ast.Names{}

	renamedHash, err := HashManifest(renamed)
	require.NoError(t, err)
	assert.Equal(t, hash, renamedHash)

	changed := testManifest()
	changed.Instructions[0].Arguments[2] = values.NewDecimal(fixedpoint.NewDecimalFromInt(6))

	changedHash, err := HashManifest(changed)
	require.NoError(t, err)
	assert.NotEqual(t, hash, changedHash)
}

func TestDecodeManifest_Invalid(t *testing.T) {

	t.Parallel()

	manifest := &ast.Manifest{
		Instructions: []*ast.Instruction{
			{
				Opcode:    ast.OpcodeReturnToWorktop,
				Arguments: []values.Value{values.Bucket(1)},
			},
		},
	}

	encoded, err := EncodeManifest(manifest)
	require.NoError(t, err)

	_, err = DecodeManifest(encoded)
	require.Error(t, err)

	var undeclaredErr ast.UndeclaredHandleError
	require.ErrorAs(t, err, &undeclaredErr)
	assert.Equal(t, errors.KindSyntax, errors.KindOf(err))

	_, err = DecodeManifest(MustEncode(values.NewUnit()))
	require.Error(t, err)
	assert.Equal(t, errors.KindMalformedLiteral, errors.KindOf(err))
}
