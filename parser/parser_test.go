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

package parser

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/format"
	. "github.com/ledgerworks/rtm/test_utils/common_utils"
	"github.com/ledgerworks/rtm/values"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustBigInt(s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("invalid integer: %s", s))
	}
	return i
}

func testAddress(entityType common.EntityType, index uint32) common.Address {
	return common.NewAddress(entityType, common.HashOf([]byte("parser")), index)
}

var testResource = values.ResourceAddress(testAddress(common.EntityTypeResource, 0))

var testAccount = values.ComponentAddress(testAddress(common.EntityTypeAccountComponent, 1))

func parseManifest(t *testing.T, code string, placeholders map[string]string) (*ast.Manifest, error) {
	t.Helper()

	return ParseManifest(
		[]byte(code),
		Config{Placeholders: placeholders},
	)
}

func testPlaceholders() map[string]string {
	return map[string]string{
		"xrd":     testResource.String(),
		"account": testAccount.String(),
	}
}

func requireSyntaxError(t *testing.T, err error) *SyntaxError {
	t.Helper()

	RequireError(t, err)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	return syntaxErr
}

func TestParseManifest(t *testing.T) {

	t.Parallel()

	const code = `
      # withdraw and deposit back
      CALL_METHOD {account} "withdraw" {xrd} Decimal("10");
      TAKE_FROM_WORKTOP_BY_AMOUNT Decimal("4") {xrd} Bucket("four");
      CREATE_PROOF_FROM_BUCKET Bucket("four") Proof("badge");
      DROP_PROOF Proof("badge");
      TAKE_FROM_WORKTOP {xrd} Bucket("rest");
      CALL_METHOD {account} "deposit_batch" Array<Bucket>(Bucket("four"), Bucket("rest"));
    `

	manifest, err := parseManifest(t, code, testPlaceholders())
	require.NoError(t, err)

	require.Len(t, manifest.Instructions, 6)

	opcodes := make([]ast.Opcode, len(manifest.Instructions))
	for i, instruction := range manifest.Instructions {
		opcodes[i] = instruction.Opcode
	}
	assert.Equal(t,
		[]ast.Opcode{
			ast.OpcodeCallMethod,
			ast.OpcodeTakeFromWorktopByAmount,
			ast.OpcodeCreateProofFromBucket,
			ast.OpcodeDropProof,
			ast.OpcodeTakeFromWorktop,
			ast.OpcodeCallMethod,
		},
		opcodes,
	)

	AssertEqualWithDiff(t,
		[]values.Value{
			testAccount,
			values.NewString("withdraw"),
			testResource,
			values.NewDecimal(fixedpoint.MustDecimal("10")),
		},
		manifest.Instructions[0].Arguments,
	)

	assert.Equal(t, uint32(1), manifest.Instructions[1].Declaration)
	assert.Equal(t, []values.Value{values.Bucket(1)}, manifest.Instructions[2].Arguments)
	assert.Equal(t, uint32(1), manifest.Instructions[2].Declaration)
	assert.Equal(t, []values.Value{values.Proof(1)}, manifest.Instructions[3].Arguments)
	assert.Equal(t, uint32(2), manifest.Instructions[4].Declaration)

	AssertEqualWithDiff(t,
		values.MustArray(values.KindBucket, values.Bucket(1), values.Bucket(2)),
		manifest.Instructions[5].Arguments[2],
	)

	assert.Equal(t, uint32(2), manifest.BucketCount)
	assert.Equal(t, uint32(1), manifest.ProofCount)
	assert.Equal(t, "four", manifest.Names.BucketName(1))
	assert.Equal(t, "rest", manifest.Names.BucketName(2))
	assert.Equal(t, "badge", manifest.Names.ProofName(1))

	// ranges refer to the source before substitution
	callRange := manifest.Instructions[0].Range
	assert.Equal(t, 3, callRange.StartPos.Line)
	assert.Equal(t, 6, callRange.StartPos.Column)
	assert.Equal(t,
		`CALL_METHOD {account} "withdraw" {xrd} Decimal("10");`,
		string(callRange.Source([]byte(code))),
	)
}

func TestParseManifest_NumericHandles(t *testing.T) {

	t.Parallel()

	manifest, err := parseManifest(t,
		`TAKE_FROM_WORKTOP {xrd} Bucket("a");
         RETURN_TO_WORKTOP Bucket(1u32);`,
		testPlaceholders(),
	)
	require.NoError(t, err)
	assert.Equal(t, []values.Value{values.Bucket(1)}, manifest.Instructions[1].Arguments)

	_, err = parseManifest(t, `RETURN_TO_WORKTOP Bucket(1u32);`, nil)
	RequireErrorKind(t, err, errors.KindSyntax)

	var undeclaredErr ast.UndeclaredHandleError
	require.ErrorAs(t, err, &undeclaredErr)

	_, err = parseManifest(t, `RETURN_TO_WORKTOP Bucket(0u32);`, nil)
	requireSyntaxError(t, err)

	_, err = parseManifest(t, `RETURN_TO_WORKTOP Bucket(1u64);`, nil)
	requireSyntaxError(t, err)
}

func TestParseManifest_RoundTrip(t *testing.T) {

	t.Parallel()

	const code = `
      CALL_METHOD {account} "lock_fee" Decimal("1.5");
      POP_FROM_AUTH_ZONE Proof("admin");
      PUSH_TO_AUTH_ZONE Proof("admin");
      CREATE_PROOF_FROM_AUTH_ZONE_BY_IDS Array<NonFungibleId>(NonFungibleId(1u32), NonFungibleId("x")) {xrd} Proof("ids");
      CLONE_PROOF Proof("ids") Proof("copy");
      DROP_ALL_PROOFS;
      CREATE_RESOURCE
          Enum("Fungible", 18u8)
          Array<Tuple>(Tuple("name", "Token"))
          Array<Tuple>(Tuple(Enum("Mint"), Tuple(Enum("AllowAll"), Enum("DenyAll"))))
          Some(Enum("Fungible", Decimal("100")));
      SET_METADATA {xrd} "symbol" "TKN";
      CALL_METHOD_WITH_ALL_RESOURCES {account} "deposit_batch";
    `

	manifest, err := parseManifest(t, code, testPlaceholders())
	require.NoError(t, err)

	formatted := manifest.String()

	reparsed, err := ParseManifest([]byte(formatted), Config{})
	require.NoError(t, err)

	assert.Equal(t, formatted, reparsed.String())
	assert.Equal(t, manifest.Names, reparsed.Names)
	assert.Equal(t, manifest.BucketCount, reparsed.BucketCount)
	assert.Equal(t, manifest.ProofCount, reparsed.ProofCount)

	for i, instruction := range manifest.Instructions {
		assert.Equal(t, instruction.Opcode, reparsed.Instructions[i].Opcode)
		assert.Equal(t, instruction.Declaration, reparsed.Instructions[i].Declaration)
		assert.True(t, equalArguments(instruction.Arguments, reparsed.Instructions[i].Arguments))
	}
}

func equalArguments(a, b []values.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !values.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestParseManifest_Errors(t *testing.T) {

	t.Parallel()

	type testCase struct {
		name string
		code string
		kind errors.Kind
		pos  ast.Position
	}

	for _, test := range []testCase{
		{
			name: "unknown opcode",
			code: `CLEAR_AUTH_ZONE; DROP_PROOFS;`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 17, Line: 1, Column: 17},
		},
		{
			name: "missing semicolon",
			code: `CLEAR_AUTH_ZONE`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 15, Line: 1, Column: 15},
		},
		{
			name: "too many arguments",
			code: `CLEAR_AUTH_ZONE 1u8;`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 0, Line: 1, Column: 0},
		},
		{
			name: "argument type mismatch",
			code: `ASSERT_WORKTOP_CONTAINS "xrd";`,
			kind: errors.KindValueTypeMismatch,
			pos:  ast.Position{Offset: 24, Line: 1, Column: 24},
		},
		{
			name: "integer out of range",
			code: `CALL_METHOD {account} "f" 256u8;`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 26, Line: 1, Column: 26},
		},
		{
			name: "missing integer suffix",
			code: `CALL_METHOD {account} "f" 5;`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 26, Line: 1, Column: 26},
		},
		{
			name: "malformed decimal",
			code: `CALL_METHOD {account} "f" Decimal("1.2.3");`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 34, Line: 1, Column: 34},
		},
		{
			name: "address of wrong entity type",
			code: `CALL_METHOD ComponentAddress("` + testResource.Address().String() + `") "f";`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 29, Line: 1, Column: 29},
		},
		{
			name: "unterminated string",
			code: "CALL_METHOD {account} \"f;\nDROP_ALL_PROOFS;",
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 22, Line: 1, Column: 22},
		},
		{
			name: "unknown escape",
			code: `CALL_METHOD {account} "\q";`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 22, Line: 1, Column: 22},
		},
		{
			name: "undeclared bucket",
			code: "TAKE_FROM_WORKTOP {xrd} Bucket(\"a\");\nCALL_METHOD {account} \"deposit\" Bucket(\"b\");",
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 76, Line: 2, Column: 39},
		},
		{
			name: "bucket redeclared",
			code: "TAKE_FROM_WORKTOP {xrd} Bucket(\"a\");\nTAKE_FROM_WORKTOP {xrd} Bucket(\"a\");",
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 68, Line: 2, Column: 31},
		},
		{
			name: "missing declaration",
			code: `TAKE_FROM_WORKTOP {xrd};`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 23, Line: 1, Column: 23},
		},
		{
			name: "proof declared as bucket",
			code: `TAKE_FROM_WORKTOP {xrd} Proof("p");`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 30, Line: 1, Column: 30},
		},
		{
			name: "declaration only",
			code: `TAKE_FROM_WORKTOP Bucket("a");`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 0, Line: 1, Column: 0},
		},
		{
			name: "heterogeneous array",
			code: `CALL_METHOD {account} "f" Array<U8>(1u8, 2u16);`,
			kind: errors.KindValueTypeMismatch,
			pos:  ast.Position{Offset: 26, Line: 1, Column: 26},
		},
		{
			name: "unknown array element kind",
			code: `CALL_METHOD {account} "f" Array<Int>();`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 32, Line: 1, Column: 32},
		},
		{
			name: "unresolved placeholder",
			code: "DROP_ALL_PROOFS;\n  CALL_METHOD {wallet} \"f\";",
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 31, Line: 2, Column: 14},
		},
		{
			name: "malformed placeholder",
			code: `CALL_METHOD {account "f";`,
			kind: errors.KindSyntax,
			pos:  ast.Position{Offset: 12, Line: 1, Column: 12},
		},
		{
			name: "unknown expression",
			code: `CALL_METHOD {account} "f" Expression("ENTIRE_LEDGER");`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 37, Line: 1, Column: 37},
		},
		{
			name: "negative amount of access rule",
			code: `UPDATE_RESOURCE_AUTH {xrd} Enum("Withdraw") Enum("Protected", Enum("ProofRule", Enum("AmountOf", Decimal("-1"), {xrd})));`,
			kind: errors.KindMalformedLiteral,
			pos:  ast.Position{Offset: 44, Line: 1, Column: 44},
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			manifest, err := parseManifest(t, test.code, testPlaceholders())
			assert.Nil(t, manifest)

			syntaxErr := requireSyntaxError(t, err)
			assert.Equal(t, test.kind, errors.KindOf(err), err.Error())
			assert.Equal(t, test.pos, syntaxErr.Pos, err.Error())
		})
	}
}

func TestParseManifest_UnknownOpcodeSuggestion(t *testing.T) {

	t.Parallel()

	_, err := parseManifest(t, `CALL_METHD {account} "f";`, testPlaceholders())
	syntaxErr := requireSyntaxError(t, err)

	var unknownErr ast.UnknownOpcodeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "CALL_METHD", unknownErr.Name)
	assert.Equal(t, ast.OpcodeCallMethod, unknownErr.Suggestion)
	assert.Equal(t, "did you mean `CALL_METHOD`?", syntaxErr.SecondaryError())

	_, err = parseManifest(t, `XYZ;`, nil)
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, ast.OpcodeUnknown, unknownErr.Suggestion)
}

func TestParseManifest_Placeholders(t *testing.T) {

	t.Parallel()

	t.Run("inside strings, not in comments", func(t *testing.T) {
		t.Parallel()

		manifest, err := parseManifest(t,
			"# {undefined}\nCALL_METHOD {account} \"{method}\" \"{{literal}\" \"#{method}\";",
			map[string]string{
				"account": testAccount.String(),
				"method":  "withdraw",
			},
		)
		require.NoError(t, err)

		AssertEqualWithDiff(t,
			[]values.Value{
				testAccount,
				values.NewString("withdraw"),
				values.NewString("{literal}"),
				values.NewString("#withdraw"),
			},
			manifest.Instructions[0].Arguments,
		)
	})

	t.Run("error after substitution", func(t *testing.T) {
		t.Parallel()

		_, err := parseManifest(t,
			`CALL_METHOD {account} "f" 300u8;`,
			testPlaceholders(),
		)
		syntaxErr := requireSyntaxError(t, err)
		assert.Equal(t, ast.Position{Offset: 26, Line: 1, Column: 26}, syntaxErr.Pos)
	})

	t.Run("error inside substitution", func(t *testing.T) {
		t.Parallel()

		_, err := parseManifest(t,
			`CALL_METHOD {account} {value};`,
			map[string]string{
				"account": testAccount.String(),
				"value":   "Tuple(1u8",
			},
		)
		syntaxErr := requireSyntaxError(t, err)
		// the missing parenthesis is reported at the token after the substitution
		assert.Equal(t, ast.Position{Offset: 29, Line: 1, Column: 29}, syntaxErr.Pos)
	})
}

func TestSourceMap(t *testing.T) {

	t.Parallel()

	code := []byte("A {{ {x} B")
	substituted, sources, err := substitutePlaceholders(code, map[string]string{"x": "xyz"})
	require.NoError(t, err)
	assert.Equal(t, "A { xyz B", string(substituted))

	// A
	assert.Equal(t, 0, sources.originalOffset(0))
	// {
	assert.Equal(t, 2, sources.originalOffset(2))
	// xyz
	assert.Equal(t, 5, sources.originalOffset(4))
	assert.Equal(t, 5, sources.originalOffset(6))
	// B
	assert.Equal(t, 9, sources.originalOffset(8))
}

func TestParseManifest_Nesting(t *testing.T) {

	t.Parallel()

	nested := func(depth int) string {
		return strings.Repeat("Some(", depth) + "()" + strings.Repeat(")", depth)
	}

	_, err := parseManifest(t,
		fmt.Sprintf(`CALL_METHOD {account} "f" %s;`, nested(maxDepth-1)),
		testPlaceholders(),
	)
	require.NoError(t, err)

	_, err = parseManifest(t,
		fmt.Sprintf(`CALL_METHOD {account} "f" %s;`, nested(maxDepth)),
		testPlaceholders(),
	)
	RequireErrorKind(t, err, errors.KindSyntax)
}

func TestParseValue(t *testing.T) {

	t.Parallel()

	type testCase struct {
		code     string
		expected values.Value
	}

	for _, test := range []testCase{
		{"()", values.NewUnit()},
		{"true", values.NewBool(true)},
		{"-128i8", values.NewI8(-128)},
		{"340282366920938463463374607431768211455u128", values.MustInteger(values.KindU128, mustBigInt("340282366920938463463374607431768211455"))},
		{`"a\"b\u0001"`, values.NewString("a\"b\x01")},
		{`Bytes("CAFE")`, values.NewBytes([]byte{0xca, 0xfe})},
		{`Enum("Some", 1u8)`, values.NewEnum("Some", values.NewU8(1))},
		{`Tuple()`, values.NewTuple()},
		{`Array<String>("a", "b")`, values.MustArray(values.KindString, values.NewString("a"), values.NewString("b"))},
		{`None`, values.None},
		{`Some(None)`, values.NewSome(values.None)},
		{`NonFungibleId(5u64)`, values.NewNonFungibleIdU64(5)},
		{`Expression("ENTIRE_AUTH_ZONE")`, values.ExpressionEntireAuthZone},
		{`Proof(3u32)`, values.Proof(3)},
		{`"{{x}"`, values.NewString("{x}")},
		{`"}{{"`, values.NewString("}{")},
		{testResource.String(), testResource},
		{
			`  # a comment
			 Tuple(
			     1u8,  # one
			     Decimal("-0.5")
			 )`,
			values.NewTuple(values.NewU8(1), values.NewDecimal(fixedpoint.MustDecimal("-0.5"))),
		},
	} {
		test := test

		t.Run(test.code, func(t *testing.T) {
			t.Parallel()

			value, err := ParseValue([]byte(test.code), Config{})
			require.NoError(t, err)
			assert.True(t,
				values.Equal(test.expected, value),
				"expected %s, got %s", test.expected, value,
			)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		for _, code := range []string{
			``,
			`1u8 2u8`,
			`Bucket("a")`,
			`NonFungibleId(1u8)`,
			`NonFungibleId(Uuid("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))`,
			`Tuple(1u8,)`,
			`Enum(A)`,
			`Steal`,
			`"\u12"`,
		} {
			_, err := ParseValue([]byte(code), Config{})
			requireSyntaxError(t, err)
		}
	})

	t.Run("network", func(t *testing.T) {
		t.Parallel()

		codec := common.AddressCodec{Network: common.MainNetwork}
		literal := testResource.Literal(codec)

		value, err := ParseValue([]byte(literal), Config{Network: common.MainNetwork})
		require.NoError(t, err)
		assert.True(t, values.Equal(testResource, value))

		_, err = ParseValue([]byte(literal), Config{})
		RequireErrorKind(t, err, errors.KindMalformedLiteral)
	})
}

func TestParseValue_Literals(t *testing.T) {

	t.Parallel()

	properties := gopter.NewProperties(nil)

	properties.Property("strings round-trip", prop.ForAll(
		func(s string) bool {
			value, err := ParseValue([]byte(format.String(s)), Config{})
			return err == nil && values.Equal(values.NewString(s), value)
		},
		gen.AnyString(),
	))

	fragments := []string{"{", "}", "{x}", "{{", "x", `\"`, "#"}

	properties.Property("strings with braces round-trip", prop.ForAll(
		func(indices []int) bool {
			var builder strings.Builder
			for _, index := range indices {
				builder.WriteString(fragments[index])
			}
			value := values.NewTuple(values.NewString(builder.String()))

			parsed, err := ParseValue([]byte(value.String()), Config{})
			return err == nil && values.Equal(value, parsed)
		},
		gen.SliceOf(gen.IntRange(0, len(fragments)-1)),
	))

	properties.Property("integers round-trip", prop.ForAll(
		func(i int64, u uint32) bool {
			for _, value := range []values.Value{values.NewI64(i), values.NewU32(u)} {
				parsed, err := ParseValue([]byte(value.String()), Config{})
				if err != nil || !values.Equal(value, parsed) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.UInt32(),
	))

	properties.TestingRun(t)
}
