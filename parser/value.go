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
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/parser/lexer"
	"github.com/ledgerworks/rtm/values"
)

func (p *parser) parseValue() values.Value {
	if p.depth >= maxDepth {
		panic(p.syntaxErrorf(p.current.StartPos, "value is nested deeper than %d levels", maxDepth))
	}
	p.depth++
	defer func() {
		p.depth--
	}()

	token := p.current

	switch token.Type {
	case lexer.TokenNumber:
		p.next()
		return p.parseIntegerLiteral(token)

	case lexer.TokenString:
		p.next()
		return values.NewString(p.parseStringLiteral(token))

	case lexer.TokenParenOpen:
		// unit
		p.next()
		p.mustBe(lexer.TokenParenClose)
		return values.NewUnit()

	case lexer.TokenIdentifier:
		return p.parseConstructor()
	}

	panic(p.unexpected("value"))
}

// parseConstructor parses a value which starts with a keyword,
// e.g. true, None or Tuple(...).
func (p *parser) parseConstructor() values.Value {
	token := p.current
	keyword := p.source(token)

	if !IsValueKeyword(keyword) {
		panic(p.unexpected("value"))
	}
	p.next()

	switch keyword {
	case KeywordTrue:
		return values.NewBool(true)

	case KeywordFalse:
		return values.NewBool(false)

	case KeywordNone:
		return values.None

	case KeywordSome:
		p.mustBe(lexer.TokenParenOpen)
		inner := p.parseValue()
		p.mustBe(lexer.TokenParenClose)
		return values.NewSome(inner)

	case KeywordEnum:
		p.mustBe(lexer.TokenParenOpen)
		nameToken := p.current
		if !nameToken.Is(lexer.TokenString) {
			panic(p.unexpected("enum variant name"))
		}
		p.next()
		name := p.parseStringLiteral(nameToken)
		var fields []values.Value
		for p.current.Is(lexer.TokenComma) {
			p.next()
			fields = append(fields, p.parseValue())
		}
		p.mustBe(lexer.TokenParenClose)
		return values.NewEnum(name, fields...)

	case KeywordTuple:
		return values.NewTuple(p.parseValueList()...)

	case KeywordArray:
		p.mustBe(lexer.TokenLess)
		kindToken := p.current
		if !kindToken.Is(lexer.TokenIdentifier) {
			panic(p.unexpected("element kind"))
		}
		elementKind, ok := kindByName(p.source(kindToken))
		if !ok {
			panic(p.unexpected("element kind"))
		}
		p.next()
		p.mustBe(lexer.TokenGreater)
		array, err := values.NewArray(elementKind, p.parseValueList()...)
		if err != nil {
			panic(p.newSyntaxError(token.StartPos, err))
		}
		return array

	case KeywordBytes:
		return values.NewBytes(p.parseBytes(p.parseStringArgument()))

	case KeywordDecimal:
		literal, pos := p.parseStringArgument()
		decimal, err := fixedpoint.ParseDecimal(literal)
		if err != nil {
			panic(p.newSyntaxError(pos, values.MalformedLiteralError{
				Kind: values.KindDecimal,
				Err:  err,
			}))
		}
		return values.NewDecimal(decimal)

	case KeywordComponentAddress:
		literal, pos := p.parseStringArgument()
		address, err := p.codec.DecodeComponentAddress(literal)
		if err != nil {
			panic(p.addressError(pos, values.KindComponentAddress, err))
		}
		return values.ComponentAddress(address)

	case KeywordResourceAddress:
		literal, pos := p.parseStringArgument()
		address, err := p.codec.DecodeResourceAddress(literal)
		if err != nil {
			panic(p.addressError(pos, values.KindResourceAddress, err))
		}
		return values.ResourceAddress(address)

	case KeywordPackageAddress:
		literal, pos := p.parseStringArgument()
		address, err := p.codec.DecodePackageAddress(literal)
		if err != nil {
			panic(p.addressError(pos, values.KindPackageAddress, err))
		}
		return values.PackageAddress(address)

	case KeywordNonFungibleId:
		p.mustBe(lexer.TokenParenOpen)
		id := p.parseNonFungibleIdPayload()
		p.mustBe(lexer.TokenParenClose)
		return id

	case KeywordExpression:
		literal, pos := p.parseStringArgument()
		expression, err := values.NewExpression(literal)
		if err != nil {
			panic(p.newSyntaxError(pos, err))
		}
		return expression

	case KeywordBucket:
		return p.parseHandle(ast.DeclarationBucket)

	case KeywordProof:
		return p.parseHandle(ast.DeclarationProof)
	}

	panic(p.unexpected("value"))
}

// parseValueList parses `( value, ... )`
func (p *parser) parseValueList() []values.Value {
	p.mustBe(lexer.TokenParenOpen)

	var result []values.Value

	if p.current.Is(lexer.TokenParenClose) {
		p.next()
		return result
	}

	for {
		result = append(result, p.parseValue())

		if !p.current.Is(lexer.TokenComma) {
			break
		}
		p.next()
	}

	p.mustBe(lexer.TokenParenClose)

	return result
}

// parseStringArgument parses `( "string" )`
func (p *parser) parseStringArgument() (string, ast.Position) {
	p.mustBe(lexer.TokenParenOpen)
	token := p.current
	if !token.Is(lexer.TokenString) {
		panic(p.unexpected(lexer.TokenString.String()))
	}
	p.next()
	p.mustBe(lexer.TokenParenClose)
	return p.parseStringLiteral(token), token.StartPos
}

func (p *parser) parseBytes(literal string, pos ast.Position) []byte {
	b, err := hex.DecodeString(literal)
	if err != nil {
		panic(p.newSyntaxError(pos, values.MalformedLiteralError{
			Kind: values.KindBytes,
			Err:  err,
		}))
	}
	return b
}

func (p *parser) addressError(pos ast.Position, kind values.Kind, err error) *SyntaxError {
	return p.newSyntaxError(pos, values.MalformedLiteralError{
		Kind: kind,
		Err:  err,
	})
}

// parseNonFungibleIdPayload parses the payload of a non-fungible identifier:
// a u32 or u64 number, a string, Bytes("..") or Uuid("..").
func (p *parser) parseNonFungibleIdPayload() values.NonFungibleId {
	token := p.current

	switch token.Type {
	case lexer.TokenNumber:
		p.next()
		integer := p.parseIntegerLiteral(token)
		number, _ := integer.Uint64()
		switch integer.Kind() {
		case values.KindU32:
			return values.NewNonFungibleIdU32(uint32(number))
		case values.KindU64:
			return values.NewNonFungibleIdU64(number)
		}
		panic(p.newSyntaxError(
			token.StartPos,
			values.NewMalformedLiteralError(
				values.KindNonFungibleId,
				"number identifiers must be u32 or u64, got %s",
				integer.Kind(),
			),
		))

	case lexer.TokenString:
		p.next()
		id, err := values.NewNonFungibleIdString(p.parseStringLiteral(token))
		if err != nil {
			panic(p.newSyntaxError(token.StartPos, err))
		}
		return id

	case lexer.TokenIdentifier:
		switch p.source(token) {
		case KeywordBytes:
			p.next()
			id, err := values.NewNonFungibleIdBytes(p.parseBytes(p.parseStringArgument()))
			if err != nil {
				panic(p.newSyntaxError(token.StartPos, err))
			}
			return id

		case KeywordUuid:
			p.next()
			literal, pos := p.parseStringArgument()
			parsed, err := uuid.Parse(literal)
			if err != nil {
				panic(p.newSyntaxError(pos, values.MalformedLiteralError{
					Kind: values.KindNonFungibleId,
					Err:  err,
				}))
			}
			id, err := values.NewNonFungibleIdUUID(parsed)
			if err != nil {
				panic(p.newSyntaxError(pos, err))
			}
			return id
		}
	}

	panic(p.unexpected("non-fungible identifier"))
}

// parseHandle parses `Bucket("name")` or `Bucket(1u32)`, and the same for proofs.
// Named handles are resolved after the instruction is parsed.
func (p *parser) parseHandle(declaration ast.Declaration) values.Value {
	topLevel := p.depth == 1

	p.mustBe(lexer.TokenParenOpen)

	token := p.current

	var handle values.Value

	switch token.Type {
	case lexer.TokenString:
		if !p.allowNames {
			panic(p.syntaxErrorf(
				token.StartPos,
				"%s names are only valid in manifests",
				declaration,
			))
		}
		p.next()
		name := p.parseStringLiteral(token)
		if name == "" {
			panic(p.syntaxErrorf(token.StartPos, "%s name must not be empty", declaration))
		}
		p.namedHandles = append(p.namedHandles, namedHandle{
			declaration: declaration,
			name:        name,
			pos:         token.StartPos,
			topLevel:    topLevel,
		})
		handle = newHandle(declaration, 0)

	case lexer.TokenNumber:
		p.next()
		integer := p.parseIntegerLiteral(token)
		id, _ := integer.Uint64()
		if integer.Kind() != values.KindU32 || id == 0 {
			panic(p.syntaxErrorf(
				token.StartPos,
				"%s ids must be positive u32 numbers, got %s",
				declaration,
				integer,
			))
		}
		handle = newHandle(declaration, uint32(id))

	default:
		panic(p.unexpected("name or id"))
	}

	p.mustBe(lexer.TokenParenClose)

	return handle
}

func newHandle(declaration ast.Declaration, id uint32) values.Value {
	if declaration == ast.DeclarationProof {
		return values.Proof(id)
	}
	return values.Bucket(id)
}

// parseIntegerLiteral parses an integer with its type suffix, e.g. -5i32.
func (p *parser) parseIntegerLiteral(token lexer.Token) values.Integer {
	literal := p.source(token)

	digitsEnd := 0
	if strings.HasPrefix(literal, "-") {
		digitsEnd = 1
	}
	for digitsEnd < len(literal) && literal[digitsEnd] >= '0' && literal[digitsEnd] <= '9' {
		digitsEnd++
	}

	digits, suffix := literal[:digitsEnd], literal[digitsEnd:]

	if suffix == "" {
		panic(&SyntaxError{
			Pos:      p.position(token.StartPos),
			Expected: "integer type suffix, e.g. 1u32",
			Found:    p.describe(token),
		})
	}

	kind, ok := integerKindBySuffix(suffix)
	if !ok {
		panic(&SyntaxError{
			Pos:      p.position(token.StartPos),
			Expected: "integer type suffix, e.g. 1u32",
			Found:    "`" + suffix + "`",
		})
	}

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		panic(p.newSyntaxError(
			token.StartPos,
			values.NewMalformedLiteralError(kind, "invalid digits %q", digits),
		))
	}

	integer, err := values.NewInteger(kind, value)
	if err != nil {
		panic(p.newSyntaxError(token.StartPos, err))
	}
	return integer
}

// parseStringLiteral unquotes a string token.
// The escapes are the ones produced by format.String.
func (p *parser) parseStringLiteral(token lexer.Token) string {
	literal := p.source(token)

	unquoted, err := unquoteString(literal)
	if err != nil {
		panic(p.newSyntaxError(token.StartPos, err))
	}
	return unquoted
}

func unquoteString(literal string) (string, error) {
	if len(literal) < 2 || literal[0] != '"' || literal[len(literal)-1] != '"' {
		return "", values.NewMalformedLiteralError(values.KindString, "missing quotes")
	}
	literal = literal[1 : len(literal)-1]

	if strings.IndexByte(literal, '\\') < 0 {
		if !utf8.ValidString(literal) {
			return "", values.NewMalformedLiteralError(values.KindString, "invalid UTF-8")
		}
		return literal, nil
	}

	var builder strings.Builder
	builder.Grow(len(literal))

	for i := 0; i < len(literal); i++ {
		c := literal[i]
		if c != '\\' {
			builder.WriteByte(c)
			continue
		}

		i++
		if i >= len(literal) {
			return "", values.NewMalformedLiteralError(values.KindString, "incomplete escape sequence")
		}

		switch escaped := literal[i]; escaped {
		case '"', '\\', '/':
			builder.WriteByte(escaped)
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case 't':
			builder.WriteByte('\t')
		case 'b':
			builder.WriteByte('\b')
		case 'f':
			builder.WriteByte('\f')
		case 'u':
			if i+5 > len(literal) {
				return "", values.NewMalformedLiteralError(values.KindString, "incomplete unicode escape sequence")
			}
			code, err := strconv.ParseUint(literal[i+1:i+5], 16, 32)
			if err != nil {
				return "", values.NewMalformedLiteralError(
					values.KindString,
					"invalid unicode escape sequence `\\u%s`",
					literal[i+1:i+5],
				)
			}
			builder.WriteRune(rune(code))
			i += 4
		default:
			return "", values.NewMalformedLiteralError(
				values.KindString,
				"invalid escape sequence `\\%c`",
				escaped,
			)
		}
	}

	result := builder.String()
	if !utf8.ValidString(result) {
		return "", values.NewMalformedLiteralError(values.KindString, "invalid UTF-8")
	}
	return result, nil
}
