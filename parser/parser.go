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

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/parser/lexer"
	"github.com/ledgerworks/rtm/values"
)

// maxDepth is the maximum nesting depth of values
const maxDepth = 64

// Config configures the parser.
type Config struct {
	// Placeholders are substituted for {name} before parsing
	Placeholders map[string]string
	// Network is the network of address literals.
	// The simulator network is used if unset.
	Network common.Network
}

func (c Config) codec() common.AddressCodec {
	network := c.Network
	if network.Name == "" {
		network = common.SimulatorNetwork
	}
	return common.AddressCodec{Network: network}
}

// namedHandle is a bucket or proof referred to by name.
// It is parsed as a handle with id zero and resolved once the instruction is complete.
type namedHandle struct {
	declaration ast.Declaration
	name        string
	pos         ast.Position
	// topLevel is true if the handle is a whole argument
	topLevel bool
}

type parser struct {
	// tokens is a stream of tokens from the lexer
	tokens lexer.TokenStream
	// current is the current token being parsed
	current lexer.Token
	// sources maps positions back to the source before substitution
	sources sourceMap
	codec   common.AddressCodec
	// depth is the nesting depth of the value being parsed
	depth int
	// allowNames is true if handles may be referred to by name
	allowNames bool
	// namedHandles are the named handles of the current instruction, in source order
	namedHandles []namedHandle
	buckets      map[string]uint32
	proofs       map[string]uint32
	counter      ast.HandleCounter
	names        ast.Names
}

// ParseManifest parses a manifest.
//
// Buckets and proofs are declared by name, e.g. Bucket("xrd"),
// and are assigned manifest ids in declaration order.
// The manifest is checked: all instructions have valid arguments,
// and all referred handles are declared.
func ParseManifest(code []byte, config Config) (manifest *ast.Manifest, err error) {
	return parse(
		code,
		config,
		func(p *parser) *ast.Manifest {
			p.allowNames = true
			return p.parseManifest()
		},
	)
}

// ParseValue parses a single value literal, e.g. Tuple(1u8, "a").
func ParseValue(code []byte, config Config) (value values.Value, err error) {
	return parse(
		code,
		config,
		func(p *parser) values.Value {
			value := p.parseValue()
			if !p.current.Is(lexer.TokenEOF) {
				panic(p.unexpected("end of input"))
			}
			return value
		},
	)
}

func parse[T any](
	code []byte,
	config Config,
	parse func(*parser) T,
) (
	result T,
	err error,
) {
	substituted, sources, err := substitutePlaceholders(code, config.Placeholders)
	if err != nil {
		return result, err
	}

	p := &parser{
		tokens:  lexer.Lex(substituted),
		sources: sources,
		codec:   config.codec(),
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero

			switch r := r.(type) {
			case ParseError:
				err = r
			case error:
				err = errors.NewUnexpectedErrorFromCause(r)
			default:
				err = errors.NewUnexpectedError("parser: %v", r)
			}
		}
	}()

	// Get the initial token
	p.next()

	return parse(p), nil
}

// next moves to the next token, skipping whitespace and comments.
// Lexer errors are reported as syntax errors.
func (p *parser) next() {
	for {
		p.current = p.tokens.Next()

		switch p.current.Type {
		case lexer.TokenSpace, lexer.TokenComment:
			continue

		case lexer.TokenError:
			panic(p.newSyntaxError(p.current.StartPos, p.current.Error))
		}

		return
	}
}

func (p *parser) source(token lexer.Token) string {
	return string(token.Source(p.tokens.Input()))
}

func (p *parser) describe(token lexer.Token) string {
	switch token.Type {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenIdentifier, lexer.TokenNumber, lexer.TokenString:
		return fmt.Sprintf("`%s`", p.source(token))
	}
	return token.Type.String()
}

func (p *parser) position(pos ast.Position) ast.Position {
	return p.sources.originalPosition(pos)
}

func (p *parser) newSyntaxError(pos ast.Position, err error) *SyntaxError {
	return &SyntaxError{
		Pos: p.position(pos),
		Err: err,
	}
}

func (p *parser) syntaxErrorf(pos ast.Position, message string, params ...any) *SyntaxError {
	return &SyntaxError{
		Pos:     p.position(pos),
		Message: fmt.Sprintf(message, params...),
	}
}

// unexpected returns a syntax error for the current token.
func (p *parser) unexpected(expected string) *SyntaxError {
	return &SyntaxError{
		Pos:      p.position(p.current.StartPos),
		Expected: expected,
		Found:    p.describe(p.current),
	}
}

// mustBe consumes the current token if it has the given type,
// and reports a syntax error otherwise.
func (p *parser) mustBe(tokenType lexer.TokenType) lexer.Token {
	token := p.current
	if !token.Is(tokenType) {
		panic(p.unexpected(tokenType.String()))
	}
	p.next()
	return token
}
