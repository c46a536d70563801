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
	goerrors "errors"
	"fmt"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/parser/lexer"
	"github.com/ledgerworks/rtm/values"
)

func (p *parser) parseManifest() *ast.Manifest {
	var instructions []*ast.Instruction

	for !p.current.Is(lexer.TokenEOF) {
		instructions = append(instructions, p.parseInstruction())
	}

	return &ast.Manifest{
		Instructions: instructions,
		Names:        p.names,
		BucketCount:  p.counter.Buckets,
		ProofCount:   p.counter.Proofs,
	}
}

// parseInstruction parses `OPCODE argument* declaration? ;`
func (p *parser) parseInstruction() *ast.Instruction {
	startToken := p.current
	if !startToken.Is(lexer.TokenIdentifier) {
		panic(p.unexpected("instruction"))
	}

	name := p.source(startToken)
	opcode, ok := opcodeByName(name)
	if !ok {
		panic(p.newSyntaxError(
			startToken.StartPos,
			ast.UnknownOpcodeError{
				Name:       name,
				Suggestion: closestOpcode(name),
			},
		))
	}
	p.next()

	info := opcode.Info()

	p.namedHandles = p.namedHandles[:0]

	var arguments []values.Value
	var argumentPositions []ast.Position

	for !p.current.Is(lexer.TokenSemicolon) {
		if p.current.Is(lexer.TokenEOF) {
			panic(p.unexpected(lexer.TokenSemicolon.String()))
		}
		argumentPositions = append(argumentPositions, p.current.StartPos)
		arguments = append(arguments, p.parseValue())
	}

	endToken := p.current
	p.next()

	var declared namedHandle
	if info.Declaration != ast.DeclarationNone {
		declared = p.parseDeclaration(info, arguments, endToken)
		arguments = arguments[:len(arguments)-1]
		argumentPositions = argumentPositions[:len(argumentPositions)-1]
	}

	arguments = p.resolveNamedHandles(arguments)

	err := info.CheckArguments(arguments)
	if err != nil {
		pos := startToken.StartPos
		var argumentErr ast.ArgumentError
		if goerrors.As(err, &argumentErr) && argumentErr.Index < len(argumentPositions) {
			pos = argumentPositions[argumentErr.Index]
		}
		panic(p.newSyntaxError(pos, err))
	}

	err = p.counter.CheckReferences(arguments)
	if err != nil {
		panic(p.newSyntaxError(startToken.StartPos, err))
	}

	declaration := p.declare(declared)

	return &ast.Instruction{
		Opcode:      opcode,
		Arguments:   arguments,
		Declaration: declaration,
		Range: ast.NewRange(
			p.position(startToken.StartPos),
			p.position(endToken.EndPos),
		),
	}
}

// parseDeclaration checks that the last operand declares a handle of the opcode's kind,
// e.g. Bucket("xrd") for TAKE_FROM_WORKTOP.
func (p *parser) parseDeclaration(
	info ast.OpcodeInfo,
	arguments []values.Value,
	endToken lexer.Token,
) namedHandle {

	expected := fmt.Sprintf("%s(\"name\") declaration", info.Declaration)

	if len(arguments) == 0 || len(p.namedHandles) == 0 {
		panic(&SyntaxError{
			Pos:      p.position(endToken.StartPos),
			Expected: expected,
			Found:    p.describe(endToken),
		})
	}

	last := p.namedHandles[len(p.namedHandles)-1]
	lastArgument := arguments[len(arguments)-1]

	if !last.topLevel || !isNamedHandle(lastArgument) {
		panic(&SyntaxError{
			Pos:      p.position(endToken.StartPos),
			Expected: expected,
			Found:    p.describe(endToken),
		})
	}

	if last.declaration != info.Declaration {
		panic(&SyntaxError{
			Pos:      p.position(last.pos),
			Expected: expected,
			Found:    fmt.Sprintf("%s(%q)", last.declaration, last.name),
		})
	}

	p.namedHandles = p.namedHandles[:len(p.namedHandles)-1]

	return last
}

func isNamedHandle(value values.Value) bool {
	switch value {
	case values.Bucket(0), values.Proof(0):
		return true
	}
	return false
}

// resolveNamedHandles replaces the handles referred to by name with their manifest ids.
// Named handles are resolved in source order, which is the order of MapLeaves.
func (p *parser) resolveNamedHandles(arguments []values.Value) []values.Value {
	if len(p.namedHandles) == 0 {
		return arguments
	}

	next := 0

	resolve := func(value values.Value) (values.Value, error) {
		if !isNamedHandle(value) {
			return value, nil
		}

		if next >= len(p.namedHandles) {
			return nil, errors.NewUnreachableError()
		}
		handle := p.namedHandles[next]
		next++

		switch handle.declaration {
		case ast.DeclarationBucket:
			id, ok := p.buckets[handle.name]
			if !ok {
				return nil, p.newSyntaxError(
					handle.pos,
					UndeclaredNameError{
						Declaration: handle.declaration,
						Name:        handle.name,
					},
				)
			}
			return values.Bucket(id), nil

		case ast.DeclarationProof:
			id, ok := p.proofs[handle.name]
			if !ok {
				return nil, p.newSyntaxError(
					handle.pos,
					UndeclaredNameError{
						Declaration: handle.declaration,
						Name:        handle.name,
					},
				)
			}
			return values.Proof(id), nil
		}

		return nil, errors.NewUnreachableError()
	}

	resolved := make([]values.Value, len(arguments))
	for i, argument := range arguments {
		value, err := values.MapLeaves(argument, resolve)
		if err != nil {
			panic(err)
		}
		resolved[i] = value
	}
	return resolved
}

// declare assigns the next manifest id to the declared handle, if any.
func (p *parser) declare(handle namedHandle) uint32 {
	switch handle.declaration {
	case ast.DeclarationNone:
		return 0

	case ast.DeclarationBucket:
		if _, ok := p.buckets[handle.name]; ok {
			panic(p.newSyntaxError(
				handle.pos,
				RedeclarationError{
					Declaration: handle.declaration,
					Name:        handle.name,
				},
			))
		}
		id := p.counter.Declare(handle.declaration)
		if p.buckets == nil {
			p.buckets = map[string]uint32{}
			p.names.Buckets = map[uint32]string{}
		}
		p.buckets[handle.name] = id
		p.names.Buckets[id] = handle.name
		return id

	case ast.DeclarationProof:
		if _, ok := p.proofs[handle.name]; ok {
			panic(p.newSyntaxError(
				handle.pos,
				RedeclarationError{
					Declaration: handle.declaration,
					Name:        handle.name,
				},
			))
		}
		id := p.counter.Declare(handle.declaration)
		if p.proofs == nil {
			p.proofs = map[string]uint32{}
			p.names.Proofs = map[uint32]string{}
		}
		p.proofs[handle.name] = id
		p.names.Proofs[id] = handle.name
		return id
	}

	panic(errors.NewUnreachableError())
}
