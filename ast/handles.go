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
	"fmt"

	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/values"
)

// UndeclaredHandleError is reported when an instruction refers to a bucket or proof
// which was not declared by an earlier instruction.
type UndeclaredHandleError struct {
	Declaration Declaration
	Id          uint32
}

var _ errors.UserError = UndeclaredHandleError{}

func (UndeclaredHandleError) IsUserError() {}

func (UndeclaredHandleError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e UndeclaredHandleError) Error() string {
	return fmt.Sprintf("%s(%du32) is not declared", e.Declaration, e.Id)
}

// InvalidDeclarationError is reported when the declared handles of a manifest
// are not numbered in declaration order.
type InvalidDeclarationError struct {
	Opcode   Opcode
	Expected uint32
	Found    uint32
}

var _ errors.UserError = InvalidDeclarationError{}

func (InvalidDeclarationError) IsUserError() {}

func (InvalidDeclarationError) ErrorKind() errors.Kind {
	return errors.KindSyntax
}

func (e InvalidDeclarationError) Error() string {
	return fmt.Sprintf(
		"%s declares handle %d, expected %d",
		e.Opcode,
		e.Found,
		e.Expected,
	)
}

// HandleCounter assigns manifest ids to declared buckets and proofs,
// and checks references against the declarations seen so far.
type HandleCounter struct {
	Buckets uint32
	Proofs  uint32
}

// CheckReferences checks that all buckets and proofs in the arguments are declared.
func (c *HandleCounter) CheckReferences(arguments []values.Value) error {
	var err error
	for _, argument := range arguments {
		values.Walk(argument, func(value values.Value) {
			if err != nil {
				return
			}
			switch value := value.(type) {
			case values.Bucket:
				if value == 0 || uint32(value) > c.Buckets {
					err = UndeclaredHandleError{
						Declaration: DeclarationBucket,
						Id:          uint32(value),
					}
				}
			case values.Proof:
				if value == 0 || uint32(value) > c.Proofs {
					err = UndeclaredHandleError{
						Declaration: DeclarationProof,
						Id:          uint32(value),
					}
				}
			}
		})
	}
	return err
}

// Declare returns the manifest id of the next handle of the given kind.
func (c *HandleCounter) Declare(declaration Declaration) uint32 {
	switch declaration {
	case DeclarationNone:
		return 0
	case DeclarationBucket:
		c.Buckets++
		return c.Buckets
	case DeclarationProof:
		c.Proofs++
		return c.Proofs
	}

	panic(errors.NewUnreachableError())
}

// Check validates an instruction sequence which was not produced by the parser,
// e.g. a decoded or built manifest, and returns the number of declared buckets and proofs.
func Check(instructions []*Instruction) (HandleCounter, error) {
	var counter HandleCounter

	for index, instruction := range instructions {
		if instruction.Opcode == OpcodeUnknown || instruction.Opcode >= opcodeCount {
			return counter, InvalidInstructionError{
				Index: index,
				Err: UnknownOpcodeError{
					Name: fmt.Sprintf("%d", instruction.Opcode),
				},
			}
		}

		info := instruction.Opcode.Info()

		err := info.CheckArguments(instruction.Arguments)
		if err == nil {
			err = counter.CheckReferences(instruction.Arguments)
		}
		if err != nil {
			return counter, InvalidInstructionError{
				Index: index,
				Err:   err,
			}
		}

		expected := counter.Declare(info.Declaration)
		if instruction.Declaration != expected {
			return counter, InvalidInstructionError{
				Index: index,
				Err: InvalidDeclarationError{
					Opcode:   instruction.Opcode,
					Expected: expected,
					Found:    instruction.Declaration,
				},
			}
		}
	}

	return counter, nil
}

// InvalidInstructionError is reported by Check for the instruction at Index.
type InvalidInstructionError struct {
	Index int
	Err   error
}

var _ errors.UserError = InvalidInstructionError{}

func (InvalidInstructionError) IsUserError() {}

func (e InvalidInstructionError) Unwrap() error {
	return e.Err
}

func (e InvalidInstructionError) Error() string {
	return fmt.Sprintf("instruction %d: %s", e.Index, e.Err.Error())
}
