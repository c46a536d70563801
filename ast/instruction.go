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
	"strings"

	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/format"
	"github.com/ledgerworks/rtm/values"
)

// Instruction is one step of a manifest.
//
// Bucket and proof arguments refer to the manifest ids of the handles,
// which are assigned in declaration order, starting at 1.
type Instruction struct {
	Opcode    Opcode
	Arguments []values.Value
	// Declaration is the manifest id of the bucket or proof
	// declared by the instruction, or zero
	Declaration uint32
	Range
}

// Names are the source names of buckets and proofs, by manifest id.
type Names struct {
	Buckets map[uint32]string
	Proofs  map[uint32]string
}

func (n Names) BucketName(id uint32) string {
	if name, ok := n.Buckets[id]; ok {
		return name
	}
	return fmt.Sprintf("bucket%d", id)
}

func (n Names) ProofName(id uint32) string {
	if name, ok := n.Proofs[id]; ok {
		return name
	}
	return fmt.Sprintf("proof%d", id)
}

// argumentDoc renders top-level bucket and proof arguments by name,
// nested ones keep their numeric form.
func (n Names) argumentDoc(codec common.AddressCodec, argument values.Value) prettier.Doc {
	switch argument := argument.(type) {
	case values.Bucket:
		return prettier.Text(format.Call("Bucket", format.String(n.BucketName(uint32(argument)))))
	case values.Proof:
		return prettier.Text(format.Call("Proof", format.String(n.ProofName(uint32(argument)))))
	}
	return argument.Doc(codec)
}

func (i *Instruction) Doc(codec common.AddressCodec, names Names) prettier.Doc {
	operands := make(prettier.Concat, 0, 2*(len(i.Arguments)+1))

	for _, argument := range i.Arguments {
		operands = append(
			operands,
			prettier.Line{},
			names.argumentDoc(codec, argument),
		)
	}

	if i.Declaration != 0 {
		var declaration string
		switch i.Opcode.Info().Declaration {
		case DeclarationBucket:
			declaration = format.Call("Bucket", format.String(names.BucketName(i.Declaration)))
		case DeclarationProof:
			declaration = format.Call("Proof", format.String(names.ProofName(i.Declaration)))
		}
		operands = append(
			operands,
			prettier.Line{},
			prettier.Text(declaration),
		)
	}

	return prettier.Group{
		Doc: prettier.Concat{
			prettier.Text(i.Opcode.String()),
			prettier.Indent{
				Doc: operands,
			},
			prettier.Text(";"),
		},
	}
}

func (i *Instruction) String() string {
	var builder strings.Builder
	prettier.Prettier(&builder, i.Doc(common.SimulatorAddressCodec, Names{}), 1_000_000, "    ")
	return builder.String()
}
