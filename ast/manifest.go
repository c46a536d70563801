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
	"strings"

	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
)

// Manifest is a flat sequence of instructions, in execution order.
type Manifest struct {
	Instructions []*Instruction
	Names        Names
	// BucketCount and ProofCount are the numbers of declared handles
	BucketCount uint32
	ProofCount  uint32
}

func (m *Manifest) Doc(codec common.AddressCodec) prettier.Doc {
	docs := make([]prettier.Doc, len(m.Instructions))
	for i, instruction := range m.Instructions {
		docs[i] = instruction.Doc(codec, m.Names)
	}
	return prettier.Join(prettier.HardLine{}, docs...)
}

// Format returns the manifest text. Instructions which do not fit the width are broken into lines.
func (m *Manifest) Format(codec common.AddressCodec, maxLineWidth int) string {
	var builder strings.Builder
	prettier.Prettier(&builder, m.Doc(codec), maxLineWidth, "    ")
	return builder.String()
}

func (m *Manifest) String() string {
	return m.Format(common.SimulatorAddressCodec, 1_000_000)
}
