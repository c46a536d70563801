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

package values

import (
	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/format"
)

// Decimal

type Decimal struct {
	fixedpoint.Decimal
}

var _ Value = Decimal{}

func NewDecimal(d fixedpoint.Decimal) Decimal {
	return Decimal{Decimal: d}
}

func (Decimal) isValue() {}

func (Decimal) Kind() Kind {
	return KindDecimal
}

func (v Decimal) Literal(_ common.AddressCodec) string {
	return format.Call("Decimal", format.String(v.Decimal.String()))
}

func (v Decimal) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Decimal) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

func addressLiteral(name string, codec common.AddressCodec, address common.Address) string {
	encoded, err := codec.Encode(address)
	if err != nil {
		// addresses are validated on construction,
		// fall back to hex for zero values
		encoded = address.Hex()
	}
	return format.Call(name, format.String(encoded))
}

// ComponentAddress

type ComponentAddress common.ComponentAddress

var _ Value = ComponentAddress{}

func (ComponentAddress) isValue() {}

func (ComponentAddress) Kind() Kind {
	return KindComponentAddress
}

func (v ComponentAddress) Address() common.ComponentAddress {
	return common.ComponentAddress(v)
}

func (v ComponentAddress) Literal(codec common.AddressCodec) string {
	return addressLiteral("ComponentAddress", codec, common.Address(v))
}

func (v ComponentAddress) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v ComponentAddress) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// ResourceAddress

type ResourceAddress common.ResourceAddress

var _ Value = ResourceAddress{}

func (ResourceAddress) isValue() {}

func (ResourceAddress) Kind() Kind {
	return KindResourceAddress
}

func (v ResourceAddress) Address() common.ResourceAddress {
	return common.ResourceAddress(v)
}

func (v ResourceAddress) Literal(codec common.AddressCodec) string {
	return addressLiteral("ResourceAddress", codec, common.Address(v))
}

func (v ResourceAddress) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v ResourceAddress) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// PackageAddress

type PackageAddress common.PackageAddress

var _ Value = PackageAddress{}

func (PackageAddress) isValue() {}

func (PackageAddress) Kind() Kind {
	return KindPackageAddress
}

func (v PackageAddress) Address() common.PackageAddress {
	return common.PackageAddress(v)
}

func (v PackageAddress) Literal(codec common.AddressCodec) string {
	return addressLiteral("PackageAddress", codec, common.Address(v))
}

func (v PackageAddress) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v PackageAddress) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Expression

// Expression is a symbolic argument which the executor expands,
// e.g. Expression("ENTIRE_WORKTOP").
type Expression string

const (
	ExpressionEntireWorktop  Expression = "ENTIRE_WORKTOP"
	ExpressionEntireAuthZone Expression = "ENTIRE_AUTH_ZONE"
)

var _ Value = Expression("")

// NewExpression returns the expression with the given name,
// or a MalformedLiteralError for unknown expressions.
func NewExpression(name string) (Expression, error) {
	switch Expression(name) {
	case ExpressionEntireWorktop, ExpressionEntireAuthZone:
		return Expression(name), nil
	}
	return "", NewMalformedLiteralError(KindExpression, "unknown expression %q", name)
}

func (Expression) isValue() {}

func (Expression) Kind() Kind {
	return KindExpression
}

func (v Expression) Literal(_ common.AddressCodec) string {
	return format.Call("Expression", format.String(string(v)))
}

func (v Expression) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Expression) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Bucket

// Bucket refers to a bucket of the transaction by its identifier.
type Bucket uint32

var _ Value = Bucket(0)

func (Bucket) isValue() {}

func (Bucket) Kind() Kind {
	return KindBucket
}

func (v Bucket) Literal(codec common.AddressCodec) string {
	return format.Call("Bucket", NewU32(uint32(v)).Literal(codec))
}

func (v Bucket) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Bucket) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Proof

// Proof refers to a proof of the transaction by its identifier.
type Proof uint32

var _ Value = Proof(0)

func (Proof) isValue() {}

func (Proof) Kind() Kind {
	return KindProof
}

func (v Proof) Literal(codec common.AddressCodec) string {
	return format.Call("Proof", NewU32(uint32(v)).Literal(codec))
}

func (v Proof) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Proof) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}
