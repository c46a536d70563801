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

package resource

import (
	"fmt"

	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// Kind

type Kind uint8

const (
	KindFungible Kind = iota
	KindNonFungible
)

func (k Kind) String() string {
	switch k {
	case KindFungible:
		return "Fungible"
	case KindNonFungible:
		return "NonFungible"
	}

	panic(errors.NewUnreachableError())
}

// MaxDivisibility is the maximum number of fractional digits of a fungible resource.
const MaxDivisibility = fixedpoint.DecimalScale

// Type is the specification of a resource.
// Divisibility is only used by fungible resources, IdKind only by non-fungible resources.
type Type struct {
	Kind         Kind
	Divisibility uint8
	IdKind       values.NonFungibleIdKind
}

func Fungible(divisibility uint8) (Type, error) {
	if divisibility > MaxDivisibility {
		return Type{}, values.NewMalformedLiteralError(
			values.KindU8,
			"divisibility %d is out of range 0..=%d",
			divisibility,
			MaxDivisibility,
		)
	}
	return Type{
		Kind:         KindFungible,
		Divisibility: divisibility,
	}, nil
}

func NonFungible(idKind values.NonFungibleIdKind) Type {
	return Type{
		Kind:   KindNonFungible,
		IdKind: idKind,
	}
}

func (t Type) IsFungible() bool {
	return t.Kind == KindFungible
}

// CheckAmount fails with InvalidAmountError if the amount is negative,
// or has more fractional digits than the resource allows.
// Non-fungible amounts must be whole numbers.
func (t Type) CheckAmount(amount fixedpoint.Decimal) error {
	if amount.IsNegative() {
		return InvalidAmountError{
			Amount: amount,
			Reason: "amount is negative",
		}
	}

	divisibility := t.Divisibility
	if !t.IsFungible() {
		divisibility = 0
	}

	if !amount.HasDivisibility(divisibility) {
		return InvalidAmountError{
			Amount: amount,
			Reason: fmt.Sprintf("resource has divisibility %d", divisibility),
		}
	}
	return nil
}

func (t Type) ToValue() values.Value {
	switch t.Kind {
	case KindFungible:
		return values.NewEnum(t.Kind.String(), values.NewU8(t.Divisibility))
	case KindNonFungible:
		return values.NewEnum(t.Kind.String(), values.NewEnum(t.IdKind.String()))
	}

	panic(errors.NewUnreachableError())
}

func (t Type) String() string {
	return t.ToValue().String()
}

var idKindType = &values.EnumType{
	Name: "NonFungibleIdKind",
	Variants: []values.EnumVariant{
		{Name: values.NonFungibleIdKindU32.String()},
		{Name: values.NonFungibleIdKindU64.String()},
		{Name: values.NonFungibleIdKindString.String()},
		{Name: values.NonFungibleIdKindBytes.String()},
		{Name: values.NonFungibleIdKindUUID.String()},
	},
}

// TypeType is the schema of resource types in manifests,
// e.g. Enum("Fungible", 18u8) or Enum("NonFungible", Enum("U32")).
var TypeType = &values.EnumType{
	Name: "ResourceType",
	Variants: []values.EnumVariant{
		{Name: KindFungible.String(), Fields: []values.Type{values.KindU8}},
		{Name: KindNonFungible.String(), Fields: []values.Type{idKindType}},
	},
}

// DecodeType decodes a resource type from its enum value.
func DecodeType(value values.Value) (Type, error) {
	err := values.Conforms(value, TypeType)
	if err != nil {
		return Type{}, err
	}

	enum := value.(values.Enum)
	switch enum.Name {
	case "Fungible":
		divisibility, _ := enum.Fields[0].(values.Integer).Uint64()
		return Fungible(uint8(divisibility))

	case "NonFungible":
		idKind, ok := values.NonFungibleIdKindByName(enum.Fields[0].(values.Enum).Name)
		if !ok {
			panic(errors.NewUnreachableError())
		}
		return NonFungible(idKind), nil
	}

	panic(errors.NewUnreachableError())
}
