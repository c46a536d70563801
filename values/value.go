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
	"bytes"
	"fmt"

	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/format"
)

// Value is a manifest value.
//
// Literal returns the canonical literal form, in which addresses
// are encoded for the network of the given codec.
// String returns the literal form for the simulator network.
type Value interface {
	isValue()
	Kind() Kind
	Literal(codec common.AddressCodec) string
	Doc(codec common.AddressCodec) prettier.Doc
	fmt.Stringer
}

var separatorDoc prettier.Doc = prettier.Concat{
	prettier.Text(","),
	prettier.Line{},
}

func callDoc(name string, arguments []prettier.Doc) prettier.Doc {
	if len(arguments) == 0 {
		return prettier.Text(name + "()")
	}
	return prettier.Group{
		Doc: prettier.Concat{
			prettier.Text(name),
			prettier.WrapParentheses(
				prettier.Join(separatorDoc, arguments...),
				prettier.SoftLine{},
			),
		},
	}
}

func literals(codec common.AddressCodec, values []Value) []string {
	result := make([]string, len(values))
	for i, value := range values {
		result[i] = value.Literal(codec)
	}
	return result
}

func docs(codec common.AddressCodec, values []Value) []prettier.Doc {
	result := make([]prettier.Doc, len(values))
	for i, value := range values {
		result[i] = value.Doc(codec)
	}
	return result
}

// Unit

type Unit struct{}

var _ Value = Unit{}

func NewUnit() Unit {
	return Unit{}
}

func (Unit) isValue() {}

func (Unit) Kind() Kind {
	return KindUnit
}

func (Unit) Literal(_ common.AddressCodec) string {
	return format.Unit
}

func (Unit) Doc(_ common.AddressCodec) prettier.Doc {
	return prettier.Text(format.Unit)
}

func (v Unit) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Bool

type Bool bool

var _ Value = Bool(false)

func NewBool(b bool) Bool {
	return Bool(b)
}

func (Bool) isValue() {}

func (Bool) Kind() Kind {
	return KindBool
}

func (v Bool) Literal(_ common.AddressCodec) string {
	return format.Bool(bool(v))
}

func (v Bool) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Bool) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// String

type String string

var _ Value = String("")

func NewString(s string) String {
	return String(s)
}

func (String) isValue() {}

func (String) Kind() Kind {
	return KindString
}

func (v String) Literal(_ common.AddressCodec) string {
	return format.String(string(v))
}

func (v String) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v String) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Bytes

type Bytes []byte

var _ Value = Bytes(nil)

func NewBytes(b []byte) Bytes {
	return Bytes(b)
}

func (Bytes) isValue() {}

func (Bytes) Kind() Kind {
	return KindBytes
}

func (v Bytes) Literal(_ common.AddressCodec) string {
	return format.Call("Bytes", format.String(format.Bytes(v)))
}

func (v Bytes) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Bytes) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Enum

// Enum is a named variant with positional fields, e.g. Enum("Fungible", 18u8).
type Enum struct {
	Name   string
	Fields []Value
}

var _ Value = Enum{}

func NewEnum(name string, fields ...Value) Enum {
	return Enum{
		Name:   name,
		Fields: fields,
	}
}

func (Enum) isValue() {}

func (Enum) Kind() Kind {
	return KindEnum
}

func (v Enum) Literal(codec common.AddressCodec) string {
	arguments := make([]string, 0, len(v.Fields)+1)
	arguments = append(arguments, format.String(v.Name))
	arguments = append(arguments, literals(codec, v.Fields)...)
	return format.Call("Enum", arguments...)
}

func (v Enum) Doc(codec common.AddressCodec) prettier.Doc {
	arguments := make([]prettier.Doc, 0, len(v.Fields)+1)
	arguments = append(arguments, prettier.Text(format.String(v.Name)))
	arguments = append(arguments, docs(codec, v.Fields)...)
	return callDoc("Enum", arguments)
}

func (v Enum) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Tuple

type Tuple struct {
	Elements []Value
}

var _ Value = Tuple{}

func NewTuple(elements ...Value) Tuple {
	return Tuple{
		Elements: elements,
	}
}

func (Tuple) isValue() {}

func (Tuple) Kind() Kind {
	return KindTuple
}

func (v Tuple) Literal(codec common.AddressCodec) string {
	return format.Call("Tuple", literals(codec, v.Elements)...)
}

func (v Tuple) Doc(codec common.AddressCodec) prettier.Doc {
	return callDoc("Tuple", docs(codec, v.Elements))
}

func (v Tuple) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Array

// Array is a homogeneous sequence: all elements have the kind ElementKind.
type Array struct {
	ElementKind Kind
	Elements    []Value
}

var _ Value = Array{}

// NewArray returns an array of the given element kind,
// or an error if an element has a different kind.
func NewArray(elementKind Kind, elements ...Value) (Array, error) {
	for i, element := range elements {
		if element.Kind() != elementKind {
			return Array{}, ValueTypeMismatchError{
				Path:     fmt.Sprintf("[%d]", i),
				Expected: elementKind.String(),
				Found:    element.Kind().String(),
			}
		}
	}
	return Array{
		ElementKind: elementKind,
		Elements:    elements,
	}, nil
}

// MustArray is NewArray for element lists known to be homogeneous.
func MustArray(elementKind Kind, elements ...Value) Array {
	array, err := NewArray(elementKind, elements...)
	if err != nil {
		panic(err)
	}
	return array
}

func (Array) isValue() {}

func (Array) Kind() Kind {
	return KindArray
}

func (v Array) Literal(codec common.AddressCodec) string {
	return format.TypedCall("Array", v.ElementKind.String(), literals(codec, v.Elements)...)
}

func (v Array) Doc(codec common.AddressCodec) prettier.Doc {
	return callDoc(
		fmt.Sprintf("Array<%s>", v.ElementKind),
		docs(codec, v.Elements),
	)
}

func (v Array) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Option

// Option is either None (Inner is nil) or Some(Inner).
type Option struct {
	Inner Value
}

var _ Value = Option{}

var None = Option{}

func NewSome(inner Value) Option {
	return Option{Inner: inner}
}

func (Option) isValue() {}

func (Option) Kind() Kind {
	return KindOption
}

func (v Option) IsSome() bool {
	return v.Inner != nil
}

func (v Option) Literal(codec common.AddressCodec) string {
	if v.Inner == nil {
		return "None"
	}
	return format.Call("Some", v.Inner.Literal(codec))
}

func (v Option) Doc(codec common.AddressCodec) prettier.Doc {
	if v.Inner == nil {
		return prettier.Text("None")
	}
	return callDoc("Some", []prettier.Doc{v.Inner.Doc(codec)})
}

func (v Option) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}

// Equal reports whether two values are structurally equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Unit:
		return true

	case Bool:
		return a == b.(Bool)

	case String:
		return a == b.(String)

	case Bytes:
		return bytes.Equal(a, b.(Bytes))

	case Integer:
		b := b.(Integer)
		return a.kind == b.kind && a.BigInt().Cmp(b.BigInt()) == 0

	case Decimal:
		return a.Decimal.Equal(b.(Decimal).Decimal)

	case Enum:
		b := b.(Enum)
		return a.Name == b.Name && equalSlices(a.Fields, b.Fields)

	case Tuple:
		return equalSlices(a.Elements, b.(Tuple).Elements)

	case Array:
		b := b.(Array)
		return a.ElementKind == b.ElementKind && equalSlices(a.Elements, b.Elements)

	case Option:
		return Equal(a.Inner, b.(Option).Inner)

	case ComponentAddress:
		return a == b.(ComponentAddress)

	case ResourceAddress:
		return a == b.(ResourceAddress)

	case PackageAddress:
		return a == b.(PackageAddress)

	case NonFungibleId:
		return a == b.(NonFungibleId)

	case Expression:
		return a == b.(Expression)

	case Bucket:
		return a == b.(Bucket)

	case Proof:
		return a == b.(Proof)
	}

	return false
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Walk calls f for the value and all values nested in it, parents first.
func Walk(value Value, f func(Value)) {
	if value == nil {
		return
	}

	f(value)

	switch value := value.(type) {
	case Enum:
		for _, field := range value.Fields {
			Walk(field, f)
		}
	case Tuple:
		for _, element := range value.Elements {
			Walk(element, f)
		}
	case Array:
		for _, element := range value.Elements {
			Walk(element, f)
		}
	case Option:
		Walk(value.Inner, f)
	}
}

// MapLeaves returns a copy of the value in which each value
// which is not an enum, tuple, array or option is replaced by the result of f.
// Arrays take the kind of their new elements.
func MapLeaves(value Value, f func(Value) (Value, error)) (Value, error) {
	mapAll := func(values []Value) ([]Value, error) {
		result := make([]Value, len(values))
		for i, element := range values {
			mapped, err := MapLeaves(element, f)
			if err != nil {
				return nil, err
			}
			result[i] = mapped
		}
		return result, nil
	}

	switch value := value.(type) {
	case Enum:
		fields, err := mapAll(value.Fields)
		if err != nil {
			return nil, err
		}
		return NewEnum(value.Name, fields...), nil

	case Tuple:
		elements, err := mapAll(value.Elements)
		if err != nil {
			return nil, err
		}
		return NewTuple(elements...), nil

	case Array:
		elements, err := mapAll(value.Elements)
		if err != nil {
			return nil, err
		}
		elementKind := value.ElementKind
		if len(elements) > 0 {
			elementKind = elements[0].Kind()
		}
		return NewArray(elementKind, elements...)

	case Option:
		if !value.IsSome() {
			return value, nil
		}
		inner, err := MapLeaves(value.Inner, f)
		if err != nil {
			return nil, err
		}
		return NewSome(inner), nil
	}

	return f(value)
}
