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
	"fmt"
	"strings"
)

// Type is the expected shape of a value,
// e.g. the schema of an instruction argument.
type Type interface {
	isType()
	conform(value Value, path string) error
	String() string
}

// Conforms checks that the value has the shape of the given type.
// Mismatches are reported as ValueTypeMismatchError.
func Conforms(value Value, t Type) error {
	return t.conform(value, "")
}

func mismatch(path string, expected Type, found Value) error {
	return ValueTypeMismatchError{
		Path:     path,
		Expected: expected.String(),
		Found:    describe(found),
	}
}

func describe(value Value) string {
	switch value := value.(type) {
	case nil:
		return "nothing"
	case Enum:
		return fmt.Sprintf("Enum(%q) with %d fields", value.Name, len(value.Fields))
	case Tuple:
		return fmt.Sprintf("Tuple with %d elements", len(value.Elements))
	case Array:
		return fmt.Sprintf("Array<%s>", value.ElementKind)
	default:
		return value.Kind().String()
	}
}

// Kind is the type of all values of the kind.
// Arrays are additionally checked to be homogeneous.

var _ Type = KindUnit

func (Kind) isType() {}

func (k Kind) conform(value Value, path string) error {
	if value == nil || value.Kind() != k {
		return mismatch(path, k, value)
	}
	if array, ok := value.(Array); ok {
		for i, element := range array.Elements {
			if element.Kind() != array.ElementKind {
				return mismatch(
					fmt.Sprintf("%s[%d]", path, i),
					array.ElementKind,
					element,
				)
			}
		}
	}
	return nil
}

// AnyType accepts every value.
type AnyType struct{}

var _ Type = AnyType{}

func (AnyType) isType() {}

func (AnyType) conform(value Value, path string) error {
	if value == nil {
		return mismatch(path, AnyType{}, value)
	}
	return nil
}

func (AnyType) String() string {
	return "any value"
}

// ArrayType is the type of arrays whose elements all have the element type.
type ArrayType struct {
	Element Type
}

var _ Type = ArrayType{}

func ArrayOf(element Type) ArrayType {
	return ArrayType{Element: element}
}

func (ArrayType) isType() {}

func (t ArrayType) conform(value Value, path string) error {
	if err := KindArray.conform(value, path); err != nil {
		return mismatch(path, t, value)
	}

	array := value.(Array)

	if elementKind, ok := typeKind(t.Element); ok && array.ElementKind != elementKind {
		return mismatch(path, t, value)
	}

	for i, element := range array.Elements {
		err := t.Element.conform(element, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return err
		}
	}
	return nil
}

func (t ArrayType) String() string {
	return fmt.Sprintf("Array<%s>", t.Element)
}

// TupleType is the type of tuples with the given element types.
type TupleType struct {
	Elements []Type
}

var _ Type = TupleType{}

func TupleOf(elements ...Type) TupleType {
	return TupleType{Elements: elements}
}

func (TupleType) isType() {}

func (t TupleType) conform(value Value, path string) error {
	tuple, ok := value.(Tuple)
	if !ok || len(tuple.Elements) != len(t.Elements) {
		return mismatch(path, t, value)
	}
	for i, element := range tuple.Elements {
		err := t.Elements[i].conform(element, fmt.Sprintf("%s.%d", path, i))
		if err != nil {
			return err
		}
	}
	return nil
}

func (t TupleType) String() string {
	elements := make([]string, len(t.Elements))
	for i, element := range t.Elements {
		elements[i] = element.String()
	}
	return fmt.Sprintf("Tuple(%s)", strings.Join(elements, ", "))
}

// EnumVariant is one allowed variant of an enum type.
type EnumVariant struct {
	Name   string
	Fields []Type
}

// EnumType is the type of enums with one of the given variants.
//
// Enum types may be recursive: construct the type first,
// then assign the variants.
type EnumType struct {
	Name     string
	Variants []EnumVariant
}

var _ Type = &EnumType{}

func (*EnumType) isType() {}

func (t *EnumType) Variant(name string) (EnumVariant, bool) {
	for _, variant := range t.Variants {
		if variant.Name == name {
			return variant, true
		}
	}
	return EnumVariant{}, false
}

func (t *EnumType) conform(value Value, path string) error {
	enum, ok := value.(Enum)
	if !ok {
		return mismatch(path, t, value)
	}

	variant, ok := t.Variant(enum.Name)
	if !ok || len(variant.Fields) != len(enum.Fields) {
		return mismatch(path, t, value)
	}

	for i, field := range enum.Fields {
		err := variant.Fields[i].conform(field, fmt.Sprintf("%s.%s[%d]", path, enum.Name, i))
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *EnumType) String() string {
	if t.Name != "" {
		return t.Name
	}
	names := make([]string, len(t.Variants))
	for i, variant := range t.Variants {
		names[i] = fmt.Sprintf("%q", variant.Name)
	}
	return fmt.Sprintf("Enum(%s)", strings.Join(names, " | "))
}

// OptionType is the type of options of the inner type.
type OptionType struct {
	Inner Type
}

var _ Type = OptionType{}

func OptionOf(inner Type) OptionType {
	return OptionType{Inner: inner}
}

func (OptionType) isType() {}

func (t OptionType) conform(value Value, path string) error {
	option, ok := value.(Option)
	if !ok {
		return mismatch(path, t, value)
	}
	if !option.IsSome() {
		return nil
	}
	return t.Inner.conform(option.Inner, path+".some")
}

func (t OptionType) String() string {
	return fmt.Sprintf("Option<%s>", t.Inner)
}

// typeKind returns the kind all values of the type have, if any.
func typeKind(t Type) (Kind, bool) {
	switch t := t.(type) {
	case Kind:
		return t, true
	case ArrayType:
		return KindArray, true
	case TupleType:
		return KindTuple, true
	case *EnumType:
		return KindEnum, true
	case OptionType:
		return KindOption, true
	}
	return 0, false
}
