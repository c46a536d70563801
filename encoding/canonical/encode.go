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

package canonical

import (
	"bytes"
	"fmt"
	"io"
	goRuntime "runtime"

	"github.com/fxamacker/cbor/v2"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/values"
)

// CBOREncMode
//
// See https://github.com/fxamacker/cbor:
// "For best performance, reuse EncMode and DecMode after creating them."
var CBOREncMode = func() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	options.BigIntConvert = cbor.BigIntConvertNone
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

// An Encoder converts values and manifests into their canonical binary form.
//
// Every value is a CBOR tag whose number identifies the value's kind.
// Equal values have equal encodings.
type Encoder struct {
	enc *cbor.StreamEncoder
}

// Encode returns the canonical encoding of the given value.
func Encode(value values.Value) ([]byte, error) {
	var w bytes.Buffer

	enc := NewEncoder(&w)
	defer enc.enc.Close()

	err := enc.Encode(value)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// MustEncode returns the canonical encoding of the given value,
// or panics if the value cannot be encoded.
func MustEncode(value values.Value) []byte {
	b, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return b
}

// EncodeManifest returns the canonical encoding of the given manifest.
// Bucket and proof names are not part of the encoding.
func EncodeManifest(manifest *ast.Manifest) ([]byte, error) {
	var w bytes.Buffer

	enc := NewEncoder(&w)
	defer enc.enc.Close()

	err := enc.EncodeManifest(manifest)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// NewEncoder initializes an Encoder that will write canonical bytes to the given io.Writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		enc: CBOREncMode.NewStreamEncoder(w),
	}
}

func recoverEncodingError(err *error) {
	if r := recover(); r != nil {
		// Don't recover Go errors, internal errors, or non-errors.
		switch r := r.(type) {
		case goRuntime.Error, errors.InternalError:
			panic(r)
		case error:
			*err = r
		default:
			panic(r)
		}
	}
}

// Encode writes the canonical encoding of the given value to the encoder's io.Writer.
func (e *Encoder) Encode(value values.Value) (err error) {
	defer func() {
		recoverEncodingError(&err)

		if err != nil {
			err = fmt.Errorf("canonical: failed to encode value (%T): %w", value, err)
		}
	}()

	err = e.encodeValue(value)
	if err != nil {
		return err
	}

	return e.enc.Flush()
}

// EncodeManifest writes the canonical encoding of the given manifest
// to the encoder's io.Writer, as
//
//	#6.CBORTagManifest([
//	  version: uint,
//	  instructions: [* [opcode: uint, declaration: uint, arguments: [* value]]]
//	])
func (e *Encoder) EncodeManifest(manifest *ast.Manifest) (err error) {
	defer func() {
		recoverEncodingError(&err)

		if err != nil {
			err = fmt.Errorf("canonical: failed to encode manifest: %w", err)
		}
	}()

	// Encode tag number and array head of length 2.
	err = e.enc.EncodeRawBytes([]byte{
		// tag number
		0xd8, byte(CBORTagManifest),
		// array, 2 items follow
		0x82,
	})
	if err != nil {
		return err
	}

	// element 0: version
	err = e.enc.EncodeUint64(ManifestVersion)
	if err != nil {
		return err
	}

	// element 1: instructions
	err = e.enc.EncodeArrayHead(uint64(len(manifest.Instructions)))
	if err != nil {
		return err
	}

	for _, instruction := range manifest.Instructions {
		err = e.encodeInstruction(instruction)
		if err != nil {
			return err
		}
	}

	return e.enc.Flush()
}

func (e *Encoder) encodeInstruction(instruction *ast.Instruction) error {
	err := e.enc.EncodeArrayHead(3)
	if err != nil {
		return err
	}

	err = e.enc.EncodeUint8(uint8(instruction.Opcode))
	if err != nil {
		return err
	}

	err = e.enc.EncodeUint32(instruction.Declaration)
	if err != nil {
		return err
	}

	return e.encodeValues(instruction.Arguments)
}

func (e *Encoder) encodeValues(elements []values.Value) error {
	err := e.enc.EncodeArrayHead(uint64(len(elements)))
	if err != nil {
		return err
	}
	for _, element := range elements {
		err = e.encodeValue(element)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeTag(kind values.Kind) error {
	return e.enc.EncodeRawBytes([]byte{
		// tag number
		0xd8, byte(valueTag(kind)),
	})
}

// encodeValue encodes the value as its kind's tag, followed by
//
//	Unit:              null
//	Bool:              bool
//	I8 to I64:         int
//	U8 to U64:         uint
//	I128, U128:        bignum
//	String:            text string
//	Enum:              [name: text string, * field]
//	Tuple:             [* element]
//	Array:             [element kind: uint, [* element]]
//	Bytes:             byte string
//	Decimal:           bignum of the raw, scaled value
//	addresses:         byte string of the raw address
//	NonFungibleId:     [id kind: uint, payload]
//	Expression:        text string
//	Bucket, Proof:     uint
//	Option:            null, or [inner]
func (e *Encoder) encodeValue(value values.Value) error {
	if value == nil {
		return errors.NewUnexpectedError("cannot encode nil value")
	}

	err := e.encodeTag(value.Kind())
	if err != nil {
		return err
	}

	switch value := value.(type) {
	case values.Unit:
		return e.enc.EncodeNil()

	case values.Bool:
		return e.enc.EncodeBool(bool(value))

	case values.Integer:
		kind := value.Kind()
		switch {
		case kind.IntegerBits() == 128:
			return e.enc.EncodeBigInt(value.BigInt())
		case kind.IsSignedInteger():
			v, _ := value.Int64()
			return e.enc.EncodeInt64(v)
		default:
			v, _ := value.Uint64()
			return e.enc.EncodeUint64(v)
		}

	case values.String:
		return e.enc.EncodeString(string(value))

	case values.Enum:
		err = e.enc.EncodeArrayHead(uint64(len(value.Fields) + 1))
		if err != nil {
			return err
		}
		err = e.enc.EncodeString(value.Name)
		if err != nil {
			return err
		}
		for _, field := range value.Fields {
			err = e.encodeValue(field)
			if err != nil {
				return err
			}
		}
		return nil

	case values.Tuple:
		return e.encodeValues(value.Elements)

	case values.Array:
		err = e.enc.EncodeArrayHead(2)
		if err != nil {
			return err
		}
		err = e.enc.EncodeUint8(uint8(value.ElementKind))
		if err != nil {
			return err
		}
		return e.encodeValues(value.Elements)

	case values.Bytes:
		return e.enc.EncodeBytes(value)

	case values.Decimal:
		return e.enc.EncodeBigInt(value.Raw())

	case values.ComponentAddress:
		return e.enc.EncodeBytes(value[:])

	case values.ResourceAddress:
		return e.enc.EncodeBytes(value[:])

	case values.PackageAddress:
		return e.enc.EncodeBytes(value[:])

	case values.NonFungibleId:
		return e.encodeNonFungibleId(value)

	case values.Expression:
		return e.enc.EncodeString(string(value))

	case values.Bucket:
		return e.enc.EncodeUint32(uint32(value))

	case values.Proof:
		return e.enc.EncodeUint32(uint32(value))

	case values.Option:
		if !value.IsSome() {
			return e.enc.EncodeNil()
		}
		err = e.enc.EncodeArrayHead(1)
		if err != nil {
			return err
		}
		return e.encodeValue(value.Inner)
	}

	return errors.NewUnexpectedError("cannot encode value of type %T", value)
}

func (e *Encoder) encodeNonFungibleId(id values.NonFungibleId) error {
	err := e.enc.EncodeArrayHead(2)
	if err != nil {
		return err
	}

	err = e.enc.EncodeUint8(uint8(id.IdKind()))
	if err != nil {
		return err
	}

	switch id.IdKind() {
	case values.NonFungibleIdKindU32, values.NonFungibleIdKindU64:
		return e.enc.EncodeUint64(id.Number())
	case values.NonFungibleIdKindString:
		return e.enc.EncodeString(id.Text())
	case values.NonFungibleIdKindBytes:
		return e.enc.EncodeBytes(id.Bytes())
	case values.NonFungibleIdKindUUID:
		uuid := id.UUID()
		return e.enc.EncodeBytes(uuid[:])
	}

	panic(errors.NewUnreachableError())
}
