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
	"fmt"
	"math"
	"math/big"
	goRuntime "runtime"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// CBORDecMode
//
// See https://github.com/fxamacker/cbor:
// "For best performance, reuse EncMode and DecMode after creating them."
//
// Encoded values and manifests are untrusted input,
// so the decoder limits sizes and nesting.
var CBORDecMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		IntDec:           cbor.IntDecConvertNone,
		MaxArrayElements: 1_000_000,
		MaxMapPairs:      1_000_000,
		MaxNestedLevels:  math.MaxInt16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

// DecodingError is reported for input which is not a canonical encoding.
type DecodingError struct {
	Err error
}

var _ errors.UserError = DecodingError{}

func (DecodingError) IsUserError() {}

// ErrorKind is the kind of the cause, if it has one,
// e.g. a syntax error for an invalid decoded instruction.
func (e DecodingError) ErrorKind() errors.Kind {
	switch kind := errors.KindOf(e.Err); kind {
	case errors.KindUnknown, errors.KindInternal:
		return errors.KindMalformedLiteral
	default:
		return kind
	}
}

func (e DecodingError) Unwrap() error {
	return e.Err
}

func (e DecodingError) Error() string {
	return fmt.Sprintf("canonical: failed to decode: %s", e.Err.Error())
}

// Decoder decodes canonical encodings of values and manifests.
type Decoder struct {
	dec *cbor.StreamDecoder
}

// Decode returns the value decoded from its canonical encoding.
// All bytes must be consumed.
func Decode(b []byte) (values.Value, error) {
	dec := NewDecoder(b)

	v, err := dec.Decode()
	if err != nil {
		return nil, err
	}

	err = dec.checkConsumed(len(b))
	if err != nil {
		return nil, err
	}

	return v, nil
}

// DecodeManifest returns the manifest decoded from its canonical encoding.
// The decoded instructions are checked like parsed ones.
func DecodeManifest(b []byte) (*ast.Manifest, error) {
	dec := NewDecoder(b)

	manifest, err := dec.DecodeManifest()
	if err != nil {
		return nil, err
	}

	err = dec.checkConsumed(len(b))
	if err != nil {
		return nil, err
	}

	return manifest, nil
}

// NewDecoder initializes a Decoder that will decode the given bytes.
func NewDecoder(b []byte) *Decoder {
	// NOTE: encoded data is not copied by decoder.
	return &Decoder{
		dec: CBORDecMode.NewByteStreamDecoder(b),
	}
}

func (d *Decoder) checkConsumed(length int) error {
	if d.dec.NumBytesDecoded() != length {
		return DecodingError{
			Err: fmt.Errorf(
				"decoded %d bytes, received %d bytes",
				d.dec.NumBytesDecoded(),
				length,
			),
		}
	}
	return nil
}

func recoverDecodingError(err *error) {
	// Recover panic error if there is any.
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

	if *err != nil {
		if _, ok := (*err).(DecodingError); !ok {
			*err = DecodingError{Err: *err}
		}
	}
}

// Decode reads the canonical encoding of a value.
func (d *Decoder) Decode() (value values.Value, err error) {
	defer recoverDecodingError(&err)

	return d.decodeValue()
}

// DecodeManifest reads the canonical encoding of a manifest.
func (d *Decoder) DecodeManifest() (manifest *ast.Manifest, err error) {
	defer recoverDecodingError(&err)

	err = decodeCBORTagWithKnownNumber(d.dec, CBORTagManifest)
	if err != nil {
		return nil, err
	}

	err = decodeCBORArrayWithKnownSize(d.dec, 2)
	if err != nil {
		return nil, err
	}

	// element 0: version
	version, err := d.dec.DecodeUint64()
	if err != nil {
		return nil, err
	}
	if version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", version)
	}

	// element 1: instructions
	count, err := d.dec.DecodeArrayHead()
	if err != nil {
		return nil, err
	}

	instructions := make([]*ast.Instruction, 0, count)
	for i := uint64(0); i < count; i++ {
		instruction, err := d.decodeInstruction()
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instruction)
	}

	counter, err := ast.Check(instructions)
	if err != nil {
		return nil, err
	}

	return &ast.Manifest{
		Instructions: instructions,
		BucketCount:  counter.Buckets,
		ProofCount:   counter.Proofs,
	}, nil
}

func (d *Decoder) decodeInstruction() (*ast.Instruction, error) {
	err := decodeCBORArrayWithKnownSize(d.dec, 3)
	if err != nil {
		return nil, err
	}

	opcode, err := d.dec.DecodeUint64()
	if err != nil {
		return nil, err
	}
	if opcode > math.MaxUint8 {
		return nil, fmt.Errorf("invalid opcode %d", opcode)
	}

	declaration, err := d.dec.DecodeUint64()
	if err != nil {
		return nil, err
	}
	if declaration > math.MaxUint32 {
		return nil, fmt.Errorf("invalid declaration %d", declaration)
	}

	arguments, err := d.decodeValues()
	if err != nil {
		return nil, err
	}

	return &ast.Instruction{
		Opcode:      ast.Opcode(opcode),
		Arguments:   arguments,
		Declaration: uint32(declaration),
	}, nil
}

func (d *Decoder) decodeValues() ([]values.Value, error) {
	count, err := d.dec.DecodeArrayHead()
	if err != nil {
		return nil, err
	}

	result := make([]values.Value, 0, count)
	for i := uint64(0); i < count; i++ {
		value, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

func (d *Decoder) decodeValue() (values.Value, error) {
	tag, err := d.dec.DecodeTagNumber()
	if err != nil {
		return nil, err
	}

	kind, ok := tagKind(tag)
	if !ok {
		return nil, fmt.Errorf("unsupported value with CBOR tag number %d", tag)
	}

	switch kind {
	case values.KindUnit:
		err = d.dec.DecodeNil()
		if err != nil {
			return nil, err
		}
		return values.NewUnit(), nil

	case values.KindBool:
		b, err := d.dec.DecodeBool()
		if err != nil {
			return nil, err
		}
		return values.NewBool(b), nil

	case values.KindI8, values.KindI16, values.KindI32, values.KindI64,
		values.KindU8, values.KindU16, values.KindU32, values.KindU64,
		values.KindI128, values.KindU128:

		return d.decodeInteger(kind)

	case values.KindString:
		s, err := d.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return values.NewString(s), nil

	case values.KindEnum:
		count, err := d.dec.DecodeArrayHead()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("enum without name")
		}
		name, err := d.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		fields := make([]values.Value, 0, count-1)
		for i := uint64(1); i < count; i++ {
			field, err := d.decodeValue()
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		return values.NewEnum(name, fields...), nil

	case values.KindTuple:
		elements, err := d.decodeValues()
		if err != nil {
			return nil, err
		}
		return values.NewTuple(elements...), nil

	case values.KindArray:
		err = decodeCBORArrayWithKnownSize(d.dec, 2)
		if err != nil {
			return nil, err
		}
		elementKind, err := d.dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		if elementKind >= uint64(values.KindCount) {
			return nil, fmt.Errorf("invalid array element kind %d", elementKind)
		}
		elements, err := d.decodeValues()
		if err != nil {
			return nil, err
		}
		return values.NewArray(values.Kind(elementKind), elements...)

	case values.KindBytes:
		b, err := d.dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return values.NewBytes(b), nil

	case values.KindDecimal:
		raw, err := d.dec.DecodeBigInt()
		if err != nil {
			return nil, err
		}
		decimal, err := fixedpoint.NewDecimalFromRaw(raw)
		if err != nil {
			return nil, err
		}
		return values.NewDecimal(decimal), nil

	case values.KindComponentAddress:
		address, err := d.decodeAddress()
		if err != nil {
			return nil, err
		}
		if !address.EntityType().IsComponent() {
			return nil, fmt.Errorf("%s address is not a component address", address.EntityType())
		}
		return values.ComponentAddress(address), nil

	case values.KindResourceAddress:
		address, err := d.decodeAddress()
		if err != nil {
			return nil, err
		}
		if address.EntityType() != common.EntityTypeResource {
			return nil, fmt.Errorf("%s address is not a resource address", address.EntityType())
		}
		return values.ResourceAddress(address), nil

	case values.KindPackageAddress:
		address, err := d.decodeAddress()
		if err != nil {
			return nil, err
		}
		if address.EntityType() != common.EntityTypePackage {
			return nil, fmt.Errorf("%s address is not a package address", address.EntityType())
		}
		return values.PackageAddress(address), nil

	case values.KindNonFungibleId:
		return d.decodeNonFungibleId()

	case values.KindExpression:
		name, err := d.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return values.NewExpression(name)

	case values.KindBucket:
		id, err := d.decodeUint32()
		if err != nil {
			return nil, err
		}
		return values.Bucket(id), nil

	case values.KindProof:
		id, err := d.decodeUint32()
		if err != nil {
			return nil, err
		}
		return values.Proof(id), nil

	case values.KindOption:
		nextType, err := d.dec.NextType()
		if err != nil {
			return nil, err
		}
		if nextType == cbor.NilType {
			err = d.dec.DecodeNil()
			if err != nil {
				return nil, err
			}
			return values.None, nil
		}
		err = decodeCBORArrayWithKnownSize(d.dec, 1)
		if err != nil {
			return nil, err
		}
		inner, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		return values.NewSome(inner), nil
	}

	panic(errors.NewUnreachableError())
}

func (d *Decoder) decodeInteger(kind values.Kind) (values.Value, error) {
	switch {
	case kind.IntegerBits() == 128:
		v, err := d.dec.DecodeBigInt()
		if err != nil {
			return nil, err
		}
		return values.NewInteger(kind, v)

	case kind.IsSignedInteger():
		v, err := d.dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return values.NewInteger(kind, big.NewInt(v))

	default:
		v, err := d.dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		return values.NewInteger(kind, new(big.Int).SetUint64(v))
	}
}

func (d *Decoder) decodeUint32() (uint32, error) {
	v, err := d.dec.DecodeUint64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%d does not fit into 32 bits", v)
	}
	return uint32(v), nil
}

func (d *Decoder) decodeAddress() (common.Address, error) {
	b, err := d.dec.DecodeBytes()
	if err != nil {
		return common.Address{}, err
	}
	return common.AddressFromBytes(b)
}

func (d *Decoder) decodeNonFungibleId() (values.Value, error) {
	err := decodeCBORArrayWithKnownSize(d.dec, 2)
	if err != nil {
		return nil, err
	}

	idKind, err := d.dec.DecodeUint64()
	if err != nil {
		return nil, err
	}

	switch values.NonFungibleIdKind(idKind) {
	case values.NonFungibleIdKindU32:
		v, err := d.decodeUint32()
		if err != nil {
			return nil, err
		}
		return values.NewNonFungibleIdU32(v), nil

	case values.NonFungibleIdKindU64:
		v, err := d.dec.DecodeUint64()
		if err != nil {
			return nil, err
		}
		return values.NewNonFungibleIdU64(v), nil

	case values.NonFungibleIdKindString:
		s, err := d.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return values.NewNonFungibleIdString(s)

	case values.NonFungibleIdKindBytes:
		b, err := d.dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return values.NewNonFungibleIdBytes(b)

	case values.NonFungibleIdKindUUID:
		b, err := d.dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		id, err := uuid.FromBytes(b)
		if err != nil {
			return nil, err
		}
		return values.NewNonFungibleIdUUID(id)
	}

	return nil, fmt.Errorf("invalid non-fungible id kind %d", idKind)
}

func decodeCBORArrayWithKnownSize(dec *cbor.StreamDecoder, n uint64) error {
	c, err := dec.DecodeArrayHead()
	if err != nil {
		return err
	}
	if c != n {
		return fmt.Errorf("CBOR array has %d elements (expected %d elements)", c, n)
	}
	return nil
}

func decodeCBORTagWithKnownNumber(dec *cbor.StreamDecoder, n uint64) error {
	tagNum, err := dec.DecodeTagNumber()
	if err != nil {
		return err
	}
	if tagNum != n {
		return fmt.Errorf("CBOR tag number is %d (expected %d)", tagNum, n)
	}
	return nil
}
