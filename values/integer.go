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
	"math/big"

	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/format"
)

// Integer is a fixed-width integer of one of the kinds I8..I128 and U8..U128.
type Integer struct {
	kind  Kind
	value *big.Int
}

var _ Value = Integer{}

var integerRanges = func() map[Kind][2]*big.Int {
	ranges := map[Kind][2]*big.Int{}
	one := big.NewInt(1)
	for kind := KindI8; kind <= KindU128; kind++ {
		bits := kind.IntegerBits()
		var min, max *big.Int
		if kind.IsSignedInteger() {
			max = new(big.Int).Sub(new(big.Int).Lsh(one, bits-1), one)
			min = new(big.Int).Neg(new(big.Int).Lsh(one, bits-1))
		} else {
			max = new(big.Int).Sub(new(big.Int).Lsh(one, bits), one)
			min = new(big.Int)
		}
		ranges[kind] = [2]*big.Int{min, max}
	}
	return ranges
}()

// IntegerRange returns the inclusive bounds of an integer kind.
func IntegerRange(kind Kind) (min, max *big.Int) {
	bounds, ok := integerRanges[kind]
	if !ok {
		panic(errors.NewUnreachableError())
	}
	return new(big.Int).Set(bounds[0]), new(big.Int).Set(bounds[1])
}

// NewInteger returns the integer of the given kind,
// or a MalformedLiteralError if the value is out of the kind's range.
func NewInteger(kind Kind, value *big.Int) (Integer, error) {
	if !kind.IsInteger() {
		return Integer{}, errors.NewUnexpectedError("%s is not an integer kind", kind)
	}
	bounds := integerRanges[kind]
	if value.Cmp(bounds[0]) < 0 || value.Cmp(bounds[1]) > 0 {
		return Integer{}, NewMalformedLiteralError(
			kind,
			"%s is out of range [%s, %s]",
			value,
			bounds[0],
			bounds[1],
		)
	}
	return Integer{
		kind:  kind,
		value: new(big.Int).Set(value),
	}, nil
}

// MustInteger is NewInteger for values known to be in range.
func MustInteger(kind Kind, value *big.Int) Integer {
	integer, err := NewInteger(kind, value)
	if err != nil {
		panic(err)
	}
	return integer
}

func NewU8(v uint8) Integer {
	return MustInteger(KindU8, new(big.Int).SetUint64(uint64(v)))
}

func NewU16(v uint16) Integer {
	return MustInteger(KindU16, new(big.Int).SetUint64(uint64(v)))
}

func NewU32(v uint32) Integer {
	return MustInteger(KindU32, new(big.Int).SetUint64(uint64(v)))
}

func NewU64(v uint64) Integer {
	return MustInteger(KindU64, new(big.Int).SetUint64(v))
}

func NewI8(v int8) Integer {
	return MustInteger(KindI8, big.NewInt(int64(v)))
}

func NewI16(v int16) Integer {
	return MustInteger(KindI16, big.NewInt(int64(v)))
}

func NewI32(v int32) Integer {
	return MustInteger(KindI32, big.NewInt(int64(v)))
}

func NewI64(v int64) Integer {
	return MustInteger(KindI64, big.NewInt(v))
}

func (Integer) isValue() {}

func (v Integer) Kind() Kind {
	return v.kind
}

// BigInt returns a copy of the integer's value.
func (v Integer) BigInt() *big.Int {
	if v.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.value)
}

// Uint64 returns the value if it is representable as an uint64.
func (v Integer) Uint64() (uint64, bool) {
	value := v.BigInt()
	if value.Sign() < 0 || !value.IsUint64() {
		return 0, false
	}
	return value.Uint64(), true
}

// Int64 returns the value if it is representable as an int64.
func (v Integer) Int64() (int64, bool) {
	value := v.BigInt()
	if !value.IsInt64() {
		return 0, false
	}
	return value.Int64(), true
}

func (v Integer) Literal(_ common.AddressCodec) string {
	return format.Integer(v.BigInt().String(), v.kind.IntegerSuffix())
}

func (v Integer) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v Integer) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}
