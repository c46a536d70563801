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
	"github.com/ledgerworks/rtm/errors"
)

// Kind is the discriminant of a value.
// Kinds are also the element types of arrays, e.g. Array<U8>.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindString
	KindEnum
	KindTuple
	KindArray
	KindBytes
	KindDecimal
	KindComponentAddress
	KindResourceAddress
	KindPackageAddress
	KindNonFungibleId
	KindExpression
	KindBucket
	KindProof
	KindOption

	// NOTE: add new kinds before this line
	KindCount
)

// Kinds returns all kinds in discriminant order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, KindCount)
	for kind := Kind(0); kind < KindCount; kind++ {
		kinds = append(kinds, kind)
	}
	return kinds
}

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindI128:
		return "I128"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindU128:
		return "U128"
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindTuple:
		return "Tuple"
	case KindArray:
		return "Array"
	case KindBytes:
		return "Bytes"
	case KindDecimal:
		return "Decimal"
	case KindComponentAddress:
		return "ComponentAddress"
	case KindResourceAddress:
		return "ResourceAddress"
	case KindPackageAddress:
		return "PackageAddress"
	case KindNonFungibleId:
		return "NonFungibleId"
	case KindExpression:
		return "Expression"
	case KindBucket:
		return "Bucket"
	case KindProof:
		return "Proof"
	case KindOption:
		return "Option"
	}

	panic(errors.NewUnreachableError())
}

// IsInteger returns true for the integer kinds I8..I128 and U8..U128.
func (k Kind) IsInteger() bool {
	return k >= KindI8 && k <= KindU128
}

// IsSignedInteger returns true for the integer kinds I8..I128.
func (k Kind) IsSignedInteger() bool {
	return k >= KindI8 && k <= KindI128
}

// IntegerBits returns the width of an integer kind, or 0 for other kinds.
func (k Kind) IntegerBits() uint {
	switch k {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32:
		return 32
	case KindI64, KindU64:
		return 64
	case KindI128, KindU128:
		return 128
	}
	return 0
}

// IntegerSuffix returns the literal suffix of an integer kind, e.g. "u8".
func (k Kind) IntegerSuffix() string {
	switch k {
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindI128:
		return "i128"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	}
	return ""
}
