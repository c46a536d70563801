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
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/turbolent/prettier"

	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/format"
)

// NonFungibleIdKind is the variant of a non-fungible identifier.
// A non-fungible resource only accepts identifiers of its declared kind.
type NonFungibleIdKind uint8

const (
	NonFungibleIdKindU32 NonFungibleIdKind = iota
	NonFungibleIdKindU64
	NonFungibleIdKindString
	NonFungibleIdKindBytes
	NonFungibleIdKindUUID
)

func (k NonFungibleIdKind) String() string {
	switch k {
	case NonFungibleIdKindU32:
		return "U32"
	case NonFungibleIdKindU64:
		return "U64"
	case NonFungibleIdKindString:
		return "String"
	case NonFungibleIdKindBytes:
		return "Bytes"
	case NonFungibleIdKindUUID:
		return "UUID"
	}

	panic(errors.NewUnreachableError())
}

// NonFungibleIdKindByName returns the identifier kind with the given name, e.g. "U32".
func NonFungibleIdKindByName(name string) (NonFungibleIdKind, bool) {
	for kind := NonFungibleIdKindU32; kind <= NonFungibleIdKindUUID; kind++ {
		if kind.String() == name {
			return kind, true
		}
	}
	return 0, false
}

// NonFungibleId identifies one unit of a non-fungible resource.
//
// Identifiers are comparable and can be used as map keys.
type NonFungibleId struct {
	kind   NonFungibleIdKind
	number uint64
	// text holds the payload of string and bytes identifiers
	text string
	uuid uuid.UUID
}

var _ Value = NonFungibleId{}

func NewNonFungibleIdU32(v uint32) NonFungibleId {
	return NonFungibleId{
		kind:   NonFungibleIdKindU32,
		number: uint64(v),
	}
}

func NewNonFungibleIdU64(v uint64) NonFungibleId {
	return NonFungibleId{
		kind:   NonFungibleIdKindU64,
		number: v,
	}
}

func NewNonFungibleIdString(s string) (NonFungibleId, error) {
	if s == "" {
		return NonFungibleId{}, NewMalformedLiteralError(KindNonFungibleId, "empty string identifier")
	}
	return NonFungibleId{
		kind: NonFungibleIdKindString,
		text: s,
	}, nil
}

func NewNonFungibleIdBytes(b []byte) (NonFungibleId, error) {
	if len(b) == 0 {
		return NonFungibleId{}, NewMalformedLiteralError(KindNonFungibleId, "empty bytes identifier")
	}
	return NonFungibleId{
		kind: NonFungibleIdKindBytes,
		text: string(b),
	}, nil
}

// NewNonFungibleIdUUID returns an UUID identifier.
// Only RFC 4122 version 4 UUIDs are valid identifiers.
func NewNonFungibleIdUUID(id uuid.UUID) (NonFungibleId, error) {
	if id.Version() != 4 || id.Variant() != uuid.RFC4122 {
		return NonFungibleId{}, NewMalformedLiteralError(
			KindNonFungibleId,
			"%s is not a version 4 UUID",
			id,
		)
	}
	return NonFungibleId{
		kind: NonFungibleIdKindUUID,
		uuid: id,
	}, nil
}

func (NonFungibleId) isValue() {}

func (NonFungibleId) Kind() Kind {
	return KindNonFungibleId
}

func (v NonFungibleId) IdKind() NonFungibleIdKind {
	return v.kind
}

// Number returns the payload of U32 and U64 identifiers.
func (v NonFungibleId) Number() uint64 {
	return v.number
}

// Text returns the payload of String identifiers.
func (v NonFungibleId) Text() string {
	return v.text
}

// Bytes returns the payload of Bytes identifiers.
func (v NonFungibleId) Bytes() []byte {
	return []byte(v.text)
}

// UUID returns the payload of UUID identifiers.
func (v NonFungibleId) UUID() uuid.UUID {
	return v.uuid
}

// Compare orders identifiers by kind, then by payload.
func (v NonFungibleId) Compare(other NonFungibleId) int {
	if c := cmp.Compare(v.kind, other.kind); c != 0 {
		return c
	}
	switch v.kind {
	case NonFungibleIdKindU32, NonFungibleIdKindU64:
		return cmp.Compare(v.number, other.number)
	case NonFungibleIdKindString, NonFungibleIdKindBytes:
		return strings.Compare(v.text, other.text)
	case NonFungibleIdKindUUID:
		return bytes.Compare(v.uuid[:], other.uuid[:])
	}

	panic(errors.NewUnreachableError())
}

// SortNonFungibleIds sorts the identifiers in place, in canonical order.
func SortNonFungibleIds(ids []NonFungibleId) {
	slices.SortFunc(ids, NonFungibleId.Compare)
}

func (v NonFungibleId) payloadLiteral(codec common.AddressCodec) string {
	switch v.kind {
	case NonFungibleIdKindU32:
		return NewU32(uint32(v.number)).Literal(codec)
	case NonFungibleIdKindU64:
		return NewU64(v.number).Literal(codec)
	case NonFungibleIdKindString:
		return format.String(v.text)
	case NonFungibleIdKindBytes:
		return Bytes(v.text).Literal(codec)
	case NonFungibleIdKindUUID:
		return format.Call("Uuid", format.String(v.uuid.String()))
	}

	panic(errors.NewUnreachableError())
}

func (v NonFungibleId) Literal(codec common.AddressCodec) string {
	return format.Call("NonFungibleId", v.payloadLiteral(codec))
}

func (v NonFungibleId) Doc(codec common.AddressCodec) prettier.Doc {
	return prettier.Text(v.Literal(codec))
}

func (v NonFungibleId) String() string {
	return v.Literal(common.SimulatorAddressCodec)
}
