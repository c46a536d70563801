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

package common

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// EntityType is the first byte of every address.
type EntityType uint8

const (
	EntityTypeResource EntityType = iota
	EntityTypePackage
	EntityTypeNormalComponent
	EntityTypeAccountComponent
	EntityTypeSystemComponent
)

func (t EntityType) IsComponent() bool {
	switch t {
	case EntityTypeNormalComponent,
		EntityTypeAccountComponent,
		EntityTypeSystemComponent:
		return true
	}
	return false
}

func (t EntityType) hrpPrefix() (string, bool) {
	switch t {
	case EntityTypeResource:
		return "resource", true
	case EntityTypePackage:
		return "package", true
	case EntityTypeNormalComponent:
		return "component", true
	case EntityTypeAccountComponent:
		return "account", true
	case EntityTypeSystemComponent:
		return "system", true
	}
	return "", false
}

func (t EntityType) String() string {
	prefix, ok := t.hrpPrefix()
	if !ok {
		return fmt.Sprintf("EntityType(%d)", uint8(t))
	}
	return prefix
}

const AddressLength = 27

// Address is the raw form of all ledger addresses:
// an entity type byte followed by 26 bytes of hash.
type Address [AddressLength]byte

// NewAddress derives the address of the index-th entity of the given type
// created by the transaction with the given hash.
func NewAddress(entityType EntityType, txHash Hash, index uint32) Address {
	var indexBytes [4]byte
	binary.BigEndian.PutUint32(indexBytes[:], index)

	hash := HashOf(txHash[:], indexBytes[:])

	var address Address
	address[0] = byte(entityType)
	copy(address[1:], hash[:AddressLength-1])
	return address
}

// AddressFromBytes returns the address with the given raw bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var address Address
	if len(b) != AddressLength {
		return address, InvalidAddressError{
			Message: fmt.Sprintf("invalid length: expected %d bytes, got %d", AddressLength, len(b)),
		}
	}
	copy(address[:], b)
	if _, ok := address.EntityType().hrpPrefix(); !ok {
		return Address{}, InvalidAddressError{
			Message: fmt.Sprintf("unknown entity type %d", b[0]),
		}
	}
	return address, nil
}

func (a Address) EntityType() EntityType {
	return EntityType(a[0])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Compare orders addresses by their raw bytes.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// ComponentAddress is the address of a component, including accounts.
type ComponentAddress Address

func (a ComponentAddress) Address() Address {
	return Address(a)
}

func (a ComponentAddress) String() string {
	return SimulatorAddressCodec.MustEncode(Address(a))
}

// ResourceAddress is the address of a resource manager.
type ResourceAddress Address

func (a ResourceAddress) Address() Address {
	return Address(a)
}

func (a ResourceAddress) String() string {
	return SimulatorAddressCodec.MustEncode(Address(a))
}

// PackageAddress is the address of a package of blueprints.
type PackageAddress Address

func (a PackageAddress) Address() Address {
	return Address(a)
}

func (a PackageAddress) String() string {
	return SimulatorAddressCodec.MustEncode(Address(a))
}

// InvalidAddressError is reported for addresses which cannot be decoded.
type InvalidAddressError struct {
	Literal string
	Message string
}

func (e InvalidAddressError) Error() string {
	if e.Literal == "" {
		return fmt.Sprintf("invalid address: %s", e.Message)
	}
	return fmt.Sprintf("invalid address %q: %s", e.Literal, e.Message)
}

func (InvalidAddressError) IsUserError() {}
