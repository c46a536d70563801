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
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressCodec converts addresses to and from their bech32 form.
// The human-readable part is the entity type followed by the network suffix,
// e.g. resource_sim.
type AddressCodec struct {
	Network Network
}

var SimulatorAddressCodec = AddressCodec{Network: SimulatorNetwork}

func (c AddressCodec) hrp(entityType EntityType) (string, error) {
	prefix, ok := entityType.hrpPrefix()
	if !ok {
		return "", InvalidAddressError{
			Message: fmt.Sprintf("unknown entity type %d", entityType),
		}
	}
	return prefix + "_" + c.Network.HRPSuffix, nil
}

func (c AddressCodec) Encode(address Address) (string, error) {
	hrp, err := c.hrp(address.EntityType())
	if err != nil {
		return "", err
	}

	data, err := bech32.ConvertBits(address[:], 8, 5, true)
	if err != nil {
		return "", err
	}

	return bech32.Encode(hrp, data)
}

// MustEncode encodes the address, panicking for addresses
// with an unknown entity type.
func (c AddressCodec) MustEncode(address Address) string {
	encoded, err := c.Encode(address)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Decode decodes a bech32 address and checks that its human-readable part
// matches both the entity type and the codec's network.
func (c AddressCodec) Decode(literal string) (Address, error) {
	hrp, data, err := bech32.Decode(literal)
	if err != nil {
		return Address{}, InvalidAddressError{
			Literal: literal,
			Message: err.Error(),
		}
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, InvalidAddressError{
			Literal: literal,
			Message: err.Error(),
		}
	}

	address, err := AddressFromBytes(raw)
	if err != nil {
		return Address{}, InvalidAddressError{
			Literal: literal,
			Message: err.(InvalidAddressError).Message,
		}
	}

	expectedHRP, err := c.hrp(address.EntityType())
	if err != nil {
		return Address{}, err
	}
	if hrp != expectedHRP {
		return Address{}, InvalidAddressError{
			Literal: literal,
			Message: fmt.Sprintf(
				"human-readable part %q does not match %s address on network %s",
				hrp,
				address.EntityType(),
				c.Network,
			),
		}
	}

	return address, nil
}

func (c AddressCodec) DecodeResourceAddress(literal string) (ResourceAddress, error) {
	address, err := c.Decode(literal)
	if err != nil {
		return ResourceAddress{}, err
	}
	if address.EntityType() != EntityTypeResource {
		return ResourceAddress{}, InvalidAddressError{
			Literal: literal,
			Message: fmt.Sprintf("expected resource address, got %s address", address.EntityType()),
		}
	}
	return ResourceAddress(address), nil
}

func (c AddressCodec) DecodePackageAddress(literal string) (PackageAddress, error) {
	address, err := c.Decode(literal)
	if err != nil {
		return PackageAddress{}, err
	}
	if address.EntityType() != EntityTypePackage {
		return PackageAddress{}, InvalidAddressError{
			Literal: literal,
			Message: fmt.Sprintf("expected package address, got %s address", address.EntityType()),
		}
	}
	return PackageAddress(address), nil
}

func (c AddressCodec) DecodeComponentAddress(literal string) (ComponentAddress, error) {
	address, err := c.Decode(literal)
	if err != nil {
		return ComponentAddress{}, err
	}
	if !address.EntityType().IsComponent() {
		return ComponentAddress{}, InvalidAddressError{
			Literal: literal,
			Message: fmt.Sprintf("expected component address, got %s address", address.EntityType()),
		}
	}
	return ComponentAddress(address), nil
}
