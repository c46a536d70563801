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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {

	t.Parallel()

	txHash := HashOf([]byte("tx"))

	first := NewAddress(EntityTypeResource, txHash, 0)
	second := NewAddress(EntityTypeResource, txHash, 1)

	assert.Equal(t, EntityTypeResource, first.EntityType())
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, NewAddress(EntityTypeResource, txHash, 0))
}

func TestAddressCodec(t *testing.T) {

	t.Parallel()

	txHash := HashOf([]byte("tx"))

	t.Run("round trip", func(t *testing.T) {

		t.Parallel()

		for _, entityType := range []EntityType{
			EntityTypeResource,
			EntityTypePackage,
			EntityTypeNormalComponent,
			EntityTypeAccountComponent,
			EntityTypeSystemComponent,
		} {
			address := NewAddress(entityType, txHash, 7)

			encoded, err := SimulatorAddressCodec.Encode(address)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(encoded, entityType.String()+"_sim1"), encoded)

			decoded, err := SimulatorAddressCodec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, address, decoded)
		}
	})

	t.Run("checksum", func(t *testing.T) {

		t.Parallel()

		encoded := SimulatorAddressCodec.MustEncode(NewAddress(EntityTypeResource, txHash, 0))

		// flip the last checksum character
		last := encoded[len(encoded)-1]
		replacement := byte('q')
		if last == 'q' {
			replacement = 'p'
		}
		corrupted := encoded[:len(encoded)-1] + string(replacement)

		_, err := SimulatorAddressCodec.Decode(corrupted)
		require.Error(t, err)
		require.IsType(t, InvalidAddressError{}, err)
	})

	t.Run("wrong network", func(t *testing.T) {

		t.Parallel()

		encoded := AddressCodec{Network: LocalNetwork}.MustEncode(NewAddress(EntityTypeResource, txHash, 0))

		_, err := SimulatorAddressCodec.Decode(encoded)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match")
	})

	t.Run("wrong entity", func(t *testing.T) {

		t.Parallel()

		encoded := SimulatorAddressCodec.MustEncode(NewAddress(EntityTypePackage, txHash, 0))

		_, err := SimulatorAddressCodec.DecodeResourceAddress(encoded)
		require.Error(t, err)

		_, err = SimulatorAddressCodec.DecodePackageAddress(encoded)
		require.NoError(t, err)
	})

	t.Run("account is a component", func(t *testing.T) {

		t.Parallel()

		encoded := SimulatorAddressCodec.MustEncode(NewAddress(EntityTypeAccountComponent, txHash, 0))

		address, err := SimulatorAddressCodec.DecodeComponentAddress(encoded)
		require.NoError(t, err)
		assert.Equal(t, EntityTypeAccountComponent, address.Address().EntityType())
	})
}

func TestAddressFromBytes(t *testing.T) {

	t.Parallel()

	_, err := AddressFromBytes([]byte{0x1})
	require.Error(t, err)

	raw := make([]byte, AddressLength)
	raw[0] = 0xff
	_, err = AddressFromBytes(raw)
	require.Error(t, err)

	raw[0] = byte(EntityTypePackage)
	address, err := AddressFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, EntityTypePackage, address.EntityType())
}

func TestNetworkByName(t *testing.T) {

	t.Parallel()

	network, err := NetworkByName("localnet")
	require.NoError(t, err)
	assert.Equal(t, LocalNetwork, network)

	_, err = NetworkByName("nope")
	require.Error(t, err)
}
