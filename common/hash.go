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
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

const HashLength = 32

// Hash is a SHA3-256 digest.
type Hash [HashLength]byte

// HashOf returns the SHA3-256 digest of the concatenation of the given byte slices.
func HashOf(data ...[]byte) Hash {
	hasher := sha3.New256()
	for _, d := range data {
		// Write never returns an error
		_, _ = hasher.Write(d)
	}
	var result Hash
	copy(result[:], hasher.Sum(nil))
	return result
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}
