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
	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/values"
)

// HashValue returns the hash of the value's canonical encoding.
func HashValue(value values.Value) (common.Hash, error) {
	b, err := Encode(value)
	if err != nil {
		return common.Hash{}, err
	}
	return common.HashOf(b), nil
}

// HashManifest returns the hash of the manifest's canonical encoding.
// Manifests which only differ in bucket and proof names have the same hash.
func HashManifest(manifest *ast.Manifest) (common.Hash, error) {
	b, err := EncodeManifest(manifest)
	if err != nil {
		return common.Hash{}, err
	}
	return common.HashOf(b), nil
}
