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

package manifest

import (
	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/encoding/canonical"
)

// DefaultLineWidth is the width manifests are formatted to
const DefaultLineWidth = 100

// Decompile returns the canonical text of the manifest.
//
// Buckets and proofs are named bucket1, bucket2, ... and proof1, proof2, ...
// regardless of their names in the source, so manifests which only differ
// in handle names decompile to the same text.
// Parsing the text results in an equal manifest.
func Decompile(manifest *ast.Manifest, network common.Network, lineWidth int) (string, error) {
	_, err := ast.Check(manifest.Instructions)
	if err != nil {
		return "", err
	}

	unnamed := &ast.Manifest{
		Instructions: manifest.Instructions,
		BucketCount:  manifest.BucketCount,
		ProofCount:   manifest.ProofCount,
	}
	return unnamed.Format(common.AddressCodec{Network: network}, lineWidth), nil
}

// DecompileBytes decodes a manifest from its canonical encoding and decompiles it.
func DecompileBytes(b []byte, network common.Network, lineWidth int) (string, error) {
	manifest, err := canonical.DecodeManifest(b)
	if err != nil {
		return "", err
	}
	return Decompile(manifest, network, lineWidth)
}
