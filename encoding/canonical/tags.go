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
	"github.com/ledgerworks/rtm/values"
)

// CBORTagBase is the tag number of the first value kind.
// Tags must fit into a single byte after the 0xd8 initial byte.
const CBORTagBase = 128

// !!! *WARNING* !!!
//
// The tag of a value is CBORTagBase plus its kind,
// so value kinds must only ever be appended.
//
// DO *NOT* REORDER VALUE KINDS!

const (
	CBORTagUnit             = CBORTagBase + uint64(values.KindUnit)
	CBORTagBool             = CBORTagBase + uint64(values.KindBool)
	CBORTagString           = CBORTagBase + uint64(values.KindString)
	CBORTagEnum             = CBORTagBase + uint64(values.KindEnum)
	CBORTagTuple            = CBORTagBase + uint64(values.KindTuple)
	CBORTagArray            = CBORTagBase + uint64(values.KindArray)
	CBORTagBytes            = CBORTagBase + uint64(values.KindBytes)
	CBORTagDecimal          = CBORTagBase + uint64(values.KindDecimal)
	CBORTagComponentAddress = CBORTagBase + uint64(values.KindComponentAddress)
	CBORTagResourceAddress  = CBORTagBase + uint64(values.KindResourceAddress)
	CBORTagPackageAddress   = CBORTagBase + uint64(values.KindPackageAddress)
	CBORTagNonFungibleId    = CBORTagBase + uint64(values.KindNonFungibleId)
	CBORTagExpression       = CBORTagBase + uint64(values.KindExpression)
	CBORTagBucket           = CBORTagBase + uint64(values.KindBucket)
	CBORTagProof            = CBORTagBase + uint64(values.KindProof)
	CBORTagOption           = CBORTagBase + uint64(values.KindOption)
)

// !!! *WARNING* !!!
//
// Message tags follow the value tags.
// ADD NEW MESSAGE TAGS *AFTER* THE EXISTING ONES.

const (
	CBORTagManifest = CBORTagBase + uint64(values.KindCount) + iota
)

// ManifestVersion is the version of the manifest message format.
const ManifestVersion = 1

func valueTag(kind values.Kind) uint64 {
	return CBORTagBase + uint64(kind)
}

func tagKind(tag uint64) (values.Kind, bool) {
	if tag < CBORTagBase || tag >= CBORTagBase+uint64(values.KindCount) {
		return 0, false
	}
	return values.Kind(tag - CBORTagBase), true
}

func init() {
	if CBORTagManifest > 0xff {
		panic("canonical: tags must fit into one byte")
	}
}
