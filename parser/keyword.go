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

package parser

import (
	"github.com/SaveTheRbtz/mph"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/values"
)

// NOTE: ensure to update valueKeywords when adding a new keyword
const (
	KeywordTrue             = "true"
	KeywordFalse            = "false"
	KeywordNone             = "None"
	KeywordSome             = "Some"
	KeywordEnum             = "Enum"
	KeywordTuple            = "Tuple"
	KeywordArray            = "Array"
	KeywordBytes            = "Bytes"
	KeywordDecimal          = "Decimal"
	KeywordComponentAddress = "ComponentAddress"
	KeywordResourceAddress  = "ResourceAddress"
	KeywordPackageAddress   = "PackageAddress"
	KeywordNonFungibleId    = "NonFungibleId"
	KeywordUuid             = "Uuid"
	KeywordExpression       = "Expression"
	KeywordBucket           = "Bucket"
	KeywordProof            = "Proof"
)

// valueKeywords are the identifiers which start a value.
// Uuid is only valid inside NonFungibleId.
var valueKeywords = []string{
	KeywordTrue,
	KeywordFalse,
	KeywordNone,
	KeywordSome,
	KeywordEnum,
	KeywordTuple,
	KeywordArray,
	KeywordBytes,
	KeywordDecimal,
	KeywordComponentAddress,
	KeywordResourceAddress,
	KeywordPackageAddress,
	KeywordNonFungibleId,
	KeywordExpression,
	KeywordBucket,
	KeywordProof,
}

var valueKeywordsTable = mph.Build(valueKeywords)

// IsValueKeyword returns true if the identifier starts a value.
func IsValueKeyword(identifier string) bool {
	_, ok := valueKeywordsTable.Lookup(identifier)
	return ok
}

var opcodes = ast.Opcodes()

var opcodeNames = func() []string {
	names := make([]string, len(opcodes))
	for i, opcode := range opcodes {
		names[i] = opcode.String()
	}
	return names
}()

var opcodeNamesTable = mph.Build(opcodeNames)

// opcodeByName returns the opcode with the given name, e.g. CALL_METHOD.
func opcodeByName(name string) (ast.Opcode, bool) {
	index, ok := opcodeNamesTable.Lookup(name)
	if !ok {
		return ast.OpcodeUnknown, false
	}
	return opcodes[index], true
}

// closestOpcode returns the opcode whose name is closest to the given name,
// or OpcodeUnknown if no name is close enough.
func closestOpcode(name string) (closest ast.Opcode) {
	nameRunes := []rune(name)

	closestDistance := len(name)

	for i, opcodeName := range opcodeNames {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(opcodeName),
			levenshtein.DefaultOptions,
		)

		// Don't suggest a complete replacement of the name
		if distance < closestDistance && distance < len(opcodeName) {
			closest = opcodes[i]
			closestDistance = distance
		}
	}

	return
}

var kinds = values.Kinds()

var kindNames = func() []string {
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	return names
}()

var kindNamesTable = mph.Build(kindNames)

// kindByName returns the value kind with the given name, e.g. U8.
func kindByName(name string) (values.Kind, bool) {
	index, ok := kindNamesTable.Lookup(name)
	if !ok {
		return 0, false
	}
	return kinds[index], true
}

var integerSuffixes, integerSuffixKinds = func() ([]string, []values.Kind) {
	var suffixes []string
	var suffixKinds []values.Kind
	for _, kind := range kinds {
		if kind.IsInteger() {
			suffixes = append(suffixes, kind.IntegerSuffix())
			suffixKinds = append(suffixKinds, kind)
		}
	}
	return suffixes, suffixKinds
}()

var integerSuffixesTable = mph.Build(integerSuffixes)

// integerKindBySuffix returns the integer kind with the given literal suffix, e.g. u8.
func integerKindBySuffix(suffix string) (values.Kind, bool) {
	index, ok := integerSuffixesTable.Lookup(suffix)
	if !ok {
		return 0, false
	}
	return integerSuffixKinds[index], true
}
