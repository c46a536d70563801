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

package resource

import (
	"maps"
	"slices"

	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// Supply is the initial supply of a new resource.
type Supply struct {
	Kind   Kind
	Amount fixedpoint.Decimal
	Ids    []values.NonFungibleId
}

func FungibleSupply(amount fixedpoint.Decimal) Supply {
	return Supply{
		Kind:   KindFungible,
		Amount: amount,
	}
}

func NonFungibleSupply(ids ...values.NonFungibleId) Supply {
	return Supply{
		Kind: KindNonFungible,
		Ids:  ids,
	}
}

func (s Supply) ToValue() values.Value {
	switch s.Kind {
	case KindFungible:
		return values.NewEnum(s.Kind.String(), values.NewDecimal(s.Amount))

	case KindNonFungible:
		ids := make([]values.Value, len(s.Ids))
		for i, id := range s.Ids {
			ids[i] = id
		}
		return values.NewEnum(
			s.Kind.String(),
			values.MustArray(values.KindNonFungibleId, ids...),
		)
	}

	panic(errors.NewUnreachableError())
}

// SupplyType is the schema of initial supplies in manifests,
// e.g. Enum("Fungible", Decimal("100")) or Enum("NonFungible", Array<NonFungibleId>(...)).
var SupplyType = &values.EnumType{
	Name: "Supply",
	Variants: []values.EnumVariant{
		{Name: KindFungible.String(), Fields: []values.Type{values.KindDecimal}},
		{Name: KindNonFungible.String(), Fields: []values.Type{values.ArrayOf(values.KindNonFungibleId)}},
	},
}

// DecodeSupply decodes an initial supply from its enum value.
func DecodeSupply(value values.Value) (Supply, error) {
	err := values.Conforms(value, SupplyType)
	if err != nil {
		return Supply{}, err
	}

	enum := value.(values.Enum)
	switch enum.Name {
	case "Fungible":
		return FungibleSupply(enum.Fields[0].(values.Decimal).Decimal), nil

	case "NonFungible":
		ids, err := DecodeIds(enum.Fields[0])
		if err != nil {
			return Supply{}, err
		}
		return NonFungibleSupply(ids...), nil
	}

	panic(errors.NewUnreachableError())
}

// DecodeIds decodes an array of non-fungible ids.
// Ids must be unique.
func DecodeIds(value values.Value) ([]values.NonFungibleId, error) {
	err := values.Conforms(value, values.ArrayOf(values.KindNonFungibleId))
	if err != nil {
		return nil, err
	}

	elements := value.(values.Array).Elements
	ids := make([]values.NonFungibleId, len(elements))
	seen := make(map[values.NonFungibleId]struct{}, len(elements))

	for i, element := range elements {
		id := element.(values.NonFungibleId)
		if _, ok := seen[id]; ok {
			return nil, DuplicateNonFungibleIdError{Id: id}
		}
		seen[id] = struct{}{}
		ids[i] = id
	}

	return ids, nil
}

// MetadataType is the schema of resource metadata in manifests.
var MetadataType = values.ArrayOf(values.TupleOf(values.KindString, values.KindString))

// DecodeMetadata decodes metadata entries. Later entries replace earlier ones with the same key.
func DecodeMetadata(value values.Value) (map[string]string, error) {
	err := values.Conforms(value, MetadataType)
	if err != nil {
		return nil, err
	}

	elements := value.(values.Array).Elements
	metadata := make(map[string]string, len(elements))
	for _, element := range elements {
		entry := element.(values.Tuple)
		key := string(entry.Elements[0].(values.String))
		metadata[key] = string(entry.Elements[1].(values.String))
	}
	return metadata, nil
}

// MetadataValue encodes metadata entries, in key order.
func MetadataValue(metadata map[string]string) values.Value {
	entries := make([]values.Value, 0, len(metadata))
	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		entries = append(entries, values.NewTuple(
			values.NewString(key),
			values.NewString(metadata[key]),
		))
	}
	return values.MustArray(values.KindTuple, entries...)
}
