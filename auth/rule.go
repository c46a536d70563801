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

package auth

import (
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/values"
)

// AccessRuleKind

type AccessRuleKind uint8

// The zero access rule denies everything.
const (
	AccessRuleKindDenyAll AccessRuleKind = iota
	AccessRuleKindAllowAll
	AccessRuleKindProtected
)

func (k AccessRuleKind) String() string {
	switch k {
	case AccessRuleKindDenyAll:
		return "DenyAll"
	case AccessRuleKindAllowAll:
		return "AllowAll"
	case AccessRuleKindProtected:
		return "Protected"
	}

	panic(errors.NewUnreachableError())
}

// AccessRule is used both as the permission and as the mutability of an action.
// Node is only set for protected rules.
type AccessRule struct {
	Kind AccessRuleKind
	Node RuleNode
}

var AllowAll = AccessRule{Kind: AccessRuleKindAllowAll}

var DenyAll = AccessRule{Kind: AccessRuleKindDenyAll}

func Protected(node RuleNode) AccessRule {
	return AccessRule{
		Kind: AccessRuleKindProtected,
		Node: node,
	}
}

func (r AccessRule) ToValue() values.Value {
	switch r.Kind {
	case AccessRuleKindAllowAll, AccessRuleKindDenyAll:
		return values.NewEnum(r.Kind.String())
	case AccessRuleKindProtected:
		return values.NewEnum(r.Kind.String(), r.Node.ToValue())
	}

	panic(errors.NewUnreachableError())
}

func (r AccessRule) String() string {
	return r.ToValue().String()
}

// RuleNode is a composable authorization rule.
type RuleNode interface {
	isRuleNode()
	ToValue() values.Value
}

// ProofRuleNode is satisfied when its proof rule is satisfied.
type ProofRuleNode struct {
	Rule ProofRule
}

func (ProofRuleNode) isRuleNode() {}

func (n ProofRuleNode) ToValue() values.Value {
	return values.NewEnum("ProofRule", n.Rule.ToValue())
}

// AnyOfNode is satisfied when at least one of its nodes is satisfied.
type AnyOfNode struct {
	Nodes []RuleNode
}

func (AnyOfNode) isRuleNode() {}

func (n AnyOfNode) ToValue() values.Value {
	return values.NewEnum("AnyOf", ruleNodesValue(n.Nodes))
}

// AllOfNode is satisfied when all of its nodes are satisfied.
type AllOfNode struct {
	Nodes []RuleNode
}

func (AllOfNode) isRuleNode() {}

func (n AllOfNode) ToValue() values.Value {
	return values.NewEnum("AllOf", ruleNodesValue(n.Nodes))
}

func ruleNodesValue(nodes []RuleNode) values.Value {
	elements := make([]values.Value, len(nodes))
	for i, node := range nodes {
		elements[i] = node.ToValue()
	}
	return values.MustArray(values.KindEnum, elements...)
}

// ResourceOrNonFungible is either a whole resource,
// or a single non-fungible of a resource.
type ResourceOrNonFungible struct {
	Resource      common.ResourceAddress
	IsNonFungible bool
	Id            values.NonFungibleId
}

func RequireResource(resource common.ResourceAddress) ResourceOrNonFungible {
	return ResourceOrNonFungible{Resource: resource}
}

func RequireNonFungible(resource common.ResourceAddress, id values.NonFungibleId) ResourceOrNonFungible {
	return ResourceOrNonFungible{
		Resource:      resource,
		IsNonFungible: true,
		Id:            id,
	}
}

func (r ResourceOrNonFungible) ToValue() values.Value {
	if r.IsNonFungible {
		return values.NewEnum("NonFungible", values.ResourceAddress(r.Resource), r.Id)
	}
	return values.NewEnum("Resource", values.ResourceAddress(r.Resource))
}

func resourcesValue(resources []ResourceOrNonFungible) values.Value {
	elements := make([]values.Value, len(resources))
	for i, resource := range resources {
		elements[i] = resource.ToValue()
	}
	return values.MustArray(values.KindEnum, elements...)
}

// ProofRule is a rule over the proofs presented.
type ProofRule interface {
	isProofRule()
	ToValue() values.Value
}

// RequireRule requires a proof of the resource or non-fungible.
type RequireRule struct {
	Resource ResourceOrNonFungible
}

func (RequireRule) isProofRule() {}

func (r RequireRule) ToValue() values.Value {
	return values.NewEnum("Require", r.Resource.ToValue())
}

// AmountOfRule requires a single proof of at least the amount of the resource.
type AmountOfRule struct {
	Amount   fixedpoint.Decimal
	Resource common.ResourceAddress
}

func (AmountOfRule) isProofRule() {}

func (r AmountOfRule) ToValue() values.Value {
	return values.NewEnum(
		"AmountOf",
		values.NewDecimal(r.Amount),
		values.ResourceAddress(r.Resource),
	)
}

// AllOfRule requires proofs of all resources.
type AllOfRule struct {
	Resources []ResourceOrNonFungible
}

func (AllOfRule) isProofRule() {}

func (r AllOfRule) ToValue() values.Value {
	return values.NewEnum("AllOf", resourcesValue(r.Resources))
}

// AnyOfRule requires a proof of at least one of the resources.
type AnyOfRule struct {
	Resources []ResourceOrNonFungible
}

func (AnyOfRule) isProofRule() {}

func (r AnyOfRule) ToValue() values.Value {
	return values.NewEnum("AnyOf", resourcesValue(r.Resources))
}

// CountOfRule requires proofs of at least Count of the resources.
type CountOfRule struct {
	Count     uint8
	Resources []ResourceOrNonFungible
}

func (CountOfRule) isProofRule() {}

func (r CountOfRule) ToValue() values.Value {
	return values.NewEnum(
		"CountOf",
		values.NewU8(r.Count),
		resourcesValue(r.Resources),
	)
}

// Schemas

var resourceOrNonFungibleType = &values.EnumType{
	Name: "ResourceOrNonFungible",
	Variants: []values.EnumVariant{
		{Name: "Resource", Fields: []values.Type{values.KindResourceAddress}},
		{Name: "NonFungible", Fields: []values.Type{values.KindResourceAddress, values.KindNonFungibleId}},
	},
}

var proofRuleType = &values.EnumType{
	Name: "ProofRule",
	Variants: []values.EnumVariant{
		{Name: "Require", Fields: []values.Type{resourceOrNonFungibleType}},
		{Name: "AmountOf", Fields: []values.Type{values.KindDecimal, values.KindResourceAddress}},
		{Name: "AllOf", Fields: []values.Type{values.ArrayOf(resourceOrNonFungibleType)}},
		{Name: "AnyOf", Fields: []values.Type{values.ArrayOf(resourceOrNonFungibleType)}},
		{Name: "CountOf", Fields: []values.Type{values.KindU8, values.ArrayOf(resourceOrNonFungibleType)}},
	},
}

// RuleNodeType is recursive, its variants are assigned in init
var RuleNodeType = &values.EnumType{
	Name: "RuleNode",
}

// AccessRuleType is the schema of access rules in manifests,
// e.g. Enum("AllowAll") or Enum("Protected", Enum("ProofRule", ...)).
var AccessRuleType = &values.EnumType{
	Name: "AccessRule",
	Variants: []values.EnumVariant{
		{Name: "AllowAll"},
		{Name: "DenyAll"},
		{Name: "Protected", Fields: []values.Type{RuleNodeType}},
	},
}

func init() {
	RuleNodeType.Variants = []values.EnumVariant{
		{Name: "ProofRule", Fields: []values.Type{proofRuleType}},
		{Name: "AnyOf", Fields: []values.Type{values.ArrayOf(RuleNodeType)}},
		{Name: "AllOf", Fields: []values.Type{values.ArrayOf(RuleNodeType)}},
	}
}

// Decoding

// DecodeAccessRule decodes an access rule from its enum value.
func DecodeAccessRule(value values.Value) (AccessRule, error) {
	err := values.Conforms(value, AccessRuleType)
	if err != nil {
		return AccessRule{}, err
	}

	enum := value.(values.Enum)
	switch enum.Name {
	case "AllowAll":
		return AllowAll, nil
	case "DenyAll":
		return DenyAll, nil
	case "Protected":
		node, err := decodeRuleNode(enum.Fields[0])
		if err != nil {
			return AccessRule{}, err
		}
		return Protected(node), nil
	}

	panic(errors.NewUnreachableError())
}

// DecodeRuleNode decodes a rule node from its enum value.
func DecodeRuleNode(value values.Value) (RuleNode, error) {
	err := values.Conforms(value, RuleNodeType)
	if err != nil {
		return nil, err
	}
	return decodeRuleNode(value)
}

// decodeRuleNode decodes a rule node which is known to conform to RuleNodeType
func decodeRuleNode(value values.Value) (RuleNode, error) {
	enum := value.(values.Enum)
	switch enum.Name {
	case "ProofRule":
		rule, err := decodeProofRule(enum.Fields[0])
		if err != nil {
			return nil, err
		}
		return ProofRuleNode{Rule: rule}, nil

	case "AnyOf", "AllOf":
		elements := enum.Fields[0].(values.Array).Elements
		nodes := make([]RuleNode, len(elements))
		for i, element := range elements {
			node, err := decodeRuleNode(element)
			if err != nil {
				return nil, err
			}
			nodes[i] = node
		}
		if enum.Name == "AnyOf" {
			return AnyOfNode{Nodes: nodes}, nil
		}
		return AllOfNode{Nodes: nodes}, nil
	}

	panic(errors.NewUnreachableError())
}

func decodeProofRule(value values.Value) (ProofRule, error) {
	enum := value.(values.Enum)
	switch enum.Name {
	case "Require":
		return RequireRule{Resource: decodeResourceOrNonFungible(enum.Fields[0])}, nil

	case "AmountOf":
		amount := enum.Fields[0].(values.Decimal).Decimal
		if amount.IsNegative() {
			return nil, values.NewMalformedLiteralError(
				values.KindDecimal,
				"negative amount %s in AmountOf rule",
				amount,
			)
		}
		return AmountOfRule{
			Amount:   amount,
			Resource: enum.Fields[1].(values.ResourceAddress).Address(),
		}, nil

	case "AllOf":
		return AllOfRule{Resources: decodeResources(enum.Fields[0])}, nil

	case "AnyOf":
		return AnyOfRule{Resources: decodeResources(enum.Fields[0])}, nil

	case "CountOf":
		count, _ := enum.Fields[0].(values.Integer).Uint64()
		return CountOfRule{
			Count:     uint8(count),
			Resources: decodeResources(enum.Fields[1]),
		}, nil
	}

	panic(errors.NewUnreachableError())
}

func decodeResources(value values.Value) []ResourceOrNonFungible {
	elements := value.(values.Array).Elements
	resources := make([]ResourceOrNonFungible, len(elements))
	for i, element := range elements {
		resources[i] = decodeResourceOrNonFungible(element)
	}
	return resources
}

func decodeResourceOrNonFungible(value values.Value) ResourceOrNonFungible {
	enum := value.(values.Enum)
	resource := enum.Fields[0].(values.ResourceAddress).Address()
	if enum.Name == "NonFungible" {
		return RequireNonFungible(resource, enum.Fields[1].(values.NonFungibleId))
	}
	return RequireResource(resource)
}
