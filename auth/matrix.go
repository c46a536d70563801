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
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/values"
)

// Rule is the permission and mutability of one action.
type Rule struct {
	Action     Action
	Permission AccessRule
	Mutability AccessRule
}

func (r Rule) ToValue() values.Value {
	return values.NewTuple(
		r.Action.ToValue(),
		values.NewTuple(
			r.Permission.ToValue(),
			r.Mutability.ToValue(),
		),
	)
}

// RulesType is the schema of the rules argument of CREATE_RESOURCE, i.e.
// Array<Tuple>(Tuple(Enum(action), Tuple(permission, mutability)), ...)
var RulesType = values.ArrayOf(
	values.TupleOf(
		ActionType,
		values.TupleOf(AccessRuleType, AccessRuleType),
	),
)

// DecodeRules decodes the rules argument of CREATE_RESOURCE.
func DecodeRules(value values.Value) ([]Rule, error) {
	err := values.Conforms(value, RulesType)
	if err != nil {
		return nil, err
	}

	elements := value.(values.Array).Elements
	rules := make([]Rule, 0, len(elements))

	for _, element := range elements {
		tuple := element.(values.Tuple)
		action, err := DecodeAction(tuple.Elements[0])
		if err != nil {
			return nil, err
		}

		pair := tuple.Elements[1].(values.Tuple)
		permission, err := DecodeAccessRule(pair.Elements[0])
		if err != nil {
			return nil, err
		}
		mutability, err := DecodeAccessRule(pair.Elements[1])
		if err != nil {
			return nil, err
		}

		rules = append(rules, Rule{
			Action:     action,
			Permission: permission,
			Mutability: mutability,
		})
	}

	return rules, nil
}

// RulesValue encodes rules as the rules argument of CREATE_RESOURCE.
func RulesValue(rules []Rule) values.Value {
	elements := make([]values.Value, len(rules))
	for i, rule := range rules {
		elements[i] = rule.ToValue()
	}
	return values.MustArray(values.KindTuple, elements...)
}

// Authorizer decides if the rule node is satisfied,
// usually by asking an Oracle about the presented proofs.
type Authorizer func(node RuleNode) bool

func (a Authorizer) authorize(node RuleNode) bool {
	if a == nil {
		return false
	}
	return a(node)
}

type entry struct {
	permission AccessRule
	mutability AccessRule
}

// Matrix is the behavior matrix of a resource:
// the permission and mutability of each action.
//
// The zero value denies every action and allows no changes.
type Matrix struct {
	entries [actionCount]entry
}

// NewMatrix returns a matrix with the given rules.
// Actions without a rule keep (DenyAll, DenyAll).
func NewMatrix(rules []Rule) (*Matrix, error) {
	matrix := &Matrix{}

	var seen [actionCount]bool
	for _, rule := range rules {
		if seen[rule.Action] {
			return nil, DuplicateRuleError{Action: rule.Action}
		}
		seen[rule.Action] = true

		matrix.entries[rule.Action] = entry{
			permission: rule.Permission,
			mutability: rule.Mutability,
		}
	}

	return matrix, nil
}

// Resolve returns the current permission and mutability of the action.
func (m *Matrix) Resolve(action Action) (permission AccessRule, mutability AccessRule) {
	entry := m.entries[action]
	return entry.permission, entry.mutability
}

// Check fails with AuthDeniedError if the permission of the action is not satisfied.
func (m *Matrix) Check(action Action, authorizer Authorizer) error {
	permission := m.entries[action].permission

	switch permission.Kind {
	case AccessRuleKindAllowAll:
		return nil

	case AccessRuleKindDenyAll:
		return AuthDeniedError{
			Action:     action,
			Permission: permission,
		}

	case AccessRuleKindProtected:
		if authorizer.authorize(permission.Node) {
			return nil
		}
		return AuthDeniedError{
			Action:     action,
			Permission: permission,
		}
	}

	panic(errors.NewUnreachableError())
}

// checkMutable fails with AuthImmutableError if the mutability of the action
// does not allow changes by the caller.
func (m *Matrix) checkMutable(action Action, authorizer Authorizer) error {
	mutability := m.entries[action].mutability

	switch mutability.Kind {
	case AccessRuleKindAllowAll:
		return nil

	case AccessRuleKindDenyAll:
		return AuthImmutableError{
			Action:     action,
			Mutability: mutability,
			Reason:     "the rules are permanently locked",
		}

	case AccessRuleKindProtected:
		if authorizer.authorize(mutability.Node) {
			return nil
		}
		return AuthImmutableError{
			Action:     action,
			Mutability: mutability,
			Reason:     "the caller is not authorized",
		}
	}

	panic(errors.NewUnreachableError())
}

// Update replaces the permission of the action.
// The mutability is left untouched.
func (m *Matrix) Update(action Action, permission AccessRule, authorizer Authorizer) error {
	err := m.checkMutable(action, authorizer)
	if err != nil {
		return err
	}

	m.entries[action].permission = permission
	return nil
}

// strictness orders access rules from the most permissive to the most restrictive.
func strictness(rule AccessRule) int {
	switch rule.Kind {
	case AccessRuleKindAllowAll:
		return 0
	case AccessRuleKindProtected:
		return 1
	case AccessRuleKindDenyAll:
		return 2
	}

	panic(errors.NewUnreachableError())
}

// Narrow tightens the mutability of the action.
// Only AllowAll → Protected/DenyAll and Protected → DenyAll are allowed,
// and only while the current mutability allows changes by the caller.
func (m *Matrix) Narrow(action Action, mutability AccessRule, authorizer Authorizer) error {
	err := m.checkMutable(action, authorizer)
	if err != nil {
		return err
	}

	current := m.entries[action].mutability
	if strictness(mutability) <= strictness(current) {
		return AuthImmutableError{
			Action:     action,
			Mutability: current,
			Reason:     "mutability can only be narrowed",
		}
	}

	m.entries[action].mutability = mutability
	return nil
}

// Rules returns the rules of all actions, in action order.
func (m *Matrix) Rules() []Rule {
	rules := make([]Rule, 0, actionCount)
	for _, action := range Actions() {
		entry := m.entries[action]
		rules = append(rules, Rule{
			Action:     action,
			Permission: entry.permission,
			Mutability: entry.mutability,
		})
	}
	return rules
}

func (m *Matrix) Clone() *Matrix {
	clone := *m
	return &clone
}

func (m *Matrix) ToValue() values.Value {
	return RulesValue(m.Rules())
}
