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

//go:generate mockgen -source invoker.go -destination invoker_mock.go -package interpreter

package interpreter

import (
	"context"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/ledger"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

type CallKind uint8

const (
	CallKindMethod CallKind = iota
	CallKindFunction
)

func (k CallKind) String() string {
	switch k {
	case CallKindMethod:
		return "method"
	case CallKindFunction:
		return "function"
	}

	panic(errors.NewUnreachableError())
}

// Call is a call of a component method or a blueprint function.
//
// The buckets and proofs referenced by the arguments are moved into the call.
// The callee must take the resources of all buckets, e.g. by putting them into vaults:
// buckets which still hold resources after the call fail the execution.
type Call struct {
	Kind CallKind
	// Component is the receiver of method calls
	Component common.ComponentAddress
	// Package and Blueprint are the target of function calls
	Package   common.PackageAddress
	Blueprint string
	Method    string
	Arguments []values.Value
	// Buckets and Proofs are keyed by the ids of the Bucket and Proof values in the arguments
	Buckets map[uint32]*resource.Container
	Proofs  map[uint32]*Proof
	// AuthZone are the proofs in the caller's auth zone
	AuthZone []*Proof
	Oracle   auth.Oracle
	Track    *ledger.Track
}

// Target describes the callee, e.g. for errors.
func (c *Call) Target() string {
	switch c.Kind {
	case CallKindMethod:
		return c.Component.String()
	case CallKindFunction:
		return c.Package.String() + "::" + c.Blueprint
	}

	panic(errors.NewUnreachableError())
}

// Authorizer returns an authorizer over the proofs of the caller's auth zone.
func (c *Call) Authorizer() auth.Authorizer {
	return auth.NewAuthorizer(c.Oracle, evidence(c.AuthZone))
}

// CallResult is the result of a call.
// Resources are put on the worktop, and proofs are pushed to the auth zone.
type CallResult struct {
	Output    values.Value
	Resources []*resource.Container
	Proofs    []*Proof
	// LockedFee is the fee the callee locked, if any
	LockedFee fixedpoint.Decimal
}

// Invoker performs the calls of an execution.
type Invoker interface {
	Invoke(ctx context.Context, call *Call) (CallResult, error)
}
