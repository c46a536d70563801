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

package interpreter

import (
	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
)

// WorktopPolicy decides what happens to resources left on the worktop at the end of a run.
type WorktopPolicy uint8

const (
	// WorktopPolicyRequireEmpty fails executions which leave resources on the worktop
	WorktopPolicyRequireEmpty WorktopPolicy = iota
	// WorktopPolicyDrainToAccount deposits the remaining resources into the configured account
	WorktopPolicyDrainToAccount
)

func (p WorktopPolicy) String() string {
	switch p {
	case WorktopPolicyRequireEmpty:
		return "require-empty"
	case WorktopPolicyDrainToAccount:
		return "drain-to-account"
	}

	panic(errors.NewUnreachableError())
}

// WorktopPolicyByName returns the policy with the given name, e.g. "require-empty".
func WorktopPolicyByName(name string) (WorktopPolicy, error) {
	for _, policy := range []WorktopPolicy{
		WorktopPolicyRequireEmpty,
		WorktopPolicyDrainToAccount,
	} {
		if policy.String() == name {
			return policy, nil
		}
	}
	return 0, errors.NewDefaultUserError("unknown worktop policy %q", name)
}

// Config is the configuration of an interpreter.
type Config struct {
	Tracer
	// Invoker performs method and function calls
	Invoker Invoker
	// Oracle decides protected rules. Defaults to auth.ProofOracle
	Oracle        auth.Oracle
	WorktopPolicy WorktopPolicy
	// DrainAccount receives the remaining resources with WorktopPolicyDrainToAccount
	DrainAccount common.ComponentAddress
	// Logger defaults to the standard logger
	Logger logrus.FieldLogger
}
