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

package stdlib

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/ledger"
)

// Invoker performs calls of the native blueprints.
type Invoker struct {
	environment *Environment
	blueprints  map[string]*Blueprint
	logger      logrus.FieldLogger
}

var _ interpreter.Invoker = &Invoker{}

// NativeBlueprints are the blueprints of the native package.
var NativeBlueprints = []*Blueprint{
	AccountBlueprint,
	SystemBlueprint,
}

func NewInvoker(environment *Environment, logger logrus.FieldLogger) *Invoker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	blueprints := make(map[string]*Blueprint, len(NativeBlueprints))
	for _, blueprint := range NativeBlueprints {
		blueprints[blueprint.Name] = blueprint
	}

	return &Invoker{
		environment: environment,
		blueprints:  blueprints,
		logger:      logger,
	}
}

func (i *Invoker) Invoke(ctx context.Context, call *interpreter.Call) (interpreter.CallResult, error) {
	if err := ctx.Err(); err != nil {
		return interpreter.CallResult{}, interpreter.CancelledError{Err: err}
	}

	var component *ledger.Component
	packageAddress := call.Package
	blueprintName := call.Blueprint

	if call.Kind == interpreter.CallKindMethod {
		var err error
		component, err = call.Track.Component(call.Component)
		if err != nil {
			return interpreter.CallResult{}, err
		}
		packageAddress = component.Package
		blueprintName = component.Blueprint
	}

	pkg, err := call.Track.Package(packageAddress)
	if err != nil {
		return interpreter.CallResult{}, err
	}

	blueprint, ok := i.blueprints[blueprintName]
	if !ok || !pkg.HasBlueprint(blueprintName) {
		return interpreter.CallResult{}, UnknownBlueprintError{
			Package:   packageAddress,
			Blueprint: blueprintName,
		}
	}

	function, err := blueprint.Lookup(call.Kind, call.Method)
	if err != nil {
		return interpreter.CallResult{}, err
	}

	err = function.CheckArguments(call.Arguments)
	if err != nil {
		return interpreter.CallResult{}, err
	}

	logger := i.logger.WithFields(logrus.Fields{
		"blueprint": blueprint.Name,
		"method":    function.Name,
	})

	return function.Function(&Invocation{
		Context:     ctx,
		Call:        call,
		Track:       call.Track,
		Component:   component,
		Environment: i.environment,
		Logger:      logger,
	})
}
