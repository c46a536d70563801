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

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/ledger"
	"github.com/ledgerworks/rtm/values"
)

// Invocation is the context of a native function or method.
type Invocation struct {
	Context context.Context
	Call    *interpreter.Call
	Track   *ledger.Track
	// Component is the receiver of method calls, nil for functions
	Component   *ledger.Component
	Environment *Environment
	Logger      logrus.FieldLogger
}

// NativeFunction implements a blueprint function or method.
// The arguments are known to conform to the parameters.
type NativeFunction func(invocation *Invocation) (interpreter.CallResult, error)

// Function is a function or method of a native blueprint.
type Function struct {
	Name       string
	Parameters []values.Type
	DocString  string
	Function   NativeFunction
}

func NewStandardLibraryFunction(
	name string,
	parameters []values.Type,
	docString string,
	function NativeFunction,
) *Function {
	return &Function{
		Name:       name,
		Parameters: parameters,
		DocString:  docString,
		Function:   function,
	}
}

// CheckArguments validates the arguments against the parameters of the function.
func (f *Function) CheckArguments(arguments []values.Value) error {
	if len(arguments) != len(f.Parameters) {
		return ArgumentCountError{
			Function: f.Name,
			Expected: len(f.Parameters),
			Found:    len(arguments),
		}
	}

	for i, parameter := range f.Parameters {
		err := values.Conforms(arguments[i], parameter)
		if err != nil {
			return ast.ArgumentError{
				Index: i,
				Err:   err,
			}
		}
	}
	return nil
}

// Blueprint is a native blueprint: a set of functions,
// and the methods of its components.
type Blueprint struct {
	Name      string
	Functions map[string]*Function
	Methods   map[string]*Function
}

func NewBlueprint(name string, functions []*Function, methods []*Function) *Blueprint {
	blueprint := &Blueprint{
		Name:      name,
		Functions: make(map[string]*Function, len(functions)),
		Methods:   make(map[string]*Function, len(methods)),
	}
	for _, function := range functions {
		blueprint.Functions[function.Name] = function
	}
	for _, method := range methods {
		blueprint.Methods[method.Name] = method
	}
	return blueprint
}

// Lookup returns the function or method of the call.
func (b *Blueprint) Lookup(kind interpreter.CallKind, name string) (*Function, error) {
	var function *Function
	switch kind {
	case interpreter.CallKindFunction:
		function = b.Functions[name]
	case interpreter.CallKindMethod:
		function = b.Methods[name]
	}
	if function == nil {
		return nil, interpreter.MethodNotFoundError{
			Blueprint: b.Name,
			Method:    name,
		}
	}
	return function, nil
}
