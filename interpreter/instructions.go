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
	"context"
	"maps"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/resource"
	"github.com/ledgerworks/rtm/values"
)

func resourceArgument(value values.Value) common.ResourceAddress {
	return value.(values.ResourceAddress).Address()
}

func decimalArgument(value values.Value) fixedpoint.Decimal {
	return value.(values.Decimal).Decimal
}

func stringArgument(value values.Value) string {
	return string(value.(values.String))
}

// execute executes one instruction and returns its output.
func (e *Execution) execute(ctx context.Context, instruction *ast.Instruction) (values.Value, error) {
	arguments := instruction.Arguments

	// manifests which were not parsed, e.g. built or decoded ones, are not checked yet
	err := instruction.Opcode.Info().CheckArguments(arguments)
	if err != nil {
		return nil, err
	}

	switch instruction.Opcode {
	case ast.OpcodeCallMethod:
		return e.callMethod(
			ctx,
			arguments[0].(values.ComponentAddress).Address(),
			stringArgument(arguments[1]),
			arguments[2:],
		)

	case ast.OpcodeCallFunction:
		return e.callFunction(
			ctx,
			arguments[0].(values.PackageAddress).Address(),
			stringArgument(arguments[1]),
			stringArgument(arguments[2]),
			arguments[3:],
		)

	case ast.OpcodeCallMethodWithAllResources:
		return e.callMethodWithAllResources(
			ctx,
			arguments[0].(values.ComponentAddress).Address(),
			stringArgument(arguments[1]),
		)

	case ast.OpcodeTakeFromWorktop:
		container, err := e.worktop.TakeAll(resourceArgument(arguments[0]))
		if err != nil {
			return nil, err
		}
		return e.declareBucket(instruction, container), nil

	case ast.OpcodeTakeFromWorktopByAmount:
		container, err := e.worktop.Take(
			resourceArgument(arguments[1]),
			decimalArgument(arguments[0]),
		)
		if err != nil {
			return nil, err
		}
		return e.declareBucket(instruction, container), nil

	case ast.OpcodeTakeFromWorktopByIds:
		ids, err := resource.DecodeIds(arguments[0])
		if err != nil {
			return nil, err
		}
		container, err := e.worktop.TakeIds(resourceArgument(arguments[1]), ids)
		if err != nil {
			return nil, err
		}
		return e.declareBucket(instruction, container), nil

	case ast.OpcodeReturnToWorktop:
		container, err := e.consumeBucket(arguments[0].(values.Bucket))
		if err != nil {
			return nil, err
		}
		return values.NewUnit(), e.worktop.Put(container)

	case ast.OpcodeAssertWorktopContains:
		return values.NewUnit(), e.worktop.AssertContains(resourceArgument(arguments[0]))

	case ast.OpcodeAssertWorktopContainsByAmount:
		return values.NewUnit(), e.worktop.AssertContainsAmount(
			resourceArgument(arguments[1]),
			decimalArgument(arguments[0]),
		)

	case ast.OpcodeAssertWorktopContainsByIds:
		ids, err := resource.DecodeIds(arguments[0])
		if err != nil {
			return nil, err
		}
		return values.NewUnit(), e.worktop.AssertContainsIds(resourceArgument(arguments[1]), ids)

	case ast.OpcodePopFromAuthZone:
		proof, err := e.authZone.Pop()
		if err != nil {
			return nil, err
		}
		// the popped proof keeps its locks
		return e.declareProof(instruction, e.allocator.AddProof(proof)), nil

	case ast.OpcodePushToAuthZone:
		proof, err := e.takeProof(arguments[0].(values.Proof))
		if err != nil {
			return nil, err
		}
		e.authZone.Push(proof)
		return values.NewUnit(), nil

	case ast.OpcodeClearAuthZone:
		for _, proof := range e.authZone.Clear() {
			e.allocator.Release(proof)
		}
		return values.NewUnit(), nil

	case ast.OpcodeCreateProofFromAuthZone:
		proof, err := e.authZone.CreateProof(resourceArgument(arguments[0]))
		if err != nil {
			return nil, err
		}
		return e.declareProof(instruction, e.allocator.NewProof(proof)), nil

	case ast.OpcodeCreateProofFromAuthZoneByAmount:
		proof, err := e.authZone.CreateProofByAmount(
			resourceArgument(arguments[1]),
			decimalArgument(arguments[0]),
		)
		if err != nil {
			return nil, err
		}
		return e.declareProof(instruction, e.allocator.NewProof(proof)), nil

	case ast.OpcodeCreateProofFromAuthZoneByIds:
		ids, err := resource.DecodeIds(arguments[0])
		if err != nil {
			return nil, err
		}
		proof, err := e.authZone.CreateProofByIds(resourceArgument(arguments[1]), ids)
		if err != nil {
			return nil, err
		}
		return e.declareProof(instruction, e.allocator.NewProof(proof)), nil

	case ast.OpcodeCreateProofFromBucket:
		id := arguments[0].(values.Bucket)
		runtime, err := e.runtimeBucket(id)
		if err != nil {
			return nil, err
		}
		container, err := e.allocator.Bucket(runtime)
		if err != nil {
			return nil, renameBucketError(err, uint32(id))
		}
		proof, err := newBucketProof(runtime, container)
		if err != nil {
			return nil, err
		}
		return e.declareProof(instruction, e.allocator.NewProof(proof)), nil

	case ast.OpcodeCloneProof:
		id := arguments[0].(values.Proof)
		runtime, err := e.runtimeProof(id)
		if err != nil {
			return nil, err
		}
		proof, err := e.allocator.Proof(runtime)
		if err != nil {
			return nil, renameProofError(err, uint32(id))
		}
		return e.declareProof(instruction, e.allocator.NewProof(proof.Clone())), nil

	case ast.OpcodeDropProof:
		id := arguments[0].(values.Proof)
		runtime, err := e.runtimeProof(id)
		if err != nil {
			return nil, err
		}
		return values.NewUnit(), e.allocator.DropProof(runtime)

	case ast.OpcodeDropAllProofs:
		e.dropAllProofs()
		return values.NewUnit(), nil

	case ast.OpcodeCreateResource:
		return e.createResource(arguments)

	case ast.OpcodeMintFungible:
		return e.mint(resourceArgument(arguments[0]), func(manager *resource.Manager) (*resource.Container, error) {
			return manager.Mint(decimalArgument(arguments[1]))
		})

	case ast.OpcodeMintNonFungible:
		ids, err := resource.DecodeIds(arguments[1])
		if err != nil {
			return nil, err
		}
		return e.mint(resourceArgument(arguments[0]), func(manager *resource.Manager) (*resource.Container, error) {
			return manager.MintIds(ids)
		})

	case ast.OpcodeBurnBucket:
		return e.burn(arguments[0].(values.Bucket))

	case ast.OpcodeUpdateResourceAuth,
		ast.OpcodeUpdateResourceMutability:

		return e.updateResourceAuth(instruction.Opcode, arguments)

	case ast.OpcodeSetMetadata:
		manager, err := e.track.Resource(resourceArgument(arguments[0]))
		if err != nil {
			return nil, err
		}
		err = manager.Matrix.Check(auth.ActionUpdateMetadata, e.authorizer())
		if err != nil {
			return nil, err
		}
		manager.Metadata[stringArgument(arguments[1])] = stringArgument(arguments[2])
		return values.NewUnit(), nil
	}

	panic(errors.NewUnreachableError())
}

func (e *Execution) authorizer() auth.Authorizer {
	return e.authZone.Authorizer(e.config.Oracle)
}

// declareBucket allocates the bucket declared by the instruction.
func (e *Execution) declareBucket(instruction *ast.Instruction, container *resource.Container) values.Value {
	e.bucketIds[instruction.Declaration] = e.allocator.NewBucket(container)
	return values.Bucket(instruction.Declaration)
}

// declareProof binds the proof declared by the instruction to the allocated proof.
func (e *Execution) declareProof(instruction *ast.Instruction, runtime uint32) values.Value {
	e.proofIds[instruction.Declaration] = runtime
	return values.Proof(instruction.Declaration)
}

func (e *Execution) consumeBucket(id values.Bucket) (*resource.Container, error) {
	runtime, err := e.runtimeBucket(id)
	if err != nil {
		return nil, err
	}
	container, err := e.allocator.ConsumeBucket(runtime)
	if err != nil {
		return nil, renameBucketError(err, uint32(id))
	}
	return container, nil
}

func (e *Execution) takeProof(id values.Proof) (*Proof, error) {
	runtime, err := e.runtimeProof(id)
	if err != nil {
		return nil, err
	}
	proof, err := e.allocator.TakeProof(runtime)
	if err != nil {
		return nil, renameProofError(err, uint32(id))
	}
	return proof, nil
}

func (e *Execution) createResource(arguments []values.Value) (values.Value, error) {
	decoded, err := ast.DecodeCreateResource(arguments)
	if err != nil {
		return nil, err
	}

	matrix, err := auth.NewMatrix(decoded.Rules)
	if err != nil {
		return nil, err
	}

	manager := e.track.CreateResource(decoded.Type, decoded.Metadata, matrix)

	// the initial supply is not subject to the mint permission
	if decoded.Supply != nil {
		container, err := manager.MintSupply(*decoded.Supply)
		if err != nil {
			return nil, err
		}
		err = e.worktop.Put(container)
		if err != nil {
			return nil, err
		}
	}

	e.logger.WithField("resource", manager.Address).Debug("created resource")

	return values.ResourceAddress(manager.Address), nil
}

func (e *Execution) mint(
	address common.ResourceAddress,
	mint func(manager *resource.Manager) (*resource.Container, error),
) (values.Value, error) {
	manager, err := e.track.Resource(address)
	if err != nil {
		return nil, err
	}

	err = manager.Matrix.Check(auth.ActionMint, e.authorizer())
	if err != nil {
		return nil, err
	}

	container, err := mint(manager)
	if err != nil {
		return nil, err
	}

	return values.NewUnit(), e.worktop.Put(container)
}

func (e *Execution) burn(id values.Bucket) (values.Value, error) {
	runtime, err := e.runtimeBucket(id)
	if err != nil {
		return nil, err
	}
	container, err := e.allocator.Bucket(runtime)
	if err != nil {
		return nil, renameBucketError(err, uint32(id))
	}

	manager, err := e.track.Resource(container.ResourceAddress())
	if err != nil {
		return nil, err
	}

	err = manager.Matrix.Check(auth.ActionBurn, e.authorizer())
	if err != nil {
		return nil, err
	}

	container, err = e.consumeBucket(id)
	if err != nil {
		return nil, err
	}

	return values.NewUnit(), manager.Burn(container)
}

func (e *Execution) updateResourceAuth(opcode ast.Opcode, arguments []values.Value) (values.Value, error) {
	manager, err := e.track.Resource(resourceArgument(arguments[0]))
	if err != nil {
		return nil, err
	}

	action, err := auth.DecodeAction(arguments[1])
	if err != nil {
		return nil, err
	}

	rule, err := auth.DecodeAccessRule(arguments[2])
	if err != nil {
		return nil, err
	}

	if opcode == ast.OpcodeUpdateResourceMutability {
		err = manager.Matrix.Narrow(action, rule, e.authorizer())
	} else {
		err = manager.Matrix.Update(action, rule, e.authorizer())
	}
	if err != nil {
		return nil, err
	}
	return values.NewUnit(), nil
}

// Calls

func (e *Execution) callMethod(
	ctx context.Context,
	component common.ComponentAddress,
	method string,
	arguments []values.Value,
) (values.Value, error) {
	call := &Call{
		Kind:      CallKindMethod,
		Component: component,
		Method:    method,
	}
	return e.call(ctx, call, arguments)
}

func (e *Execution) callFunction(
	ctx context.Context,
	pkg common.PackageAddress,
	blueprint string,
	function string,
	arguments []values.Value,
) (values.Value, error) {
	call := &Call{
		Kind:      CallKindFunction,
		Package:   pkg,
		Blueprint: blueprint,
		Method:    function,
	}
	return e.call(ctx, call, arguments)
}

// callMethodWithAllResources calls the method with one array of buckets,
// holding all resources of the worktop and all remaining buckets.
func (e *Execution) callMethodWithAllResources(
	ctx context.Context,
	component common.ComponentAddress,
	method string,
) (values.Value, error) {
	drained, moved, err := e.drainWorktop()
	if err != nil {
		return nil, err
	}

	buckets := drained.Elements
	for _, id := range slices.Sorted(maps.Keys(e.bucketIds)) {
		runtime := e.bucketIds[id]
		if e.allocator.IsConsumed(runtime) {
			continue
		}
		container, err := e.allocator.ConsumeBucket(runtime)
		if err != nil {
			return nil, renameBucketError(err, id)
		}
		moved[runtime] = container
		buckets = append(buckets, values.Bucket(runtime))
	}

	call := &Call{
		Kind:      CallKindMethod,
		Component: component,
		Method:    method,
		Arguments: []values.Value{
			values.MustArray(values.KindBucket, buckets...),
		},
		Buckets: moved,
	}
	return e.invoke(ctx, call)
}

// call moves the buckets and proofs referenced by the arguments into the call,
// expands expressions, and invokes the call.
//
// Bucket and proof values of the call refer to the runtime ids.
func (e *Execution) call(ctx context.Context, call *Call, arguments []values.Value) (values.Value, error) {
	call.Buckets = map[uint32]*resource.Container{}
	call.Proofs = map[uint32]*Proof{}

	translate := func(value values.Value) (values.Value, error) {
		switch value := value.(type) {
		case values.Bucket:
			runtime, err := e.runtimeBucket(value)
			if err != nil {
				return nil, err
			}
			container, err := e.consumeBucket(value)
			if err != nil {
				return nil, err
			}
			call.Buckets[runtime] = container
			return values.Bucket(runtime), nil

		case values.Proof:
			runtime, err := e.runtimeProof(value)
			if err != nil {
				return nil, err
			}
			proof, err := e.takeProof(value)
			if err != nil {
				return nil, err
			}
			call.Proofs[runtime] = proof
			return values.Proof(runtime), nil

		case values.Expression:
			switch value {
			case values.ExpressionEntireWorktop:
				buckets, moved, err := e.drainWorktop()
				if err != nil {
					return nil, err
				}
				maps.Copy(call.Buckets, moved)
				return buckets, nil

			case values.ExpressionEntireAuthZone:
				zone := e.authZone.Proofs()
				proofs := make([]values.Value, 0, len(zone))
				for _, proof := range zone {
					runtime := e.allocator.NewProof(proof.Clone())
					moved, err := e.allocator.TakeProof(runtime)
					if err != nil {
						return nil, err
					}
					call.Proofs[runtime] = moved
					proofs = append(proofs, values.Proof(runtime))
				}
				return values.MustArray(values.KindProof, proofs...), nil
			}

			panic(errors.NewUnreachableError())
		}

		return value, nil
	}

	call.Arguments = make([]values.Value, len(arguments))
	for i, argument := range arguments {
		translated, err := values.MapLeaves(argument, translate)
		if err != nil {
			return nil, err
		}
		call.Arguments[i] = translated
	}

	return e.invoke(ctx, call)
}

// invoke performs the call, then releases the moved proofs,
// checks that the callee took the resources of all moved buckets,
// and puts the returned resources and proofs on the worktop and the auth zone.
func (e *Execution) invoke(ctx context.Context, call *Call) (values.Value, error) {
	invoker := e.config.Invoker
	if invoker == nil {
		return nil, errors.NewUnexpectedError("no invoker configured")
	}

	if call.Buckets == nil {
		call.Buckets = map[uint32]*resource.Container{}
	}
	if call.Proofs == nil {
		call.Proofs = map[uint32]*Proof{}
	}
	call.AuthZone = e.authZone.Proofs()
	call.Oracle = e.config.Oracle
	call.Track = e.track

	var start time.Time
	if e.config.Tracer.enabled() {
		start = time.Now()
	}

	var result CallResult
	var err error
	panicErr := errors.WrapPanic(func() {
		result, err = invoker.Invoke(ctx, call)
	})
	if panicErr != nil {
		err = panicErr
	}

	if e.config.Tracer.enabled() {
		e.config.Tracer.reportCallTrace(e, call, time.Since(start), err)
	}

	if err != nil {
		return nil, ExternalCallFailedError{
			Target: call.Target(),
			Method: call.Method,
			Err:    err,
		}
	}

	for _, id := range slices.Sorted(maps.Keys(call.Proofs)) {
		e.allocator.Release(call.Proofs[id])
	}

	for _, id := range slices.Sorted(maps.Keys(call.Buckets)) {
		container := call.Buckets[id]
		if !container.IsEmpty() {
			return nil, ExternalCallFailedError{
				Target: call.Target(),
				Method: call.Method,
				Err: UnconsumedBucketError{
					Bucket:    e.manifestBucket(id),
					Container: container.String(),
				},
			}
		}
	}

	for _, container := range result.Resources {
		err := e.worktop.Put(container)
		if err != nil {
			return nil, err
		}
	}

	for _, proof := range result.Proofs {
		e.allocator.Lock(proof)
		e.authZone.Push(proof)
	}

	lockedFee, err := e.lockedFee.Add(result.LockedFee)
	if err != nil {
		return nil, err
	}
	e.lockedFee = lockedFee

	e.logger.WithFields(logrus.Fields{
		"target": call.Target(),
		"method": call.Method,
	}).Debug("invoked")

	if result.Output == nil {
		return values.NewUnit(), nil
	}
	return result.Output, nil
}

// drainWorktop moves all resources of the worktop into new buckets,
// which are consumed immediately.
// It returns the buckets, and their containers keyed by bucket id.
func (e *Execution) drainWorktop() (values.Array, map[uint32]*resource.Container, error) {
	containers, err := e.worktop.Drain()
	if err != nil {
		return values.Array{}, nil, err
	}

	moved := make(map[uint32]*resource.Container, len(containers))
	buckets := make([]values.Value, 0, len(containers))
	for _, container := range containers {
		id := e.allocator.NewBucket(container)
		_, err := e.allocator.ConsumeBucket(id)
		if err != nil {
			return values.Array{}, nil, err
		}
		moved[id] = container
		buckets = append(buckets, values.Bucket(id))
	}

	return values.MustArray(values.KindBucket, buckets...), moved, nil
}
