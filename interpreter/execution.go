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
	goerrors "errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/ledger"
	"github.com/ledgerworks/rtm/values"
)

// Status is the state of an execution.
type Status uint8

const (
	StatusPending Status = iota
	StatusRunning
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusRunning:
		return "Running"
	case StatusCommitted:
		return "Committed"
	case StatusAborted:
		return "Aborted"
	}

	panic(errors.NewUnreachableError())
}

// Interpreter creates executions of manifests.
type Interpreter struct {
	config Config
}

func New(config Config) *Interpreter {
	if config.Oracle == nil {
		config.Oracle = auth.ProofOracle{}
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &Interpreter{
		config: config,
	}
}

// Execution is one run of a manifest against a ledger track.
//
// An execution owns its worktop, allocator and auth zone.
// It is not safe for concurrent use.
type Execution struct {
	config    *Config
	manifest  *ast.Manifest
	track     *ledger.Track
	logger    logrus.FieldLogger
	status    Status
	worktop   *Worktop
	allocator *Allocator
	authZone  *AuthZone
	// bucketIds and proofIds map the handles of the manifest to the runtime ids
	bucketIds map[uint32]uint32
	proofIds  map[uint32]uint32
	outputs   []values.Value
	lockedFee fixedpoint.Decimal
}

func (i *Interpreter) NewExecution(manifest *ast.Manifest, track *ledger.Track) *Execution {
	return &Execution{
		config:   &i.config,
		manifest: manifest,
		track:    track,
		logger: i.config.Logger.WithField(
			"transaction",
			track.TransactionHash().Hex(),
		),
		status:    StatusPending,
		worktop:   NewWorktop(track),
		allocator: NewAllocator(),
		authZone:  NewAuthZone(),
		bucketIds: map[uint32]uint32{},
		proofIds:  map[uint32]uint32{},
	}
}

func (e *Execution) TransactionHash() common.Hash {
	return e.track.TransactionHash()
}

func (e *Execution) Status() Status {
	return e.status
}

// Receipt is the result of an execution.
type Receipt struct {
	Status          Status
	TransactionHash common.Hash
	// Outputs holds the output of each instruction of a committed execution
	Outputs []values.Value
	// Delta is the state change of a committed execution
	Delta *ledger.Delta
	// Flows are the worktop totals of a committed execution, per resource
	Flows map[common.ResourceAddress]Flow
	// LockedFee is recorded, but never charged
	LockedFee fixedpoint.Decimal
	// Error is the cause of an aborted execution
	Error *ExecutionError
}

func (r *Receipt) IsCommitted() bool {
	return r.Status == StatusCommitted
}

// Run executes the instructions of the manifest, in order.
//
// The execution either commits, and the receipt holds the state delta of the track,
// or aborts at the first failure, and the receipt holds the error.
// The track must be discarded after an aborted run.
// Run returns an error only if the execution was already run.
func (e *Execution) Run(ctx context.Context) (*Receipt, error) {
	if e.status != StatusPending {
		return nil, InvalidStateError{Status: e.status}
	}
	e.status = StatusRunning

	var start time.Time
	if e.config.Tracer.enabled() {
		start = time.Now()
	}

	receipt := &Receipt{
		TransactionHash: e.track.TransactionHash(),
	}

	executionErr := e.run(ctx)
	if executionErr == nil {
		delta, err := e.track.Delta()
		if err != nil {
			executionErr = &ExecutionError{
				Index: len(e.manifest.Instructions),
				Err:   err,
			}
		} else {
			receipt.Delta = delta
		}
	}

	receipt.Outputs = e.outputs
	receipt.Flows = e.worktop.Flows()
	receipt.LockedFee = e.lockedFee

	if executionErr != nil {
		e.status = StatusAborted
		receipt.Delta = nil
		receipt.Outputs = nil
		receipt.Flows = nil
		receipt.Error = executionErr

		e.logger.WithFields(logrus.Fields{
			"index": executionErr.Index,
			"kind":  executionErr.ErrorKind(),
		}).WithError(executionErr.Err).Info("execution aborted")
	} else {
		e.status = StatusCommitted

		e.logger.WithFields(logrus.Fields{
			"instructions": len(e.manifest.Instructions),
			"changed":      len(receipt.Delta.Addresses()),
		}).Info("execution committed")
	}
	receipt.Status = e.status

	if e.config.Tracer.enabled() {
		var err error
		if executionErr != nil {
			err = executionErr
		}
		e.config.Tracer.reportExecutionTrace(
			e,
			e.status,
			len(e.outputs),
			time.Since(start),
			err,
		)
	}

	return receipt, nil
}

func (e *Execution) run(ctx context.Context) (executionErr *ExecutionError) {
	index := len(e.manifest.Instructions)
	opcode := ast.OpcodeUnknown

	// panics are internal errors, e.g. a failing invariant, or a panicking invoker
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		var err error
		switch recovered := recovered.(type) {
		case errors.InternalError:
			err = recovered
		case error:
			err = errors.NewUnexpectedErrorFromCause(recovered)
		default:
			err = errors.NewUnexpectedError("%v", recovered)
		}

		executionErr = &ExecutionError{
			Index:  index,
			Opcode: opcode,
			Err:    err,
		}
	}()

	for i, instruction := range e.manifest.Instructions {
		index = i
		opcode = instruction.Opcode

		if err := ctx.Err(); err != nil {
			return &ExecutionError{
				Index:  i,
				Opcode: opcode,
				Err:    CancelledError{Err: err},
			}
		}

		var start time.Time
		if e.config.Tracer.enabled() {
			start = time.Now()
		}

		output, err := e.execute(ctx, instruction)

		if e.config.Tracer.enabled() {
			e.config.Tracer.reportInstructionTrace(e, i, opcode, time.Since(start), err)
		}

		if err != nil {
			return &ExecutionError{
				Index:  i,
				Opcode: opcode,
				Err:    err,
			}
		}

		e.logger.WithFields(logrus.Fields{
			"index":  i,
			"opcode": opcode,
		}).Debug("executed instruction")

		e.outputs = append(e.outputs, output)
	}

	index = len(e.manifest.Instructions)
	opcode = ast.OpcodeUnknown

	err := e.finish(ctx)
	if err != nil {
		return &ExecutionError{
			Index: index,
			Err:   err,
		}
	}
	return nil
}

// finish drops the remaining proofs, checks that no bucket holds resources,
// and applies the worktop policy.
func (e *Execution) finish(ctx context.Context) error {
	e.dropAllProofs()

	for _, id := range e.allocator.Buckets() {
		container, err := e.allocator.Bucket(id)
		if err != nil {
			return err
		}
		if !container.IsEmpty() {
			return UnconsumedBucketError{
				Bucket:    e.manifestBucket(id),
				Container: container.String(),
			}
		}
	}

	if e.worktop.IsEmpty() {
		return nil
	}

	switch e.config.WorktopPolicy {
	case WorktopPolicyRequireEmpty:
		return WorktopNotEmptyError{
			Resources: e.worktop.Resources(),
		}

	case WorktopPolicyDrainToAccount:
		if e.config.DrainAccount == (common.ComponentAddress{}) {
			return errors.NewUnexpectedError("no account to drain the worktop into")
		}

		buckets, moved, err := e.drainWorktop()
		if err != nil {
			return err
		}

		call := &Call{
			Kind:      CallKindMethod,
			Component: e.config.DrainAccount,
			Method:    "deposit_batch",
			Arguments: []values.Value{buckets},
			Buckets:   moved,
		}
		_, err = e.invoke(ctx, call)
		if err != nil {
			return err
		}

		if !e.worktop.IsEmpty() {
			return WorktopNotEmptyError{
				Resources: e.worktop.Resources(),
			}
		}
		return nil
	}

	panic(errors.NewUnreachableError())
}

// manifestBucket returns the manifest handle of a runtime bucket id, if any.
func (e *Execution) manifestBucket(runtime uint32) uint32 {
	for id, other := range e.bucketIds {
		if other == runtime {
			return id
		}
	}
	return runtime
}

func renameBucketError(err error, id uint32) error {
	var consumedErr BucketAlreadyConsumedError
	if goerrors.As(err, &consumedErr) {
		consumedErr.Bucket = id
		return consumedErr
	}
	var lockedErr BucketLockedError
	if goerrors.As(err, &lockedErr) {
		lockedErr.Bucket = id
		return lockedErr
	}
	return err
}

func renameProofError(err error, id uint32) error {
	var notFoundErr ProofNotFoundError
	if goerrors.As(err, &notFoundErr) {
		notFoundErr.Proof = id
		return notFoundErr
	}
	return err
}

func (e *Execution) runtimeBucket(id values.Bucket) (uint32, error) {
	runtime, ok := e.bucketIds[uint32(id)]
	if !ok {
		return 0, BucketAlreadyConsumedError{Bucket: uint32(id)}
	}
	return runtime, nil
}

func (e *Execution) runtimeProof(id values.Proof) (uint32, error) {
	runtime, ok := e.proofIds[uint32(id)]
	if !ok {
		return 0, ProofNotFoundError{Proof: uint32(id)}
	}
	return runtime, nil
}

func (e *Execution) dropAllProofs() {
	e.allocator.DropAllProofs()
	for _, proof := range e.authZone.Clear() {
		e.allocator.Release(proof)
	}
}
