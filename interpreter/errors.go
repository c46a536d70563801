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
	"fmt"
	"strings"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
)

// ExecutionError is the error of an aborted execution.
// It reports the failing instruction, and has the kind of its cause.
type ExecutionError struct {
	Index  int
	Opcode ast.Opcode
	Err    error
}

var _ errors.HasKind = ExecutionError{}

func (e ExecutionError) Unwrap() error {
	return e.Err
}

func (e ExecutionError) ErrorKind() errors.Kind {
	return errors.KindOf(e.Err)
}

func (e ExecutionError) Error() string {
	if e.Opcode == ast.OpcodeUnknown {
		return fmt.Sprintf("execution failed after the last instruction: %s", e.Err.Error())
	}
	return fmt.Sprintf(
		"instruction %d (%s) failed: %s",
		e.Index,
		e.Opcode,
		e.Err.Error(),
	)
}

// BucketAlreadyConsumedError is reported when a bucket is used after it was moved,
// or was never created.
type BucketAlreadyConsumedError struct {
	Bucket uint32
}

var _ errors.UserError = BucketAlreadyConsumedError{}

func (BucketAlreadyConsumedError) IsUserError() {}

func (BucketAlreadyConsumedError) ErrorKind() errors.Kind {
	return errors.KindBucketAlreadyConsumed
}

func (e BucketAlreadyConsumedError) Error() string {
	return fmt.Sprintf("bucket %d does not exist or was already consumed", e.Bucket)
}

// BucketLockedError is reported when a bucket is moved while proofs of it exist.
type BucketLockedError struct {
	Bucket uint32
	Proofs int
}

var _ errors.UserError = BucketLockedError{}

func (BucketLockedError) IsUserError() {}

func (BucketLockedError) ErrorKind() errors.Kind {
	return errors.KindBucketLocked
}

func (e BucketLockedError) Error() string {
	return fmt.Sprintf("bucket %d is locked by %d proofs", e.Bucket, e.Proofs)
}

// UnconsumedBucketError is reported when a non-empty bucket is left at the end of a run,
// or was left by a call it was moved into.
type UnconsumedBucketError struct {
	Bucket    uint32
	Container string
}

var _ errors.UserError = UnconsumedBucketError{}

func (UnconsumedBucketError) IsUserError() {}

func (UnconsumedBucketError) ErrorKind() errors.Kind {
	return errors.KindUnconsumedBucket
}

func (e UnconsumedBucketError) Error() string {
	return fmt.Sprintf("bucket %d still holds %s", e.Bucket, e.Container)
}

// ProofNotFoundError is reported for proofs which were dropped, moved or never created.
type ProofNotFoundError struct {
	Proof uint32
}

var _ errors.UserError = ProofNotFoundError{}

func (ProofNotFoundError) IsUserError() {}

func (ProofNotFoundError) ErrorKind() errors.Kind {
	return errors.KindProofNotFound
}

func (e ProofNotFoundError) Error() string {
	return fmt.Sprintf("proof %d does not exist", e.Proof)
}

// EmptyAuthZoneError is reported when popping from an empty auth zone.
type EmptyAuthZoneError struct{}

var _ errors.UserError = EmptyAuthZoneError{}

func (EmptyAuthZoneError) IsUserError() {}

func (EmptyAuthZoneError) ErrorKind() errors.Kind {
	return errors.KindProofNotFound
}

func (EmptyAuthZoneError) Error() string {
	return "the auth zone is empty"
}

// EmptyProofError is reported when a proof of nothing would be created.
type EmptyProofError struct {
	Resource common.ResourceAddress
}

var _ errors.UserError = EmptyProofError{}

func (EmptyProofError) IsUserError() {}

func (EmptyProofError) ErrorKind() errors.Kind {
	return errors.KindInsufficientBalance
}

func (e EmptyProofError) Error() string {
	return fmt.Sprintf("cannot create an empty proof of %s", e.Resource)
}

// WorktopNotEmptyError is reported when resources are left on the worktop at the end of a run.
type WorktopNotEmptyError struct {
	Resources []common.ResourceAddress
}

var _ errors.UserError = WorktopNotEmptyError{}

func (WorktopNotEmptyError) IsUserError() {}

func (WorktopNotEmptyError) ErrorKind() errors.Kind {
	return errors.KindWorktopNotEmpty
}

func (e WorktopNotEmptyError) Error() string {
	resources := make([]string, len(e.Resources))
	for i, resource := range e.Resources {
		resources[i] = resource.String()
	}
	return fmt.Sprintf(
		"the worktop still holds resources: %s",
		strings.Join(resources, ", "),
	)
}

// WorktopAssertionFailedError is reported when a worktop assertion does not hold.
type WorktopAssertionFailedError struct {
	Resource common.ResourceAddress
	Expected string
	Found    string
}

var _ errors.UserError = WorktopAssertionFailedError{}

func (WorktopAssertionFailedError) IsUserError() {}

func (WorktopAssertionFailedError) ErrorKind() errors.Kind {
	return errors.KindWorktopAssertionFailed
}

func (e WorktopAssertionFailedError) Error() string {
	return fmt.Sprintf(
		"worktop assertion failed for %s: expected %s, found %s",
		e.Resource,
		e.Expected,
		e.Found,
	)
}

// MethodNotFoundError is reported by invokers for unknown methods and functions.
type MethodNotFoundError struct {
	Blueprint string
	Method    string
}

var _ errors.UserError = MethodNotFoundError{}

func (MethodNotFoundError) IsUserError() {}

func (MethodNotFoundError) ErrorKind() errors.Kind {
	return errors.KindMethodNotFound
}

func (e MethodNotFoundError) Error() string {
	return fmt.Sprintf("blueprint %s has no method %s", e.Blueprint, e.Method)
}

// ExternalCallFailedError wraps the errors of calls to components and blueprints.
//
// Failures to resolve the call target keep their kind,
// all other failures are of kind ExternalCallFailed.
type ExternalCallFailedError struct {
	Target string
	Method string
	Err    error
}

var _ errors.UserError = ExternalCallFailedError{}

func (ExternalCallFailedError) IsUserError() {}

func (e ExternalCallFailedError) ErrorKind() errors.Kind {
	switch kind := errors.KindOf(e.Err); kind {
	case errors.KindComponentNotFound,
		errors.KindMethodNotFound,
		errors.KindCancelled:
		return kind
	}
	return errors.KindExternalCallFailed
}

func (e ExternalCallFailedError) Unwrap() error {
	return e.Err
}

func (e ExternalCallFailedError) Error() string {
	return fmt.Sprintf("call of %s on %s failed: %s", e.Method, e.Target, e.Err.Error())
}

// CancelledError is reported when the context of a run is done.
type CancelledError struct {
	Err error
}

var _ errors.UserError = CancelledError{}

func (CancelledError) IsUserError() {}

func (CancelledError) ErrorKind() errors.Kind {
	return errors.KindCancelled
}

func (e CancelledError) Unwrap() error {
	return e.Err
}

func (e CancelledError) Error() string {
	return fmt.Sprintf("execution cancelled: %s", e.Err.Error())
}

// InvalidStateError is reported when an execution is run more than once.
type InvalidStateError struct {
	Status Status
}

var _ errors.InternalError = InvalidStateError{}

func (InvalidStateError) IsInternalError() {}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("cannot run execution in state %s", e.Status)
}
