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

package errors

// Kind classifies the errors reported by parsing and execution.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSyntax
	KindValueTypeMismatch
	KindMalformedLiteral
	KindInsufficientBalance
	KindBucketAlreadyConsumed
	KindBucketLocked
	KindUnconsumedBucket
	KindProofNotFound
	KindOverflow
	KindInvalidAmount
	KindAuthImmutable
	KindAuthDenied
	KindExternalCallFailed
	KindWorktopNotEmpty
	KindWorktopAssertionFailed
	KindResourceNotFound
	KindComponentNotFound
	KindMethodNotFound
	KindCancelled
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindSyntax:
		return "SyntaxError"
	case KindValueTypeMismatch:
		return "ValueTypeMismatch"
	case KindMalformedLiteral:
		return "MalformedLiteral"
	case KindInsufficientBalance:
		return "InsufficientBalance"
	case KindBucketAlreadyConsumed:
		return "BucketAlreadyConsumed"
	case KindBucketLocked:
		return "BucketLocked"
	case KindUnconsumedBucket:
		return "UnconsumedBucket"
	case KindProofNotFound:
		return "ProofNotFound"
	case KindOverflow:
		return "Overflow"
	case KindInvalidAmount:
		return "InvalidAmount"
	case KindAuthImmutable:
		return "AuthImmutable"
	case KindAuthDenied:
		return "AuthDenied"
	case KindExternalCallFailed:
		return "ExternalCallFailed"
	case KindWorktopNotEmpty:
		return "WorktopNotEmpty"
	case KindWorktopAssertionFailed:
		return "WorktopAssertionFailed"
	case KindResourceNotFound:
		return "ResourceNotFound"
	case KindComponentNotFound:
		return "ComponentNotFound"
	case KindMethodNotFound:
		return "MethodNotFound"
	case KindCancelled:
		return "Cancelled"
	case KindInternal:
		return "InternalError"
	}

	panic(NewUnreachableError())
}
