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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
)

const (
	tracingInstructionPrefix = "instruction."
	tracingCallPrefix        = "call."
	tracingExecution         = "execution"
)

// OnRecordTraceFunc is a function that records a trace.
type OnRecordTraceFunc func(
	executer Traceable,
	operationName string,
	duration time.Duration,
	attrs []attribute.KeyValue,
)

type Traceable interface {
	TransactionHash() common.Hash
}

var _ Traceable = &Execution{}

type Tracer struct {
	// OnRecordTrace is triggered when a trace is recorded
	OnRecordTrace OnRecordTraceFunc
	// TracingEnabled determines if tracing is enabled.
	// Tracing reports every instruction, every call and the whole execution
	TracingEnabled bool
}

func (tracer Tracer) enabled() bool {
	return tracer.TracingEnabled && tracer.OnRecordTrace != nil
}

func errorAttrs(attrs []attribute.KeyValue, err error) []attribute.KeyValue {
	if err == nil {
		return attrs
	}
	return append(attrs,
		attribute.String("error.kind", errors.KindOf(err).String()),
	)
}

func (tracer Tracer) reportInstructionTrace(
	executer Traceable,
	index int,
	opcode ast.Opcode,
	duration time.Duration,
	err error,
) {
	tracer.OnRecordTrace(
		executer,
		tracingInstructionPrefix+opcode.String(),
		duration,
		errorAttrs(
			[]attribute.KeyValue{
				attribute.Int("index", index),
			},
			err,
		),
	)
}

func (tracer Tracer) reportCallTrace(
	executer Traceable,
	call *Call,
	duration time.Duration,
	err error,
) {
	tracer.OnRecordTrace(
		executer,
		tracingCallPrefix+call.Method,
		duration,
		errorAttrs(
			[]attribute.KeyValue{
				attribute.String("kind", call.Kind.String()),
				attribute.String("target", call.Target()),
				attribute.Int("buckets", len(call.Buckets)),
				attribute.Int("proofs", len(call.Proofs)),
			},
			err,
		),
	)
}

func (tracer Tracer) reportExecutionTrace(
	executer Traceable,
	status Status,
	instructions int,
	duration time.Duration,
	err error,
) {
	tracer.OnRecordTrace(
		executer,
		tracingExecution,
		duration,
		errorAttrs(
			[]attribute.KeyValue{
				attribute.String("status", status.String()),
				attribute.Int("instructions", instructions),
			},
			err,
		),
	)
}
