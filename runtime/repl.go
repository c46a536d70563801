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

package runtime

import (
	"context"
	"strings"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/interpreter"
)

// REPL builds a manifest interactively, one instruction at a time,
// and executes it as one transaction on request.
type REPL struct {
	runtime   Runtime
	session   []string
	onError   func(error)
	onReceipt func(*interpreter.Receipt)
}

func NewREPL(
	runtime Runtime,
	onError func(error),
	onReceipt func(*interpreter.Receipt),
) *REPL {
	return &REPL{
		runtime:   runtime,
		onError:   onError,
		onReceipt: onReceipt,
	}
}

func (r *REPL) handleError(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

func isCompleteInput(code string) bool {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return true
	}
	return strings.HasSuffix(lines[len(lines)-1], ";")
}

// Accept adds the code to the session, if it is complete.
// Code is complete when its last instruction is terminated.
// The session is only extended if the extended session compiles.
func (r *REPL) Accept(code string) (inputIsComplete bool) {
	inputIsComplete = isCompleteInput(code)
	if !inputIsComplete {
		return
	}

	if strings.TrimSpace(code) == "" {
		return
	}

	session := append(r.session, code)

	_, err := r.runtime.Compile([]byte(strings.Join(session, "\n")))
	if err != nil {
		r.handleError(err)
		return
	}

	r.session = session
	return
}

// Manifest returns the manifest of the session.
func (r *REPL) Manifest() (*ast.Manifest, error) {
	return r.runtime.Compile([]byte(r.Source()))
}

// Source returns the source of the session.
func (r *REPL) Source() string {
	return strings.Join(r.session, "\n")
}

// Reset discards the session.
func (r *REPL) Reset() {
	r.session = nil
}

// Run executes the session as one transaction and starts a new session.
// Preview executes it without committing the state changes.
func (r *REPL) Run(ctx context.Context, preview bool) {
	manifest, err := r.Manifest()
	if err != nil {
		r.handleError(err)
		return
	}

	var receipt *interpreter.Receipt
	if preview {
		receipt, err = r.runtime.Preview(ctx, manifest)
	} else {
		receipt, err = r.runtime.ExecuteManifest(ctx, manifest)
	}
	if err != nil {
		r.handleError(err)
		return
	}

	r.Reset()

	if r.onReceipt != nil {
		r.onReceipt(receipt)
	}
}
