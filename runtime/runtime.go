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
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/encoding/canonical"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/ledger"
	"github.com/ledgerworks/rtm/manifest"
	"github.com/ledgerworks/rtm/stdlib"
	"github.com/ledgerworks/rtm/values"
)

// Config is the configuration of a runtime.
type Config struct {
	Compiler manifest.CompilerConfig
	Genesis  stdlib.Genesis
	// WorktopPolicy decides what happens to resources left on the worktop
	WorktopPolicy interpreter.WorktopPolicy
	// DrainAccount is the index of the genesis account which receives
	// the remaining resources with interpreter.WorktopPolicyDrainToAccount
	DrainAccount int
	// Logger defaults to the standard logger
	Logger logrus.FieldLogger
}

// Runtime compiles and executes manifests against an in-memory ledger.
type Runtime interface {
	// Compile parses the given manifest source, without executing it.
	Compile(code []byte) (*ast.Manifest, error)

	// Execute compiles and executes the given manifest source.
	// The state changes of committed executions are applied to the ledger.
	//
	// This function returns an error if the manifest has syntax errors.
	// Failed executions are reported in the receipt.
	Execute(ctx context.Context, code []byte) (*interpreter.Receipt, error)

	// ExecuteManifest executes the manifest, and applies the state changes
	// of a committed execution to the ledger.
	ExecuteManifest(ctx context.Context, manifest *ast.Manifest) (*interpreter.Receipt, error)

	// Preview executes the manifest without applying any state changes.
	Preview(ctx context.Context, manifest *ast.Manifest) (*interpreter.Receipt, error)

	// Environment returns the addresses of the entities created at genesis.
	Environment() *stdlib.Environment

	// Store returns the ledger.
	Store() *ledger.Store

	// SetTracingEnabled configures if tracing is enabled.
	SetTracingEnabled(enabled bool)

	// SetOnRecordTrace configures the function which records traces.
	SetOnRecordTrace(onRecordTrace interpreter.OnRecordTraceFunc)
}

type Option func(Runtime)

// WithTracingEnabled returns a runtime option
// that configures if tracing is enabled.
func WithTracingEnabled(enabled bool) Option {
	return func(runtime Runtime) {
		runtime.SetTracingEnabled(enabled)
	}
}

// WithOnRecordTrace returns a runtime option
// that configures the function which records traces.
func WithOnRecordTrace(onRecordTrace interpreter.OnRecordTraceFunc) Option {
	return func(runtime Runtime) {
		runtime.SetOnRecordTrace(onRecordTrace)
	}
}

// ledgerRuntime is a runtime over an in-memory ledger
// with the native blueprints.
type ledgerRuntime struct {
	// mu serializes executions and commits
	mu          sync.Mutex
	store       *ledger.Store
	environment *stdlib.Environment
	compiler    *manifest.Compiler
	interpreter interpreter.Config
	logger      logrus.FieldLogger
}

var _ Runtime = &ledgerRuntime{}

// NewRuntime bootstraps a new ledger from the genesis of the configuration
// and returns a runtime over it.
func NewRuntime(config Config, options ...Option) (Runtime, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	store := ledger.NewStore()

	environment, err := stdlib.Bootstrap(store, config.Genesis)
	if err != nil {
		return nil, err
	}

	// configured placeholders take precedence
	compilerConfig := config.Compiler
	placeholders := GenesisPlaceholders(environment, compilerConfig.Parser.Network)
	maps.Copy(placeholders, compilerConfig.Parser.Placeholders)
	compilerConfig.Parser.Placeholders = placeholders

	compiler, err := manifest.NewCompiler(compilerConfig)
	if err != nil {
		return nil, err
	}

	interpreterConfig := interpreter.Config{
		Invoker:       stdlib.NewInvoker(environment, logger),
		WorktopPolicy: config.WorktopPolicy,
		Logger:        logger,
	}

	if config.WorktopPolicy == interpreter.WorktopPolicyDrainToAccount {
		if config.DrainAccount < 0 || config.DrainAccount >= len(environment.Accounts) {
			return nil, UnknownDrainAccountError{
				Index:    config.DrainAccount,
				Accounts: len(environment.Accounts),
			}
		}
		interpreterConfig.DrainAccount = environment.Accounts[config.DrainAccount]
	}

	runtime := &ledgerRuntime{
		store:       store,
		environment: environment,
		compiler:    compiler,
		interpreter: interpreterConfig,
		logger:      logger,
	}

	for _, option := range options {
		option(runtime)
	}

	logger.WithFields(logrus.Fields{
		"accounts":       len(environment.Accounts),
		"worktop_policy": config.WorktopPolicy,
	}).Debug("ledger bootstrapped")

	return runtime, nil
}

func (r *ledgerRuntime) Environment() *stdlib.Environment {
	return r.environment
}

func (r *ledgerRuntime) Store() *ledger.Store {
	return r.store
}

func (r *ledgerRuntime) SetTracingEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interpreter.TracingEnabled = enabled
}

func (r *ledgerRuntime) SetOnRecordTrace(onRecordTrace interpreter.OnRecordTraceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interpreter.OnRecordTrace = onRecordTrace
}

func (r *ledgerRuntime) Compile(code []byte) (*ast.Manifest, error) {
	return r.compiler.Compile(code)
}

func (r *ledgerRuntime) Execute(ctx context.Context, code []byte) (*interpreter.Receipt, error) {
	compiled, err := r.Compile(code)
	if err != nil {
		return nil, err
	}
	return r.ExecuteManifest(ctx, compiled)
}

func (r *ledgerRuntime) ExecuteManifest(ctx context.Context, manifest *ast.Manifest) (*interpreter.Receipt, error) {
	return r.execute(ctx, manifest, true)
}

func (r *ledgerRuntime) Preview(ctx context.Context, manifest *ast.Manifest) (*interpreter.Receipt, error) {
	return r.execute(ctx, manifest, false)
}

func (r *ledgerRuntime) execute(
	ctx context.Context,
	manifest *ast.Manifest,
	commit bool,
) (*interpreter.Receipt, error) {
	seed, err := canonical.HashManifest(manifest)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	track := r.store.NewTrack(seed)

	receipt, err := interpreter.New(r.interpreter).
		NewExecution(manifest, track).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	if commit && receipt.IsCommitted() {
		r.store.Commit(receipt.Delta)

		r.logger.WithFields(logrus.Fields{
			"transaction": receipt.TransactionHash.Hex(),
			"created":     len(receipt.Delta.Created),
		}).Debug("committed")
	}

	return receipt, nil
}

// GenesisPlaceholders returns the address literals of the genesis entities:
// {package}, {system}, {account0}, {account1}, ...
// and the resources by lowercase symbol, e.g. {xrd}.
func GenesisPlaceholders(environment *stdlib.Environment, network common.Network) map[string]string {
	if network.Name == "" {
		network = common.SimulatorNetwork
	}
	codec := common.AddressCodec{Network: network}

	result := map[string]string{
		"package": values.PackageAddress(environment.Package).Literal(codec),
		"system":  values.ComponentAddress(environment.System).Literal(codec),
	}
	for i, account := range environment.Accounts {
		result[fmt.Sprintf("account%d", i)] = values.ComponentAddress(account).Literal(codec)
	}
	for symbol, address := range environment.Resources {
		result[strings.ToLower(symbol)] = values.ResourceAddress(address).Literal(codec)
	}

	return result
}

// StateHash returns the hash of the ledger state of the runtime.
func StateHash(runtime Runtime) (common.Hash, error) {
	return runtime.Store().StateHash()
}
