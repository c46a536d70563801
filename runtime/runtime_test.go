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
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/goleak"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/stdlib"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const transfer = `
  CALL_METHOD {account0} "withdraw_by_amount" Decimal("10") {xrd};
  CALL_METHOD {account1} "deposit_batch" Expression("ENTIRE_WORKTOP");
`

func testConfig() Config {
	logger, _ := test.NewNullLogger()

	return Config{
		Genesis: stdlib.Genesis{
			Accounts: []stdlib.GenesisAccount{
				{Owner: auth.AllowAll, Balance: fixedpoint.NewDecimalFromInt(100)},
				{Owner: auth.AllowAll},
			},
		},
		Logger: logger,
	}
}

func newTestRuntime(t *testing.T, config Config, options ...Option) Runtime {
	runtime, err := NewRuntime(config, options...)
	require.NoError(t, err)
	return runtime
}

func requireBalance(t *testing.T, runtime Runtime, account int, expected int64) {
	t.Helper()

	environment := runtime.Environment()
	component, ok := runtime.Store().Component(environment.Accounts[account])
	require.True(t, ok)

	balance := component.Balance(environment.FeeResource)
	require.True(t,
		balance.Equal(fixedpoint.NewDecimalFromInt(expected)),
		"expected balance %d, got %s", expected, balance,
	)
}

func TestRuntime_Execute(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	before, err := StateHash(runtime)
	require.NoError(t, err)

	receipt, err := runtime.Execute(context.Background(), []byte(transfer))
	require.NoError(t, err)
	require.True(t, receipt.IsCommitted(), "%v", receipt.Error)

	requireBalance(t, runtime, 0, 90)
	requireBalance(t, runtime, 1, 10)

	after, err := StateHash(runtime)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestRuntime_Execute_SyntaxError(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	receipt, err := runtime.Execute(context.Background(), []byte(`CALL_METHOD {account0}`))
	require.Error(t, err)
	assert.Nil(t, receipt)
}

func TestRuntime_Execute_Aborted(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	before, err := StateHash(runtime)
	require.NoError(t, err)

	receipt, err := runtime.Execute(
		context.Background(),
		[]byte(`CALL_METHOD {account0} "withdraw_by_amount" Decimal("1000") {xrd};`),
	)
	require.NoError(t, err)
	require.False(t, receipt.IsCommitted())
	require.NotNil(t, receipt.Error)
	assert.Equal(t, 0, receipt.Error.Index)
	assert.Contains(t, receipt.Error.Error(), "insufficient balance")
	assert.Equal(t, errors.KindExternalCallFailed, errors.KindOf(receipt.Error))

	after, err := StateHash(runtime)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRuntime_Preview(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	manifest, err := runtime.Compile([]byte(transfer))
	require.NoError(t, err)

	receipt, err := runtime.Preview(context.Background(), manifest)
	require.NoError(t, err)
	require.True(t, receipt.IsCommitted())
	require.NotNil(t, receipt.Delta)

	requireBalance(t, runtime, 0, 100)
	requireBalance(t, runtime, 1, 0)

	// the same manifest commits afterwards
	receipt, err = runtime.ExecuteManifest(context.Background(), manifest)
	require.NoError(t, err)
	require.True(t, receipt.IsCommitted())
	requireBalance(t, runtime, 0, 90)
}

func TestRuntime_WorktopPolicy(t *testing.T) {

	t.Parallel()

	const withdraw = `CALL_METHOD {account0} "withdraw_by_amount" Decimal("5") {xrd};`

	t.Run("require empty", func(t *testing.T) {
		t.Parallel()

		runtime := newTestRuntime(t, testConfig())

		receipt, err := runtime.Execute(context.Background(), []byte(withdraw))
		require.NoError(t, err)
		require.False(t, receipt.IsCommitted())
		assert.Equal(t, errors.KindWorktopNotEmpty, errors.KindOf(receipt.Error))
	})

	t.Run("drain", func(t *testing.T) {
		t.Parallel()

		config := testConfig()
		config.WorktopPolicy = interpreter.WorktopPolicyDrainToAccount
		config.DrainAccount = 1

		runtime := newTestRuntime(t, config)

		receipt, err := runtime.Execute(context.Background(), []byte(withdraw))
		require.NoError(t, err)
		require.True(t, receipt.IsCommitted(), "%v", receipt.Error)

		requireBalance(t, runtime, 0, 95)
		requireBalance(t, runtime, 1, 5)
	})

	t.Run("unknown drain account", func(t *testing.T) {
		t.Parallel()

		config := testConfig()
		config.WorktopPolicy = interpreter.WorktopPolicyDrainToAccount
		config.DrainAccount = 2

		_, err := NewRuntime(config)
		require.Error(t, err)

		var drainErr UnknownDrainAccountError
		require.ErrorAs(t, err, &drainErr)
		assert.Equal(t, 2, drainErr.Index)
		assert.Equal(t, 2, drainErr.Accounts)
		assert.True(t, errors.IsUserError(err))
	})
}

func TestRuntime_Placeholders(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	manifest, err := runtime.Compile([]byte(`CALL_METHOD {system} "free_xrd";`))
	require.NoError(t, err)
	require.Len(t, manifest.Instructions, 1)

	_, err = runtime.Compile([]byte(`CALL_METHOD {account7} "balance" {xrd};`))
	require.Error(t, err)

	t.Run("configured take precedence", func(t *testing.T) {
		t.Parallel()

		// bootstrapping is deterministic, so both runtimes share the addresses
		config := testConfig()
		config.Compiler.Parser.Placeholders = map[string]string{
			"account1": GenesisPlaceholders(runtime.Environment(), common.Network{})["account0"],
		}

		redirected := newTestRuntime(t, config)

		receipt, err := redirected.Execute(context.Background(), []byte(transfer))
		require.NoError(t, err)
		require.True(t, receipt.IsCommitted(), "%v", receipt.Error)

		requireBalance(t, redirected, 0, 100)
		requireBalance(t, redirected, 1, 0)
	})
}

func TestRuntime_Tracing(t *testing.T) {

	t.Parallel()

	var mu sync.Mutex
	var operations []string

	runtime := newTestRuntime(
		t,
		testConfig(),
		WithTracingEnabled(true),
		WithOnRecordTrace(func(
			_ interpreter.Traceable,
			operationName string,
			_ time.Duration,
			_ []attribute.KeyValue,
		) {
			mu.Lock()
			defer mu.Unlock()
			operations = append(operations, operationName)
		}),
	)

	receipt, err := runtime.Execute(context.Background(), []byte(transfer))
	require.NoError(t, err)
	require.True(t, receipt.IsCommitted())

	mu.Lock()
	defer mu.Unlock()

	assert.Contains(t, operations, "execution")
	assert.Contains(t, operations, "call.withdraw_by_amount")
}

func TestREPL(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, testConfig())

	var errs []error
	var receipts []*interpreter.Receipt

	repl := NewREPL(
		runtime,
		func(err error) {
			errs = append(errs, err)
		},
		func(receipt *interpreter.Receipt) {
			receipts = append(receipts, receipt)
		},
	)

	// incomplete input is not added
	assert.False(t, repl.Accept(`CALL_METHOD {account0} "withdraw_by_amount"`))
	assert.Empty(t, repl.Source())

	assert.True(t, repl.Accept(`CALL_METHOD {account0} "withdraw_by_amount" Decimal("3") {xrd};`))
	require.Empty(t, errs)

	// invalid input is reported and not added
	assert.True(t, repl.Accept(`CALL_METHOD {account0} "deposit" Bucket("missing");`))
	require.Len(t, errs, 1)

	assert.True(t, repl.Accept(`CALL_METHOD {account1} "deposit_batch" Expression("ENTIRE_WORKTOP");`))
	require.Len(t, errs, 1)

	manifest, err := repl.Manifest()
	require.NoError(t, err)
	require.Len(t, manifest.Instructions, 2)

	repl.Run(context.Background(), true)
	require.Len(t, receipts, 1)
	assert.True(t, receipts[0].IsCommitted())
	requireBalance(t, runtime, 1, 0)

	// running starts a new session
	assert.Empty(t, repl.Source())

	assert.True(t, repl.Accept(`CALL_METHOD {account0} "withdraw_by_amount" Decimal("3") {xrd};`))
	assert.True(t, repl.Accept(`CALL_METHOD {account1} "deposit_batch" Expression("ENTIRE_WORKTOP");`))

	repl.Run(context.Background(), false)
	require.Len(t, receipts, 2)
	assert.True(t, receipts[1].IsCommitted())
	requireBalance(t, runtime, 1, 3)

	assert.True(t, repl.Accept(`CALL_METHOD {account0} "balance" {xrd};`))
	repl.Reset()
	assert.Empty(t, repl.Source())
	require.Len(t, errs, 1)
}
