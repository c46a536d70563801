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

package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/errors"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/runtime"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testConfig = `
network: localnet
worktop_policy: drain-to-account
drain_account: 1
cache_size: 16
log_level: debug
tracing: true
placeholders:
  greeting: '"hello"'
genesis:
  resources:
    - symbol: ADMIN
      divisibility: 0
      supply: "1"
      holder: 1
  accounts:
    - owner: allow-all
      balance: "100.5"
    - owner: deny-all
    - owner_badge: ADMIN
      balance: "7"
`

func TestParse(t *testing.T) {

	t.Parallel()

	file, err := Parse([]byte(testConfig))
	require.NoError(t, err)

	assert.Equal(t, "localnet", file.Network)
	assert.Equal(t, 16, file.CacheSize)
	assert.True(t, file.Tracing)
	require.Len(t, file.Genesis.Resources, 1)
	require.Len(t, file.Genesis.Accounts, 3)
	assert.Equal(t, "ADMIN", file.Genesis.Accounts[2].OwnerBadge)

	logger, err := file.Logger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	config, err := file.RuntimeConfig(logger)
	require.NoError(t, err)

	assert.Equal(t, common.LocalNetwork, config.Compiler.Parser.Network)
	assert.Equal(t, `"hello"`, config.Compiler.Parser.Placeholders["greeting"])
	assert.Equal(t, 16, config.Compiler.CacheSize)
	assert.Equal(t, interpreter.WorktopPolicyDrainToAccount, config.WorktopPolicy)
	assert.Equal(t, 1, config.DrainAccount)

	genesis := config.Genesis
	require.Len(t, genesis.Resources, 1)
	assert.True(t, genesis.Resources[0].Supply.Equal(fixedpoint.NewDecimalFromInt(1)))
	assert.Equal(t, 1, genesis.Resources[0].Holder)

	require.Len(t, genesis.Accounts, 3)
	assert.Equal(t, auth.AllowAll, genesis.Accounts[0].Owner)
	assert.True(t, genesis.Accounts[0].Balance.Equal(fixedpoint.MustDecimal("100.5")))
	assert.Equal(t, auth.DenyAll, genesis.Accounts[1].Owner)
	assert.True(t, genesis.Accounts[1].Balance.IsZero())
	assert.Equal(t, "ADMIN", genesis.Accounts[2].OwnerBadge)
}

func TestParse_Invalid(t *testing.T) {

	t.Parallel()

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("netwrok: localnet\n"))
		require.Error(t, err)

		var invalidErr InvalidConfigError
		require.ErrorAs(t, err, &invalidErr)
		assert.True(t, errors.IsUserError(err))
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("genesis: [\n"))
		require.Error(t, err)
	})
}

func TestRuntimeConfig_Invalid(t *testing.T) {

	t.Parallel()

	for _, test := range []struct {
		name  string
		file  File
		field string
	}{
		{
			name:  "network",
			file:  File{Network: "moonnet"},
			field: "network",
		},
		{
			name:  "worktop policy",
			file:  File{WorktopPolicy: "burn"},
			field: "worktop_policy",
		},
		{
			name: "supply",
			file: File{Genesis: Genesis{
				Resources: []Resource{{Symbol: "X", Supply: "lots"}},
			}},
			field: "genesis.resources[0].supply",
		},
		{
			name: "balance",
			file: File{Genesis: Genesis{
				Accounts: []Account{{Owner: OwnerAllowAll}, {Owner: OwnerAllowAll, Balance: "1.2.3"}},
			}},
			field: "genesis.accounts[1].balance",
		},
		{
			name: "unknown owner",
			file: File{Genesis: Genesis{
				Accounts: []Account{{Owner: "anyone"}},
			}},
			field: "genesis.accounts[0].owner",
		},
		{
			name: "owner and badge",
			file: File{Genesis: Genesis{
				Accounts: []Account{{Owner: OwnerAllowAll, OwnerBadge: "ADMIN"}},
			}},
			field: "genesis.accounts[0].owner",
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := test.file.RuntimeConfig(nil)
			require.Error(t, err)

			var fieldErr InvalidFieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, test.field, fieldErr.Field)
		})
	}

	t.Run("log level", func(t *testing.T) {
		t.Parallel()

		file := File{LogLevel: "loud"}
		_, err := file.Logger()

		var fieldErr InvalidFieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "log_level", fieldErr.Field)
	})
}

func TestLoad(t *testing.T) {

	t.Parallel()

	path := filepath.Join(t.TempDir(), "rtm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	file, err := Load(path)
	require.NoError(t, err)

	logger, err := file.Logger()
	require.NoError(t, err)
	logger.SetOutput(io.Discard)

	config, err := file.RuntimeConfig(logger)
	require.NoError(t, err)

	rt, err := runtime.NewRuntime(config, file.Options()...)
	require.NoError(t, err)
	require.Len(t, rt.Environment().Accounts, 3)

	// the badge-protected account cannot be withdrawn from without a proof
	receipt, err := rt.Execute(
		context.Background(),
		[]byte(`CALL_METHOD {account2} "withdraw_by_amount" Decimal("1") {xrd};`),
	)
	require.NoError(t, err)
	require.False(t, receipt.IsCommitted())

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing.yaml")
		_, err := Load(missing)

		var invalidErr InvalidConfigError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, missing, invalidErr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDefault(t *testing.T) {

	t.Parallel()

	config, err := Default().RuntimeConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, common.SimulatorNetwork, config.Compiler.Parser.Network)
	assert.Equal(t, interpreter.WorktopPolicyRequireEmpty, config.WorktopPolicy)
	require.Len(t, config.Genesis.Accounts, 2)
	assert.True(t, config.Genesis.Accounts[0].Balance.Equal(fixedpoint.NewDecimalFromInt(1000)))
}
