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

// Package config loads the configuration of a runtime from YAML.
package config

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	"github.com/ledgerworks/rtm/auth"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/fixedpoint"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/manifest"
	"github.com/ledgerworks/rtm/parser"
	"github.com/ledgerworks/rtm/runtime"
	"github.com/ledgerworks/rtm/stdlib"
)

const (
	OwnerAllowAll = "allow-all"
	OwnerDenyAll  = "deny-all"
)

// File is the YAML representation of a runtime configuration.
type File struct {
	Network       string            `yaml:"network"`
	Placeholders  map[string]string `yaml:"placeholders"`
	WorktopPolicy string            `yaml:"worktop_policy"`
	DrainAccount  int               `yaml:"drain_account"`
	CacheSize     int               `yaml:"cache_size"`
	LogLevel      string            `yaml:"log_level"`
	Tracing       bool              `yaml:"tracing"`
	Genesis       Genesis           `yaml:"genesis"`
}

type Genesis struct {
	Resources []Resource `yaml:"resources"`
	Accounts  []Account  `yaml:"accounts"`
}

type Resource struct {
	Symbol       string `yaml:"symbol"`
	Divisibility uint8  `yaml:"divisibility"`
	Supply       string `yaml:"supply"`
	// Holder is the index of the account receiving the supply
	Holder int `yaml:"holder"`
}

type Account struct {
	// Owner is either allow-all or deny-all
	Owner string `yaml:"owner"`
	// OwnerBadge is the symbol of the resource protecting the account
	OwnerBadge string `yaml:"owner_badge"`
	Balance    string `yaml:"balance"`
}

// Default is the configuration used when no file is given:
// two open accounts on the simulator network.
func Default() *File {
	return &File{
		Network:       common.SimulatorNetwork.Name,
		WorktopPolicy: interpreter.WorktopPolicyRequireEmpty.String(),
		LogLevel:      logrus.InfoLevel.String(),
		Genesis: Genesis{
			Accounts: []Account{
				{Owner: OwnerAllowAll, Balance: "1000"},
				{Owner: OwnerAllowAll},
			},
		},
	}
}

// Parse parses the YAML configuration.
// Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	file := Default()
	file.Genesis = Genesis{}

	err := yaml.UnmarshalWithOptions(data, file, yaml.Strict())
	if err != nil {
		return nil, InvalidConfigError{
			Err: err,
		}
	}
	return file, nil
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, InvalidConfigError{
			Path: path,
			Err:  err,
		}
	}

	file, err := Parse(data)
	if err != nil {
		invalidErr := err.(InvalidConfigError)
		invalidErr.Path = path
		return nil, invalidErr
	}
	return file, nil
}

// Logger returns a logger with the configured level.
func (f *File) Logger() (*logrus.Logger, error) {
	logger := logrus.New()

	if f.LogLevel != "" {
		level, err := logrus.ParseLevel(f.LogLevel)
		if err != nil {
			return nil, InvalidFieldError{
				Field: "log_level",
				Err:   err,
			}
		}
		logger.SetLevel(level)
	}

	return logger, nil
}

// RuntimeConfig converts the configuration to a runtime configuration.
func (f *File) RuntimeConfig(logger logrus.FieldLogger) (runtime.Config, error) {
	var config runtime.Config

	network := common.SimulatorNetwork
	if f.Network != "" {
		var err error
		network, err = common.NetworkByName(f.Network)
		if err != nil {
			return config, InvalidFieldError{Field: "network", Err: err}
		}
	}

	policy := interpreter.WorktopPolicyRequireEmpty
	if f.WorktopPolicy != "" {
		var err error
		policy, err = interpreter.WorktopPolicyByName(f.WorktopPolicy)
		if err != nil {
			return config, InvalidFieldError{Field: "worktop_policy", Err: err}
		}
	}

	genesis, err := f.Genesis.genesis()
	if err != nil {
		return config, err
	}

	return runtime.Config{
		Compiler: manifest.CompilerConfig{
			Parser: parser.Config{
				Placeholders: f.Placeholders,
				Network:      network,
			},
			CacheSize: f.CacheSize,
		},
		Genesis:       genesis,
		WorktopPolicy: policy,
		DrainAccount:  f.DrainAccount,
		Logger:        logger,
	}, nil
}

// Options returns the runtime options of the configuration.
func (f *File) Options() []runtime.Option {
	return []runtime.Option{
		runtime.WithTracingEnabled(f.Tracing),
	}
}

func (g Genesis) genesis() (stdlib.Genesis, error) {
	var genesis stdlib.Genesis

	for i, resource := range g.Resources {
		supply, err := parseAmount(resource.Supply)
		if err != nil {
			return genesis, InvalidFieldError{
				Field: fieldPath("genesis.resources", i, "supply"),
				Err:   err,
			}
		}

		genesis.Resources = append(genesis.Resources, stdlib.GenesisResource{
			Symbol:       resource.Symbol,
			Divisibility: resource.Divisibility,
			Supply:       supply,
			Holder:       resource.Holder,
		})
	}

	for i, account := range g.Accounts {
		balance, err := parseAmount(account.Balance)
		if err != nil {
			return genesis, InvalidFieldError{
				Field: fieldPath("genesis.accounts", i, "balance"),
				Err:   err,
			}
		}

		owner, err := parseOwner(account)
		if err != nil {
			return genesis, InvalidFieldError{
				Field: fieldPath("genesis.accounts", i, "owner"),
				Err:   err,
			}
		}

		genesis.Accounts = append(genesis.Accounts, stdlib.GenesisAccount{
			Owner:      owner,
			OwnerBadge: account.OwnerBadge,
			Balance:    balance,
		})
	}

	return genesis, nil
}

func parseAmount(amount string) (fixedpoint.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return fixedpoint.Zero, nil
	}
	return fixedpoint.ParseDecimal(amount)
}

func parseOwner(account Account) (auth.AccessRule, error) {
	if account.OwnerBadge != "" {
		if account.Owner != "" {
			return auth.AccessRule{}, UnexpectedOwnerError{
				Owner: account.Owner,
				Badge: account.OwnerBadge,
			}
		}
		return auth.AccessRule{}, nil
	}

	switch account.Owner {
	case OwnerAllowAll:
		return auth.AllowAll, nil
	case OwnerDenyAll:
		return auth.DenyAll, nil
	}

	return auth.AccessRule{}, UnknownOwnerError{
		Owner: account.Owner,
	}
}
