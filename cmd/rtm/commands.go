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

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/common"
	"github.com/ledgerworks/rtm/encoding/canonical"
	"github.com/ledgerworks/rtm/manifest"
	"github.com/ledgerworks/rtm/parser"
	"github.com/ledgerworks/rtm/runtime"
)

var ParseCmd = cli.Command{
	Action:    doParse,
	Name:      "parse",
	Usage:     "validate a manifest and print its canonical form",
	ArgsUsage: "FILE",
}

var FmtCmd = cli.Command{
	Action:    doFmt,
	Name:      "fmt",
	Usage:     "pretty print a manifest, keeping the names of buckets and proofs",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		WidthFlag,
	},
}

var HashCmd = cli.Command{
	Action:    doHash,
	Name:      "hash",
	Usage:     "print the hash of a manifest",
	ArgsUsage: "FILE",
}

var EncodeCmd = cli.Command{
	Action:    doEncode,
	Name:      "encode",
	Usage:     "print the canonical encoding of a manifest, hex encoded",
	ArgsUsage: "FILE",
}

var DecodeCmd = cli.Command{
	Action:    doDecode,
	Name:      "decode",
	Usage:     "decompile a hex encoded canonical manifest",
	ArgsUsage: "HEX",
	Flags: []cli.Flag{
		WidthFlag,
	},
}

var InspectCmd = cli.Command{
	Action:    doInspect,
	Name:      "inspect",
	Usage:     "parse a value literal and dump it",
	ArgsUsage: "LITERAL",
}

// session is the state shared by all commands:
// the configuration, and the runtime bootstrapped from it.
type session struct {
	runtime runtime.Runtime
	config  runtime.Config
	colored bool
	stdout  io.Writer
	stderr  io.Writer
}

func newSession(context *cli.Context) (*session, error) {
	colored := NoColorFlag.Fetch(context)

	file, err := ConfigFlag.Fetch(context)
	if err != nil {
		return nil, err
	}

	stderr := context.App.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}

	logger, err := file.Logger()
	if err != nil {
		return nil, err
	}
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: !colored,
	})

	config, err := file.RuntimeConfig(logger)
	if err != nil {
		return nil, err
	}

	rt, err := runtime.NewRuntime(config, file.Options()...)
	if err != nil {
		return nil, err
	}

	return &session{
		runtime: rt,
		config:  config,
		colored: colored,
		stdout:  context.App.Writer,
		stderr:  stderr,
	}, nil
}

func (s *session) network() common.Network {
	network := s.config.Compiler.Parser.Network
	if network.Name == "" {
		return common.SimulatorNetwork
	}
	return network
}

func (s *session) codec() common.AddressCodec {
	return common.AddressCodec{Network: s.network()}
}

// compile reads and compiles the manifest at the path of the first argument.
// A missing path or "-" reads standard input.
func (s *session) compile(context *cli.Context) (*ast.Manifest, []byte, error) {
	code, err := readSource(context)
	if err != nil {
		return nil, nil, err
	}

	compiled, err := s.runtime.Compile(code)
	if err != nil {
		printError(s.stderr, err, code, s.colored)
		return nil, code, cli.Exit("", 1)
	}
	return compiled, code, nil
}

func readSource(context *cli.Context) ([]byte, error) {
	path := context.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func doParse(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	compiled, _, err := s.compile(context)
	if err != nil {
		return err
	}

	text, err := manifest.Decompile(compiled, s.network(), manifest.DefaultLineWidth)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, text)
	fmt.Fprintln(s.stderr, colorizeLabel(
		fmt.Sprintf(
			"%d instructions, %d buckets, %d proofs",
			len(compiled.Instructions),
			compiled.BucketCount,
			compiled.ProofCount,
		),
		s.colored,
	))
	return nil
}

func doFmt(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	compiled, _, err := s.compile(context)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, compiled.Format(s.codec(), WidthFlag.Fetch(context)))
	return nil
}

func doHash(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	compiled, _, err := s.compile(context)
	if err != nil {
		return err
	}

	hash, err := canonical.HashManifest(compiled)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, hash.Hex())
	return nil
}

func doEncode(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	compiled, _, err := s.compile(context)
	if err != nil {
		return err
	}

	encoded, err := canonical.EncodeManifest(compiled)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, hex.EncodeToString(encoded))
	return nil
}

func doDecode(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	input := context.Args().First()
	if input == "" || input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		input = string(data)
	}

	encoded, err := hex.DecodeString(strings.TrimSpace(input))
	if err != nil {
		return err
	}

	text, err := manifest.DecompileBytes(encoded, s.network(), WidthFlag.Fetch(context))
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, text)
	return nil
}

func doInspect(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	literal := []byte(strings.Join(context.Args().Slice(), " "))

	value, err := parser.ParseValue(literal, s.config.Compiler.Parser)
	if err != nil {
		printError(s.stderr, err, literal, s.colored)
		return cli.Exit("", 1)
	}

	encoded, err := canonical.Encode(value)
	if err != nil {
		return err
	}

	printer := pp.New()
	printer.SetColoringEnabled(s.colored)
	printer.SetOutput(s.stdout)

	fmt.Fprintf(s.stdout, "%s %s\n", colorizeLabel("literal:", s.colored), colorizeValue(value.Literal(s.codec()), s.colored))
	fmt.Fprintf(s.stdout, "%s %s\n", colorizeLabel("kind:", s.colored), value.Kind())
	fmt.Fprintf(s.stdout, "%s %s\n", colorizeLabel("encoding:", s.colored), hex.EncodeToString(encoded))
	printer.Println(value)

	return nil
}
