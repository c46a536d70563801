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
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "execute manifests, in order, on a ledger bootstrapped from the configuration",
	ArgsUsage: "FILE...",
	Flags: []cli.Flag{
		JSONFlag,
		PreviewFlag,
	},
}

func doRun(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	paths := context.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	asJSON := JSONFlag.Fetch(context)
	preview := PreviewFlag.Fetch(context)

	aborted := false

	for _, path := range paths {
		var code []byte
		if path == "-" {
			code, err = readSource(context)
		} else {
			code, err = os.ReadFile(path)
		}
		if err != nil {
			return err
		}

		compiled, err := s.runtime.Compile(code)
		if err != nil {
			printError(s.stderr, err, code, s.colored)
			return cli.Exit("", 1)
		}

		execute := s.runtime.ExecuteManifest
		if preview {
			execute = s.runtime.Preview
		}

		receipt, err := execute(context.Context, compiled)
		if err != nil {
			return err
		}

		if asJSON {
			err = printReceiptJSON(s.stdout, receipt, s.codec(), s.colored)
			if err != nil {
				return err
			}
		} else {
			if len(paths) > 1 {
				fmt.Fprintln(s.stdout, colorizeLabel(path, s.colored))
			}
			printReceipt(s.stdout, receipt, s.codec(), s.colored)
		}

		if !receipt.IsCommitted() {
			aborted = true
		}
	}

	if aborted {
		return cli.Exit("", 2)
	}
	return nil
}
