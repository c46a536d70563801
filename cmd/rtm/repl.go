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
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/urfave/cli/v2"

	"github.com/ledgerworks/rtm/ast"
	"github.com/ledgerworks/rtm/interpreter"
	"github.com/ledgerworks/rtm/runtime"
)

var ReplCmd = cli.Command{
	Action: doRepl,
	Name:   "repl",
	Usage:  "build and execute manifests interactively",
}

const replHelpMessage = `
Enter instructions to add them to the current manifest.
Commands are prefixed with a dot. Valid commands are:

.run      Execute the manifest and commit its state changes
.preview  Execute the manifest without committing
.show     Print the manifest
.reset    Discard the manifest
.accounts Print the genesis entities
.exit     Exit the REPL
.help     Print this help message

Press ^D to exit`

const replAssistanceMessage = `Type '.help' for assistance.`

func doRepl(context *cli.Context) error {
	s, err := newSession(context)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.stdout, "Welcome to the manifest REPL!\n%s\n\n", replAssistanceMessage)

	lineNumber := 1
	lineIsContinuation := false
	code := ""

	var repl *runtime.REPL
	repl = runtime.NewREPL(
		s.runtime,
		func(err error) {
			// positions refer to the session extended with the input
			source := code
			if previous := repl.Source(); previous != "" {
				source = previous + "\n" + code
			}
			printError(s.stderr, err, []byte(source), s.colored)
		},
		func(receipt *interpreter.Receipt) {
			printReceipt(s.stdout, receipt, s.codec(), s.colored)
		},
	)

	handleCommand := func(command string) {
		switch command {
		case ".exit":
			os.Exit(0)
		case ".help":
			fmt.Fprintln(s.stdout, replHelpMessage)
		case ".run":
			repl.Run(context.Context, false)
		case ".preview":
			repl.Run(context.Context, true)
		case ".show":
			fmt.Fprintln(s.stdout, repl.Source())
		case ".reset":
			repl.Reset()
		case ".accounts":
			printEnvironment(s)
		default:
			fmt.Fprintln(s.stdout, colorizeError(
				fmt.Sprintf("Unknown command. %s", replAssistanceMessage),
				s.colored,
			))
		}
	}

	executor := func(line string) {
		defer func() {
			lineNumber++
		}()

		if code == "" && strings.HasPrefix(line, ".") {
			handleCommand(strings.TrimSpace(line))
			return
		}

		code += line + "\n"

		inputIsComplete := repl.Accept(code)
		if !inputIsComplete {
			lineIsContinuation = true
			return
		}

		lineIsContinuation = false
		code = ""
	}

	suggestions := replSuggestions(s)

	suggest := func(d prompt.Document) []prompt.Suggest {
		if len(d.GetWordBeforeCursor()) == 0 {
			return nil
		}
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
	}

	changeLivePrefix := func() (string, bool) {
		separator := '>'
		if lineIsContinuation {
			separator = '.'
		}

		return fmt.Sprintf("%d%c ", lineNumber, separator), true
	}

	options := []prompt.Option{
		prompt.OptionLivePrefix(changeLivePrefix),
	}
	prompt.New(executor, suggest, options...).Run()

	return nil
}

// replSuggestions are the opcodes, with their parameters,
// and the placeholders of the genesis entities.
func replSuggestions(s *session) []prompt.Suggest {
	var suggestions []prompt.Suggest

	for _, opcode := range ast.Opcodes() {
		parameters := make([]string, 0, len(opcode.Info().Parameters))
		for _, parameter := range opcode.Info().Parameters {
			parameters = append(parameters, parameter.String())
		}
		suggestions = append(suggestions, prompt.Suggest{
			Text:        opcode.String(),
			Description: strings.Join(parameters, " "),
		})
	}

	for _, name := range slices.Sorted(maps.Keys(environmentPlaceholders(s))) {
		suggestions = append(suggestions, prompt.Suggest{
			Text:        "{" + name + "}",
			Description: "genesis entity",
		})
	}

	return suggestions
}

func printEnvironment(s *session) {
	placeholders := environmentPlaceholders(s)
	for _, name := range slices.Sorted(maps.Keys(placeholders)) {
		fmt.Fprintf(s.stdout, "%s %s\n",
			colorizeLabel(fmt.Sprintf("{%s}", name), s.colored),
			colorizeValue(placeholders[name], s.colored),
		)
	}
}

func environmentPlaceholders(s *session) map[string]string {
	return runtime.GenesisPlaceholders(s.runtime.Environment(), s.network())
}
