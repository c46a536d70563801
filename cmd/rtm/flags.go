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
	"github.com/urfave/cli/v2"

	"github.com/ledgerworks/rtm/config"
	"github.com/ledgerworks/rtm/manifest"
)

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load the configuration from the given YAML file",
		EnvVars: []string{"RTM_CONFIG"},
	},
}

// Fetch loads the configuration file, or returns the default configuration
// if no file is given.
func (f *configFlagType) Fetch(context *cli.Context) (*config.File, error) {
	path := context.String(f.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

type noColorFlagType struct {
	cli.BoolFlag
}

var NoColorFlag = &noColorFlagType{
	cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable colored output",
	},
}

func (f *noColorFlagType) Fetch(context *cli.Context) (colored bool) {
	return !context.Bool(f.Name)
}

type widthFlagType struct {
	cli.IntFlag
}

var WidthFlag = &widthFlagType{
	cli.IntFlag{
		Name:    "width",
		Aliases: []string{"w"},
		Usage:   "maximum line width of formatted manifests",
		Value:   manifest.DefaultLineWidth,
	},
}

func (f *widthFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type jsonFlagType struct {
	cli.BoolFlag
}

var JSONFlag = &jsonFlagType{
	cli.BoolFlag{
		Name:  "json",
		Usage: "print the receipt as JSON",
	},
}

func (f *jsonFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type previewFlagType struct {
	cli.BoolFlag
}

var PreviewFlag = &previewFlagType{
	cli.BoolFlag{
		Name:  "preview",
		Usage: "execute without committing the state changes",
	},
}

func (f *previewFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}
