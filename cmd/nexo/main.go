// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command nexo is the CLI for the multi-agent orchestrator.
//
// Usage:
//
//	nexo run --config config.yaml "add pagination to the users endpoint"
//	nexo serve --config config.yaml
//	nexo validate config.yaml
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	nexo "github.com/technogeek-hash/nexo-ai-sub000"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run a single goal and print the result."`
	Serve    ServeCmd    `cmd:"" help:"Start an interactive REPL loop."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`
	Schema   SchemaCmd   `cmd:"" help:"Generate JSON Schema for the config file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	Workspace string `short:"w" help:"Workspace root the agent may read and write within." type:"path" default:"."`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (color, text, or json)." default:"color"`
}

// usedExplicitLogFlags reports whether the user passed any of the logging
// flags, as opposed to relying on their defaults. When true, a config file's
// logging section is not allowed to override what the CLI already set up.
func (c *CLI) usedExplicitLogFlags() bool {
	return c.LogLevel != "info" || c.LogFile != "" || c.LogFormat != "color"
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(nexo.GetVersion())
	return nil
}

func main() {
	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("nexo"),
		kong.Description("nexo - config-first multi-agent orchestrator"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
