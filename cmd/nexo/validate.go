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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
)

// ValidateCmd validates a configuration file.
type ValidateCmd struct {
	Path string `arg:"" name:"config" help:"Configuration file path." placeholder:"PATH"`

	Format      string `short:"f" help:"Output format: compact, verbose, json." default:"compact" enum:"compact,verbose,json"`
	PrintConfig bool   `short:"p" name:"print-config" help:"Print the expanded configuration (defaults applied, env vars resolved)."`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	ctx := context.Background()

	_ = config.LoadEnvFiles()
	cfg, loader, err := config.LoadConfigFile(ctx, c.Path)
	if err != nil {
		return c.printLoadError(err)
	}
	if loader != nil {
		defer loader.Close()
	}

	if c.PrintConfig {
		return c.printExpandedConfig(cfg)
	}

	c.printSuccess()
	return nil
}

func (c *ValidateCmd) printLoadError(err error) error {
	switch c.Format {
	case "json":
		c.printJSONResult(false, err)
	case "verbose":
		fmt.Fprintf(os.Stderr, "Configuration Load Error\n========================\n\n")
		fmt.Fprintf(os.Stderr, "File:  %s\nError: %s\n", c.Path, err)
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid: %s\n", c.Path, err)
	}
	return fmt.Errorf("config validation failed")
}

func (c *ValidateCmd) printSuccess() {
	switch c.Format {
	case "json":
		c.printJSONResult(true, nil)
	case "verbose":
		fmt.Printf("Configuration Validation Successful\n====================================\n\n")
		fmt.Printf("File:   %s\nStatus: OK\n", c.Path)
	default:
		fmt.Printf("%s: valid\n", c.Path)
	}
}

func (c *ValidateCmd) printJSONResult(valid bool, err error) {
	out := struct {
		Valid bool   `json:"valid"`
		File  string `json:"file"`
		Error string `json:"error,omitempty"`
	}{Valid: valid, File: c.Path}
	if err != nil {
		out.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func (c *ValidateCmd) printExpandedConfig(cfg *config.Config) error {
	switch c.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		fmt.Printf("# Expanded configuration from: %s\n# (defaults applied, env vars resolved)\n\n", c.Path)
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}
}
