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
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
)

// SchemaCmd prints the JSON Schema for the config file shape, for editor
// autocompletion or a config-builder UI.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.ID = "https://nexo.dev/schemas/config.json"
	schema.Title = "nexo Configuration Schema"
	schema.Description = "Configuration schema for the nexo multi-agent orchestrator"
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.Examples = []interface{}{
		map[string]interface{}{
			"version": "1",
			"name":    "my-orchestrator",
			"llms": map[string]interface{}{
				"default": map[string]interface{}{
					"type":    "anthropic",
					"model":   "claude-sonnet-4-20250514",
					"api_key": "${ANTHROPIC_API_KEY}",
				},
			},
			"router": map[string]interface{}{
				"complexity_threshold": 50,
			},
		},
	}

	enc := json.NewEncoder(os.Stdout)
	if !c.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(schema); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}
