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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/engine"
)

// ServeCmd runs an interactive REPL: each line is a goal, run through the
// engine in turn, sharing one session id across the conversation.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}
	logCleanup, err := initLoggerFromConfig(cfg.Logging, cli.usedExplicitLogFlags())
	if err != nil {
		return err
	}
	if logCleanup != nil {
		defer logCleanup()
	}

	e, err := buildEngine(ctx, cfg, cli.Workspace)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	fmt.Printf("nexo ready. workspace: %s\n", cli.Workspace)
	fmt.Println("Type a goal and press enter. Ctrl+D or Ctrl+C to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		goal := strings.TrimSpace(scanner.Text())
		if goal == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		result := e.Run(ctx, goal, engine.RunOptions{
			SessionID:     sessionID,
			WorkspaceRoot: cli.Workspace,
			Sink:          consoleSink(false),
		})

		if result.ResponseText != "" {
			fmt.Println(result.ResponseText)
		}
		if result.Summary != "" {
			fmt.Println("---")
			fmt.Println(result.Summary)
		}
	}

	return scanner.Err()
}
