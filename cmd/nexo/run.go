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
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/engine"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/reasoning"
)

// RunCmd runs a single goal through the engine and prints the result.
type RunCmd struct {
	Goal string `arg:"" help:"The goal to accomplish."`

	Attach []string `help:"Attachment file paths to include in context." placeholder:"PATH"`
	Quiet  bool     `short:"q" help:"Suppress intermediate tool-call/text events; print only the final result."`
}

func (c *RunCmd) Run(cli *CLI) error {
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

	sink := consoleSink(c.Quiet)
	result := e.Run(ctx, c.Goal, engine.RunOptions{
		WorkspaceRoot:   cli.Workspace,
		AttachmentPaths: c.Attach,
		Sink:            sink,
	})

	if result.ResponseText != "" {
		fmt.Println(result.ResponseText)
	}
	if result.Summary != "" {
		fmt.Fprintln(os.Stderr, "\n---")
		fmt.Fprintln(os.Stderr, result.Summary)
	}
	if !result.Success {
		return fmt.Errorf("run did not complete successfully")
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

// consoleSink prints the driver's events to stdout as they happen. When
// quiet is true every event is discarded and only the engine's final result
// is printed by the caller.
func consoleSink(quiet bool) reasoning.EventSink {
	if quiet {
		return reasoning.NopSink{}
	}
	return reasoning.FuncSink{
		Text: func(s string) {
			if strings.TrimSpace(s) != "" {
				fmt.Println(s)
			}
		},
		ToolCall: func(call reasoning.ToolCallRequest) {
			fmt.Printf("  -> %s %v\n", call.Tool, call.Args)
		},
		ToolResult: func(r reasoning.ToolResultEvent) {
			mark := "ok"
			if !r.Success {
				mark = "error"
			}
			fmt.Printf("  <- %s (%s, %s)\n", r.Tool, mark, r.Duration)
		},
		Error: func(err error) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		},
	}
}
