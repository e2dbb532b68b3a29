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
	"fmt"
	"os"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/logger"
)

// initLoggerFromCLI initializes the logger from CLI flags, before any config
// file is loaded. A config file's logging section, if present, re-initializes
// the logger once loaded (see initLoggerFromConfig), so CLI flags only govern
// the window between process start and config load.
func initLoggerFromCLI(level, file, format string) (func(), error) {
	return initLogger(level, file, format)
}

// initLoggerFromConfig re-initializes the logger from a loaded config's
// Logging section. cliOverridden is true when the user passed --log-level,
// --log-file, or --log-format explicitly, in which case the config section
// is ignored and the CLI's choice stands.
func initLoggerFromConfig(cfg config.LoggingConfig, cliOverridden bool) (func(), error) {
	if cliOverridden {
		return nil, nil
	}
	return initLogger(cfg.Level, cfg.Path, cfg.Format)
}

func initLogger(level, file, format string) (func(), error) {
	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	output := os.Stderr
	var cleanup func()
	if file != "" {
		f, cleanupFn, err := logger.OpenLogFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		cleanup = cleanupFn
	}

	logger.Init(parsed, output, format)
	return cleanup, nil
}
