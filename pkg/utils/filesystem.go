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

// Package utils provides filesystem and token-counting helpers shared
// across the engine's subsystems.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStateDir ensures the .nexo directory exists under basePath.
// If basePath is empty or ".", it creates ./.nexo in the current directory.
func EnsureStateDir(basePath string) (string, error) {
	var dir string
	if basePath == "" || basePath == "." {
		dir = ".nexo"
	} else {
		dir = filepath.Join(basePath, ".nexo")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory at '%s': %w", dir, err)
	}

	return dir, nil
}

// ResolveWithinRoot resolves a (possibly relative) path against root and
// rejects any result that escapes root via ".." or a symlink-free lexical
// climb. This is the path-escape check tool bodies apply before touching
// the filesystem; it is not a full sandbox, just a boundary check.
func ResolveWithinRoot(root, path string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("workspace root is empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}

	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Join(absRoot, path)
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil {
		return "", fmt.Errorf("resolve path relative to workspace root: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes workspace root %q", path, root)
	}

	return candidate, nil
}
