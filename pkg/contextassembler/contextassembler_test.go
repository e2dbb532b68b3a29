package contextassembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMemory struct{ block string }

func (s stubMemory) Context(ctx context.Context, sessionID string) (string, error) {
	return s.block, nil
}

type stubRAG struct{ block string }

func (s stubRAG) Context(goal string, k int, maxTokens int) string { return s.block }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAssemble_IncludesWorkspaceTreeAndProjectHints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "")

	out, err := Assemble(context.Background(), Options{WorkspaceRoot: root})
	require.NoError(t, err)
	assert.Contains(t, out, "go.mod")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "Go module")
	assert.NotContains(t, out, "node_modules")
}

func TestAssemble_IncludesGitBranch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/feature/context-assembler\n")

	out, err := Assemble(context.Background(), Options{WorkspaceRoot: root})
	require.NoError(t, err)
	assert.Contains(t, out, "feature/context-assembler")
}

func TestAssemble_OmitsOptionalSectionsWhenAbsent(t *testing.T) {
	root := t.TempDir()
	out, err := Assemble(context.Background(), Options{WorkspaceRoot: root})
	require.NoError(t, err)
	assert.NotContains(t, out, "## Memory")
	assert.NotContains(t, out, "## Retrieved context")
	assert.NotContains(t, out, "## Attachments")
}

func TestAssemble_IncludesMemoryAndRAGBlocksWhenProvided(t *testing.T) {
	root := t.TempDir()
	out, err := Assemble(context.Background(), Options{
		WorkspaceRoot: root,
		Goal:          "add login",
		SessionID:     "s1",
		Memory:        stubMemory{block: "user previously asked about auth"},
		RAG:           stubRAG{block: "### auth.md\nuses JWT"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "## Memory")
	assert.Contains(t, out, "previously asked about auth")
	assert.Contains(t, out, "## Retrieved context")
	assert.Contains(t, out, "uses JWT")
}

func TestAssemble_IncludesEditorStateWhenProvided(t *testing.T) {
	root := t.TempDir()
	out, err := Assemble(context.Background(), Options{
		WorkspaceRoot: root,
		OpenEditors:   []string{"main.go", "handler.go"},
		Selection:     "func main() {}",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "main.go, handler.go")
	assert.Contains(t, out, "func main() {}")
}
