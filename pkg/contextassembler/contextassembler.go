// Package contextassembler builds the single text block appended to every
// specialist's system prompt: workspace tree, project-type hints, current
// git branch, open editor state, and the optional memory/RAG/attachments
// blocks contributed by this repo's default adapters.
package contextassembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/attachments"
)

// defaultIgnoredDirs mirrors a document indexer's default exclude list:
// directories whose contents are never useful as workspace-tree context.
var defaultIgnoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".DS_Store":    true,
}

// DefaultMaxDepth bounds the workspace tree to a readable size.
const DefaultMaxDepth = 3

// manifestHints maps well-known manifest filenames to the project type they
// signal.
var manifestHints = []struct {
	file string
	hint string
}{
	{"go.mod", "Go module"},
	{"package.json", "Node.js/JavaScript project"},
	{"Cargo.toml", "Rust crate"},
	{"pyproject.toml", "Python project (pyproject.toml)"},
	{"requirements.txt", "Python project (requirements.txt)"},
	{"pom.xml", "Java/Maven project"},
	{"build.gradle", "Java/Gradle project"},
	{"Gemfile", "Ruby project"},
	{"composer.json", "PHP/Composer project"},
}

// MemorySource supplies the memory context block (pkg/memoryadapter.Service
// satisfies this).
type MemorySource interface {
	Context(ctx context.Context, sessionID string) (string, error)
}

// RAGSource supplies the RAG context block (pkg/ragadapter.Adapter
// satisfies this).
type RAGSource interface {
	Context(goal string, k int, maxTokens int) string
}

// DefaultRAGTopK is how many BM25-ranked chunks feed the RAG block before
// token trimming.
const DefaultRAGTopK = 8

// Options configures one Assemble call.
type Options struct {
	WorkspaceRoot string
	MaxDepth      int
	Goal          string
	SessionID     string

	// OpenEditors and Selection reflect external editor UI state; the
	// assembler only formats what the caller supplies, it never reads an
	// editor's state itself.
	OpenEditors []string
	Selection   string

	AttachmentPaths []string

	Memory MemorySource
	RAG    RAGSource
}

// Assemble builds the full context block. Every section beyond the
// workspace tree is optional: a nil Memory/RAG source or empty
// attachment/editor list simply omits that section.
func Assemble(ctx context.Context, opts Options) (string, error) {
	var out strings.Builder

	if opts.WorkspaceRoot != "" {
		depth := opts.MaxDepth
		if depth <= 0 {
			depth = DefaultMaxDepth
		}
		tree, err := buildWorkspaceTree(opts.WorkspaceRoot, depth)
		if err != nil {
			return "", fmt.Errorf("failed to build workspace tree: %w", err)
		}
		fmt.Fprintf(&out, "## Workspace\n%s\n\n", tree)

		if hints := detectProjectHints(opts.WorkspaceRoot); len(hints) > 0 {
			fmt.Fprintf(&out, "## Project type\n%s\n\n", strings.Join(hints, ", "))
		}

		if branch, ok := currentGitBranch(opts.WorkspaceRoot); ok {
			fmt.Fprintf(&out, "## Git branch\n%s\n\n", branch)
		}
	}

	if len(opts.OpenEditors) > 0 || opts.Selection != "" {
		fmt.Fprintf(&out, "## Editor state\n")
		if len(opts.OpenEditors) > 0 {
			fmt.Fprintf(&out, "Open files: %s\n", strings.Join(opts.OpenEditors, ", "))
		}
		if opts.Selection != "" {
			fmt.Fprintf(&out, "Current selection:\n%s\n", opts.Selection)
		}
		out.WriteString("\n")
	}

	if opts.Memory != nil && opts.SessionID != "" {
		block, err := opts.Memory.Context(ctx, opts.SessionID)
		if err != nil {
			return "", fmt.Errorf("failed to build memory context: %w", err)
		}
		if block != "" {
			fmt.Fprintf(&out, "## Memory\n%s\n", block)
		}
	}

	if opts.RAG != nil && opts.Goal != "" {
		if block := opts.RAG.Context(opts.Goal, DefaultRAGTopK, 0); block != "" {
			fmt.Fprintf(&out, "## Retrieved context\n%s\n", block)
		}
	}

	if len(opts.AttachmentPaths) > 0 {
		loaded := attachments.LoadAll(opts.AttachmentPaths)
		if block := attachments.Render(loaded); block != "" {
			fmt.Fprintf(&out, "## Attachments\n%s\n", block)
		}
	}

	return strings.TrimRight(out.String(), "\n") + "\n", nil
}

func buildWorkspaceTree(root string, maxDepth int) (string, error) {
	var lines []string
	var walk func(dir string, depth int, prefix string) error
	walk = func(dir string, depth int, prefix string) error {
		if depth > maxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			if defaultIgnoredDirs[e.Name()] {
				continue
			}
			lines = append(lines, prefix+e.Name())
			if e.IsDir() && depth < maxDepth {
				if err := walk(filepath.Join(dir, e.Name()), depth+1, prefix+"  "); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(root, 1, ""); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func detectProjectHints(root string) []string {
	var hints []string
	for _, m := range manifestHints {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			hints = append(hints, m.hint)
		}
	}
	return hints
}

// currentGitBranch reads .git/HEAD directly rather than shelling out to
// git, mirroring the rest of the engine's no-external-process posture for
// ambient context.
func currentGitBranch(root string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, ".git", "HEAD"))
	if err != nil {
		return "", false
	}
	head := strings.TrimSpace(string(data))
	const prefix = "ref: refs/heads/"
	if strings.HasPrefix(head, prefix) {
		return strings.TrimPrefix(head, prefix), true
	}
	if head != "" {
		if len(head) > 12 {
			head = head[:12]
		}
		return head + " (detached)", true
	}
	return "", false
}
