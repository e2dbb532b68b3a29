package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/registry"
)

// toolEntry pairs a Tool with the source it came from, so the registry can
// report provenance (ListToolsBySource) and re-discover on demand.
type toolEntry struct {
	Tool   Tool
	Source ToolSource
}

// RegistryError wraps a registry-level failure with the action that produced it.
type RegistryError struct {
	Action  string
	Message string
	Err     error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool registry %s: %s: %v", e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("tool registry %s: %s", e.Action, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Registry is the dispatcher every tool call in the reasoning driver and the
// tiered executor goes through. It validates arguments against each tool's
// declared parameters and never lets a tool panic/error abort the caller:
// failures come back as a ToolResult with Success=false.
type Registry struct {
	base *registry.BaseRegistry[toolEntry]
}

func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[toolEntry]()}
}

// Register adds a single tool directly, with no backing ToolSource. Used for
// tools constructed ad hoc (tests, programmatic wiring).
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return &RegistryError{Action: "Register", Message: "tool cannot be nil"}
	}
	name := tool.GetName()
	if name == "" {
		return &RegistryError{Action: "Register", Message: "tool name cannot be empty"}
	}
	if err := r.base.Register(name, toolEntry{Tool: tool}); err != nil {
		return &RegistryError{Action: "Register", Message: fmt.Sprintf("tool %s", name), Err: err}
	}
	return nil
}

// RegisterSource discovers every tool a ToolSource exposes (local tools, or an
// MCP server's tools/list) and registers each one individually.
func (r *Registry) RegisterSource(ctx context.Context, source ToolSource) error {
	name := source.GetName()
	if name == "" {
		return &RegistryError{Action: "RegisterSource", Message: "source name cannot be empty"}
	}

	if err := source.DiscoverTools(ctx); err != nil {
		return &RegistryError{Action: "RegisterSource", Message: fmt.Sprintf("discovering tools from %s", name), Err: err}
	}

	for _, info := range source.ListTools() {
		tool, exists := source.GetTool(info.Name)
		if !exists {
			continue
		}
		if err := r.base.Register(info.Name, toolEntry{Tool: tool, Source: source}); err != nil {
			return &RegistryError{Action: "RegisterSource", Message: fmt.Sprintf("registering tool %s", info.Name), Err: err}
		}
	}

	return nil
}

// All returns every registered tool's metadata, sorted by name for
// deterministic prompt construction and UI listing.
func (r *Registry) All() []ToolInfo {
	names := r.base.Keys()
	infos := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		if entry, ok := r.base.Get(name); ok {
			infos = append(infos, entry.Tool.GetInfo())
		}
	}
	return infos
}

// ListToolsBySource groups tool metadata by the name of the source that
// provided it (e.g. "local", or an MCP server's name).
func (r *Registry) ListToolsBySource() map[string][]ToolInfo {
	result := make(map[string][]ToolInfo)
	for _, e := range r.base.List() {
		sourceName := "local"
		if e.Source != nil {
			sourceName = e.Source.GetName()
		}
		result[sourceName] = append(result[sourceName], e.Tool.GetInfo())
	}
	return result
}

// DescribeForPrompt renders every tool's name, description, and parameters as
// plain text, for embedding in a system prompt so the model knows what it can call.
func (r *Registry) DescribeForPrompt() string {
	infos := r.All()
	if len(infos) == 0 {
		return "No tools are available."
	}

	var b strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&b, "- %s: %s\n", info.Name, info.Description)
		for _, p := range info.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    %s (%s, %s): %s\n", p.Name, p.Type, req, p.Description)
		}
	}
	return b.String()
}

// ToolNames returns every registered tool's name, sorted.
func (r *Registry) ToolNames() []string {
	return r.base.Keys()
}

// Subset returns a new Registry containing only the named tools that exist in
// r. Unknown names are silently skipped. Used by the executor to build the
// allow-listed tool set for a domain specialist.
func (r *Registry) Subset(names []string) *Registry {
	sub := NewRegistry()
	for _, name := range names {
		if tool, ok := r.get(name); ok {
			_ = sub.Register(tool)
		}
	}
	return sub
}

func (r *Registry) get(name string) (Tool, bool) {
	entry, exists := r.base.Get(name)
	if !exists {
		return nil, false
	}
	return entry.Tool, true
}

// validateArgs checks that every required parameter declared by the tool is
// present in args. It does not attempt type coercion; tools validate their
// own argument types during Execute.
func validateArgs(info ToolInfo, args map[string]interface{}) error {
	for _, p := range info.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			return fmt.Errorf("missing required parameter %q", p.Name)
		}
	}
	return nil
}

// Execute validates the tool's required parameters, then invokes it. Any
// error (missing parameter, unknown tool, or a thrown execution error) comes
// back as {success: false, text: "Tool error (<name>): <msg>"} rather than as
// a Go error, so the caller never needs special-case handling to keep a
// ReAct loop alive.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) ToolResult {
	start := time.Now()

	tool, exists := r.get(name)
	if !exists {
		return ToolResult{
			Success:       false,
			Error:         fmt.Sprintf("Tool error (%s): unknown tool", name),
			ToolName:      name,
			ExecutionTime: time.Since(start),
		}
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	if err := validateArgs(tool.GetInfo(), args); err != nil {
		return ToolResult{
			Success:       false,
			Error:         fmt.Sprintf("Tool error (%s): %v", name, err),
			ToolName:      name,
			ExecutionTime: time.Since(start),
		}
	}

	result, err := func() (res ToolResult, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return tool.Execute(ctx, args)
	}()
	if err != nil {
		slog.Warn("tool execution failed", "tool", name, "error", err)
		return ToolResult{
			Success:       false,
			Error:         fmt.Sprintf("Tool error (%s): %v", name, err),
			ToolName:      name,
			ExecutionTime: time.Since(start),
		}
	}

	if result.ToolName == "" {
		result.ToolName = name
	}
	return result
}

// RemoveSource unregisters every tool that came from the named source.
func (r *Registry) RemoveSource(sourceName string) error {
	for _, e := range r.base.List() {
		name := ""
		if e.Source != nil && e.Source.GetName() == sourceName {
			name = e.Tool.GetName()
		}
		if name == "" {
			continue
		}
		if err := r.base.Remove(name); err != nil {
			return &RegistryError{Action: "RemoveSource", Message: fmt.Sprintf("removing tool %s", name), Err: err}
		}
	}
	return nil
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return r.base.Count()
}
