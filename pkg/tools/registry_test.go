package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paramTool struct {
	name     string
	params   []ToolParameter
	executed map[string]interface{}
	failWith error
}

func (p *paramTool) GetInfo() ToolInfo {
	return ToolInfo{Name: p.name, Description: "test tool", Parameters: p.params}
}

func (p *paramTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	p.executed = args
	if p.failWith != nil {
		return ToolResult{}, p.failWith
	}
	return ToolResult{Success: true, Content: "ok"}, nil
}

func (p *paramTool) GetName() string { return p.name }

func (p *paramTool) GetDescription() string { return "test tool" }

func TestRegistry_RegisterAndExecute(t *testing.T) {
	r := NewRegistry()
	tool := &paramTool{name: "echo"}
	require.NoError(t, r.Register(tool))

	result := r.Execute(context.Background(), "echo", map[string]interface{}{})
	assert.True(t, result.Success)
	assert.Equal(t, "echo", result.ToolName)
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	r := NewRegistry()
	result := r.Execute(context.Background(), "missing", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Tool error (missing)")
	assert.Contains(t, result.Error, "unknown tool")
}

func TestRegistry_Execute_MissingRequiredParam(t *testing.T) {
	r := NewRegistry()
	tool := &paramTool{
		name: "writer",
		params: []ToolParameter{
			{Name: "path", Required: true},
		},
	}
	require.NoError(t, r.Register(tool))

	result := r.Execute(context.Background(), "writer", map[string]interface{}{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "missing required parameter")
	assert.Nil(t, tool.executed, "tool should not run when validation fails")
}

func TestRegistry_Execute_ToolError(t *testing.T) {
	r := NewRegistry()
	tool := &paramTool{name: "boom", failWith: errors.New("disk full")}
	require.NoError(t, r.Register(tool))

	result := r.Execute(context.Background(), "boom", map[string]interface{}{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Tool error (boom): disk full")
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{name: "dup"}))
	assert.Error(t, r.Register(&paramTool{name: "dup"}))
}

func TestRegistry_RegisterEmptyName(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(&paramTool{name: ""}))
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
}

func TestRegistry_All_SortedByName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{name: "zeta"}))
	require.NoError(t, r.Register(&paramTool{name: "alpha"}))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
}

func TestRegistry_DescribeForPrompt(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{
		name:   "search",
		params: []ToolParameter{{Name: "query", Type: "string", Required: true, Description: "search text"}},
	}))

	desc := r.DescribeForPrompt()
	assert.Contains(t, desc, "search")
	assert.Contains(t, desc, "query")
	assert.Contains(t, desc, "required")
}

func TestRegistry_DescribeForPrompt_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "No tools are available.", r.DescribeForPrompt())
}

func TestRegistry_RegisterSource(t *testing.T) {
	r := NewRegistry()
	source := NewLocalToolSourceForTesting()

	require.NoError(t, r.RegisterSource(context.Background(), source))
	assert.Equal(t, 1, r.Count())

	bySource := r.ListToolsBySource()
	assert.Contains(t, bySource, "test-local")
}

func TestRegistry_RemoveSource(t *testing.T) {
	r := NewRegistry()
	source := NewLocalToolSourceForTesting()
	require.NoError(t, r.RegisterSource(context.Background(), source))
	require.NoError(t, r.RemoveSource("test-local"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_ToolNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{name: "a"}))
	require.NoError(t, r.Register(&paramTool{name: "b"}))

	assert.ElementsMatch(t, []string{"a", "b"}, r.ToolNames())
}

func TestRegistry_Subset(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{name: "a"}))
	require.NoError(t, r.Register(&paramTool{name: "b"}))
	require.NoError(t, r.Register(&paramTool{name: "c"}))

	sub := r.Subset([]string{"a", "c", "missing"})
	assert.Equal(t, 2, sub.Count())
	names := sub.ToolNames()
	assert.ElementsMatch(t, []string{"a", "c"}, names)
}

func TestRegistry_Subset_Empty(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&paramTool{name: "a"}))

	sub := r.Subset(nil)
	assert.Equal(t, 0, sub.Count())
}
