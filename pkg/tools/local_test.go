package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
)

// stubTool is a minimal Tool used to exercise LocalToolSource registration
// without pulling in a real file/command implementation.
type stubTool struct {
	name string
}

func (s *stubTool) GetInfo() ToolInfo {
	return ToolInfo{Name: s.name, Description: "stub"}
}

func (s *stubTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	return ToolResult{Success: true, ToolName: s.name}, nil
}

func (s *stubTool) GetName() string { return s.name }

func (s *stubTool) GetDescription() string { return "stub" }

func TestNewLocalToolSource(t *testing.T) {
	source := NewLocalToolSource("test-source")
	require.NotNil(t, source)
	assert.Equal(t, "test-source", source.GetName())
	assert.Equal(t, "local", source.GetType())
}

func TestNewLocalToolSource_DefaultsName(t *testing.T) {
	source := NewLocalToolSource("")
	assert.Equal(t, "local", source.GetName())
}

func TestLocalToolSource_RegisterTool(t *testing.T) {
	source := NewLocalToolSource("test-source")
	tool := &stubTool{name: "echo"}

	require.NoError(t, source.RegisterTool(tool))

	got, exists := source.GetTool("echo")
	assert.True(t, exists)
	assert.Equal(t, tool, got)

	// Duplicate registration fails.
	assert.Error(t, source.RegisterTool(tool))
}

func TestLocalToolSource_RegisterTool_EmptyName(t *testing.T) {
	source := NewLocalToolSource("test-source")
	assert.Error(t, source.RegisterTool(&stubTool{name: ""}))
}

func TestLocalToolSource_RegisterTool_WithConfig(t *testing.T) {
	toolConfigs := map[string]*config.ToolConfig{
		"execute_command": {
			Type:    config.ToolTypeCommand,
			Enabled: config.BoolPtr(true),
		},
		"read_file": {
			Type:    config.ToolTypeFunction,
			Handler: "read_file",
			Enabled: config.BoolPtr(true),
		},
	}

	source, err := NewLocalToolSourceWithConfig(toolConfigs)
	require.NoError(t, err)
	require.NotNil(t, source)

	tools := source.ListTools()
	assert.Len(t, tools, 2)

	names := make(map[string]bool)
	for _, info := range tools {
		names[info.Name] = true
	}
	assert.True(t, names["execute_command"])
	assert.True(t, names["read_file"])
}

func TestLocalToolSource_WithEmptyConfig(t *testing.T) {
	source, err := NewLocalToolSourceWithConfig(map[string]*config.ToolConfig{})
	require.NoError(t, err)
	require.NotNil(t, source)
	assert.Empty(t, source.ListTools())
}

func TestLocalToolSource_WithDisabledTools(t *testing.T) {
	toolConfigs := map[string]*config.ToolConfig{
		"execute_command": {
			Type:    config.ToolTypeCommand,
			Enabled: config.BoolPtr(false),
		},
	}

	source, err := NewLocalToolSourceWithConfig(toolConfigs)
	require.NoError(t, err)
	assert.Empty(t, source.ListTools())
}

func TestLocalToolSource_ListTools(t *testing.T) {
	source := NewLocalToolSource("test-source")
	require.NoError(t, source.RegisterTool(&stubTool{name: "alpha"}))
	require.NoError(t, source.RegisterTool(&stubTool{name: "beta"}))

	tools := source.ListTools()
	assert.Len(t, tools, 2)
	for _, info := range tools {
		assert.Equal(t, "test-source", info.ServerURL)
	}
}

func TestLocalToolSource_GetTool(t *testing.T) {
	source := NewLocalToolSource("test-source")
	require.NoError(t, source.RegisterTool(&stubTool{name: "alpha"}))

	tool, exists := source.GetTool("alpha")
	assert.True(t, exists)
	assert.Equal(t, "alpha", tool.GetName())

	_, exists = source.GetTool("missing")
	assert.False(t, exists)
}

func TestLocalToolSource_RemoveTool(t *testing.T) {
	source := NewLocalToolSource("test-source")
	require.NoError(t, source.RegisterTool(&stubTool{name: "alpha"}))

	require.NoError(t, source.RemoveTool("alpha"))

	_, exists := source.GetTool("alpha")
	assert.False(t, exists)

	assert.Error(t, source.RemoveTool("alpha"))
}

func TestLocalToolSource_DiscoverTools(t *testing.T) {
	source := NewLocalToolSource("test-source")
	assert.NoError(t, source.DiscoverTools(context.Background()))
}

func TestLocalToolSource_Concurrency(t *testing.T) {
	source := NewLocalToolSource("test-source")

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = source.RegisterTool(&stubTool{name: string(rune('a' + i))})
			source.ListTools()
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Len(t, source.ListTools(), 10)
}
