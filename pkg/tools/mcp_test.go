package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
)

func TestNewMCPToolSourceWithConfig(t *testing.T) {
	source, err := NewMCPToolSourceWithConfig(&config.ToolConfig{ServerURL: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewMCPToolSourceWithConfig() error = %v", err)
	}
	if source.GetName() != "mcp" {
		t.Errorf("GetName() = %v, want 'mcp'", source.GetName())
	}
	if source.GetType() != "mcp" {
		t.Errorf("GetType() = %v, want 'mcp'", source.GetType())
	}
	if source.IsInternal() {
		t.Error("expected IsInternal() to default to false")
	}
}

func TestNewMCPToolSourceWithConfig_EmptyURL(t *testing.T) {
	_, err := NewMCPToolSourceWithConfig(&config.ToolConfig{})
	if err == nil {
		t.Error("Expected error when server_url is empty")
	}
}

func TestNewMCPToolSourceWithConfig_Internal(t *testing.T) {
	internal := true
	source, err := NewMCPToolSourceWithConfig(&config.ToolConfig{
		ServerURL: "http://localhost:8080",
		Internal:  &internal,
	})
	if err != nil {
		t.Fatalf("NewMCPToolSourceWithConfig() error = %v", err)
	}
	if !source.IsInternal() {
		t.Error("expected IsInternal() to be true")
	}
}

func TestNewMCPToolSourceWithConfig_InvalidTimeout(t *testing.T) {
	_, err := NewMCPToolSourceWithConfig(&config.ToolConfig{
		ServerURL: "http://localhost:8080",
		Timeout:   "not-a-duration",
	})
	if err == nil {
		t.Error("Expected error for invalid timeout")
	}
}

func TestMCPToolSource_ListTools_EmptyBeforeDiscovery(t *testing.T) {
	source, err := NewMCPToolSourceWithConfig(&config.ToolConfig{ServerURL: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewMCPToolSourceWithConfig() error = %v", err)
	}
	if tools := source.ListTools(); len(tools) != 0 {
		t.Errorf("Expected 0 tools before discovery, got %d", len(tools))
	}
}

func TestMCPToolSource_GetTool_NotFound(t *testing.T) {
	source, err := NewMCPToolSourceWithConfig(&config.ToolConfig{ServerURL: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewMCPToolSourceWithConfig() error = %v", err)
	}
	if _, exists := source.GetTool("non-existent"); exists {
		t.Error("Expected false when getting non-existent tool")
	}
}

func TestMCPToolSource_DiscoverTools_WithoutURL(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "")
	if err := source.DiscoverTools(context.Background()); err == nil {
		t.Error("Expected error when URL is not configured")
	}
}

func TestMCPToolSource_DiscoverTools_WithInvalidURL(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "http://invalid-url-that-does-not-exist:9999")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := source.DiscoverTools(ctx); err == nil {
		t.Error("Expected error when URL is invalid")
	}
}

func TestMCPToolSource_DiscoverTools_AppliesFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"tools":[
			{"name":"keep_me","description":"kept"},
			{"name":"drop_me","description":"dropped"}
		]}}`))
	}))
	defer server.Close()

	source, err := NewMCPToolSourceWithConfig(&config.ToolConfig{
		ServerURL: server.URL,
		Filter:    []string{"keep_me"},
	})
	if err != nil {
		t.Fatalf("NewMCPToolSourceWithConfig() error = %v", err)
	}

	if err := source.DiscoverTools(context.Background()); err != nil {
		t.Fatalf("DiscoverTools() error = %v", err)
	}

	if _, exists := source.GetTool("keep_me"); !exists {
		t.Error("expected 'keep_me' to survive the filter")
	}
	if _, exists := source.GetTool("drop_me"); exists {
		t.Error("expected 'drop_me' to be filtered out")
	}
}

func TestMCPToolSource_ForTesting(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "http://localhost:8080")
	if source.GetName() != "test-mcp" {
		t.Errorf("GetName() = %v, want 'test-mcp'", source.GetName())
	}
	if source.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestToolInfoFromSchema(t *testing.T) {
	entry := map[string]interface{}{
		"name":        "search",
		"description": "search something",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "query text",
				},
				"tags": map[string]interface{}{
					"type":  "array",
					"items": "string",
				},
				"mode": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"fast", "thorough"},
				},
			},
			"required": []interface{}{"query"},
		},
	}

	info := toolInfoFromSchema(entry)
	if info.Name != "search" {
		t.Fatalf("Name = %v, want 'search'", info.Name)
	}

	byName := map[string]ToolParameter{}
	for _, p := range info.Parameters {
		byName[p.Name] = p
	}

	if !byName["query"].Required {
		t.Error("expected 'query' to be required")
	}
	if byName["tags"].Items["type"] != "string" {
		t.Errorf("expected 'tags' items type to default to string, got %v", byName["tags"].Items)
	}
	if len(byName["mode"].Enum) != 2 {
		t.Errorf("expected 2 enum values for 'mode', got %v", byName["mode"].Enum)
	}
}

func TestExtractMCPContent(t *testing.T) {
	tests := []struct {
		name   string
		result map[string]interface{}
		want   string
	}{
		{
			name: "content array of text items",
			result: map[string]interface{}{
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": "hello"},
				},
			},
			want: "hello",
		},
		{
			name:   "direct text field",
			result: map[string]interface{}{"text": "direct"},
			want:   "direct",
		},
		{
			name:   "nil result",
			result: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMCPContent(tt.result); got != tt.want {
				t.Errorf("extractMCPContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMCPTool_Execute_MissingRequiredParam(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "http://localhost:8080")
	tool := &MCPTool{
		toolInfo: ToolInfo{
			Name:       "test_tool",
			Parameters: []ToolParameter{{Name: "required_arg", Required: true}},
		},
		source: source,
	}

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Fatal("Expected error for missing required parameter")
	}
	if result.Success {
		t.Error("Expected result.Success to be false")
	}
}

func TestMCPTool_Execute_InvalidURL(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "http://localhost:8080")
	tool := &MCPTool{
		toolInfo: ToolInfo{Name: "test_tool"},
		source:   source,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	result, err := tool.Execute(ctx, map[string]interface{}{})
	if err == nil {
		t.Error("Expected error when executing tool with unreachable URL")
	}
	if result.Success {
		t.Error("Expected result.Success to be false")
	}
	if result.ToolName != "test_tool" {
		t.Errorf("Expected ToolName 'test_tool', got %s", result.ToolName)
	}
}

func TestMCPToolSource_Concurrency(t *testing.T) {
	source := NewMCPToolSourceForTesting("test-mcp", "http://localhost:8080")

	done := make(chan bool, 2)
	go func() {
		source.ListTools()
		done <- true
	}()
	go func() {
		source.GetTool("test")
		done <- true
	}()
	<-done
	<-done
}
