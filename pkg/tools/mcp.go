package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/httpclient"
)

// DefaultMCPRequestTimeout bounds a single JSON-RPC round trip to an MCP server.
const DefaultMCPRequestTimeout = 30 * time.Second

// MCPToolSource is a ToolSource backed by a remote MCP server reachable over
// HTTP. It speaks the JSON-RPC "tools/list"/"tools/call" methods and exposes
// whatever the server advertises as ordinary Tools to the registry. The
// stdio sub-process transport MCP also supports is out of scope here: every
// source this adapter builds talks to an already-running HTTP endpoint.
type MCPToolSource struct {
	name        string
	url         string
	description string
	httpClient  *httpclient.Client
	tools       map[string]Tool
	mu          sync.RWMutex
	internal    bool     // if true, hidden from the agent-facing tool list
	filter      []string // if non-empty, only these tool names are kept
}

// MCPTool adapts one server-advertised tool to the Tool interface, routing
// Execute back through its source's JSON-RPC client.
type MCPTool struct {
	toolInfo ToolInfo
	source   *MCPToolSource
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// NewMCPToolSourceWithConfig builds an MCPToolSource from a ToolConfig entry,
// wiring its TLS and filtering knobs straight from config.
func NewMCPToolSourceWithConfig(toolConfig *config.ToolConfig) (*MCPToolSource, error) {
	serverURL := toolConfig.ServerURL
	if serverURL == "" {
		serverURL = toolConfig.URL
	}
	if serverURL == "" {
		return nil, fmt.Errorf("server_url or url is required for MCP source")
	}

	timeout := DefaultMCPRequestTimeout
	if toolConfig.Timeout != "" {
		parsed, err := time.ParseDuration(toolConfig.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout for MCP source: %w", err)
		}
		timeout = parsed
	}

	tlsConfig := &httpclient.TLSConfig{CACertificate: toolConfig.CACertificate}
	if toolConfig.InsecureSkipVerify != nil {
		tlsConfig.InsecureSkipVerify = *toolConfig.InsecureSkipVerify
	}
	transport, err := httpclient.ConfigureTLS(tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("configure TLS for MCP source: %w", err)
	}
	if tlsConfig.InsecureSkipVerify {
		slog.Warn("TLS certificate verification disabled for MCP server", "server_url", serverURL)
	}

	return &MCPToolSource{
		name:        "mcp",
		url:         serverURL,
		description: toolConfig.Description,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: timeout, Transport: transport}),
			httpclient.WithMaxRetries(3),
			httpclient.WithBaseDelay(2*time.Second),
		),
		tools:    make(map[string]Tool),
		internal: toolConfig.Internal != nil && *toolConfig.Internal,
		filter:   toolConfig.Filter,
	}, nil
}

func (r *MCPToolSource) GetName() string { return r.name }
func (r *MCPToolSource) GetType() string { return "mcp" }

// IsInternal reports whether tools from this source should stay hidden from
// the agent-facing tool list (wired by cmd/nexo's catalog builder).
func (r *MCPToolSource) IsInternal() bool { return r.internal }

func (r *MCPToolSource) DiscoverTools(ctx context.Context) error {
	if r.url == "" {
		return fmt.Errorf("MCP server URL not configured for source %s", r.name)
	}

	slog.Info("discovering tools from MCP server", "source", r.name, "url", r.url)

	infos, err := r.listRemoteTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover tools from %s: %w", r.name, err)
	}

	allowed := make(map[string]bool, len(r.filter))
	for _, name := range r.filter {
		allowed[name] = true
	}

	discovered := make(map[string]Tool, len(infos))
	for _, info := range infos {
		if len(allowed) > 0 && !allowed[info.Name] {
			continue
		}
		discovered[info.Name] = &MCPTool{toolInfo: info, source: r}
	}

	r.mu.Lock()
	r.tools = discovered
	r.mu.Unlock()

	if len(discovered) == 0 {
		slog.Warn("MCP source discovered 0 tools", "source", r.name)
	} else {
		slog.Info("MCP source discovered tools", "source", r.name, "count", len(discovered))
	}
	return nil
}

func (r *MCPToolSource) ListTools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolInfo, 0, len(r.tools))
	for _, tool := range r.tools {
		info := tool.GetInfo()
		info.ServerURL = r.name
		tools = append(tools, info)
	}
	return tools
}

func (r *MCPToolSource) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// listRemoteTools calls "tools/list" and translates the JSON-RPC result into
// ToolInfo entries, inferring parameter schemas from each tool's inputSchema.
func (r *MCPToolSource) listRemoteTools(ctx context.Context) ([]ToolInfo, error) {
	response, err := r.call(ctx, "tools/list", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("MCP error: %s", response.Error.Message)
	}

	result, ok := response.Result.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	toolsArray, ok := result["tools"].([]interface{})
	if !ok {
		return nil, nil
	}

	var infos []ToolInfo
	for _, item := range toolsArray {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		infos = append(infos, toolInfoFromSchema(entry))
	}
	return infos, nil
}

func toolInfoFromSchema(entry map[string]interface{}) ToolInfo {
	info := ToolInfo{
		Name:        stringField(entry, "name"),
		Description: stringField(entry, "description"),
	}

	schema, _ := entry["inputSchema"].(map[string]interface{})
	properties, _ := schema["properties"].(map[string]interface{})
	for paramName, raw := range properties {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		paramType := stringField(param, "type")
		if paramType == "" {
			continue
		}
		p := ToolParameter{
			Name:        paramName,
			Type:        paramType,
			Description: stringField(param, "description"),
			Required:    schemaRequires(schema, paramName),
		}
		if enum, ok := param["enum"].([]interface{}); ok {
			for _, v := range enum {
				if s, ok := v.(string); ok && s != "" {
					p.Enum = append(p.Enum, s)
				}
			}
		}
		if paramType == "array" {
			p.Items = arrayItemSchema(param["items"])
		}
		info.Parameters = append(info.Parameters, p)
	}
	return info
}

func arrayItemSchema(items interface{}) map[string]interface{} {
	switch v := items.(type) {
	case map[string]interface{}:
		if stringField(v, "type") != "" {
			return v
		}
	case string:
		if v != "" {
			return map[string]interface{}{"type": v}
		}
	}
	return map[string]interface{}{"type": "string"}
}

func schemaRequires(schema map[string]interface{}, name string) bool {
	required, ok := schema["required"].([]interface{})
	if !ok {
		return false
	}
	for _, r := range required {
		if r == name {
			return true
		}
	}
	return false
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// call sends one JSON-RPC request over HTTP and decodes the response body.
func (r *MCPToolSource) call(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal MCP request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build MCP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("MCP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("MCP HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read MCP response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("parse MCP response: %w", err)
	}
	return &rpcResp, nil
}

func (t *MCPTool) GetInfo() ToolInfo      { return t.toolInfo }
func (t *MCPTool) GetName() string        { return t.toolInfo.Name }
func (t *MCPTool) GetDescription() string { return t.toolInfo.Description }

func (t *MCPTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	start := time.Now()

	if err := t.validateParameters(args); err != nil {
		return buildMCPErrorResult(t.toolInfo.Name, err.Error(), time.Since(start), t.source.name, t.source.url), err
	}

	response, err := t.source.call(ctx, "tools/call", callParams{Name: t.toolInfo.Name, Arguments: args})
	if err != nil {
		return buildMCPErrorResult(t.toolInfo.Name, err.Error(), time.Since(start), t.source.name, t.source.url), err
	}
	if response.Error != nil {
		msg := response.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("MCP protocol error (code: %d)", response.Error.Code)
		}
		err := fmt.Errorf("MCP error: %s", msg)
		return buildMCPErrorResult(t.toolInfo.Name, err.Error(), time.Since(start), t.source.name, t.source.url), err
	}

	resultMap, _ := response.Result.(map[string]interface{})
	content := extractMCPContent(resultMap)

	if isErr, ok := resultMap["isError"].(bool); ok && isErr {
		msg := content
		if msg == "" {
			msg = "tool reported error"
		}
		err := fmt.Errorf("MCP tool error: %s", msg)
		return buildMCPErrorResult(t.toolInfo.Name, err.Error(), time.Since(start), t.source.name, t.source.url), err
	}

	var metadata map[string]interface{}
	if m, ok := resultMap["metadata"].(map[string]interface{}); ok {
		metadata = m
	}

	return buildMCPSuccessResult(t.toolInfo.Name, content, time.Since(start), t.source.name, t.source.url, metadata), nil
}

// validateParameters checks that every required schema parameter is present.
func (t *MCPTool) validateParameters(args map[string]interface{}) error {
	var missing []string
	for _, param := range t.toolInfo.Parameters {
		if param.Required {
			if _, exists := args[param.Name]; !exists {
				missing = append(missing, param.Name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required parameters: %v", missing)
	}
	return nil
}

// extractMCPContent pulls the text payload out of an MCP tools/call result,
// which is conventionally a "content" array of {type, text} items.
func extractMCPContent(result map[string]interface{}) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	if items, ok := result["content"].([]interface{}); ok {
		for _, item := range items {
			switch v := item.(type) {
			case map[string]interface{}:
				if text, ok := v["text"].(string); ok {
					b.WriteString(text)
					b.WriteString("\n")
				}
			case string:
				b.WriteString(v)
				b.WriteString("\n")
			}
		}
	}
	if b.Len() == 0 {
		if text, ok := result["text"].(string); ok {
			b.WriteString(text)
		} else if text, ok := result["content"].(string); ok {
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}
