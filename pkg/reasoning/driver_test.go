package reasoning

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

type echoTool struct{}

func (echoTool) GetInfo() tools.ToolInfo {
	return tools.ToolInfo{
		Name: "echo",
		Parameters: []tools.ToolParameter{
			{Name: "text", Type: "string", Required: true},
		},
	}
}

func (echoTool) Execute(ctx context.Context, args map[string]interface{}) (tools.ToolResult, error) {
	return tools.ToolResult{Success: true, Content: fmt.Sprintf("echoed: %v", args["text"])}, nil
}

func (echoTool) GetName() string { return "echo" }

func (echoTool) GetDescription() string { return "echoes text" }

func streamingResponse(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n", content)
	fmt.Fprint(w, "data: [DONE]\n")
}

func newTestDriver(t *testing.T, responses []string) (*Driver, *tools.Registry) {
	t.Helper()
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := responses[call]
		if call < len(responses)-1 {
			call++
		}
		streamingResponse(w, resp)
	}))
	t.Cleanup(server.Close)

	client := llms.NewClient(&config.LLMProviderConfig{
		Type: "openai", Model: "gpt-4o", Host: server.URL, APIKey: "k", MaxRetries: 1,
	})

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(echoTool{}))

	return NewDriver(client), reg
}

func TestDriver_NoToolCalls_TerminatesImmediately(t *testing.T) {
	driver, reg := newTestDriver(t, []string{"Hello there, no tools needed."})

	var texts []string
	sink := FuncSink{Text: func(s string) { texts = append(texts, s) }}

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 5,
		Sink:          sink,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there, no tools needed.", text)
	assert.Equal(t, []string{"Hello there, no tools needed."}, texts)
}

func TestDriver_OneToolCall_ThenStops(t *testing.T) {
	driver, reg := newTestDriver(t, []string{
		`Let me check. <tool_call>{"tool":"echo","args":{"text":"hi"}}</tool_call>`,
		"All done.",
	})

	var toolCalls []ToolCallRequest
	var toolResults []ToolResultEvent
	sink := FuncSink{
		ToolCall:   func(c ToolCallRequest) { toolCalls = append(toolCalls, c) },
		ToolResult: func(r ToolResultEvent) { toolResults = append(toolResults, r) },
	}

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 5,
		Sink:          sink,
	})

	require.NoError(t, err)
	assert.Equal(t, "All done.", text)
	require.Len(t, toolCalls, 1)
	assert.Equal(t, "echo", toolCalls[0].Tool)
	require.Len(t, toolResults, 1)
	assert.True(t, toolResults[0].Success)
	assert.Contains(t, toolResults[0].Text, "echoed: hi")
}

func TestDriver_MaxIterationsOne_AllowsTwoTotalIterations(t *testing.T) {
	driver, reg := newTestDriver(t, []string{
		`<tool_call>{"tool":"echo","args":{"text":"x"}}</tool_call>`,
		"Finished after the tool call.",
	})

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Finished after the tool call.", text)
}

func TestDriver_MaxIterationsReached_ReturnsSoftFailure(t *testing.T) {
	driver, reg := newTestDriver(t, []string{
		`<tool_call>{"tool":"echo","args":{"text":"x"}}</tool_call>`,
	})

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 0,
	})

	require.ErrorIs(t, err, ErrMaxIterations)
	assert.Empty(t, text)
}

func TestDriver_MalformedToolCall_SkippedAsText(t *testing.T) {
	driver, reg := newTestDriver(t, []string{
		`before <tool_call>{not json}</tool_call> after`,
	})

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, "before  after", text)
}

func TestDriver_ThinkMode_EmitsThinkingSeparately(t *testing.T) {
	driver, reg := newTestDriver(t, []string{
		"<think>reasoning about it</think>The answer is 42.",
	})

	var thinking, textOut string
	sink := FuncSink{
		Thinking: func(s string) { thinking = s },
		Text:     func(s string) { textOut = s },
	}

	text, err := driver.Run(context.Background(), RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 3,
		ThinkMode:     true,
		Sink:          sink,
	})

	require.NoError(t, err)
	assert.Equal(t, "reasoning about it", thinking)
	assert.Equal(t, "The answer is 42.", textOut)
	assert.Equal(t, "The answer is 42.", text)
}

func TestDriver_Cancelled_StopsImmediately(t *testing.T) {
	driver, reg := newTestDriver(t, []string{"unused"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawError error
	sink := FuncSink{Error: func(err error) { sawError = err }}

	_, err := driver.Run(ctx, RunOptions{
		Messages:      []llms.Message{{Role: "user", Content: "hi"}},
		Registry:      reg,
		MaxIterations: 3,
		Sink:          sink,
	})

	require.Error(t, err)
	assert.Equal(t, err, sawError)
}
