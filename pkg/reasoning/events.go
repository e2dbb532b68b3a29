package reasoning

import "time"

// EventSink receives the driver's fixed per-iteration event sequence: one
// Thinking event (think-mode only), one Text event, then one ToolCall/ToolResult
// pair per tool call in document order. Implementations must not block the
// driver for long; the engine owns the execution context the sink runs in.
type EventSink interface {
	OnThinking(content string)
	OnText(content string)
	OnToolCall(call ToolCallRequest)
	OnToolResult(result ToolResultEvent)
	OnError(err error)
}

// ToolCallRequest is a single `<tool_call>{...}</tool_call>` block extracted
// from the assistant's raw output.
type ToolCallRequest struct {
	Tool string
	Args map[string]interface{}
}

// ToolResultEvent is emitted after a tool call completes, truncated to
// displayCharLimit for the sink (the synthetic tool_result message appended
// to the conversation carries the result truncated to conversationCharLimit).
type ToolResultEvent struct {
	Tool     string
	Success  bool
	Text     string
	Duration time.Duration
}

// NopSink discards every event. The driver uses it when RunOptions.Sink is
// nil, for callers that only care about its final return value.
type NopSink struct{}

func (NopSink) OnThinking(string)          {}
func (NopSink) OnText(string)              {}
func (NopSink) OnToolCall(ToolCallRequest)  {}
func (NopSink) OnToolResult(ToolResultEvent) {}
func (NopSink) OnError(error)               {}

// FuncSink adapts a set of closures to EventSink, for callers that only want
// to hook a subset of events without declaring a new type. A nil field is a no-op.
type FuncSink struct {
	Thinking  func(string)
	Text      func(string)
	ToolCall  func(ToolCallRequest)
	ToolResult func(ToolResultEvent)
	Error     func(error)
}

func (f FuncSink) OnThinking(content string) {
	if f.Thinking != nil {
		f.Thinking(content)
	}
}

func (f FuncSink) OnText(content string) {
	if f.Text != nil {
		f.Text(content)
	}
}

func (f FuncSink) OnToolCall(call ToolCallRequest) {
	if f.ToolCall != nil {
		f.ToolCall(call)
	}
}

func (f FuncSink) OnToolResult(result ToolResultEvent) {
	if f.ToolResult != nil {
		f.ToolResult(result)
	}
}

func (f FuncSink) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}
