package llms

// Message is one turn in a conversation sent to Complete/StreamComplete.
// Tool results come back as role "tool" with the formatted result text in
// Content: this client speaks to providers through plain chat messages, not
// a native function-calling API, so the ReAct loop in pkg/reasoning embeds
// and parses tool_call/tool_result blocks directly in message text instead
// of structured tool-call fields.
type Message struct {
	Role    string `json:"role"`              // "user", "assistant", "system", "tool"
	Content string `json:"content,omitempty"` // Text content
}

// StreamChunk represents a chunk of streaming response
type StreamChunk struct {
	Type   string // "text", "done", "error"
	Text   string // For text chunks
	Tokens int    // For done chunks
	Error  error  // For error chunks
}
