package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/config"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/httpclient"
)

// thinkModeInstruction is prepended as a system message when CompletionOptions.ThinkMode
// is set, asking the model to reason inside a <think> block before answering.
const thinkModeInstruction = "Before answering, reason step by step inside <think>...</think> tags. Keep your reasoning concise."

// CompletionOptions carries the per-call parameters shared by Complete and StreamComplete.
type CompletionOptions struct {
	Messages      []Message
	Temperature   float64
	TopP          float64
	MaxTokens     int
	StopSequences []string
	ThinkMode     bool
	ThinkBudget   int // max reasoning tokens suggested to the model, 0 = no hint
}

// Usage reports token accounting for a single completion, either parsed from the
// response's usage object or estimated from character counts when absent.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Estimated        bool
}

// StreamSink receives chunks as they arrive during StreamComplete. The client
// calls it synchronously and stops calling it once it returns or the stream ends.
type StreamSink func(chunk StreamChunk)

// Client is a chat-completions client for an OpenAI-compatible endpoint. It owns
// retry/backoff via pkg/httpclient and a per-client token counter.
type Client struct {
	http        *httpclient.Client
	baseURL     string
	apiKey      string
	model       string
	maxRetries  int
	tokenTotal  *atomic.Int64
}

// NewClient builds a Client from a provider config. cfg.MaxRetries (3 when
// unset) and cfg.RetryDelay (1s when unset) go to the underlying
// httpclient.Client, which caps a computed backoff delay at 8s. That client
// retries 429 and 503 with exponential backoff from the base delay plus
// jitter, honoring Retry-After from the provider's rate-limit headers when
// present; it retries 408, 500, 502 and 504 at most twice, after 2s and 3s;
// every other status, including the remaining 5xx codes, is not retried.
func NewClient(cfg *config.LLMProviderConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := time.Duration(cfg.RetryDelay) * time.Second
	if baseDelay <= 0 {
		baseDelay = 1 * time.Second
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	hc := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
		httpclient.WithMaxRetries(maxRetries),
		httpclient.WithBaseDelay(baseDelay),
		httpclient.WithMaxDelay(8*time.Second),
		httpclient.WithHeaderParser(rateLimitParserFor(cfg.Type)),
	)

	return &Client{
		http:       hc,
		baseURL:    strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: maxRetries,
		tokenTotal: &atomic.Int64{},
	}
}

// TokensUsed returns the running total of tokens accounted across every
// Complete/StreamComplete call made by this client, for surfacing to the UI.
func (c *Client) TokensUsed() int64 {
	return c.tokenTotal.Load()
}

// rateLimitParserFor picks the header parser matching a provider type, since
// Anthropic, OpenAI-compatible, and Gemini endpoints each name their rate
// limit headers differently. Unrecognized types fall back to the
// OpenAI-compatible parser, since that's what Ollama and most self-hosted
// gateways emulate.
func rateLimitParserFor(providerType string) func(http.Header) httpclient.RateLimitInfo {
	switch providerType {
	case "anthropic":
		return httpclient.ParseAnthropicHeaders
	case "gemini":
		return httpclient.ParseGeminiHeaders
	default:
		return httpclient.ParseOpenAIHeaders
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

func (c *Client) buildRequest(opts CompletionOptions, stream bool) chatRequest {
	messages := make([]chatMessage, 0, len(opts.Messages)+1)
	if opts.ThinkMode {
		instr := thinkModeInstruction
		if opts.ThinkBudget > 0 {
			instr += fmt.Sprintf(" Limit your reasoning to roughly %d tokens.", opts.ThinkBudget)
		}
		messages = append(messages, chatMessage{Role: "system", Content: instr})
	}
	for _, m := range opts.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	return chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopSequences,
		Stream:      stream,
	}
}

func (c *Client) newHTTPRequest(ctx context.Context, body chatRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ModelError{Kind: KindInvalidRequest, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &ModelError{Kind: KindInvalidRequest, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// errorFromResponse drains resp.Body and converts a non-2xx chat completions
// response into a *ModelError with a Kind matching the status code.
func errorFromResponse(resp *http.Response) *ModelError {
	body, _ := io.ReadAll(resp.Body)
	msg := extractAPIErrorMessage(body)
	return &ModelError{
		Kind:       kindFromStatus(resp.StatusCode),
		Message:    msg,
		HTTPStatus: resp.StatusCode,
	}
}

func extractAPIErrorMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	s := string(body)
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}

// Complete issues a single non-streaming chat completion and returns the
// assistant's text. Used for decomposition, the critic, rewrite passes, and
// other one-shot helpers that don't need token-by-token output.
func (c *Client) Complete(ctx context.Context, opts CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ModelError{Kind: KindCancelled, Message: "cancelled before request", Err: err}
	}

	req, err := c.newHTTPRequest(ctx, c.buildRequest(opts, false))
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if resp == nil {
		if ctx.Err() != nil {
			return "", &ModelError{Kind: KindCancelled, Message: "cancelled during request", Err: ctx.Err()}
		}
		return "", &ModelError{Kind: KindServerError, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errorFromResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ModelError{Kind: KindParseError, Message: "failed to read response body", Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ModelError{Kind: KindParseError, Message: "failed to decode response", Err: err}
	}

	var text string
	if len(parsed.Choices) > 0 {
		text = parsed.Choices[0].Message.Content
	}

	c.accountUsage(parsed.Usage, text)

	if err := ctx.Err(); err != nil {
		return text, &ModelError{Kind: KindCancelled, Message: "cancelled after response", Err: err}
	}

	return text, nil
}

// StreamComplete issues a streaming chat completion, invoking sink with a
// "text" chunk per delta and a final "done" chunk carrying the accumulated
// token count. It returns the full accumulated text.
func (c *Client) StreamComplete(ctx context.Context, opts CompletionOptions, sink StreamSink) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ModelError{Kind: KindCancelled, Message: "cancelled before request", Err: err}
	}

	req, err := c.newHTTPRequest(ctx, c.buildRequest(opts, true))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if resp == nil {
		if ctx.Err() != nil {
			return "", &ModelError{Kind: KindCancelled, Message: "cancelled during request", Err: ctx.Err()}
		}
		return "", &ModelError{Kind: KindServerError, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errorFromResponse(resp)
	}

	var accumulated strings.Builder
	var usage *chatUsage

	reader := bufio.NewReader(resp.Body)
	for {
		if err := ctx.Err(); err != nil {
			modelErr := &ModelError{Kind: KindCancelled, Message: "cancelled mid-stream", Err: err}
			if sink != nil {
				sink(StreamChunk{Type: "error", Error: modelErr})
			}
			return accumulated.String(), modelErr
		}

		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			if chunkText, chunkUsage, ok := parseSSELine(line); ok {
				if chunkUsage != nil {
					usage = chunkUsage
				}
				if chunkText != "" {
					accumulated.WriteString(chunkText)
					if sink != nil {
						sink(StreamChunk{Type: "text", Text: chunkText})
					}
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			modelErr := &ModelError{Kind: KindServerError, Message: "stream read failed", Err: readErr}
			if sink != nil {
				sink(StreamChunk{Type: "error", Error: modelErr})
			}
			return accumulated.String(), modelErr
		}
	}

	text := accumulated.String()
	c.accountUsage(usage, text)

	if sink != nil {
		sink(StreamChunk{Type: "done", Tokens: int(c.TokensUsed())})
	}

	return text, nil
}

// parseSSELine handles one line of a server-sent-events stream. It returns
// ok=false for blank lines, non-"data:" lines (e.g. "event: ..."), and lines
// that fail to decode as JSON — all silently dropped per the streaming protocol.
// The sentinel "data: [DONE]" line returns ok=false with no error.
func parseSSELine(line []byte) (text string, usage *chatUsage, ok bool) {
	line = bytes.TrimRight(line, "\r\n")
	if !bytes.HasPrefix(line, []byte("data: ")) && !bytes.HasPrefix(line, []byte("data:")) {
		return "", nil, false
	}
	payload := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
	if len(payload) == 0 || bytes.Equal(payload, []byte("[DONE]")) {
		return "", nil, false
	}

	var chunk chatResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", nil, false
	}

	if len(chunk.Choices) > 0 {
		text = chunk.Choices[0].Delta.Content
	}
	return text, chunk.Usage, true
}

// accountUsage adds the completion's token count to this client's total,
// estimating by character count (roughly 4 chars/token) when the server
// didn't send a usage object.
func (c *Client) accountUsage(usage *chatUsage, text string) {
	if usage != nil && usage.TotalTokens > 0 {
		c.tokenTotal.Add(int64(usage.TotalTokens))
		return
	}
	estimated := len(text) / 4
	c.tokenTotal.Add(int64(estimated))
}
