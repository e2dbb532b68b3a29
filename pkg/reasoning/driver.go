package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/tools"
)

// displayCharLimit bounds a single tool result as shown to the event sink.
// conversationCharLimit bounds the same result when folded into the synthetic
// tool_result message appended to the conversation — large enough that the
// model keeps useful context, finite so one runaway tool output can't blow
// the context window.
const (
	displayCharLimit      = 500
	conversationCharLimit = 4000
)

// ErrMaxIterations is returned by Run when the iteration cap is hit without
// the model producing a tool-call-free turn. Callers treat this as a soft
// failure: the accumulated text is still the best available response.
var ErrMaxIterations = errors.New("reasoning: max iterations reached")

// RunOptions configures a single ReAct loop invocation.
type RunOptions struct {
	Messages      []llms.Message
	Registry      *tools.Registry
	MaxIterations int
	ThinkMode     bool
	ThinkBudget   int
	Temperature   float64
	TopP          float64
	MaxTokens     int
	Sink          EventSink
}

// Driver runs the ReAct loop: stream a completion, extract tool calls, invoke
// them through the registry, fold results back into the conversation, repeat
// until the model stops calling tools, the iteration cap is hit, or the
// caller cancels.
type Driver struct {
	client *llms.Client
}

func NewDriver(client *llms.Client) *Driver {
	return &Driver{client: client}
}

// Run executes the loop and returns the final assistant text: the non-tool-call
// remainder of the turn that produced no further tool calls.
func (d *Driver) Run(ctx context.Context, opts RunOptions) (string, error) {
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}

	messages := append([]llms.Message(nil), opts.Messages...)
	var finalText string

	// MaxIterations is the highest iteration index the driver may run, so a
	// cap of N allows N+1 total iterations: one to produce a tool call,
	// up to N more to act on results and (normally) stop without one.
	for iteration := 0; iteration <= maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			sink.OnError(err)
			return finalText, err
		}

		completionOpts := llms.CompletionOptions{
			Messages:    messages,
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			MaxTokens:   opts.MaxTokens,
			ThinkMode:   opts.ThinkMode,
			ThinkBudget: opts.ThinkBudget,
		}

		rawText, err := d.client.StreamComplete(ctx, completionOpts, func(llms.StreamChunk) {
			// Tokens arrive but are not forwarded raw; the driver accumulates
			// the full text via the returned string and parses it below.
		})
		if err != nil {
			sink.OnError(err)
			return finalText, err
		}

		text := rawText
		var thinking string
		if opts.ThinkMode {
			thinking, text = extractThinking(text)
		}

		calls, remainder := extractToolCalls(text)

		if opts.ThinkMode && thinking != "" {
			sink.OnThinking(thinking)
		}
		sink.OnText(remainder)

		messages = append(messages, llms.Message{Role: "assistant", Content: rawText})

		if len(calls) == 0 {
			return remainder, nil
		}

		var resultBlocks strings.Builder
		for _, call := range calls {
			sink.OnToolCall(call)

			start := time.Now()
			result := opts.Registry.Execute(ctx, call.Tool, call.Args)
			duration := time.Since(start)

			resultText := result.Content
			if !result.Success {
				resultText = result.Error
			}

			sink.OnToolResult(ToolResultEvent{
				Tool:     call.Tool,
				Success:  result.Success,
				Text:     truncate(resultText, displayCharLimit),
				Duration: duration,
			})

			fmt.Fprintf(&resultBlocks, "<tool_result tool=%q success=%q>%s</tool_result>\n",
				call.Tool, successLabel(result.Success), truncate(resultText, conversationCharLimit))
		}

		messages = append(messages, llms.Message{Role: "tool", Content: resultBlocks.String()})
		finalText = remainder
	}

	sink.OnError(ErrMaxIterations)
	return finalText, ErrMaxIterations
}

func successLabel(success bool) string {
	if success {
		return "true"
	}
	return "false"
}
