package utils

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// ============================================================================
// TOKEN COUNTING - ACCURATE IMPLEMENTATION
// ============================================================================

// TokenCounter handles accurate token counting per model
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	model    string
	mu       sync.RWMutex
}

// Message represents a message for token counting
type Message struct {
	Role    string
	Content string
}

var (
	// Cache encodings to avoid repeated initialization
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu       sync.RWMutex
)

// NewTokenCounter creates a counter for specific model
func NewTokenCounter(model string) (*TokenCounter, error) {
	cacheMu.RLock()
	cached, exists := encodingCache[model]
	cacheMu.RUnlock()

	if exists {
		return &TokenCounter{
			encoding: cached,
			model:    model,
		}, nil
	}

	// Try to get encoding for the model
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base (GPT-4, GPT-3.5-turbo, text-embedding-ada-002)
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	// Cache the encoding
	cacheMu.Lock()
	encodingCache[model] = encoding
	cacheMu.Unlock()

	return &TokenCounter{
		encoding: encoding,
		model:    model,
	}, nil
}

// Count returns accurate token count for text
func (tc *TokenCounter) Count(text string) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	tokens := tc.encoding.Encode(text, nil, nil)
	return len(tokens)
}

// CountMessages counts tokens in message list (includes role overhead)
// Based on OpenAI's token counting format:
// https://github.com/openai/openai-cookbook/blob/main/examples/How_to_count_tokens_with_tiktoken.ipynb
func (tc *TokenCounter) CountMessages(messages []Message) int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	// Message format overhead varies by model
	tokensPerMessage := 3 // <|start|>role|message<|end|>

	totalTokens := 0
	for _, msg := range messages {
		totalTokens += tokensPerMessage
		totalTokens += len(tc.encoding.Encode(msg.Role, nil, nil))
		totalTokens += len(tc.encoding.Encode(msg.Content, nil, nil))
	}

	// Every reply is primed with <|start|>assistant<|message|>
	totalTokens += 3

	return totalTokens
}

// GetModel returns the model name this counter is configured for
func (tc *TokenCounter) GetModel() string {
	return tc.model
}
