package providers

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Options are the per-request completion knobs. MaxTokens of zero means
// provider default.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// StreamFunc receives completion fragments in order. Returning an error
// stops the stream.
type StreamFunc func(chunk string) error

// Provider turns an ordered list of turns into a completion. No retries
// happen at this layer; a failed call surfaces directly.
type Provider interface {
	ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Response, error)
	StreamCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options, fn StreamFunc) error
}

// APIError carries the upstream HTTP status and body text.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Provider, e.Status, e.Body)
}
