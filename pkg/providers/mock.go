package providers

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Mock is a test double; unset funcs return an empty completion.
type Mock struct {
	ChatCompletionFunc   func(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Response, error)
	StreamCompletionFunc func(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options, fn StreamFunc) error
}

func (m *Mock) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Response, error) {
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, messages, opts)
	}
	return &Response{}, nil
}

func (m *Mock) StreamCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options, fn StreamFunc) error {
	if m.StreamCompletionFunc != nil {
		return m.StreamCompletionFunc(ctx, messages, opts, fn)
	}
	return nil
}
