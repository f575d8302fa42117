package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const qwenDefaultURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// Qwen talks to the DashScope text-generation endpoint, which wraps the
// turns under an "input" object instead of the OpenAI shape.
type Qwen struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewQwen(apiKey string) *Qwen {
	return &Qwen{
		BaseURL:    qwenDefaultURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type qwenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	} `json:"parameters"`
}

type qwenResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		Text string `json:"text"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *Qwen) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Response, error) {
	payload := qwenRequest{Model: opts.Model}
	if payload.Model == "" {
		payload.Model = "qwen-max"
	}
	for _, msg := range messages {
		payload.Input.Messages = append(payload.Input.Messages, qwenMessage{Role: msg.Role, Content: msg.Content})
	}
	payload.Parameters.Temperature = opts.Temperature
	payload.Parameters.MaxTokens = opts.MaxTokens

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qwen: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: "qwen", Status: resp.StatusCode, Body: string(data)}
	}

	var result qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("qwen: decoding response: %w", err)
	}

	return &Response{
		ID:      result.RequestID,
		Content: result.Output.Text,
		Model:   payload.Model,
		Usage: Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

// StreamCompletion performs a regular completion and delivers it as a
// single fragment. The DashScope SSE protocol is not wired up.
func (p *Qwen) StreamCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options, fn StreamFunc) error {
	resp, err := p.ChatCompletion(ctx, messages, opts)
	if err != nil {
		return err
	}
	return fn(resp.Content)
}
