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

const deepseekDefaultURL = "https://api.deepseek.com/chat/completions"

// DeepSeek speaks the OpenAI chat completion shape against the DeepSeek
// endpoint.
type DeepSeek struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewDeepSeek(apiKey string) *DeepSeek {
	return &DeepSeek{
		BaseURL:    deepseekDefaultURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type deepseekRequest struct {
	Model       string        `json:"model"`
	Messages    []qwenMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type deepseekResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *DeepSeek) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options) (*Response, error) {
	payload := deepseekRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if payload.Model == "" {
		payload.Model = "deepseek-chat"
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, qwenMessage{Role: msg.Role, Content: msg.Content})
	}

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
		return nil, fmt.Errorf("deepseek: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: "deepseek", Status: resp.StatusCode, Body: string(data)}
	}

	var result deepseekResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("deepseek: decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("deepseek: response carried no choices")
	}

	return &Response{
		ID:      result.ID,
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

// StreamCompletion performs a regular completion and delivers it as a
// single fragment.
func (p *DeepSeek) StreamCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, opts Options, fn StreamFunc) error {
	resp, err := p.ChatCompletion(ctx, messages, opts)
	if err != nil {
		return err
	}
	return fn(resp.Content)
}
