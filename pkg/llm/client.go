package llm

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// NewClient builds an OpenAI-compatible client. An empty URL keeps the
// default api.openai.com endpoint, which is what makes the same adapter
// usable against any compatible gateway.
func NewClient(apiKey, url, timeout string) *openai.Client {
	if apiKey == "" {
		apiKey = "sk-xxx"
	}
	config := openai.DefaultConfig(apiKey)
	if url != "" {
		config.BaseURL = url
	}

	dur, err := time.ParseDuration(timeout)
	if err != nil {
		dur = 30 * time.Second
	}

	config.HTTPClient = &http.Client{
		Timeout: dur,
	}
	return openai.NewClientWithConfig(config)
}
