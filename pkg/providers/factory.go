package providers

import "fmt"

const (
	ProviderOpenAI   = "openai"
	ProviderQwen     = "qwen"
	ProviderDeepSeek = "deepseek"
)

// Config carries the per-provider credentials read at startup.
type Config struct {
	DefaultProvider string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	Timeout       string

	QwenAPIKey     string
	DeepSeekAPIKey string
}

// Factory builds provider adapters by name. An empty name falls back to
// the configured default.
type Factory struct {
	config Config
}

func NewFactory(config Config) *Factory {
	if config.DefaultProvider == "" {
		config.DefaultProvider = ProviderOpenAI
	}
	return &Factory{config: config}
}

func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	switch name {
	case ProviderOpenAI:
		return NewOpenAI(f.config.OpenAIAPIKey, f.config.OpenAIBaseURL, f.config.Timeout), nil
	case ProviderQwen:
		return NewQwen(f.config.QwenAPIKey), nil
	case ProviderDeepSeek:
		return NewDeepSeek(f.config.DeepSeekAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// Names lists the selectable providers, default first.
func (f *Factory) Names() []string {
	names := []string{f.config.DefaultProvider}
	for _, name := range []string{ProviderOpenAI, ProviderQwen, ProviderDeepSeek} {
		if name != f.config.DefaultProvider {
			names = append(names, name)
		}
	}
	return names
}
