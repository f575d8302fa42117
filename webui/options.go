package webui

import (
	"time"

	"gorm.io/gorm"

	"github.com/memorai/memorai/core/memory"
	"github.com/memorai/memorai/pkg/providers"
)

// ProviderFactory resolves a provider by name; tests swap in doubles here.
type ProviderFactory interface {
	Get(name string) (providers.Provider, error)
	Names() []string
}

type Config struct {
	DB              *gorm.DB
	Engine          *memory.Engine
	Providers       ProviderFactory
	DefaultModel    string
	Version         string
	ConversationTTL time.Duration
	SummaryEvery    int
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithEngine(engine *memory.Engine) Option {
	return func(c *Config) {
		c.Engine = engine
	}
}

func WithProviders(factory ProviderFactory) Option {
	return func(c *Config) {
		c.Providers = factory
	}
}

func WithDefaultModel(model string) Option {
	return func(c *Config) {
		c.DefaultModel = model
	}
}

func WithConversationTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.ConversationTTL = ttl
	}
}

// WithSummaryEvery sets how many tracked turns accumulate before the
// window is folded into a summary memory. Zero disables summarization.
func WithSummaryEvery(n int) Option {
	return func(c *Config) {
		c.SummaryEvery = n
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func NewConfig(opts ...Option) *Config {
	c := &Config{
		DefaultModel:    "gpt-3.5-turbo",
		Version:         "1.0.0",
		ConversationTTL: 30 * time.Minute,
		SummaryEvery:    10,
	}
	c.Apply(opts...)
	return c
}
