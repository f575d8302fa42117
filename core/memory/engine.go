package memory

import (
	"fmt"
	"strings"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	models "github.com/memorai/memorai/dbmodels"
)

const (
	summaryTailMessages = 10
	summarySnippetLen   = 100
)

// Tag sets attached to the two rows written per exchange.
var (
	userInputTags         = []string{"conversation", "user_input"}
	assistantResponseTags = []string{"conversation", "assistant_response"}
)

// Engine ties retrieval, writing and pruning of memories together. One
// engine is shared across requests; all state lives in the store.
type Engine struct {
	db             *gorm.DB
	storage        *Storage
	strategy       Strategy
	flatImportance bool
}

type Option func(*Engine)

// WithStrategy selects the retrieval policy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithFlatImportance makes every conversation memory score the fixed
// default instead of running the heuristic.
func WithFlatImportance() Option {
	return func(e *Engine) {
		e.flatImportance = true
	}
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{
		db:       db,
		storage:  NewStorage(db),
		strategy: StrategyKeyword,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Storage() *Storage {
	return e.storage
}

func (e *Engine) StrategyName() Strategy {
	return e.strategy
}

// RelevantMemories picks the memories to inject for the given query,
// according to the configured strategy.
func (e *Engine) RelevantMemories(userID, query string) ([]models.Memory, error) {
	switch e.strategy {
	case StrategyRecency:
		return e.storage.Recent(userID, recencyDays, recencyLimit)
	case StrategyKeyword:
		pool, err := e.storage.ByUser(userID, candidatePoolSize)
		if err != nil {
			return nil, err
		}
		return FilterByKeywordOverlap(query, pool), nil
	default:
		return nil, fmt.Errorf("unknown memory strategy: %s", e.strategy)
	}
}

// RecordExchange writes one memory row per side of a completed turn and
// bumps the user's message counter, all in a single transaction. Either
// both rows land or neither does.
func (e *Engine) RecordExchange(userID, userMessage, assistantReply string) error {
	importance := func(text string) int {
		if e.flatImportance {
			return defaultImportance
		}
		return CalculateImportance(text)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		userMem := &models.Memory{
			UserID:     userID,
			MemoryType: models.MemoryTypeShortTerm,
			Content:    userMessage,
			Importance: importance(userMessage),
			Topic:      ExtractTopic(userMessage),
			Tags:       userInputTags,
		}
		if err := tx.Create(userMem).Error; err != nil {
			return err
		}

		assistantMem := &models.Memory{
			UserID:     userID,
			MemoryType: models.MemoryTypeShortTerm,
			Content:    assistantReply,
			Importance: importance(assistantReply),
			Topic:      ExtractTopic(assistantReply),
			Tags:       assistantResponseTags,
		}
		if err := tx.Create(assistantMem).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("user_id = ?", userID).
			UpdateColumn("message_count", gorm.Expr("message_count + 1")).Error
	})
}

// Summarize concatenates the tail of a conversation into a summary memory.
// No model call is involved, the summary is plain string assembly.
func (e *Engine) Summarize(userID string, messages []openai.ChatCompletionMessage) (string, error) {
	if len(messages) > summaryTailMessages {
		messages = messages[len(messages)-summaryTailMessages:]
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if len(content) > summarySnippetLen {
			content = content[:summarySnippetLen]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), content))
	}
	summary := strings.Join(parts, " | ")
	if summary == "" {
		return "", nil
	}

	_, err := e.storage.Save(userID, summary, models.MemoryTypeSummary, summaryImportance, "Conversation Summary", []string{"summary"})
	if err != nil {
		return "", err
	}

	xlog.Debug("Stored conversation summary", "user", userID, "messages", len(messages))
	return summary, nil
}

// PruneOlderThan is the hard-cap variant: age is the only criterion.
func (e *Engine) PruneOlderThan(userID string, retentionDays int) (int64, error) {
	count, err := e.storage.PruneOlderThan(userID, retentionDays)
	if err != nil {
		return 0, err
	}
	xlog.Info("Pruned memories", "user", userID, "count", count, "retention_days", retentionDays)
	return count, nil
}

// PruneBelowImportance is the importance-aware variant.
func (e *Engine) PruneBelowImportance(userID string, retentionDays, minImportance int) (int64, error) {
	count, err := e.storage.PruneBelowImportance(userID, retentionDays, minImportance)
	if err != nil {
		return 0, err
	}
	xlog.Info("Pruned memories", "user", userID, "count", count, "retention_days", retentionDays, "min_importance", minImportance)
	return count, nil
}
