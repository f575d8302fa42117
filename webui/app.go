package webui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/memorai/memorai/core/conversations"
	models "github.com/memorai/memorai/dbmodels"
	"github.com/memorai/memorai/pkg/providers"
	"github.com/memorai/memorai/webui/types"
)

const defaultTemperature = 0.7

type App struct {
	config  *Config
	tracker *conversations.Tracker
	*fiber.App
}

func NewApp(opts ...Option) *App {
	config := NewConfig(opts...)

	webapp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	a := &App{
		config:  config,
		tracker: conversations.NewTracker(config.ConversationTTL),
		App:     webapp,
	}

	a.registerRoutes(webapp)

	return a
}

// turn is the assembled front half of a chat request, ready for the
// provider call.
type turn struct {
	req      types.ChatRequest
	user     *models.User
	turns    []openai.ChatCompletionMessage
	opts     providers.Options
	injected int
}

// Chat runs one full turn: load user, recall memories, assemble context,
// call the provider, persist the exchange.
func (a *App) Chat() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		t, status, err := a.prepareTurn(c)
		if err != nil {
			return errorJSONStatus(c, status, err.Error())
		}

		provider, err := a.config.Providers.Get(t.req.Provider)
		if err != nil {
			return errorJSONStatus(c, fiber.StatusBadRequest, err.Error())
		}

		resp, err := provider.ChatCompletion(c.Context(), t.turns, t.opts)
		if err != nil {
			xlog.Error("Provider call failed", "provider", t.req.Provider, "user", t.req.UserID, "error", err)
			return errorJSONMessage(c, "Chat error: "+err.Error())
		}

		if err := a.saveExchange(t.req.UserID, t.req.Message, resp.Content, resp.Usage.TotalTokens); err != nil {
			return errorJSONMessage(c, "Failed to persist exchange: "+err.Error())
		}

		return c.JSON(types.ChatResponse{
			ID:             uuid.NewString(),
			UserID:         t.req.UserID,
			Message:        resp.Content,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			TokensUsed:     resp.Usage.TotalTokens,
			MemoryInjected: t.injected > 0,
		})
	}
}

// ChatStream is the same pipeline with the reply delivered as SSE
// fragments. Persistence happens after the stream has drained.
func (a *App) ChatStream() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		t, status, err := a.prepareTurn(c)
		if err != nil {
			return errorJSONStatus(c, status, err.Error())
		}
		req := t.req

		provider, err := a.config.Providers.Get(req.Provider)
		if err != nil {
			return errorJSONStatus(c, fiber.StatusBadRequest, err.Error())
		}

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			var full strings.Builder

			err := provider.StreamCompletion(context.Background(), t.turns, t.opts, func(chunk string) error {
				full.WriteString(chunk)
				if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
					return err
				}
				return w.Flush()
			})
			if err != nil {
				xlog.Error("Streaming provider call failed", "provider", req.Provider, "user", req.UserID, "error", err)
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
				w.Flush()
				return
			}

			if err := a.saveExchange(req.UserID, req.Message, full.String(), 0); err != nil {
				xlog.Error("Failed to persist streamed exchange", "user", req.UserID, "error", err)
			}

			fmt.Fprint(w, "data: [DONE]\n\n")
			w.Flush()
		}))

		return nil
	}
}

// prepareTurn does the shared front half of both chat handlers:
// validation, user load, memory recall, context assembly.
func (a *App) prepareTurn(c *fiber.Ctx) (*turn, int, error) {
	var req types.ChatRequest

	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}
	if req.UserID == "" {
		return nil, fiber.StatusBadRequest, errors.New("user_id is required")
	}
	if req.Message == "" {
		return nil, fiber.StatusBadRequest, errors.New("message is required")
	}

	user, err := a.loadOrCreateUser(req.UserID)
	if err != nil {
		return nil, fiber.StatusInternalServerError, err
	}

	memories, err := a.config.Engine.RelevantMemories(req.UserID, req.Message)
	if err != nil {
		return nil, fiber.StatusInternalServerError, err
	}

	opts := providers.Options{
		Model:       req.Model,
		Temperature: defaultTemperature,
		MaxTokens:   req.MaxTokens,
	}
	if opts.Model == "" {
		opts.Model = a.config.DefaultModel
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}

	return &turn{
		req:      req,
		user:     user,
		turns:    a.config.Engine.BuildContext(user, req.Message, memories, req.MaxTokens),
		opts:     opts,
		injected: len(memories),
	}, fiber.StatusOK, nil
}

// saveExchange commits the chat rows, writes the paired memory rows, and
// feeds the conversation window.
func (a *App) saveExchange(userID, message, reply string, totalTokens int) error {
	err := a.config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.ChatMessage{
			UserID:  userID,
			Role:    models.RoleUser,
			Content: message,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.ChatMessage{
			UserID:     userID,
			Role:       models.RoleAssistant,
			Content:    reply,
			TokensUsed: totalTokens,
		}).Error
	})
	if err != nil {
		return err
	}

	if err := a.config.Engine.RecordExchange(userID, message, reply); err != nil {
		return err
	}

	a.tracker.AddMessage(userID, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	a.tracker.AddMessage(userID, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply})

	if a.config.SummaryEvery > 0 && a.tracker.Len(userID) >= a.config.SummaryEvery {
		if _, err := a.config.Engine.Summarize(userID, a.tracker.Window(userID)); err != nil {
			xlog.Warn("Conversation summary failed", "user", userID, "error", err)
		} else {
			a.tracker.Reset(userID)
		}
	}

	return nil
}

func (a *App) GetUser() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var user models.User
		err := a.config.DB.Where("user_id = ?", c.Params("user_id")).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSONStatus(c, fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			return errorJSONMessage(c, err.Error())
		}

		return c.JSON(types.UserResponse{
			UserID:       user.UserID,
			Profile:      user.Profile,
			SystemPrompt: user.SystemPrompt,
			MessageCount: user.MessageCount,
			CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:    user.UpdatedAt.UTC().Format(time.RFC3339),
			LastActive:   user.LastActive.UTC().Format(time.RFC3339),
		})
	}
}

// UpdatePreferences upserts the user and merges the recognized keys into
// the profile blob.
func (a *App) UpdatePreferences() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var req types.PreferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSONStatus(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
		}

		user, err := a.loadOrCreateUser(c.Params("user_id"))
		if err != nil {
			return errorJSONMessage(c, err.Error())
		}

		if user.Profile == nil {
			user.Profile = map[string]string{}
		}
		if req.Name != nil {
			user.Profile[models.ProfileName] = *req.Name
		}
		if req.Language != nil {
			user.Profile[models.ProfileLanguage] = *req.Language
		}
		if req.TonePreference != nil {
			user.Profile[models.ProfileTonePreference] = *req.TonePreference
		}
		if req.CustomInstructions != nil {
			user.Profile[models.ProfileCustomInstructions] = *req.CustomInstructions
		}
		if req.SystemPrompt != nil {
			user.SystemPrompt = *req.SystemPrompt
		}

		if err := a.config.DB.Save(user).Error; err != nil {
			return errorJSONMessage(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"user_id":    user.UserID,
			"profile":    user.Profile,
			"updated_at": user.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// PruneMemory is the on-demand pruning endpoint. A min_importance in the
// request selects the importance-aware variant.
func (a *App) PruneMemory() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var req types.PruneRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSONStatus(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
		}
		if req.UserID == "" {
			return errorJSONStatus(c, fiber.StatusBadRequest, "user_id is required")
		}
		if req.RetentionDays <= 0 {
			req.RetentionDays = 30
		}

		var (
			count int64
			err   error
		)
		if req.MinImportance != nil {
			count, err = a.config.Engine.PruneBelowImportance(req.UserID, req.RetentionDays, *req.MinImportance)
		} else {
			count, err = a.config.Engine.PruneOlderThan(req.UserID, req.RetentionDays)
		}
		if err != nil {
			return errorJSONMessage(c, err.Error())
		}

		return c.JSON(types.PruneResponse{
			Status:        "success",
			PrunedCount:   count,
			RetentionDays: req.RetentionDays,
		})
	}
}

// ListMemories exposes a user's stored memories for inspection.
func (a *App) ListMemories() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)

		memories, err := a.config.Engine.Storage().ByUser(c.Params("user_id"), limit)
		if err != nil {
			return errorJSONMessage(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"user_id":  c.Params("user_id"),
			"memories": memories,
			"count":    len(memories),
		})
	}
}

func (a *App) Health() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		database := "connected"
		if sqlDB, err := a.config.DB.DB(); err != nil || sqlDB.Ping() != nil {
			database = "disconnected"
		}

		return c.JSON(types.HealthResponse{
			Status:    "healthy",
			Version:   a.config.Version,
			Providers: a.config.Providers.Names(),
			Database:  database,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (a *App) loadOrCreateUser(userID string) (*models.User, error) {
	var user models.User
	err := a.config.DB.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{UserID: userID}
		if err := a.config.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		xlog.Info("Created user", "user", userID)
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	if err := a.config.DB.Model(&user).Update("last_active", time.Now().UTC()).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func errorJSONMessage(c *fiber.Ctx, message string) error {
	return errorJSONStatus(c, http.StatusInternalServerError, message)
}

func errorJSONStatus(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(struct {
		Error string `json:"error"`
	}{Error: message})
}
