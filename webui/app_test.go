package webui_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"github.com/memorai/memorai/core/memory"
	models "github.com/memorai/memorai/dbmodels"
	"github.com/memorai/memorai/pkg/providers"
	"github.com/memorai/memorai/webui"
	"github.com/memorai/memorai/webui/types"
)

type mockFactory struct {
	provider providers.Provider
}

func (f *mockFactory) Get(name string) (providers.Provider, error) {
	if name != "" && name != "openai" {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return f.provider, nil
}

func (f *mockFactory) Names() []string {
	return []string{"openai"}
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, err := json.Marshal(payload)
	Expect(err).NotTo(HaveOccurred())
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(resp *http.Response, out any) {
	defer resp.Body.Close()
	Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
}

var _ = Describe("App", func() {
	var (
		gdb     *gorm.DB
		app     *webui.App
		factory *mockFactory
	)

	newApp := func(opts ...webui.Option) *webui.App {
		base := []webui.Option{
			webui.WithDB(gdb),
			webui.WithEngine(memory.NewEngine(gdb)),
			webui.WithProviders(factory),
		}
		return webui.NewApp(append(base, opts...)...)
	}

	BeforeEach(func() {
		gdb = openTestDB()
		factory = &mockFactory{
			provider: &providers.Mock{
				ChatCompletionFunc: func(ctx context.Context, messages []openai.ChatCompletionMessage, opts providers.Options) (*providers.Response, error) {
					return &providers.Response{
						ID:      "cmpl-1",
						Content: "Hello! How can I help?",
						Model:   opts.Model,
						Usage:   providers.Usage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
					}, nil
				},
			},
		}
		app = newApp()
	})

	Describe("POST /api/v1/chat", func() {
		It("creates the user and persists the exchange on first contact", func() {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:  "fresh-user",
				Message: "hi there",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var chat types.ChatResponse
			decodeBody(resp, &chat)
			Expect(chat.UserID).To(Equal("fresh-user"))
			Expect(chat.Message).To(Equal("Hello! How can I help?"))
			Expect(chat.TokensUsed).To(Equal(18))
			Expect(chat.MemoryInjected).To(BeFalse())
			Expect(chat.ID).NotTo(BeEmpty())
			_, err = time.Parse(time.RFC3339, chat.Timestamp)
			Expect(err).NotTo(HaveOccurred())

			var user models.User
			Expect(gdb.Where("user_id = ?", "fresh-user").First(&user).Error).To(Succeed())
			Expect(user.MessageCount).To(Equal(1))

			var memCount, msgCount int64
			Expect(gdb.Model(&models.Memory{}).Where("user_id = ?", "fresh-user").Count(&memCount).Error).To(Succeed())
			Expect(memCount).To(Equal(int64(2)))
			Expect(gdb.Model(&models.ChatMessage{}).Where("user_id = ?", "fresh-user").Count(&msgCount).Error).To(Succeed())
			Expect(msgCount).To(Equal(int64(2)))

			var assistantRow models.ChatMessage
			Expect(gdb.Where("user_id = ? AND role = ?", "fresh-user", models.RoleAssistant).First(&assistantRow).Error).To(Succeed())
			Expect(assistantRow.TokensUsed).To(Equal(18))
		})

		It("injects matching memories on later turns", func() {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:  "returning",
				Message: "I really love pizza",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:  "returning",
				Message: "what food do I love?",
			}), -1)
			Expect(err).NotTo(HaveOccurred())

			var chat types.ChatResponse
			decodeBody(resp, &chat)
			Expect(chat.MemoryInjected).To(BeTrue())
		})

		It("rejects a request without a message", func() {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{UserID: "u"}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown provider", func() {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:   "u",
				Message:  "hi",
				Provider: "pollinations",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 and persists no exchange when the provider fails", func() {
			factory.provider = &providers.Mock{
				ChatCompletionFunc: func(ctx context.Context, messages []openai.ChatCompletionMessage, opts providers.Options) (*providers.Response, error) {
					return nil, &providers.APIError{Provider: "openai", Status: 502, Body: "upstream down"}
				},
			}

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:  "unlucky",
				Message: "hi",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))

			var body struct {
				Error string `json:"error"`
			}
			decodeBody(resp, &body)
			Expect(body.Error).To(ContainSubstring("upstream down"))

			var memCount, msgCount int64
			Expect(gdb.Model(&models.Memory{}).Where("user_id = ?", "unlucky").Count(&memCount).Error).To(Succeed())
			Expect(memCount).To(BeZero())
			Expect(gdb.Model(&models.ChatMessage{}).Where("user_id = ?", "unlucky").Count(&msgCount).Error).To(Succeed())
			Expect(msgCount).To(BeZero())
		})

		It("hands the prompt and preferences to the provider as one system turn", func() {
			var seen []openai.ChatCompletionMessage
			factory.provider = &providers.Mock{
				ChatCompletionFunc: func(ctx context.Context, messages []openai.ChatCompletionMessage, opts providers.Options) (*providers.Response, error) {
					seen = messages
					return &providers.Response{Content: "ok"}, nil
				},
			}

			prompt := "Be concise"
			lang := "fr"
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/user/pref-user/preferences", types.PreferencesRequest{
				SystemPrompt: &prompt,
				Language:     &lang,
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
				UserID:  "pref-user",
				Message: "bonjour",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			Expect(seen).To(HaveLen(2))
			Expect(seen[0].Role).To(Equal(openai.ChatMessageRoleSystem))
			Expect(seen[0].Content).To(Equal("Be concise\n\nUser preferences:\n- Language: fr\n"))
			Expect(seen[1].Content).To(Equal("bonjour"))
		})

		It("folds the window into a summary after enough turns", func() {
			app = newApp(webui.WithSummaryEvery(4))

			for i := 0; i < 2; i++ {
				resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat", types.ChatRequest{
					UserID:  "chatty",
					Message: fmt.Sprintf("message %d", i),
				}), -1)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			}

			var summaries int64
			Expect(gdb.Model(&models.Memory{}).
				Where("user_id = ? AND memory_type = ?", "chatty", models.MemoryTypeSummary).
				Count(&summaries).Error).To(Succeed())
			Expect(summaries).To(Equal(int64(1)))
		})
	})

	Describe("POST /api/v1/chat/stream", func() {
		It("streams fragments and persists the full reply", func() {
			factory.provider = &providers.Mock{
				StreamCompletionFunc: func(ctx context.Context, messages []openai.ChatCompletionMessage, opts providers.Options, fn providers.StreamFunc) error {
					for _, chunk := range []string{"Hel", "lo!"} {
						if err := fn(chunk); err != nil {
							return err
						}
					}
					return nil
				},
			}

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat/stream", types.ChatRequest{
				UserID:  "streamer",
				Message: "hi",
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("data: Hel\n\n"))
			Expect(string(body)).To(ContainSubstring("data: lo!\n\n"))
			Expect(string(body)).To(ContainSubstring("data: [DONE]\n\n"))

			var assistantRow models.ChatMessage
			Expect(gdb.Where("user_id = ? AND role = ?", "streamer", models.RoleAssistant).First(&assistantRow).Error).To(Succeed())
			Expect(assistantRow.Content).To(Equal("Hello!"))
		})

		It("reports a stream failure in-band", func() {
			factory.provider = &providers.Mock{
				StreamCompletionFunc: func(ctx context.Context, messages []openai.ChatCompletionMessage, opts providers.Options, fn providers.StreamFunc) error {
					return errors.New("connection reset")
				},
			}

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat/stream", types.ChatRequest{
				UserID:  "streamer",
				Message: "hi",
			}), -1)
			Expect(err).NotTo(HaveOccurred())

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("event: error"))
			Expect(string(body)).NotTo(ContainSubstring("[DONE]"))
		})
	})

	Describe("GET /api/v1/user/:user_id", func() {
		It("404s for an unknown user", func() {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/user/ghost", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns the stored profile", func() {
			name := "Ada"
			tone := "formal"
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/user/ada/preferences", types.PreferencesRequest{
				Name:           &name,
				TonePreference: &tone,
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/user/ada", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var user types.UserResponse
			decodeBody(resp, &user)
			Expect(user.UserID).To(Equal("ada"))
			Expect(user.Profile).To(HaveKeyWithValue("name", "Ada"))
			Expect(user.Profile).To(HaveKeyWithValue("tone_preference", "formal"))
		})

		It("leaves untouched keys alone on partial updates", func() {
			name := "Ada"
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/user/ada/preferences", types.PreferencesRequest{Name: &name}), -1)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			lang := "en"
			resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/user/ada/preferences", types.PreferencesRequest{Language: &lang}), -1)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			var user models.User
			Expect(gdb.Where("user_id = ?", "ada").First(&user).Error).To(Succeed())
			Expect(user.Profile).To(HaveKeyWithValue("name", "Ada"))
			Expect(user.Profile).To(HaveKeyWithValue("language", "en"))
		})
	})

	Describe("POST /api/v1/memory/prune", func() {
		seedOld := func(userID string, importance int, ageDays int) {
			Expect(gdb.Create(&models.Memory{
				UserID:     userID,
				MemoryType: models.MemoryTypeShortTerm,
				Content:    "old note",
				Importance: importance,
				CreatedAt:  time.Now().UTC().AddDate(0, 0, -ageDays),
			}).Error).To(Succeed())
		}

		It("prunes unconditionally without min_importance", func() {
			seedOld("packrat", 9, 40)
			seedOld("packrat", 1, 40)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/memory/prune", types.PruneRequest{
				UserID:        "packrat",
				RetentionDays: 30,
			}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var pruned types.PruneResponse
			decodeBody(resp, &pruned)
			Expect(pruned.Status).To(Equal("success"))
			Expect(pruned.PrunedCount).To(Equal(int64(2)))
			Expect(pruned.RetentionDays).To(Equal(30))
		})

		It("honors min_importance when present", func() {
			seedOld("packrat", 9, 40)
			seedOld("packrat", 1, 40)

			minImportance := 3
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/memory/prune", types.PruneRequest{
				UserID:        "packrat",
				RetentionDays: 30,
				MinImportance: &minImportance,
			}), -1)
			Expect(err).NotTo(HaveOccurred())

			var pruned types.PruneResponse
			decodeBody(resp, &pruned)
			Expect(pruned.PrunedCount).To(Equal(int64(1)))
		})

		It("rejects a request without user_id", func() {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/memory/prune", types.PruneRequest{}), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/v1/memories/:user_id", func() {
		It("lists stored memories", func() {
			Expect(gdb.Create(&models.Memory{UserID: "lister", Content: "note one", Importance: 5}).Error).To(Succeed())
			Expect(gdb.Create(&models.Memory{UserID: "lister", Content: "note two", Importance: 8}).Error).To(Succeed())

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/memories/lister", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				UserID   string          `json:"user_id"`
				Memories []models.Memory `json:"memories"`
				Count    int             `json:"count"`
			}
			decodeBody(resp, &body)
			Expect(body.Count).To(Equal(2))
			Expect(body.Memories[0].Content).To(Equal("note two"))
		})
	})

	Describe("GET /health", func() {
		It("reports status, providers and database", func() {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var health types.HealthResponse
			decodeBody(resp, &health)
			Expect(health.Status).To(Equal("healthy"))
			Expect(health.Database).To(Equal("connected"))
			Expect(health.Providers).To(ContainElement("openai"))
		})
	})
})
