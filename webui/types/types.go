package types

type ChatRequest struct {
	UserID      string   `json:"user_id"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
	TokensUsed     int    `json:"tokens_used"`
	MemoryInjected bool   `json:"memory_injected"`
}

// PreferencesRequest uses pointers so an absent key leaves the stored
// value untouched.
type PreferencesRequest struct {
	Name               *string `json:"name,omitempty"`
	Language           *string `json:"language,omitempty"`
	TonePreference     *string `json:"tone_preference,omitempty"`
	CustomInstructions *string `json:"custom_instructions,omitempty"`
	SystemPrompt       *string `json:"system_prompt,omitempty"`
}

type UserResponse struct {
	UserID       string            `json:"user_id"`
	Profile      map[string]string `json:"profile"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	MessageCount int               `json:"message_count"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	LastActive   string            `json:"last_active"`
}

type PruneRequest struct {
	UserID        string `json:"user_id"`
	RetentionDays int    `json:"retention_days,omitempty"`
	MinImportance *int   `json:"min_importance,omitempty"`
}

type PruneResponse struct {
	Status        string `json:"status"`
	PrunedCount   int64  `json:"pruned_count"`
	RetentionDays int    `json:"retention_days"`
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Providers []string `json:"providers"`
	Database  string   `json:"database"`
	Timestamp string   `json:"timestamp"`
}
