package conversations

import (
	"sync"
	"time"

	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
)

// Tracker keeps a rolling per-user window of the current conversation.
// It only feeds the summarizer; the durable history lives in the store.
type Tracker struct {
	mu          sync.Mutex
	windows     map[string][]openai.ChatCompletionMessage
	lastMessage map[string]time.Time
	idleTimeout time.Duration
}

func NewTracker(idleTimeout time.Duration) *Tracker {
	return &Tracker{
		windows:     map[string][]openai.ChatCompletionMessage{},
		lastMessage: map[string]time.Time{},
		idleTimeout: idleTimeout,
	}
}

// Window returns the user's current conversation. A window idle for
// longer than the timeout is treated as a fresh conversation. Stale
// windows of other users are cleaned up on the way.
func (t *Tracker) Window(userID string) []openai.ChatCompletionMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, exists := t.lastMessage[userID]
	if exists && last.Add(t.idleTimeout).Before(time.Now()) {
		xlog.Debug("Conversation window expired", "user", userID)
		delete(t.windows, userID)
		delete(t.lastMessage, userID)
	}

	for id, lastSeen := range t.lastMessage {
		if lastSeen.Add(t.idleTimeout).Before(time.Now()) {
			delete(t.windows, id)
			delete(t.lastMessage, id)
		}
	}

	window := make([]openai.ChatCompletionMessage, len(t.windows[userID]))
	copy(window, t.windows[userID])
	return window
}

func (t *Tracker) AddMessage(userID string, message openai.ChatCompletionMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.windows[userID] = append(t.windows[userID], message)
	t.lastMessage[userID] = time.Now()
}

// Reset drops the user's window, typically right after it was summarized.
func (t *Tracker) Reset(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.windows, userID)
	delete(t.lastMessage, userID)
}

func (t *Tracker) Len(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.windows[userID])
}
