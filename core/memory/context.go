package memory

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	models "github.com/memorai/memorai/dbmodels"
)

const recencyContextHeader = "Relevant context from previous conversations:"

// BuildContext assembles the ordered turns sent to the provider: one
// leading system turn (static prompt plus preferences), the injected
// memories, and the raw query as the final user turn.
//
// maxTokens is accepted for parity with the provider call but not
// enforced.
// TODO: count tokens over the assembled turns and trim to maxTokens.
func (e *Engine) BuildContext(user *models.User, query string, memories []models.Memory, maxTokens int) []openai.ChatCompletionMessage {
	var context []openai.ChatCompletionMessage

	if system := buildSystemTurn(user); system != "" {
		context = append(context, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	switch e.strategy {
	case StrategyRecency:
		// Single block, newline-joined under a header.
		if len(memories) > 0 {
			contents := make([]string, 0, len(memories))
			for _, mem := range memories {
				contents = append(contents, mem.Content)
			}
			context = append(context, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: recencyContextHeader + "\n" + strings.Join(contents, "\n"),
			})
		}
	default:
		// One system turn per memory.
		for _, mem := range memories {
			context = append(context, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("[%s] %s: %s", strings.ToUpper(mem.MemoryType), mem.Topic, mem.Content),
			})
		}
	}

	context = append(context, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	return context
}

// buildSystemTurn merges the user's static prompt and the derived
// preferences block into a single system turn. There is never more than
// one leading system turn.
func buildSystemTurn(user *models.User) string {
	if user == nil {
		return ""
	}

	preferences := buildPreferences(user.Profile)

	switch {
	case user.SystemPrompt != "" && preferences != "":
		return user.SystemPrompt + "\n\n" + preferences
	case user.SystemPrompt != "":
		return user.SystemPrompt
	default:
		return preferences
	}
}

func buildPreferences(profile map[string]string) string {
	if len(profile) == 0 {
		return ""
	}

	language := profile[models.ProfileLanguage]
	tone := profile[models.ProfileTonePreference]
	instructions := profile[models.ProfileCustomInstructions]
	if language == "" && tone == "" && instructions == "" {
		return ""
	}

	block := fmt.Sprintf("User preferences:\n- Language: %s\n", language)
	if tone != "" {
		block += fmt.Sprintf("- Tone: %s\n", tone)
	}
	if instructions != "" {
		block += fmt.Sprintf("- Instructions: %s\n", instructions)
	}
	return block
}
