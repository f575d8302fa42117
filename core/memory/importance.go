package memory

import "strings"

// Words that mark a snippet as worth keeping around longer.
var importanceKeywords = []string{"important", "remember", "critical", "essential", "key", "crucial"}

const (
	baseImportance    = 5
	defaultImportance = 5
	summaryImportance = 7
	topicWords        = 5
)

// CalculateImportance scores a piece of text in [5,10]. Longer texts and
// texts carrying importance-signaling keywords score higher.
func CalculateImportance(text string) int {
	score := baseImportance

	if len(text) > 100 {
		score++
	}
	if len(text) > 500 {
		score++
	}

	lower := strings.ToLower(text)
	for _, keyword := range importanceKeywords {
		if strings.Contains(lower, keyword) {
			score++
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// ExtractTopic takes the first few words of the text as its topic label.
func ExtractTopic(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "General"
	}
	if len(words) > topicWords {
		words = words[:topicWords]
	}
	return strings.Join(words, " ")
}
