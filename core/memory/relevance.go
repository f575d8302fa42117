package memory

import (
	"strings"

	models "github.com/memorai/memorai/dbmodels"
)

// Strategy names the retrieval policy the engine uses to pick memories
// for a turn.
type Strategy string

const (
	// StrategyRecency returns the newest memories inside a fixed window.
	StrategyRecency Strategy = "recency"
	// StrategyKeyword filters a candidate pool by token overlap with the
	// query.
	StrategyKeyword Strategy = "keyword"
)

const (
	overlapTokenWindow = 10
	recencyDays        = 30
	recencyLimit       = 10
	candidatePoolSize  = 20
)

// FilterByKeywordOverlap keeps a memory when any of the first ten
// whitespace tokens of the lower-cased query appears as a substring of the
// lower-cased content, or the other way around. The match is deliberately
// substring-based rather than whole-word, short tokens like "a" will match
// almost anything. Order of the incoming pool is preserved; nothing is
// re-ranked.
func FilterByKeywordOverlap(query string, pool []models.Memory) []models.Memory {
	queryLower := strings.ToLower(query)
	queryTokens := firstTokens(queryLower, overlapTokenWindow)

	var relevant []models.Memory
	for _, mem := range pool {
		contentLower := strings.ToLower(mem.Content)
		if anyTokenContained(queryTokens, contentLower) ||
			anyTokenContained(firstTokens(contentLower, overlapTokenWindow), queryLower) {
			relevant = append(relevant, mem)
		}
	}
	return relevant
}

func firstTokens(text string, n int) []string {
	tokens := strings.Fields(text)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return tokens
}

func anyTokenContained(tokens []string, text string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
