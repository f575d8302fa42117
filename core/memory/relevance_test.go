package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/memorai/memorai/core/memory"
	models "github.com/memorai/memorai/dbmodels"
)

func pool(contents ...string) []models.Memory {
	memories := make([]models.Memory, 0, len(contents))
	for _, content := range contents {
		memories = append(memories, models.Memory{Content: content})
	}
	return memories
}

var _ = Describe("FilterByKeywordOverlap", func() {
	It("matches when a query token appears in the memory", func() {
		matches := memory.FilterByKeywordOverlap("I really love pizza", pool("I love pasta"))
		Expect(matches).To(HaveLen(1))
	})

	It("matches in the other direction too", func() {
		// No query token appears in the memory; the memory token "ok"
		// appears inside "smoke".
		matches := memory.FilterByKeywordOverlap("smoke signals", pool("ok"))
		Expect(matches).To(HaveLen(1))
	})

	It("returns nothing for an empty query", func() {
		matches := memory.FilterByKeywordOverlap("", pool("anything at all"))
		Expect(matches).To(BeEmpty())
	})

	It("is case-insensitive", func() {
		matches := memory.FilterByKeywordOverlap("PIZZA night", pool("ordering pizza again"))
		Expect(matches).To(HaveLen(1))
	})

	It("matches on substrings, short tokens included", func() {
		// "a" is a substring of "pasta"; the false positive is part of
		// the contract.
		matches := memory.FilterByKeywordOverlap("a", pool("pasta"))
		Expect(matches).To(HaveLen(1))
	})

	It("only looks at the first ten tokens of the query", func() {
		query := "one two three four five six seven eight nine ten elephant"
		matches := memory.FilterByKeywordOverlap(query, pool("elephants roam"))
		Expect(matches).To(BeEmpty())
	})

	It("preserves the pool order without re-ranking", func() {
		matches := memory.FilterByKeywordOverlap("love", pool("no match here... almost", "I love pasta", "love is all you need"))
		Expect(matches).To(HaveLen(2))
		Expect(matches[0].Content).To(Equal("I love pasta"))
		Expect(matches[1].Content).To(Equal("love is all you need"))
	})
})

var _ = Describe("CalculateImportance", func() {
	It("starts from the base score", func() {
		Expect(memory.CalculateImportance("short note")).To(Equal(5))
	})

	It("adds length and keyword bonuses", func() {
		long := make([]byte, 600)
		for i := range long {
			long[i] = 'x'
		}
		text := string(long) + " remember this, it is critical"
		Expect(memory.CalculateImportance(text)).To(Equal(9))
	})

	It("counts each keyword once and caps at ten", func() {
		text := "important remember critical essential key crucial important important"
		Expect(memory.CalculateImportance(text)).To(Equal(10))
	})

	It("matches keywords case-insensitively", func() {
		Expect(memory.CalculateImportance("REMEMBER the milk")).To(Equal(6))
	})
})

var _ = Describe("ExtractTopic", func() {
	It("takes the first five words", func() {
		Expect(memory.ExtractTopic("the quick brown fox jumps over")).To(Equal("the quick brown fox jumps"))
	})

	It("falls back to General for empty text", func() {
		Expect(memory.ExtractTopic("   ")).To(Equal("General"))
	})
})
