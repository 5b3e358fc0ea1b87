package readinglog

import (
	"sort"
	"strings"

	"github.com/zombar/readinglog/slug"
)

// Common words excluded from frequency-based tag derivation.
var tagStopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "around": true,
	"because": true, "been": true, "before": true, "being": true, "between": true,
	"both": true, "could": true, "does": true, "down": true, "during": true,
	"each": true, "even": true, "every": true, "first": true, "from": true,
	"have": true, "here": true, "however": true, "into": true, "just": true,
	"like": true, "made": true, "many": true, "more": true, "most": true,
	"much": true, "must": true, "never": true, "only": true, "other": true,
	"over": true, "paragraph": true, "really": true, "said": true, "same": true,
	"should": true, "since": true, "some": true, "still": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "things": true, "this": true,
	"those": true, "through": true, "under": true, "very": true, "well": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "word": true, "words": true,
	"would": true, "your": true,
}

// DeriveTags produces a best-effort tag set for an article: meta keywords
// first, then the most frequent substantive words of the text. Tags are
// normalized to slugs, lowercased, deduplicated and capped at max. The
// result may be empty; tagging never fails the pipeline.
func DeriveTags(text string, keywords []string, max int) []string {
	if max <= 0 {
		return []string{}
	}

	tags := make([]string, 0, max)
	seen := make(map[string]bool)

	add := func(candidate string) bool {
		tag := slug.Generate(candidate)
		if tag == "" || len(tag) < 3 || seen[tag] {
			return false
		}
		seen[tag] = true
		tags = append(tags, tag)
		return len(tags) >= max
	}

	for _, kw := range keywords {
		if add(kw) {
			return tags
		}
	}

	for _, word := range frequentWords(text, max) {
		if add(word) {
			return tags
		}
	}

	return tags
}

// frequentWords returns up to max recurring substantive words, most frequent
// first, ties broken alphabetically for determinism.
func frequentWords(text string, max int) []string {
	counts := make(map[string]int)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, `.,;:!?"'()[]{}<>`)
		if len(token) < 4 || tagStopwords[token] || !isAlpha(token) {
			continue
		}
		counts[token]++
	}

	words := make([]string, 0, len(counts))
	for word, count := range counts {
		if count >= 2 {
			words = append(words, word)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > max {
		words = words[:max]
	}
	return words
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}
