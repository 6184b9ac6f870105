package search

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultKeywordLimit caps derived template keywords.
const DefaultKeywordLimit = 10

// MinKeywordRunes is the shortest token kept as a keyword; shorter tokens
// ("the", "and", "was") carry no matching signal.
const MinKeywordRunes = 4

// ReviewStopwords are filler words common in review text. They are long
// enough to survive MinKeywordRunes but say nothing about what the review
// is about.
var ReviewStopwords = []string{
	"about", "after", "again", "also", "been", "could", "does",
	"even", "from", "have", "just", "like", "made", "more", "much", "only",
	"over", "really", "some", "than", "that", "their", "them", "then",
	"there", "they", "this", "very", "were", "what", "when", "which",
	"will", "with", "would",
}

var (
	placeholderRE = regexp.MustCompile(`\{\{\w+\}\}`)
	punctRE       = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
)

// lower folds s to lower case. A Caser is stateful, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// normalize lower-cases s, drops {{placeholders}} and strips punctuation.
func normalize(s string) string {
	s = placeholderRE.ReplaceAllString(s, " ")
	return punctRE.ReplaceAllString(lower(s), "")
}

// Keywords derives up to limit distinct keywords from text in first-occurrence
// order. Tokens shorter than MinKeywordRunes are dropped. A non-positive limit
// uses DefaultKeywordLimit.
func Keywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(normalize(text)) {
		if len([]rune(w)) < MinKeywordRunes {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

// NormalizeKeywords lower-cases, trims and de-duplicates caller supplied
// keywords, dropping empties.
func NormalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.TrimSpace(lower(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Tokens returns the set of lower-cased, punctuation-free words in text.
func Tokens(text string) map[string]struct{} {
	words := strings.Fields(normalize(text))
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
