// Package search derives keywords from template bodies and scores templates
// against review text. Scoring uses Jaccard similarity between the review
// token set and each template's keyword set: score = |R ∩ K| / |R ∪ K|.
//
// The package does no logging and holds no shared state.
package search

import "sort"

// Candidate is a document to be matched: an opaque id and its keywords.
type Candidate struct {
	ID       string
	Keywords []string
}

// Result is a matched candidate with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Option tunes Match.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
}

func defaultConfig() config {
	return config{}
}

// WithStopwords ignores the given words on the query side.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range NormalizeKeywords(words) {
			m[w] = struct{}{}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// Match scores every candidate whose keywords intersect the tokens of query.
// Candidates with no overlap are omitted. Results are ordered by score
// descending; ties keep the input order of cands.
func Match(query string, cands []Candidate, opts ...Option) []Result {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	q := Tokens(query)
	for w := range cfg.stopwords {
		delete(q, w)
	}
	if len(q) == 0 || len(cands) == 0 {
		return nil
	}

	out := make([]Result, 0, len(cands))
	for _, c := range cands {
		k := make(map[string]struct{}, len(c.Keywords))
		for _, w := range NormalizeKeywords(c.Keywords) {
			k[w] = struct{}{}
		}
		over := overlap(q, k)
		if over == 0 {
			continue
		}
		union := float64(len(q) + len(k) - over)
		out = append(out, Result{ID: c.ID, Score: float64(over) / union})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
