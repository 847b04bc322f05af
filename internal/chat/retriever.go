package chat

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// KeywordRetriever is the in-process Retriever: it ranks knowledge-base
// sentences by token overlap with the query. A vector-store retriever
// can replace it behind the same port without touching callers.
type KeywordRetriever struct {
	mu   sync.RWMutex
	docs []string
}

var (
	_ Retriever = (*KeywordRetriever)(nil)
	_ Indexer   = (*KeywordRetriever)(nil)
)

func NewKeywordRetriever() *KeywordRetriever {
	return &KeywordRetriever{}
}

// Rebuild replaces the index with a fresh document set.
func (r *KeywordRetriever) Rebuild(docs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append([]string(nil), docs...)
}

// RetrieveContext returns the topK documents sharing the most tokens
// with the query. Documents with no overlap are never returned.
func (r *KeywordRetriever) RetrieveContext(_ context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	docs := r.docs
	r.mu.RUnlock()

	type scored struct {
		doc   string
		score int
		pos   int
	}
	var hits []scored
	for i, doc := range docs {
		score := overlap(queryTokens, tokenize(doc))
		if score > 0 {
			hits = append(hits, scored{doc: doc, score: score, pos: i})
		}
	}

	// stable: higher score first, earlier document wins ties
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.doc
	}
	return out, nil
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		out[tok] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
