// Package knowledge provides the in-process document index the knowledge
// agent retrieves from. It stands in at the retrieval collaborator boundary:
// real deployments swap in an embedding/vector backend behind the same
// Searcher interface, while the bundled Index offers deterministic
// term-overlap scoring good enough for tests, demos and small corpora.
package knowledge

import (
	"sort"
	"strings"
	"sync"
)

// Document is one indexed chunk of source material.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Source   string         `json:"source"` // originating URL or path, cited in answers
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Hit pairs a matched document with its relevance score.
type Hit struct {
	Document Document
	Score    float64
}

// Searcher is the retrieval contract consumed by the knowledge agent.
type Searcher interface {
	Search(query string, limit int) []Hit
}

// Index is a naive process-local document index. Scoring counts distinct
// query terms present in the document text (case-insensitive). Results order
// by score descending with insertion order breaking ties, so identical
// corpus + query always produce identical hits.
//
// Concurrency: guarded by RWMutex; reads never block reads.
type Index struct {
	mu   sync.RWMutex
	docs []Document
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add appends documents to the index.
func (ix *Index) Add(docs ...Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = append(ix.docs, docs...)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search implements Searcher. It returns up to limit hits with a positive
// score; an empty result is a valid "nothing relevant" answer, not an error.
func (ix *Index) Search(query string, limit int) []Hit {
	terms := tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var hits []Hit
	for _, doc := range ix.docs {
		score := overlap(terms, strings.ToLower(doc.Text))
		if score > 0 {
			hits = append(hits, Hit{Document: doc, Score: score})
		}
	}

	// Stable sort keeps insertion order among score ties deterministic.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// tokenize lowercases and splits the query into distinct terms, dropping
// single-character noise.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	seen := make(map[string]struct{}, len(fields))
	var terms []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// overlap counts how many distinct query terms appear in the text.
func overlap(terms []string, lowerText string) float64 {
	var n float64
	for _, t := range terms {
		if strings.Contains(lowerText, t) {
			n++
		}
	}
	return n
}

var _ Searcher = (*Index)(nil)
