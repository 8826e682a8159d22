/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import (
	"context"
	"sort"
	"sync"
)

// Hybrid search weights.
const (
	BM25Weight   = 0.6
	VectorWeight = 0.4
)

// Document is one indexed chunk of reference material.
type Document struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Result is a search hit. Score is the BM25 score, 1/(1+distance) for
// vector hits, or the weighted combination for hybrid hits.
type Result struct {
	Document
	Score float64 `json:"score"`
}

// Stats describes an index.
type Stats struct {
	Documents int            `json:"total_documents"`
	Sources   map[string]int `json:"sources"`
}

// Index holds reference chunks with a BM25 index and embeddings.
// It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	docs    []Document
	bm25    *BM25
	vectors [][]float64
}

// NewIndex builds an index over docs.
func NewIndex(docs []Document) *Index {
	idx := &Index{}
	idx.Replace(docs)

	return idx
}

// Replace rebuilds the index over docs.
func (idx *Index) Replace(docs []Document) {
	corpus := make([][]string, len(docs))
	vectors := make([][]float64, len(docs))

	for i, doc := range docs {
		corpus[i] = Tokenize(doc.Content)
		vectors[i] = Embed(doc.Content)
	}

	bm := NewBM25(corpus)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = append([]Document(nil), docs...)
	idx.bm25 = bm
	idx.vectors = vectors
}

// Stats returns document counts.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s := Stats{Documents: len(idx.docs), Sources: make(map[string]int)}
	for _, doc := range idx.docs {
		s.Sources[doc.Source]++
	}

	return s
}

// BM25Search returns up to k documents with a positive BM25 score, best
// first.
func (idx *Index) BM25Search(query string, k int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.bm25Search(query, k)
}

func (idx *Index) bm25Search(query string, k int) []Result {
	if idx.bm25 == nil || k <= 0 {
		return nil
	}

	scores := idx.bm25.Scores(Tokenize(query))

	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		if score > 0 {
			results = append(results, Result{Document: idx.docs[i], Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results[:min(k, len(results))]
}

// VectorSearch returns the k documents nearest to the query embedding.
// Score is 1/(1+cosine distance).
func (idx *Index) VectorSearch(query string, k int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.vectorSearch(query, k)
}

func (idx *Index) vectorSearch(query string, k int) []Result {
	if len(idx.docs) == 0 || k <= 0 {
		return nil
	}

	q := Embed(query)

	type hit struct {
		i        int
		distance float64
	}

	hits := make([]hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = hit{i: i, distance: CosineDistance(q, v)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].distance < hits[b].distance
	})

	hits = hits[:min(k, len(hits))]

	results := make([]Result, len(hits))
	for n, h := range hits {
		results[n] = Result{Document: idx.docs[h.i], Score: 1 / (1 + h.distance)}
	}

	return results
}

// HybridSearch combines BM25 and vector search. Each retrieves 2k
// candidates, scores are normalized by their maximum and weighted 0.6/0.4.
func (idx *Index) HybridSearch(query string, k int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 {
		return nil
	}

	lexical := idx.bm25Search(query, k*2)
	semantic := idx.vectorSearch(query, k*2)

	maxLexical := maxScore(lexical)
	maxSemantic := maxScore(semantic)

	combined := make(map[int64]*Result)
	var order []int64

	add := func(r Result, weight, top float64) {
		var norm float64
		if top > 0 {
			norm = r.Score / top
		}

		entry, ok := combined[r.ID]
		if !ok {
			entry = &Result{Document: r.Document}
			combined[r.ID] = entry
			order = append(order, r.ID)
		}

		entry.Score += weight * norm
	}

	for _, r := range lexical {
		add(r, BM25Weight, maxLexical)
	}

	for _, r := range semantic {
		add(r, VectorWeight, maxSemantic)
	}

	results := make([]Result, 0, len(order))
	for _, id := range order {
		results = append(results, *combined[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}

		return results[i].ID < results[j].ID
	})

	return results[:min(k, len(results))]
}

// ReferenceContext returns the content of the top three hybrid hits for each
// test name, de-duplicated by content, in first-seen order.
func (idx *Index) ReferenceContext(_ context.Context, testNames []string) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]struct{})
	)

	for _, name := range testNames {
		for _, r := range idx.HybridSearch(name, 3) {
			if _, ok := seen[r.Content]; ok {
				continue
			}

			seen[r.Content] = struct{}{}
			out = append(out, r.Content)
		}
	}

	return out, nil
}

func maxScore(results []Result) float64 {
	if len(results) == 0 {
		return 1
	}

	best := results[0].Score
	for _, r := range results[1:] {
		best = max(best, r.Score)
	}

	return best
}
