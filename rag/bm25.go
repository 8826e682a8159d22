/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Okapi BM25 parameters.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// BM25 is an Okapi BM25 index over tokenized documents. Terms that appear in
// more than half of the corpus would get a negative IDF; they are floored at
// epsilon times the average IDF instead.
type BM25 struct {
	freqs  []map[string]int
	lens   []float64
	avgLen float64
	idf    map[string]float64
}

// NewBM25 indexes the corpus.
func NewBM25(corpus [][]string) *BM25 {
	bm := &BM25{
		freqs: make([]map[string]int, len(corpus)),
		lens:  make([]float64, len(corpus)),
		idf:   make(map[string]float64),
	}

	docFreq := make(map[string]int)

	for i, doc := range corpus {
		freq := make(map[string]int, len(doc))
		for _, term := range doc {
			freq[term]++
		}

		for term := range freq {
			docFreq[term]++
		}

		bm.freqs[i] = freq
		bm.lens[i] = float64(len(doc))
	}

	if avg, err := stats.Mean(bm.lens); err == nil {
		bm.avgLen = avg
	}

	n := float64(len(corpus))

	var (
		idfs     []float64
		negative []string
	)

	for term, df := range docFreq {
		idf := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		bm.idf[term] = idf
		idfs = append(idfs, idf)

		if idf < 0 {
			negative = append(negative, term)
		}
	}

	if avgIDF, err := stats.Mean(idfs); err == nil {
		floor := bm25Epsilon * avgIDF
		for _, term := range negative {
			bm.idf[term] = floor
		}
	}

	return bm
}

// Len returns the number of indexed documents.
func (bm *BM25) Len() int {
	return len(bm.freqs)
}

// Scores returns the score of every document for the query terms.
func (bm *BM25) Scores(query []string) []float64 {
	scores := make([]float64, len(bm.freqs))
	if bm.avgLen == 0 {
		return scores
	}

	for _, term := range query {
		idf, ok := bm.idf[term]
		if !ok {
			continue
		}

		for i, freq := range bm.freqs {
			f := float64(freq[term])
			if f == 0 {
				continue
			}

			norm := bm25K1 * (1 - bm25B + bm25B*bm.lens[i]/bm.avgLen)
			scores[i] += idf * f * (bm25K1 + 1) / (f + norm)
		}
	}

	return scores
}
