/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import (
	"hash/fnv"

	"gonum.org/v1/gonum/floats"
)

// Dimensions of the hashed embedding.
const Dimensions = 384

// Embed returns an offline bag-of-words embedding: every token is hashed into
// one of Dimensions buckets and the vector is L2 normalized.
func Embed(text string) []float64 {
	vec := make([]float64, Dimensions)

	for _, token := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%Dimensions]++
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}

	return vec
}

// CosineDistance returns 1 minus the cosine similarity of a and b. A zero
// vector is at distance 1 from everything.
func CosineDistance(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}

	return 1 - floats.Dot(a, b)/(na*nb)
}
