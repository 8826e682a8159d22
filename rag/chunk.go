/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import "strings"

// Default chunking parameters, in words.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into windows of size words, each starting
// size-overlap words after the previous one.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidChunk
	}

	words := strings.Fields(text)
	step := size - overlap

	var chunks []string

	for i := 0; i < len(words); i += step {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}

	return chunks, nil
}

// Tokenize lowercases text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
