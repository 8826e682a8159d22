/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package rag is the local medical reference library: chunked reference
// books searched with BM25 and hashed embeddings.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/humaidq/labwave/extract"
	"github.com/humaidq/labwave/llm"
)

// QueryTemperature is the sampling temperature of reference answers.
const QueryTemperature = 0.3

const noContextAnswer = "No relevant information found to answer your question."

// Store persists reference chunks.
type Store interface {
	ReplaceReferenceChunks(ctx context.Context, docs []Document) error
	ListReferenceChunks(ctx context.Context) ([]Document, error)
}

// Library ties the in-memory index to its persistent store.
type Library struct {
	index *Index
	store Store
	llm   llm.Completer
}

// NewLibrary creates an empty library. store and c may be nil.
func NewLibrary(store Store, c llm.Completer) *Library {
	return &Library{index: NewIndex(nil), store: store, llm: c}
}

// Index returns the search index.
func (l *Library) Index() *Index {
	return l.index
}

// Load rebuilds the index from the store.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	docs, err := l.store.ListReferenceChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference chunks: %w", err)
	}

	l.index.Replace(docs)

	logger.Info("Reference library loaded", "documents", len(docs))

	return nil
}

// Ingest reads a PDF or text file, chunks it and replaces the library
// contents with it.
func (l *Library) Ingest(ctx context.Context, path string, size, overlap int) (int, error) {
	content, err := readSource(ctx, path)
	if err != nil {
		return 0, err
	}

	chunks, err := Chunk(content, size, overlap)
	if err != nil {
		return 0, err
	}

	if len(chunks) == 0 {
		return 0, ErrEmptyDocument
	}

	source := filepath.Base(path)
	docs := make([]Document, len(chunks))

	for i, chunk := range chunks {
		docs[i] = Document{
			ID:      int64(i + 1),
			Title:   fmt.Sprintf("Chunk %d", i+1),
			Source:  source,
			Content: chunk,
		}
	}

	if l.store != nil {
		if err := l.store.ReplaceReferenceChunks(ctx, docs); err != nil {
			return 0, fmt.Errorf("failed to store reference chunks: %w", err)
		}
	}

	l.index.Replace(docs)

	logger.Info("Reference document ingested", "source", source, "chunks", len(docs))

	return len(docs), nil
}

// Answer is the response to a library query.
type Answer struct {
	Query     string   `json:"query"`
	Retrieved []Result `json:"retrieved_docs"`
	Response  string   `json:"response"`
}

// Query retrieves the top k hybrid hits for question and asks the LLM to
// answer from them.
func (l *Library) Query(ctx context.Context, question string, k int) (Answer, error) {
	answer := Answer{Query: question, Retrieved: l.index.HybridSearch(question, k)}

	if len(answer.Retrieved) == 0 {
		answer.Response = noContextAnswer
		return answer, nil
	}

	if l.llm == nil {
		return answer, ErrNoCompleter
	}

	var sb strings.Builder
	for i, r := range answer.Retrieved {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Reference Section %d]\n%s", i+1, r.Content)
	}

	response, err := l.llm.Complete(ctx, llm.Request{
		System: "You are a medical knowledge assistant. Answer from the provided reference knowledge. " +
			"Structure your response with clear sections for both PATIENTS and CLINICIANS. " +
			"Say when the reference library does not cover the question.",
		User:        fmt.Sprintf("Question: %s\n\nREFERENCE KNOWLEDGE:\n%s\n\nPlease provide a unified medical explanation.", question, sb.String()),
		Temperature: QueryTemperature,
	})
	if err != nil {
		return answer, fmt.Errorf("failed to answer query: %w", err)
	}

	answer.Response = response

	return answer, nil
}

func readSource(ctx context.Context, path string) (string, error) {
	if extract.KindOf(path) == extract.KindPDF {
		return extract.ReadFile(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", ErrEmptyDocument
	}

	return string(data), nil
}
