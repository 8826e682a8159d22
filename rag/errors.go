/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import "errors"

var (
	ErrEmptyDocument = errors.New("no content extracted from document")
	ErrInvalidChunk  = errors.New("chunk overlap must be smaller than chunk size")
	ErrNoCompleter   = errors.New("no LLM configured for reference queries")
)
