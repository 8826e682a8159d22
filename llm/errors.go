/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package llm

import "errors"

var (
	ErrAPIKeyRequired   = errors.New("LLM API key is required")
	ErrEmptyResponse    = errors.New("LLM returned no choices")
	ErrUnexpectedStatus = errors.New("LLM returned unexpected status")
	ErrInvalidJSON      = errors.New("LLM returned invalid JSON")
)
