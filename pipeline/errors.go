/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import "errors"

var (
	// ErrMissingCompleter is returned when a pipeline step has no LLM.
	ErrMissingCompleter = errors.New("missing LLM for pipeline step")
	// ErrMissingResearcher is returned when no research step is configured.
	ErrMissingResearcher = errors.New("missing research step")
)
