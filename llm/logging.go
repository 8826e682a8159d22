/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package llm

import "github.com/humaidq/labwave/logging"

var logger = logging.Logger(logging.SourceLLM)
