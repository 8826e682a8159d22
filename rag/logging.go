/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package rag

import "github.com/humaidq/labwave/logging"

var logger = logging.Logger(logging.SourceRAG)
