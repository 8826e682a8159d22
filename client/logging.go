/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package client

import "github.com/humaidq/labwave/logging"

var logger = logging.Logger(logging.SourceClient)
