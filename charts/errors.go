/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package charts

import "errors"

// ErrUnknownKind is returned when a chart kind cannot be drawn.
var ErrUnknownKind = errors.New("unknown chart kind")
