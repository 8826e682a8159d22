/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package viewer

import "errors"

// ErrInvalidResult is returned when a result lacks the data for its mode.
var ErrInvalidResult = errors.New("report result has no data for its mode")
