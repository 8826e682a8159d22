/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package research

import "errors"

var (
	ErrUnexpectedStatus = errors.New("research service returned unexpected status")
	ErrNoResearcher     = errors.New("researcher is not configured")
)
