/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package static

import "embed"

// Static holds the viewer stylesheet and upload script served under /static.
//
//go:embed *
var Static embed.FS
