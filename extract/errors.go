/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package extract

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoText              = errors.New("no text extracted from file")
	ErrOCRUnavailable      = errors.New("tesseract is not installed")
)
