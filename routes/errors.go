/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errProcessorNotInitialized = errors.New("report processor is not initialized")
	errMissingFile             = errors.New("no file provided")
	errEmptyFileName           = errors.New("no file selected")
	errInvalidFileType         = errors.New("invalid file type")
	errFileTooLarge            = errors.New("file too large")
)
