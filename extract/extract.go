/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package extract pulls plain text out of uploaded lab reports.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Kind is the extraction route for a file.
type Kind int

// File kinds.
const (
	KindUnsupported Kind = iota
	KindPDF
	KindImage
)

// TesseractPath is the OCR binary used for images.
var TesseractPath = "tesseract"

// KindOf classifies a file by its extension.
func KindOf(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".bmp":
		return KindImage
	default:
		return KindUnsupported
	}
}

// Supported reports whether a file name has an accepted extension.
func Supported(name string) bool {
	return KindOf(name) != KindUnsupported
}

// ReadFile extracts the text of a report stored on disk.
func ReadFile(ctx context.Context, path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	return Read(ctx, filepath.Base(path), data)
}

// Read extracts the text of a report. name is only used to pick the
// extraction route. The returned text has whitespace runs collapsed and is
// never empty on success.
func Read(ctx context.Context, name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch KindOf(name) {
	case KindPDF:
		text, err = pdfText(data)
	case KindImage:
		text, err = ocrText(ctx, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(name))
	}

	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

// CleanText collapses runs of whitespace into single spaces and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return buf.String(), nil
}

func ocrText(ctx context.Context, data []byte) (string, error) {
	bin, err := exec.LookPath(TesseractPath)
	if err != nil {
		return "", ErrOCRUnavailable
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tesseract failed: %s", strings.TrimSpace(stderr.String()))
		}

		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}

	return stdout.String(), nil
}
