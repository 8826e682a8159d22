// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"report.pdf":   KindPDF,
		"REPORT.PDF":   KindPDF,
		"scan.png":     KindImage,
		"scan.JPG":     KindImage,
		"scan.jpeg":    KindImage,
		"scan.bmp":     KindImage,
		"notes.txt":    KindUnsupported,
		"no-extension": KindUnsupported,
	}

	for name, want := range tests {
		if got := KindOf(name); got != want {
			t.Fatalf("KindOf(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	got := CleanText("  Hemoglobin\t 13.5 \n\n g/dL  ")
	if got != "Hemoglobin 13.5 g/dL" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestReadUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Read(context.Background(), "report.docx", []byte("x"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestReadInvalidPDF(t *testing.T) {
	t.Parallel()

	if _, err := Read(context.Background(), "report.pdf", []byte("not a pdf")); err == nil {
		t.Fatalf("expected error for invalid PDF")
	}
}

func TestReadImageWithFakeTesseract(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "tesseract")
	body := "#!/bin/sh\ncat > /dev/null\nprintf '  Glucose   5.4\\n mmol/L \\n'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}

	original := TesseractPath
	TesseractPath = script
	t.Cleanup(func() { TesseractPath = original })

	text, err := Read(context.Background(), "scan.png", []byte("image bytes"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if text != "Glucose 5.4 mmol/L" {
		t.Fatalf("unexpected text %q", text)
	}

	TesseractPath = filepath.Join(dir, "missing")
	if _, err := Read(context.Background(), "scan.png", []byte("image bytes")); !errors.Is(err, ErrOCRUnavailable) {
		t.Fatalf("expected ErrOCRUnavailable, got %v", err)
	}
}

func TestReadImageEmptyOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "tesseract")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat > /dev/null\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}

	original := TesseractPath
	TesseractPath = script
	t.Cleanup(func() { TesseractPath = original })

	if _, err := Read(context.Background(), "scan.bmp", []byte("image bytes")); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}
