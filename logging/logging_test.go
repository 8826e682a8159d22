// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerInitializers(t *testing.T) {
	t.Parallel()

	Init()

	for _, source := range []string{SourceApp, SourcePipeline, SourceLLM, SourceResearch, SourceRAG, SourceClient} {
		if l := Logger(source); l == nil {
			t.Fatalf("Logger(%s) returned nil", source)
		}
	}

	if l := StdLogger(SourceWeb); l == nil {
		t.Fatal("StdLogger returned nil")
	}
}

//nolint:paralleltest // Changes the level of every package logger.
func TestSetLevelUpdatesExistingLoggers(t *testing.T) {
	l := Logger(SourceDB)

	t.Cleanup(func() { _ = SetLevel("debug") })

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}

	if l.GetLevel() != log.WarnLevel {
		t.Fatalf("expected warn level, got %s", l.GetLevel())
	}

	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
