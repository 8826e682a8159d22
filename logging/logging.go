/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import (
	"fmt"
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp        = "app"
	SourceWeb        = "web"
	SourceWebRequest = "web_request"
	SourceDB         = "db"
	SourcePipeline   = "pipeline"
	SourceLLM        = "llm"
	SourceResearch   = "research"
	SourceRAG        = "rag"
	SourceClient     = "client"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger

	// Package loggers copy the level when created, so SetLevel updates each.
	mu      sync.Mutex
	loggers []*log.Logger
)

// Init configures the base logger and stdlib log output.
func Init() {
	initOnce.Do(func() {
		baseLogger = log.NewWithOptions(os.Stdout, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339Nano,
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			Formatter:       log.LogfmtFormatter,
		})

		stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})

		stdlog.SetFlags(0)
		stdlog.SetOutput(stdLogger.Writer())
	})
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()

	l := baseLogger.With("source", source)

	mu.Lock()
	loggers = append(loggers, l)
	mu.Unlock()

	return l
}

// StdLogger returns a stdlib logger that writes logfmt output with a source.
// Its messages are logged at info level.
func StdLogger(source string) *stdlog.Logger {
	return Logger(source).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}

// SetLevel sets the minimum level of every logger, e.g. "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	Init()

	mu.Lock()
	defer mu.Unlock()

	baseLogger.SetLevel(lvl)

	for _, l := range loggers {
		l.SetLevel(lvl)
	}

	return nil
}
