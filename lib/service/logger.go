// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewLogger creates the process logger writing to stderr. A terminal
// gets slog.TextHandler; anything else (systemd, containers, pipes)
// gets slog.JSONHandler. The logger also becomes slog.Default.
func NewLogger(level slog.Level) *slog.Logger {
	logger := newLoggerFor(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
	slog.SetDefault(logger)
	return logger
}

func newLoggerFor(writer io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(writer, options)
	} else {
		handler = slog.NewJSONHandler(writer, options)
	}
	return slog.New(handler)
}

// ParseLevel maps "debug", "info", "warn", and "error" to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", name)
	}
}
