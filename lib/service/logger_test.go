// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerForHandlerChoice(t *testing.T) {
	var jsonOutput bytes.Buffer
	newLoggerFor(&jsonOutput, false, slog.LevelInfo).Info("listing created", "listing_id", "3f2a9c1b")
	var record map[string]any
	if err := json.Unmarshal(jsonOutput.Bytes(), &record); err != nil {
		t.Fatalf("non-terminal output is not JSON: %q", jsonOutput.String())
	}
	if record["listing_id"] != "3f2a9c1b" {
		t.Errorf("listing_id = %v", record["listing_id"])
	}

	var textOutput bytes.Buffer
	newLoggerFor(&textOutput, true, slog.LevelInfo).Info("listing created", "listing_id", "3f2a9c1b")
	if !strings.Contains(textOutput.String(), "listing_id=3f2a9c1b") {
		t.Errorf("terminal output not in text format: %q", textOutput.String())
	}
}

func TestNewLoggerForLevel(t *testing.T) {
	var output bytes.Buffer
	logger := newLoggerFor(&output, false, slog.LevelWarn)
	logger.Info("dropped")
	if output.Len() != 0 {
		t.Errorf("info record written at warn level: %q", output.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		err   bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "WARN", want: slog.LevelWarn},
		{input: " error ", want: slog.LevelError},
		{input: "verbose", err: true},
	}
	for _, test := range tests {
		got, err := ParseLevel(test.input)
		if (err != nil) != test.err {
			t.Errorf("ParseLevel(%q) error = %v, want error %v", test.input, err, test.err)
			continue
		}
		if !test.err && got != test.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}
