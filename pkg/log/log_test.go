// Copyright 2025 aiprep authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_patch_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogPatchOperation(context.Background(), PatchOperation{
					File:   "main.go",
					Action: "insert_after",
					Anchor: "package main",
					Status: "inserted",
				})
			},
			wantLogs: []string{
				"➕",
				"main.go",
				"insert_after",
				"inserted",
			},
		},
		{
			name: "log_skipped_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogPatchOperation(context.Background(), PatchOperation{
					File:    "missing.go",
					Action:  "append",
					Status:  "file not found",
					Skipped: true,
				})
			},
			wantLogs: []string{
				"⚠️",
				"missing.go",
				"file not found",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_summary",
			op: func(t *testing.T, logger *Logger) {
				logger.Summary(3, ".ai_backups", ".ai_history/changes.json")
			},
			wantLogs: []string{
				"Applied 3 change(s).",
				"Backups in '.ai_backups/'",
				"History logged at '.ai_history/changes.json'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, zerolog.Disabled)

			tt.op(t, logger)

			out := buf.String()
			for _, want := range tt.wantLogs {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestActionSymbols(t *testing.T) {
	assert.Equal(t, "🔁", actionSymbol("replace", false))
	assert.Equal(t, "➕", actionSymbol("insert_after", false))
	assert.Equal(t, "🔼", actionSymbol("insert_before", false))
	assert.Equal(t, "📎", actionSymbol("append", false))
	assert.Equal(t, "📋", actionSymbol("prepend", false))
	assert.Equal(t, "⚠️ ", actionSymbol("replace", true))
}

func TestContext(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, zerolog.Disabled)
		ctx := NewContext(context.Background(), logger)
		require.Same(t, logger, FromContext(ctx))
	})

	t.Run("missing_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			FromContext(context.Background())
		})
	})
}

func TestFormatAlignsColumns(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)
	line := logger.formatPatchOperation(PatchOperation{
		File:   "a.go",
		Action: "append",
		Status: "appended",
	})
	// File column is padded to a fixed width.
	assert.True(t, strings.Contains(line, "a.go "))
	assert.True(t, strings.HasSuffix(line, "appended"))
}
