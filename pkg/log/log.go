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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileWidth   = 35 // Base width for the target file path
	actionWidth = 14 // Width for the action name
)

// 🎯 PatchOperation represents one applied (or skipped) edit for logging
type PatchOperation struct {
	File    string // Target file path
	Action  string // Edit action (replace/insert_after/...)
	Anchor  string // Anchor text, if the action used one
	Status  string // Human-readable outcome
	Skipped bool   // Whether the instruction was skipped
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	applied int
	skipped int
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// actionSymbol maps an edit action to its console icon.
func actionSymbol(action string, skipped bool) string {
	if skipped {
		return "⚠️ "
	}
	switch action {
	case "replace":
		return "🔁"
	case "insert_after":
		return "➕"
	case "insert_before":
		return "🔼"
	case "prepend":
		return "📋"
	default: // append
		return "📎"
	}
}

// 📝 formatPatchOperation formats a patch operation for display
func (l *Logger) formatPatchOperation(op PatchOperation) string {
	symbol := actionSymbol(op.Action, op.Skipped)

	var fileColor color.Attribute
	if op.Skipped {
		fileColor = color.FgYellow
	} else {
		fileColor = color.FgCyan
	}

	return fmt.Sprintf("%s %s %s %s",
		symbol,
		color.New(fileColor).Sprint(fmt.Sprintf("%-*s", fileWidth, op.File)),
		fmt.Sprintf("%-*s", actionWidth, op.Action),
		op.Status)
}

// 📝 LogPatchOperation logs one edit instruction's outcome
func (l *Logger) LogPatchOperation(ctx context.Context, op PatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if op.Skipped {
		l.skipped++
	} else {
		l.applied++
	}

	fmt.Fprintln(l.console, l.formatPatchOperation(op))

	ev := l.zlog.Info()
	if op.Skipped {
		ev = l.zlog.Warn()
	}
	ev.
		Str("file", op.File).
		Str("action", op.Action).
		Str("anchor", op.Anchor).
		Str("status", op.Status).
		Bool("skipped", op.Skipped).
		Msg("patch operation")
}

// 📝 Summary logs the end-of-run summary lines
func (l *Logger) Summary(attempted int, backupDir, historyPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "✅ %s\n",
		color.New(color.FgGreen).Sprintf("Applied %d change(s).", attempted))
	fmt.Fprintf(l.console, "🗃️  Backups in '%s/' | History logged at '%s'\n",
		backupDir, historyPath)

	l.zlog.Info().
		Int("attempted", attempted).
		Int("applied", l.applied).
		Int("skipped", l.skipped).
		Str("backup_dir", backupDir).
		Str("history", historyPath).
		Msg("run complete")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("aiprep")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
