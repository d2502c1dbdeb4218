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

package patch

import (
	"context"
	"os"
	"regexp"

	"github.com/aiprep-dev/aiprep/pkg/history"
	"github.com/aiprep-dev/aiprep/pkg/log"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Options configures an Engine. Zero values fall back to the paths the
// original standalone script hard-coded.
type Options struct {
	// BackupDir receives one pre-edit copy per processed instruction.
	BackupDir string

	// HistoryPath is the JSON history log.
	HistoryPath string

	// Console receives per-instruction progress output. Optional.
	Console *log.Logger
}

// Engine applies edit instructions to files, backing each target up and
// recording an audit entry for every successful edit. Instructions run
// strictly in input order against the current on-disk state: each one sees
// the effect of those before it.
type Engine struct {
	recorder *history.Recorder
	resolver *resolver
	console  *log.Logger
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.BackupDir == "" {
		opts.BackupDir = ".ai_backups"
	}
	if opts.HistoryPath == "" {
		opts.HistoryPath = ".ai_history/changes.json"
	}
	return &Engine{
		recorder: history.NewRecorder(opts.BackupDir, opts.HistoryPath),
		resolver: newResolver(),
		console:  opts.Console,
	}
}

// Recorder exposes the engine's backup/history recorder.
func (e *Engine) Recorder() *history.Recorder {
	return e.recorder
}

// ApplyAll applies the instruction list sequentially. Instructions that fail
// with a skippable error (missing file, unresolved anchor, invalid pattern)
// are reported and skipped; any other error aborts the run. The returned
// count is the number of instructions attempted.
func (e *Engine) ApplyAll(ctx context.Context, instructions []Instruction) (int, error) {
	for _, in := range instructions {
		status, err := e.Apply(ctx, in)
		if err != nil {
			if !IsSkippable(err) {
				return 0, err
			}
			zerolog.Ctx(ctx).Warn().
				Str("file", in.File).
				Str("action", string(in.EffectiveAction())).
				Msg(err.Error())
			e.logOp(ctx, in, err.Error(), true)
			continue
		}
		e.logOp(ctx, in, status, false)
	}

	if e.console != nil {
		e.console.Summary(len(instructions), e.recorder.BackupDir(), e.recorder.HistoryPath())
	}
	return len(instructions), nil
}

func (e *Engine) logOp(ctx context.Context, in Instruction, status string, skipped bool) {
	if e.console == nil {
		return
	}
	e.console.LogPatchOperation(ctx, log.PatchOperation{
		File:    in.File,
		Action:  string(in.EffectiveAction()),
		Anchor:  in.Anchor,
		Status:  status,
		Skipped: skipped,
	})
}

// Apply executes one instruction and returns a human-readable status. The
// target is backed up before any other work: a backup exists even when the
// anchor later fails to resolve, and the failed instruction leaves no
// history entry. A missing target skips the instruction before any backup
// is taken.
func (e *Engine) Apply(ctx context.Context, in Instruction) (string, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Stat(in.File); err != nil {
		if os.IsNotExist(err) {
			return "", &MissingFileError{Path: in.File}
		}
		return "", errors.Errorf("checking %s: %w", in.File, err)
	}

	backupPath, err := e.recorder.Backup(ctx, in.File)
	if err != nil {
		// No mutation may happen without a backup.
		return "", errors.Errorf("backing up %s: %w", in.File, err)
	}

	raw, err := os.ReadFile(in.File)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", in.File, err)
	}
	original := string(raw)

	updated, status, err := e.compute(ctx, in, original)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(in.File, []byte(updated), 0o644); err != nil {
		return "", errors.Errorf("writing %s: %w", in.File, err)
	}

	entry := history.NewEntry(in.File, string(in.EffectiveAction()), in.Anchor, in.Content, backupPath)
	if err := e.recorder.Append(ctx, entry); err != nil {
		return "", err
	}

	logger.Debug().
		Str("file", in.File).
		Str("action", string(in.EffectiveAction())).
		Str("backup", backupPath).
		Msg("applied instruction")
	return status, nil
}

// compute produces the post-edit content for one instruction.
func (e *Engine) compute(ctx context.Context, in Instruction, original string) (string, string, error) {
	switch in.EffectiveAction() {
	case ActionReplace:
		if in.Anchor == "" {
			return "", "", &PatternError{Pattern: in.Anchor, Err: errors.New("empty pattern")}
		}
		re, err := regexp.Compile("(?m)" + in.Anchor)
		if err != nil {
			return "", "", &PatternError{Pattern: in.Anchor, Err: err}
		}
		return re.ReplaceAllString(original, in.Content), "replaced matches", nil

	case ActionInsertAfter:
		pos, err := e.resolver.Resolve(ctx, original, in.Anchor)
		if err != nil {
			return "", "", err
		}
		return original[:pos] + in.Content + original[pos:], "inserted after anchor", nil

	case ActionInsertBefore:
		pos, err := e.resolver.Resolve(ctx, original, in.Anchor)
		if err != nil {
			return "", "", err
		}
		// The insertion point is the resolved end minus the anchor length.
		// Approximate windows are exactly len(anchor) bytes, so this is the
		// start of whatever region matched.
		at := pos - len(in.Anchor)
		return original[:at] + in.Content + original[at:], "inserted before anchor", nil

	case ActionPrepend:
		return in.Content + "\n" + original, "prepended", nil

	default: // ActionAppend
		return original + "\n" + in.Content, "appended", nil
	}
}
