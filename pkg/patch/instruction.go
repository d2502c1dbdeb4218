package patch

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Action identifies one of the five edit variants.
type Action string

const (
	ActionReplace      Action = "replace"
	ActionInsertAfter  Action = "insert_after"
	ActionInsertBefore Action = "insert_before"
	ActionAppend       Action = "append"
	ActionPrepend      Action = "prepend"
)

// Instruction is one requested file mutation. Instructions are read once and
// never mutated; the engine only interprets them.
type Instruction struct {
	// File is the path of the target file.
	File string `json:"file"`

	// Action selects the edit variant. Empty means append.
	Action Action `json:"action,omitempty"`

	// Content is the text to insert or substitute. For replace it is a
	// substitution template, so back-references are written $1 / ${name}.
	Content string `json:"content,omitempty"`

	// Anchor locates the edit point. It is literal text for insert_after and
	// insert_before and a regular expression for replace; append and prepend
	// ignore it.
	Anchor string `json:"anchor,omitempty"`
}

// EffectiveAction returns the action with the default applied.
func (in Instruction) EffectiveAction() Action {
	if in.Action == "" {
		return ActionAppend
	}
	return in.Action
}

func (in Instruction) validate(i int) error {
	if in.File == "" {
		return errors.Errorf("instruction %d: file is required", i)
	}
	switch in.EffectiveAction() {
	case ActionReplace, ActionInsertAfter, ActionInsertBefore, ActionAppend, ActionPrepend:
		return nil
	default:
		return errors.Errorf("instruction %d: unknown action %q", i, in.Action)
	}
}

// LoadInstructions reads a JSON array of instructions from path. Any parse
// or validation failure is fatal for the whole run: no instruction is
// applied from a malformed file.
func LoadInstructions(ctx context.Context, path string) ([]Instruction, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading instructions")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading instruction file: %w", err)
	}

	var instructions []Instruction
	if err := json.Unmarshal(data, &instructions); err != nil {
		return nil, errors.Errorf("parsing instruction file: %w", err)
	}

	for i, in := range instructions {
		if err := in.validate(i); err != nil {
			return nil, err
		}
	}
	return instructions, nil
}
