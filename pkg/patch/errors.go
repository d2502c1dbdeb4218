package patch

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// MissingFileError means an instruction named a file that does not exist.
// The instruction is skipped; the run continues.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// AnchorNotFoundError means neither an exact nor an approximate match
// reached the similarity threshold. BestRatio and BestPos carry the closest
// miss for diagnostics when any window scored above zero.
type AnchorNotFoundError struct {
	Anchor    string
	BestRatio float64
	BestPos   int
}

func (e *AnchorNotFoundError) Error() string {
	if e.BestRatio > 0 {
		return fmt.Sprintf("anchor not found: %q (closest match %.2f near position %d)",
			e.Anchor, e.BestRatio, e.BestPos)
	}
	return fmt.Sprintf("anchor not found: %q", e.Anchor)
}

// PatternError means a replace anchor was not a valid pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether err is one of the per-instruction failures
// that skip the instruction and let the run continue.
func IsSkippable(err error) bool {
	var missing *MissingFileError
	var anchor *AnchorNotFoundError
	var pattern *PatternError
	return errors.As(err, &missing) || errors.As(err, &anchor) || errors.As(err, &pattern)
}
