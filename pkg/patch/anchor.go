package patch

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Threshold is the similarity ratio an approximate window must reach before
// it is accepted as an anchor match.
const Threshold = 0.5

// resolver locates anchor text inside file content, exactly or
// approximately.
type resolver struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

func newResolver() *resolver {
	dmp := diffmatchpatch.New()
	// Deadline-based truncation would make ratios nondeterministic.
	dmp.DiffTimeout = 0
	return &resolver{dmp: dmp}
}

// Resolve returns the byte offset immediately after the matched anchor
// region, to be used as an insertion point.
//
// An exact occurrence always wins: the offset after the FIRST verbatim match
// is returned even if a closer approximate window exists elsewhere. Without
// an exact match, a window of len(anchor) bytes slides over the content and
// the first window whose similarity ratio reaches Threshold is taken; the
// scan does not continue looking for a better one. Matching is
// case-sensitive and whitespace-sensitive.
func (r *resolver) Resolve(ctx context.Context, content, anchor string) (int, error) {
	if strings.TrimSpace(anchor) == "" {
		return 0, &AnchorNotFoundError{Anchor: anchor}
	}

	if idx := strings.Index(content, anchor); idx != -1 {
		return idx + len(anchor), nil
	}

	window := len(anchor)
	bestRatio := 0.0
	bestPos := -1

	// The final possible window (starting at len(content)-window) is never
	// tried; anchors longer than the remaining tail simply cannot match
	// there.
	for i := 0; i+window < len(content); i++ {
		ratio := r.similarity(anchor, content[i:i+window])
		if ratio > bestRatio {
			bestRatio = ratio
			bestPos = i
		}
		if ratio >= Threshold {
			return i + window, nil
		}
	}

	if bestRatio > 0 {
		zerolog.Ctx(ctx).Debug().
			Float64("ratio", bestRatio).
			Int("position", bestPos).
			Str("anchor", anchor).
			Msg("closest anchor candidate below threshold")
	}
	return 0, &AnchorNotFoundError{Anchor: anchor, BestRatio: bestRatio, BestPos: bestPos}
}

// similarity is 2·M/T where M counts characters the two strings share in a
// longest-common-subsequence alignment and T is their combined length.
func (r *resolver) similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	common := 0
	for _, d := range r.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			common += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(common) / float64(total)
}
