package patch

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func TestResolveExactMatch(t *testing.T) {
	r := newResolver()

	t.Run("returns_offset_after_anchor", func(t *testing.T) {
		pos, err := r.Resolve(testCtx(t), "Hello\nWorld\n", "Hello")
		require.NoError(t, err)
		assert.Equal(t, 5, pos)
	})

	t.Run("first_occurrence_wins", func(t *testing.T) {
		pos, err := r.Resolve(testCtx(t), "foo bar foo", "foo")
		require.NoError(t, err)
		assert.Equal(t, 3, pos)
	})

	t.Run("beats_any_approximate_window", func(t *testing.T) {
		// A near-miss window sits before the verbatim occurrence; the exact
		// match must still win.
		content := "abcdXf padding abcdef"
		pos, err := r.Resolve(testCtx(t), content, "abcdef")
		require.NoError(t, err)
		assert.Equal(t, len(content), pos)
	})
}

func TestResolveApproximate(t *testing.T) {
	r := newResolver()

	t.Run("first_window_at_threshold_short_circuits", func(t *testing.T) {
		// Window at 0 ("aaabbb") scores exactly 0.5; the window at 10
		// ("aaaaab") scores higher but must never be reached.
		pos, err := r.Resolve(testCtx(t), "aaabbbzzzzaaaaab", "aaaaaa")
		require.NoError(t, err)
		assert.Equal(t, 6, pos)
	})

	t.Run("no_window_at_threshold_fails", func(t *testing.T) {
		_, err := r.Resolve(testCtx(t), "abzzzzzzzz", "abcdef")
		require.Error(t, err)

		anchorErr, ok := err.(*AnchorNotFoundError)
		require.True(t, ok)
		assert.Greater(t, anchorErr.BestRatio, 0.0)
		assert.Less(t, anchorErr.BestRatio, Threshold)
		assert.Equal(t, 0, anchorErr.BestPos)
	})

	t.Run("zero_similarity_reports_no_position", func(t *testing.T) {
		_, err := r.Resolve(testCtx(t), "zzzzzzzzzz", "aaaaaa")
		require.Error(t, err)

		anchorErr, ok := err.(*AnchorNotFoundError)
		require.True(t, ok)
		assert.Zero(t, anchorErr.BestRatio)
		assert.Equal(t, -1, anchorErr.BestPos)
	})

	t.Run("final_window_is_never_tried", func(t *testing.T) {
		// Content is exactly anchor-sized, so the only conceivable window
		// starts at 0 -- and the scan excludes it.
		_, err := r.Resolve(testCtx(t), "aaaaac", "aaaaab")
		require.Error(t, err)
	})

	t.Run("anchor_longer_than_content_fails", func(t *testing.T) {
		_, err := r.Resolve(testCtx(t), "hi", "a much longer anchor")
		require.Error(t, err)
	})
}

func TestResolveBlankAnchor(t *testing.T) {
	r := newResolver()

	for _, anchor := range []string{"", "   ", "\n\t"} {
		_, err := r.Resolve(testCtx(t), "some content", anchor)
		require.Error(t, err, "anchor %q", anchor)
		var anchorErr *AnchorNotFoundError
		require.ErrorAs(t, err, &anchorErr)
	}
}

func TestResolveCaseSensitive(t *testing.T) {
	r := newResolver()

	// No normalization: a case-flipped anchor only matches approximately.
	pos, err := r.Resolve(testCtx(t), "Hello World", "hello")
	require.NoError(t, err)
	// "Hello" vs "hello" shares 4 of 5 characters, ratio 0.8, window at 0.
	assert.Equal(t, 5, pos)
}

func TestSimilarity(t *testing.T) {
	r := newResolver()

	assert.Equal(t, 1.0, r.similarity("abc", "abc"))
	assert.Equal(t, 1.0, r.similarity("", ""))
	assert.Equal(t, 0.0, r.similarity("abc", "xyz"))
	assert.InDelta(t, 0.5, r.similarity("aaaaaa", "aaabbb"), 1e-9)
}
