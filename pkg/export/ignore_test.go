package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreMatcher(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		path    string
		isDir   bool
		ignored bool
	}{
		{name: "bare_name_matches_anywhere", lines: []string{"secret.txt"}, path: "a/b/secret.txt", ignored: true},
		{name: "bare_name_no_match", lines: []string{"secret.txt"}, path: "a/b/other.txt", ignored: false},
		{name: "glob_extension", lines: []string{"*.log"}, path: "logs/app.log", ignored: true},
		{name: "anchored_only_matches_root", lines: []string{"/build"}, path: "src/build", ignored: false},
		{name: "anchored_matches_at_root", lines: []string{"/build"}, path: "build", isDir: true, ignored: true},
		{name: "dir_only_covers_contents", lines: []string{"dist/"}, path: "dist/bundle.js", ignored: true},
		{name: "dir_only_skips_plain_file", lines: []string{"dist/"}, path: "dist", isDir: false, ignored: false},
		{name: "negation_wins_last", lines: []string{"*.log", "!keep.log"}, path: "keep.log", ignored: false},
		{name: "slash_pattern_is_anchored", lines: []string{"docs/tmp"}, path: "docs/tmp", isDir: true, ignored: true},
		{name: "comment_and_blank_ignored", lines: []string{"# note", "", "cache"}, path: "cache", isDir: true, ignored: true},
		{name: "under_ignored_dir", lines: []string{"node_modules"}, path: "node_modules/pkg/index.js", ignored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewIgnoreMatcher(tt.lines)
			assert.Equal(t, tt.ignored, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestLoadGitignoreMissingFile(t *testing.T) {
	m := LoadGitignore(t.TempDir())
	assert.False(t, m.Match("anything.go", false))
}
