package gitindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("add files", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "tester",
			Email: "tester@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("repository", func(t *testing.T) {
		dir, _ := initRepo(t)
		ix, err := Open(Options{Dir: dir})
		require.NoError(t, err)
		assert.NotNil(t, ix)
	})

	t.Run("not_a_repository", func(t *testing.T) {
		_, err := Open(Options{Dir: t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in a git repository")
	})
}

func TestRun(t *testing.T) {
	ctx := setupTestLogger(t)
	dir, repo := initRepo(t)

	commitFiles(t, repo, dir, map[string]string{
		"main.py":       "print('hello')\n",
		"docs/notes.md": "# Notes\n",
		"blob.bin":      "ab\x00cd",
	})

	// Untracked files never appear.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.py"), []byte("tmp"), 0o644))

	output := filepath.Join(t.TempDir(), "repo_index.txt")
	ix, err := Open(Options{Dir: dir, Output: output})
	require.NoError(t, err)

	indexed, err := ix.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	out := string(data)

	t.Run("header", func(t *testing.T) {
		assert.Contains(t, out, "# Git Repository Index for AI Review")
		assert.Contains(t, out, "# Total files indexed: 3")
	})

	t.Run("file_sections", func(t *testing.T) {
		assert.Contains(t, out, "## FILE: main.py")
		assert.Contains(t, out, "print('hello')")
		assert.Contains(t, out, "## FILE: docs/notes.md")
		assert.Contains(t, out, separator)
	})

	t.Run("metadata", func(t *testing.T) {
		assert.Contains(t, out, "- Size: 15 bytes")
		assert.Regexp(t, `- Last commit: \d{4}-\d{2}-\d{2}T`, out)
	})

	t.Run("exclusions", func(t *testing.T) {
		assert.NotContains(t, out, "## FILE: blob.bin")
		assert.NotContains(t, out, "scratch.py")
	})
}

func TestRunEmptyRepositoryFails(t *testing.T) {
	ctx := setupTestLogger(t)
	dir, _ := initRepo(t)

	ix, err := Open(Options{Dir: dir, Output: filepath.Join(t.TempDir(), "out.txt")})
	require.NoError(t, err)

	_, err = ix.Run(ctx)
	require.Error(t, err)
}

func TestIncludeFile(t *testing.T) {
	dir, _ := initRepo(t)
	ix, err := Open(Options{Dir: dir, MaxFileSize: 100})
	require.NoError(t, err)

	t.Run("code_extension_always_included", func(t *testing.T) {
		assert.True(t, ix.includeFile("big.go", filepath.Join(dir, "missing-on-disk.go")))
	})

	t.Run("pycache_excluded", func(t *testing.T) {
		assert.False(t, ix.includeFile("__pycache__/mod.py", ""))
		assert.False(t, ix.includeFile("mod.pyc", ""))
	})

	t.Run("unknown_extension_text_file", func(t *testing.T) {
		path := filepath.Join(dir, "LICENSE")
		require.NoError(t, os.WriteFile(path, []byte("MIT"), 0o644))
		assert.True(t, ix.includeFile("LICENSE", path))
	})

	t.Run("unknown_extension_too_big", func(t *testing.T) {
		path := filepath.Join(dir, "data.blob")
		require.NoError(t, os.WriteFile(path, make([]byte, 200), 0o644))
		assert.False(t, ix.includeFile("data.blob", path))
	})
}
