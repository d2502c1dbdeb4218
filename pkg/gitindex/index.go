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

// Package gitindex concatenates a git repository's tracked files into one
// annotated text file for AI review. File listing and commit metadata come
// from the repository itself; no git binary is invoked.
package gitindex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// separator splits file sections for easy chunking downstream.
var separator = strings.Repeat("=", 80)

// codeExtensions are always indexed regardless of the text sniff.
var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".java": true,
	".cpp": true, ".c": true, ".h": true, ".md": true, ".txt": true,
	".json": true, ".yaml": true, ".yml": true, ".html": true,
	".css": true, ".sh": true, ".sql": true,
}

// Options configures an indexing run.
type Options struct {
	// Dir is the repository directory. Defaults to the working directory;
	// parent directories are searched for .git the way git itself does.
	Dir string

	// Output is the index file to write. Defaults to repo_index.txt.
	Output string

	// MaxFileSize bounds files admitted by the text sniff (known code
	// extensions are exempt). Defaults to 1 MB.
	MaxFileSize int64
}

// Indexer walks a repository's tracked files and writes the index document.
type Indexer struct {
	opts Options
	repo *git.Repository
}

// Open locates the repository for opts.Dir.
func Open(opts Options) (*Indexer, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Output == "" {
		opts.Output = "repo_index.txt"
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = 1_000_000
	}

	repo, err := git.PlainOpenWithOptions(opts.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Errorf("not in a git repository: %w", err)
	}
	return &Indexer{opts: opts, repo: repo}, nil
}

// Run writes the index and returns the number of files whose content was
// included.
func (ix *Indexer) Run(ctx context.Context) (int, error) {
	logger := zerolog.Ctx(ctx)

	files, err := ix.trackedFiles()
	if err != nil {
		return 0, err
	}

	absDir, err := filepath.Abs(ix.opts.Dir)
	if err != nil {
		return 0, errors.Errorf("resolving repo dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Git Repository Index for AI Review\n")
	fmt.Fprintf(&b, "# Generated on: %s\n", ix.lastCommitDate(""))
	fmt.Fprintf(&b, "# Repo: %s\n", absDir)
	fmt.Fprintf(&b, "# Total files indexed: %d\n\n", len(files))

	indexed := 0
	for _, file := range files {
		path := filepath.Join(absDir, filepath.FromSlash(file))
		if !ix.includeFile(file, path) {
			logger.Debug().Str("file", file).Msg("excluded from index")
			continue
		}

		content, size := readFileContent(path)
		fmt.Fprintf(&b, "## FILE: %s\n", file)
		b.WriteString("### Metadata\n")
		fmt.Fprintf(&b, "- Size: %d bytes\n", size)
		fmt.Fprintf(&b, "- Last commit: %s\n\n", ix.lastCommitDate(file))
		b.WriteString("### Content\n")
		b.WriteString(content)
		b.WriteString("\n" + separator + "\n\n")
		indexed++
	}

	if err := os.WriteFile(ix.opts.Output, []byte(b.String()), 0o644); err != nil {
		return 0, errors.Errorf("writing %s: %w", ix.opts.Output, err)
	}

	logger.Info().
		Str("output", ix.opts.Output).
		Int("tracked", len(files)).
		Int("indexed", indexed).
		Msg("indexed repository")
	return indexed, nil
}

// trackedFiles lists the paths reachable from the HEAD commit tree. This
// matches `git ls-files` for a clean worktree; staged-but-uncommitted files
// are not listed.
func (ix *Indexer) trackedFiles() ([]string, error) {
	head, err := ix.repo.Head()
	if err != nil {
		return nil, errors.Errorf("resolving HEAD (repository may have no commits): %w", err)
	}
	commit, err := ix.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.Errorf("loading HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Errorf("loading HEAD tree: %w", err)
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("listing tree files: %w", err)
	}
	return files, nil
}

// lastCommitDate returns the committer date of the newest commit touching
// path (the whole repository when path is empty) in RFC 3339 form, or
// "Unknown" when no commit is found.
func (ix *Indexer) lastCommitDate(path string) string {
	opts := &git.LogOptions{}
	if path != "" {
		opts.FileName = &path
	}

	iter, err := ix.repo.Log(opts)
	if err != nil {
		return "Unknown"
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return "Unknown"
	}
	return commit.Committer.When.Format(time.RFC3339)
}

// includeFile admits known code/doc extensions unconditionally; anything
// else must look like text and stay under the size limit.
func (ix *Indexer) includeFile(relPath, absPath string) bool {
	if strings.Contains(relPath, "__pycache__") {
		return false
	}
	for _, suffix := range []string{".pyc", ".pyo", ".pyd"} {
		if strings.HasSuffix(relPath, suffix) {
			return false
		}
	}
	if codeExtensions[strings.ToLower(filepath.Ext(relPath))] {
		return true
	}

	info, err := os.Stat(absPath)
	if err != nil || info.Size() >= ix.opts.MaxFileSize {
		return false
	}
	return isTextFile(absPath)
}

// isTextFile sniffs the first KiB for NUL bytes.
func isTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	return !bytes.ContainsRune(buf[:n], 0)
}

// readFileContent reads a working-tree file, substituting a marker when it
// cannot be read.
func readFileContent(path string) (string, int64) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "# [ERROR: Could not read file]", 0
	}
	return string(data), int64(len(data))
}
