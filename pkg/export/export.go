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

// Package export serializes a directory tree and its file contents into a
// single XML document for AI ingestion. Each file body is emitted as a
// CDATA block with prefixed line numbers so a model can reference regions
// without the numbers leaking back into patches.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Options configures an export run. Zero values fall back to defaults that
// mirror the original hard-coded constants.
type Options struct {
	Root        string
	Output      string
	Extensions  []string
	IgnoreDirs  []string
	SkipFiles   []string
	MaxJSONSize int64
}

var defaultExtensions = []string{
	".go", ".js", ".jsx", ".ts", ".tsx", ".py", ".html", ".css",
	".json", ".yml", ".yaml", ".sh", ".md",
}

var defaultIgnoreDirs = []string{
	"node_modules", "dist", "build", ".git", ".cache", ".vite",
	".idea", "__pycache__", ".DS_Store", "vendor",
}

var defaultSkipFiles = []string{
	"package-lock.json", "pnpm-lock.yaml", "yarn.lock", "go.sum",
}

// Exporter walks a directory tree and emits the XML document.
type Exporter struct {
	opts       Options
	exts       map[string]bool
	ignoreDirs map[string]bool
	skipFiles  map[string]bool
	ignore     *IgnoreMatcher
	now        func() time.Time
}

// New creates an exporter, loading .gitignore rules from the root.
func New(opts Options) *Exporter {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Output == "" {
		opts.Output = "codebase.xml"
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = defaultExtensions
	}
	if len(opts.IgnoreDirs) == 0 {
		opts.IgnoreDirs = defaultIgnoreDirs
	}
	if len(opts.SkipFiles) == 0 {
		opts.SkipFiles = defaultSkipFiles
	}
	if opts.MaxJSONSize == 0 {
		opts.MaxJSONSize = 10_000
	}

	e := &Exporter{
		opts:       opts,
		exts:       map[string]bool{},
		ignoreDirs: map[string]bool{},
		skipFiles:  map[string]bool{},
		ignore:     LoadGitignore(opts.Root),
		now:        time.Now,
	}
	for _, ext := range opts.Extensions {
		e.exts[strings.ToLower(ext)] = true
	}
	for _, dir := range opts.IgnoreDirs {
		e.ignoreDirs[dir] = true
	}
	for _, file := range opts.SkipFiles {
		e.skipFiles[file] = true
	}
	return e
}

// Run generates the document and writes it to the output path. It returns
// the number of files whose content was exported.
func (e *Exporter) Run(ctx context.Context) (int, error) {
	doc, count, err := e.Generate(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(e.opts.Output, []byte(doc), 0o644); err != nil {
		return 0, errors.Errorf("writing %s: %w", e.opts.Output, err)
	}
	zerolog.Ctx(ctx).Info().
		Str("output", e.opts.Output).
		Int("files", count).
		Msg("generated codebase export")
	return count, nil
}

// Generate builds the XML document in memory.
func (e *Exporter) Generate(ctx context.Context) (string, int, error) {
	absRoot, err := filepath.Abs(e.opts.Root)
	if err != nil {
		return "", 0, errors.Errorf("resolving root: %w", err)
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<codebase>\n")
	b.WriteString("  <info>\n")
	b.WriteString("    <description>\n")
	b.WriteString("      Each file includes prefixed line numbers for reference.\n")
	b.WriteString("      The numbers are navigation metadata only; never copy them into\n")
	b.WriteString("      source or patch content returned to the user.\n")
	b.WriteString("    </description>\n")
	fmt.Fprintf(&b, "    <generated>%s</generated>\n", e.now().UTC().Format("2006-01-02T15:04:05")+"Z")
	fmt.Fprintf(&b, "    <root>%s</root>\n", escapeXML(absRoot))
	b.WriteString("  </info>\n\n")

	b.WriteString("  <tree>\n")
	if err := e.writeTree(&b, e.opts.Root, "", 2); err != nil {
		return "", 0, err
	}
	b.WriteString("  </tree>\n\n")

	b.WriteString("  <files>\n")
	count, err := e.writeFiles(ctx, &b, e.opts.Root, "")
	if err != nil {
		return "", 0, err
	}
	b.WriteString("  </files>\n")
	b.WriteString("</codebase>\n")

	return b.String(), count, nil
}

// shouldSkipDir prunes hidden and configured directories. Hidden directories
// are skipped except .github.
func (e *Exporter) shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != ".github" {
		return true
	}
	return e.ignoreDirs[name]
}

// includeFile applies the name, extension and ignore filters.
func (e *Exporter) includeFile(name, rel string) bool {
	if e.skipFiles[name] {
		return false
	}
	if !e.exts[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	return !e.ignore.Match(rel, false)
}

func (e *Exporter) writeTree(b *strings.Builder, dir, rel string, depth int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading %s: %w", dir, err)
	}

	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		childRel := filepath.ToSlash(filepath.Join(rel, entry.Name()))
		if entry.IsDir() {
			if e.shouldSkipDir(entry.Name()) || e.ignore.Match(childRel, true) {
				continue
			}
			fmt.Fprintf(b, "%s<folder name=\"%s\">\n", indent, escapeXML(entry.Name()))
			if err := e.writeTree(b, filepath.Join(dir, entry.Name()), childRel, depth+1); err != nil {
				return err
			}
			fmt.Fprintf(b, "%s</folder>\n", indent)
			continue
		}
		if e.includeFile(entry.Name(), childRel) {
			fmt.Fprintf(b, "%s<file name=\"%s\" path=\"%s\" lang=\"%s\" />\n",
				indent, escapeXML(entry.Name()), escapeXML(childRel), detectLang(filepath.Ext(entry.Name())))
		}
	}
	return nil
}

func (e *Exporter) writeFiles(ctx context.Context, b *strings.Builder, dir, rel string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Errorf("reading %s: %w", dir, err)
	}

	count := 0
	for _, entry := range entries {
		childRel := filepath.ToSlash(filepath.Join(rel, entry.Name()))
		childPath := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if e.shouldSkipDir(entry.Name()) || e.ignore.Match(childRel, true) {
				continue
			}
			n, err := e.writeFiles(ctx, b, childPath, childRel)
			if err != nil {
				return 0, err
			}
			count += n
			continue
		}

		if !e.includeFile(entry.Name(), childRel) {
			continue
		}

		// Large JSON files are almost always data blobs, not code.
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			if info, err := entry.Info(); err == nil && info.Size() > e.opts.MaxJSONSize {
				zerolog.Ctx(ctx).Debug().Str("file", childRel).Msg("skipping large JSON file")
				continue
			}
		}

		numbered, err := numberLines(childPath)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(b, "    <file path=\"%s\" lang=\"%s\"><![CDATA[\n%s\n]]></file>\n",
			escapeXML(childRel), detectLang(filepath.Ext(entry.Name())), numbered)
		count++
	}
	return count, nil
}

// numberLines renders file content with 4-wide right-justified line numbers.
func numberLines(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = fmt.Sprintf("%4d | %s", i+1, strings.TrimRight(line, " \t\r"))
	}
	return strings.Join(out, "\n"), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
