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

package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Default values mirror the literals the standalone scripts shipped with.
const (
	DefaultBackupDir   = ".ai_backups"
	DefaultHistoryDir  = ".ai_history"
	DefaultHistoryFile = ".ai_history/changes.json"

	DefaultExportOutput = "codebase.xml"
	DefaultIndexOutput  = "repo_index.txt"

	DefaultMaxJSONSize  = 10_000
	DefaultMaxIndexSize = 1_000_000
)

// candidateFiles are probed in order when no --config is given.
var candidateFiles = []string{
	".aiprep.yaml",
	".aiprep.yml",
	".aiprep.json",
	".aiprep.hcl",
}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🗄️ BackupArgs configures where pre-edit copies and the history log live
type BackupArgs struct {
	Dir         string `json:"dir,omitempty" yaml:"dir,omitempty"`
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
}

// 📦 ExportArgs configures the codebase XML exporter
type ExportArgs struct {
	Output      string   `json:"output,omitempty" yaml:"output,omitempty"`
	Extensions  []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	IgnoreDirs  []string `json:"ignore_dirs,omitempty" yaml:"ignore_dirs,omitempty"`
	SkipFiles   []string `json:"skip_files,omitempty" yaml:"skip_files,omitempty"`
	MaxJSONSize int64    `json:"max_json_size,omitempty" yaml:"max_json_size,omitempty"`
}

// 📑 IndexArgs configures the git repository indexer
type IndexArgs struct {
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
	MaxFileSize int64  `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Backup BackupArgs  `json:"backup,omitempty" yaml:"backup,omitempty"`
	Export *ExportArgs `json:"export,omitempty" yaml:"export,omitempty"`
	Index  *IndexArgs  `json:"index,omitempty" yaml:"index,omitempty"`
}

// 🏭 Default returns a config carrying the original script defaults
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills any zero field with its default value.
func (c *Config) applyDefaults() {
	if c.Backup.Dir == "" {
		c.Backup.Dir = DefaultBackupDir
	}
	if c.Backup.HistoryFile == "" {
		c.Backup.HistoryFile = DefaultHistoryFile
	}
	if c.Export == nil {
		c.Export = &ExportArgs{}
	}
	if c.Export.Output == "" {
		c.Export.Output = DefaultExportOutput
	}
	if c.Export.MaxJSONSize == 0 {
		c.Export.MaxJSONSize = DefaultMaxJSONSize
	}
	if c.Index == nil {
		c.Index = &IndexArgs{}
	}
	if c.Index.Output == "" {
		c.Index.Output = DefaultIndexOutput
	}
	if c.Index.MaxFileSize == 0 {
		c.Index.MaxFileSize = DefaultMaxIndexSize
	}
}

// ✅ Validate checks the config for errors
func (c *Config) Validate() error {
	if c.Export != nil && c.Export.MaxJSONSize < 0 {
		return errors.New("export.max_json_size must not be negative")
	}
	if c.Index != nil && c.Index.MaxFileSize < 0 {
		return errors.New("index.max_file_size must not be negative")
	}
	return nil
}

// 🎯 Load loads the configuration from a file. An empty path probes the
// default candidate files; if none exists the built-in defaults are used.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		for _, candidate := range candidateFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		logger.Debug().Msg("no config file found, using defaults")
		return Default(), nil
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	parser := GetParser(path)
	if parser == nil {
		return nil, errors.Errorf("no parser available for %q", path)
	}

	cfg, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing %q: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
