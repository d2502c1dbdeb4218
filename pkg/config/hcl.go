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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclBackup struct {
		Dir         string `hcl:"dir,optional"`
		HistoryFile string `hcl:"history_file,optional"`
	}
	type hclExport struct {
		Output      string   `hcl:"output,optional"`
		Extensions  []string `hcl:"extensions,optional"`
		IgnoreDirs  []string `hcl:"ignore_dirs,optional"`
		SkipFiles   []string `hcl:"skip_files,optional"`
		MaxJSONSize int64    `hcl:"max_json_size,optional"`
	}
	type hclIndex struct {
		Output      string `hcl:"output,optional"`
		MaxFileSize int64  `hcl:"max_file_size,optional"`
	}
	type hclConfig struct {
		Backup *hclBackup `hcl:"backup,block"`
		Export *hclExport `hcl:"export,block"`
		Index  *hclIndex  `hcl:"index,block"`
	}

	var hclCfg hclConfig
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg); diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if hclCfg.Backup != nil {
		cfg.Backup = BackupArgs{
			Dir:         hclCfg.Backup.Dir,
			HistoryFile: hclCfg.Backup.HistoryFile,
		}
	}
	if hclCfg.Export != nil {
		cfg.Export = &ExportArgs{
			Output:      hclCfg.Export.Output,
			Extensions:  hclCfg.Export.Extensions,
			IgnoreDirs:  hclCfg.Export.IgnoreDirs,
			SkipFiles:   hclCfg.Export.SkipFiles,
			MaxJSONSize: hclCfg.Export.MaxJSONSize,
		}
	}
	if hclCfg.Index != nil {
		cfg.Index = &IndexArgs{
			Output:      hclCfg.Index.Output,
			MaxFileSize: hclCfg.Index.MaxFileSize,
		}
	}
	return cfg, nil
}
