package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/paramtree/internal/config"
	"github.com/vk/paramtree/internal/ctxlog"
	"github.com/vk/paramtree/internal/schema"
)

// Loader parses and translates HCL model files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadFile reads, parses, and translates a single model file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*config.ModelSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return l.Parse(ctx, path, src)
}

// Parse decodes model source into the schema structs and translates them
// into a config.ModelSpec.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.ModelSpec, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing model file.", "filename", filename)

	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	var decoded schema.File
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}
	if decoded.Model == nil {
		return nil, fmt.Errorf("decode %s: no model block found", filename)
	}

	spec, err := l.translateModel(decoded.Model)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", filename, err)
	}
	logger.Debug("Model file translated.", "model", spec.Name, "objective", spec.Objective)
	return spec, nil
}
