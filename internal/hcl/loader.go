package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/dawgraph/internal/config"
	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/fsutil"
)

// ErrNoFiles is returned when the given paths contain no session files.
var ErrNoFiles = errors.New("no .hcl session files found")

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL session loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths, in path order and lexical order
// within directories, and merges them into one model. Processors and
// connections keep their file order; engine and telemetry blocks may appear
// at most once across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "processors", len(model.Processors), "connections", len(model.Connections))
	return model, nil
}

func (l *Loader) merge(model *config.Model, root *fileRoot) error {
	if root.Engine != nil {
		if model.Engine != nil {
			return errors.New("duplicate engine block")
		}
		model.Engine = translateEngine(root.Engine)
	}
	if root.Telemetry != nil {
		if model.Telemetry != nil {
			return errors.New("duplicate telemetry block")
		}
		model.Telemetry = translateTelemetry(root.Telemetry)
	}
	for _, p := range root.Processors {
		proc, err := translateProcessor(p)
		if err != nil {
			return err
		}
		model.Processors = append(model.Processors, proc)
	}
	for _, c := range root.Connections {
		model.Connections = append(model.Connections, translateConnection(c))
	}
	return nil
}

// findAllHCLFiles returns the .hcl files under paths without duplicates.
// Unlike module search paths, a session path that does not exist is an error.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return all, nil
}
