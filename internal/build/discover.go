// Package build discovers shader sources and compiles them one at a time.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Faultbox/shaderbuild/pkg/shader"
)

// Options selects which sources are compiled and where output goes.
type Options struct {
	SourceDir string
	OutputDir string        // Empty means <SourceDir>/spv
	Kinds     []shader.Kind // Empty means every recognized kind
}

func (o Options) outputDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	return filepath.Join(o.SourceDir, "spv")
}

func (o Options) kinds() []shader.Kind {
	if len(o.Kinds) == 0 {
		return shader.Kinds()
	}
	return o.Kinds
}

// Discover lists the files directly under the source directory and returns
// a compile job for each one with a selected kind, in name order.
func Discover(opts Options) ([]shader.Job, error) {
	entries, err := os.ReadDir(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", opts.SourceDir, err)
	}

	kinds := opts.kinds()
	outDir := opts.outputDir()

	var jobs []shader.Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind, ok := shader.KindOf(e.Name())
		if !ok || !slices.Contains(kinds, kind) {
			continue
		}
		jobs = append(jobs, shader.NewJob(opts.SourceDir, outDir, e.Name(), kind))
	}
	return jobs, nil
}

// EnsureOutputDir creates dir and any missing parents. It is a no-op when
// dir already exists.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
