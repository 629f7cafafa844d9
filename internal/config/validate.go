package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-shellwords"

	"github.com/Faultbox/shaderbuild/pkg/shader"
)

// supportedSPV is the range of SPIR-V versions glslc accepts for --target-spv.
var supportedSPV = mustConstraint(">= 1.0, <= 1.6")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Validate reports every invalid setting in the config.
func (c *Config) Validate() error {
	var errs []error

	if c.Shaders.SourceDir == "" {
		errs = append(errs, errors.New("shaders.source_dir is empty"))
	}
	if _, err := c.ShaderKinds(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Compiler.Bin) == "" {
		errs = append(errs, errors.New("compiler.bin is empty"))
	}
	if err := checkTargetSPV(c.Compiler.TargetSPV); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.CompilerArgs(); err != nil {
		errs = append(errs, err)
	}
	if c.Build.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("build.watch_debounce must not be negative, got %v", c.Build.WatchDebounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ShaderKinds returns the kinds to compile. An empty list selects all.
func (c *Config) ShaderKinds() ([]shader.Kind, error) {
	if len(c.Shaders.Kinds) == 0 {
		return shader.Kinds(), nil
	}
	kinds := make([]shader.Kind, 0, len(c.Shaders.Kinds))
	for _, name := range c.Shaders.Kinds {
		k, err := shader.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("shaders.kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// CompilerArgs splits compiler.extra_args into individual arguments.
func (c *Config) CompilerArgs() ([]string, error) {
	args, err := shellwords.Parse(c.Compiler.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("compiler.extra_args: %w", err)
	}
	return args, nil
}

// checkTargetSPV accepts versions of the form spvMAJOR.MINOR in the supported range.
func checkTargetSPV(target string) error {
	num, ok := strings.CutPrefix(target, "spv")
	if !ok || strings.Count(num, ".") != 1 {
		return fmt.Errorf("compiler.target_spv %q: want spvMAJOR.MINOR", target)
	}
	v, err := semver.NewVersion(num)
	if err != nil {
		return fmt.Errorf("compiler.target_spv %q: %w", target, err)
	}
	if !supportedSPV.Check(v) {
		return fmt.Errorf("compiler.target_spv %q: unsupported version (want %s)", target, supportedSPV)
	}
	return nil
}
