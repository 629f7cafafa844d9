// Package config handles shaderbuild configuration loading and management.
package config

import (
	"path/filepath"
	"time"
)

// Config holds all shaderbuild settings.
type Config struct {
	Shaders  ShadersConfig  `yaml:"shaders"`
	Compiler CompilerConfig `yaml:"compiler"`
	Build    BuildConfig    `yaml:"build"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ShadersConfig holds source discovery settings.
type ShadersConfig struct {
	SourceDir string   `yaml:"source_dir"`
	OutputDir string   `yaml:"output_dir"` // Empty means <source_dir>/spv
	Kinds     []string `yaml:"kinds"`      // Empty means every recognized kind
}

// CompilerConfig holds external compiler settings.
type CompilerConfig struct {
	Bin       string `yaml:"bin"`
	TargetSPV string `yaml:"target_spv"`
	ExtraArgs string `yaml:"extra_args"` // Shell-style, split with shellwords
}

// BuildConfig holds driver behavior settings.
type BuildConfig struct {
	AllowFailures bool          `yaml:"allow_failures"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Shaders: ShadersConfig{
			SourceDir: filepath.Join("resources", "shaders"),
		},
		Compiler: CompilerConfig{
			Bin:       "glslc",
			TargetSPV: "spv1.6",
		},
		Build: BuildConfig{
			AllowFailures: false,
			WatchDebounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// OutputDir returns the configured output directory, falling back to
// the spv subdirectory of the source directory.
func (c *Config) OutputDir() string {
	if c.Shaders.OutputDir != "" {
		return c.Shaders.OutputDir
	}
	return filepath.Join(c.Shaders.SourceDir, "spv")
}
