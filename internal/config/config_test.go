package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/shaderbuild/pkg/shader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Shaders.SourceDir != filepath.Join("resources", "shaders") {
		t.Errorf("expected source dir resources/shaders, got %s", cfg.Shaders.SourceDir)
	}
	if cfg.OutputDir() != filepath.Join("resources", "shaders", "spv") {
		t.Errorf("expected output dir resources/shaders/spv, got %s", cfg.OutputDir())
	}
	if len(cfg.Shaders.Kinds) != 0 {
		t.Errorf("expected no kind filter by default, got %v", cfg.Shaders.Kinds)
	}

	if cfg.Compiler.Bin != "glslc" {
		t.Errorf("expected compiler glslc, got %s", cfg.Compiler.Bin)
	}
	if cfg.Compiler.TargetSPV != "spv1.6" {
		t.Errorf("expected target spv1.6, got %s", cfg.Compiler.TargetSPV)
	}
	if cfg.Compiler.ExtraArgs != "" {
		t.Errorf("expected no extra args, got %q", cfg.Compiler.ExtraArgs)
	}

	if cfg.Build.AllowFailures {
		t.Error("expected allow_failures to be false by default")
	}
	if cfg.Build.WatchDebounce != 200*time.Millisecond {
		t.Errorf("expected debounce 200ms, got %v", cfg.Build.WatchDebounce)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderbuild.yaml")

	yamlContent := `
shaders:
  source_dir: assets/rt
  output_dir: build/spv
  kinds: [rgen, .rmiss]

compiler:
  bin: /opt/vulkan/bin/glslc
  target_spv: spv1.4
  extra_args: "-O --target-env=vulkan1.2 -DMAX_BOUNCES='4'"

build:
  allow_failures: true
  watch_debounce: 1s

logging:
  level: "debug"
  log_file: "shaderbuild.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Shaders.SourceDir != "assets/rt" {
		t.Errorf("expected source dir assets/rt, got %s", cfg.Shaders.SourceDir)
	}
	if cfg.OutputDir() != "build/spv" {
		t.Errorf("expected output dir build/spv, got %s", cfg.OutputDir())
	}

	kinds, err := cfg.ShaderKinds()
	if err != nil {
		t.Fatalf("unexpected kinds error: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != shader.RayGen || kinds[1] != shader.Miss {
		t.Errorf("expected [rgen rmiss], got %v", kinds)
	}

	if cfg.Compiler.Bin != "/opt/vulkan/bin/glslc" {
		t.Errorf("expected custom compiler, got %s", cfg.Compiler.Bin)
	}
	if cfg.Compiler.TargetSPV != "spv1.4" {
		t.Errorf("expected target spv1.4, got %s", cfg.Compiler.TargetSPV)
	}

	args, err := cfg.CompilerArgs()
	if err != nil {
		t.Fatalf("unexpected args error: %v", err)
	}
	want := []string{"-O", "--target-env=vulkan1.2", "-DMAX_BOUNCES=4"}
	if len(args) != len(want) {
		t.Fatalf("expected args %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: expected %s, got %s", i, want[i], args[i])
		}
	}

	if !cfg.Build.AllowFailures {
		t.Error("expected allow_failures to be true")
	}
	if cfg.Build.WatchDebounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Build.WatchDebounce)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "shaderbuild.log" {
		t.Errorf("expected log file 'shaderbuild.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
build:
  watch_debounce: not a duration
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/shaderbuild.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"spv1.0", func(c *Config) { c.Compiler.TargetSPV = "spv1.0" }, false},
		{"spv1.3", func(c *Config) { c.Compiler.TargetSPV = "spv1.3" }, false},
		{"spv1.7 out of range", func(c *Config) { c.Compiler.TargetSPV = "spv1.7" }, true},
		{"spv2.0 out of range", func(c *Config) { c.Compiler.TargetSPV = "spv2.0" }, true},
		{"missing prefix", func(c *Config) { c.Compiler.TargetSPV = "1.6" }, true},
		{"missing minor", func(c *Config) { c.Compiler.TargetSPV = "spv1" }, true},
		{"patch version", func(c *Config) { c.Compiler.TargetSPV = "spv1.6.1" }, true},
		{"garbage version", func(c *Config) { c.Compiler.TargetSPV = "spvx.y" }, true},
		{"empty compiler", func(c *Config) { c.Compiler.Bin = "  " }, true},
		{"empty source dir", func(c *Config) { c.Shaders.SourceDir = "" }, true},
		{"unknown kind", func(c *Config) { c.Shaders.Kinds = []string{"frag"} }, true},
		{"unterminated quote", func(c *Config) { c.Compiler.ExtraArgs = `-DNAME="x` }, true},
		{"negative debounce", func(c *Config) { c.Build.WatchDebounce = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Keep the user's real config out of the lookup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("compiler:\n  target_spv: spv1.5\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "source and output flags",
			setup: func() {
				*flagSourceDir = "shaders"
				*flagOutputDir = "out"
			},
			verify: func(cfg *Config) {
				if cfg.Shaders.SourceDir != "shaders" {
					t.Errorf("expected source dir shaders, got %s", cfg.Shaders.SourceDir)
				}
				if cfg.OutputDir() != "out" {
					t.Errorf("expected output dir out, got %s", cfg.OutputDir())
				}
			},
			teardown: func() {
				*flagSourceDir = ""
				*flagOutputDir = ""
			},
		},
		{
			name:  "source flag moves derived output dir",
			setup: func() { *flagSourceDir = "shaders" },
			verify: func(cfg *Config) {
				if cfg.OutputDir() != filepath.Join("shaders", "spv") {
					t.Errorf("expected output dir shaders/spv, got %s", cfg.OutputDir())
				}
			},
			teardown: func() { *flagSourceDir = "" },
		},
		{
			name: "compiler flags",
			setup: func() {
				*flagBin = "/usr/local/bin/glslc"
				*flagTargetSPV = "spv1.5"
			},
			verify: func(cfg *Config) {
				if cfg.Compiler.Bin != "/usr/local/bin/glslc" {
					t.Errorf("expected custom compiler, got %s", cfg.Compiler.Bin)
				}
				if cfg.Compiler.TargetSPV != "spv1.5" {
					t.Errorf("expected target spv1.5, got %s", cfg.Compiler.TargetSPV)
				}
			},
			teardown: func() {
				*flagBin = ""
				*flagTargetSPV = ""
			},
		},
		{
			name:  "allow failures flag",
			setup: func() { *flagAllowFailures = true },
			verify: func(cfg *Config) {
				if !cfg.Build.AllowFailures {
					t.Error("expected allow_failures to be true with flag")
				}
			},
			teardown: func() { *flagAllowFailures = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		rest    []string
		src     string
		debug   bool
	}{
		{name: "no args"},
		{name: "command only", args: []string{"list"}, command: "list"},
		{
			name:    "flags before command",
			args:    []string{"-debug", "-src", "shaders", "build"},
			command: "build",
			src:     "shaders",
			debug:   true,
		},
		{
			name:    "flags after command",
			args:    []string{"build", "-src", "shaders", "-debug"},
			command: "build",
			src:     "shaders",
			debug:   true,
		},
		{
			name:    "flags on both sides",
			args:    []string{"-debug", "init", "-src", "shaders", "out.yaml"},
			command: "init",
			rest:    []string{"out.yaml"},
			src:     "shaders",
			debug:   true,
		},
		{
			name: "flags without command",
			args: []string{"-src", "shaders"},
			src:  "shaders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				*flagSourceDir = ""
				*flagDebug = false
			}()

			command, rest := ParseArgs(tt.args)
			if command != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, command)
			}
			if len(rest) != len(tt.rest) {
				t.Fatalf("expected args %v, got %v", tt.rest, rest)
			}
			for i := range rest {
				if rest[i] != tt.rest[i] {
					t.Errorf("arg %d: expected %s, got %s", i, tt.rest[i], rest[i])
				}
			}
			if *flagSourceDir != tt.src {
				t.Errorf("expected -src %q, got %q", tt.src, *flagSourceDir)
			}
			if *flagDebug != tt.debug {
				t.Errorf("expected -debug %v, got %v", tt.debug, *flagDebug)
			}
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderbuild.yaml")

	yamlContent := `
shaders:
  source_dir: from-file
compiler:
  target_spv: spv1.3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagTargetSPV = "spv1.5"
	defer func() {
		*flagConfig = ""
		*flagTargetSPV = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Compiler.TargetSPV != "spv1.5" {
		t.Errorf("expected target spv1.5 from flag, got %s", cfg.Compiler.TargetSPV)
	}
	if cfg.Shaders.SourceDir != "from-file" {
		t.Errorf("expected source dir from file, got %s", cfg.Shaders.SourceDir)
	}
	if cfg.Compiler.Bin != "glslc" {
		t.Errorf("expected default compiler, got %s", cfg.Compiler.Bin)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagTargetSPV = "spv9.9"
	*flagConfig = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() {
		*flagTargetSPV = ""
		*flagConfig = ""
	}()

	if _, err := Load(); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	*flagConfig = ""
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	os.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected validation error for spv9.9")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shaderbuild.yaml")

	cfg := Default()
	cfg.Shaders.Kinds = []string{"rchit"}
	cfg.Compiler.ExtraArgs = "-O"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if len(loaded.Shaders.Kinds) != 1 || loaded.Shaders.Kinds[0] != "rchit" {
		t.Errorf("expected kinds [rchit], got %v", loaded.Shaders.Kinds)
	}
	if loaded.Compiler.ExtraArgs != "-O" {
		t.Errorf("expected extra args -O, got %q", loaded.Compiler.ExtraArgs)
	}
	if loaded.Build.WatchDebounce != cfg.Build.WatchDebounce {
		t.Errorf("expected debounce %v, got %v", cfg.Build.WatchDebounce, loaded.Build.WatchDebounce)
	}
}
