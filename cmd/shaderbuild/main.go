// shaderbuild compiles ray-tracing shader sources to SPIR-V with glslc.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shaderbuild/internal/build"
	"github.com/Faultbox/shaderbuild/internal/compiler"
	"github.com/Faultbox/shaderbuild/internal/config"
	"github.com/Faultbox/shaderbuild/internal/logger"
	"github.com/Faultbox/shaderbuild/internal/watch"
)

// Exit statuses.
const (
	exitOK     = 0
	exitFailed = 1 // pass completed, some shaders failed
	exitSetup  = 2 // bad usage, config, or unreadable directories

	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one shaderbuild invocation and returns its exit status.
func run(argv []string, stdout, stderr io.Writer) int {
	command, args := config.ParseArgs(argv)
	if command == "" {
		command = "build"
	}

	switch command {
	case "help":
		printUsage(stdout)
		printCompilerVersion(stdout)
		return exitOK
	case "build", "list", "watch", "init":
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return exitSetup
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return exitSetup
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, stderr); err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return exitSetup
	}
	defer logger.Sync()

	logger.Debug("loaded config", zap.Any("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "list":
		return cmdList(cfg, stdout, stderr)
	case "watch":
		return cmdWatch(ctx, cfg, stdout)
	case "init":
		return cmdInit(cfg, args, stdout, stderr)
	default:
		return cmdBuild(ctx, cfg, stdout, stderr)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `shaderbuild - compile ray-tracing shaders to SPIR-V

Usage:
  shaderbuild [flags] [command] [flags] [args]

Flags may be given before or after the command.

Commands:
  build          Compile every recognized shader once (default)
  list           Show the shaders build would compile
  watch          Build, then rebuild whenever a shader changes
  init [path]    Write the effective config (default ./shaderbuild.yaml)
  help           Show this help

Recognized sources: .rgen .rchit .rmiss .rint

Flags:
  -config <file>      Config file (default ./shaderbuild.yaml)
  -src <dir>          Shader source directory (default resources/shaders)
  -out <dir>          Output directory (default <src>/spv)
  -glslc <bin>        Compiler binary (default glslc)
  -target-spv <ver>   SPIR-V target version (default spv1.6)
  -allow-failures     Exit 0 even when some shaders fail
  -debug              Enable debug logging

Exit status:
  0  every shader compiled
  1  the pass finished but some shaders failed
  2  usage, config or directory error
  130 interrupted

Examples:
  shaderbuild
  shaderbuild build -src assets/rt -target-spv spv1.4
  shaderbuild -debug watch`)
}

func printCompilerVersion(w io.Writer) {
	cfg, err := config.Load()
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := compiler.New(cfg.Compiler.Bin, cfg.Compiler.TargetSPV).Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "\nCompiler: %s (not found)\n", cfg.Compiler.Bin)
		return
	}
	fmt.Fprintf(w, "\nCompiler: %s (%s)\n", cfg.Compiler.Bin, v)
}

// newDriver builds a driver and compiler from the loaded config.
func newDriver(cfg *config.Config, console io.Writer) (*build.Driver, error) {
	kinds, err := cfg.ShaderKinds()
	if err != nil {
		return nil, err
	}
	extra, err := cfg.CompilerArgs()
	if err != nil {
		return nil, err
	}

	glslc := compiler.New(cfg.Compiler.Bin, cfg.Compiler.TargetSPV, extra...)
	opts := build.Options{
		SourceDir: cfg.Shaders.SourceDir,
		OutputDir: cfg.OutputDir(),
		Kinds:     kinds,
	}
	return build.NewDriver(opts, glslc, console), nil
}

// exitStatus maps a completed pass to the process exit status.
func exitStatus(report *build.Report, allowFailures bool) int {
	if report.Failed() > 0 && !allowFailures {
		return exitFailed
	}
	return exitOK
}

func cmdBuild(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	d, err := newDriver(cfg, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	report, err := d.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "\nInterrupted after %d shaders\n", len(report.Results))
		return exitInterrupted
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	if len(report.Results) == 0 {
		fmt.Fprintf(stderr, "No shaders found in %s\n", cfg.Shaders.SourceDir)
	} else if n := report.Failed(); n > 0 {
		fmt.Fprintf(stderr, "\n%d of %d shaders failed to compile\n", n, len(report.Results))
	}
	return exitStatus(report, cfg.Build.AllowFailures)
}

// cmdList prints the jobs a build would run. It never creates directories
// or starts the compiler.
func cmdList(cfg *config.Config, stdout, stderr io.Writer) int {
	kinds, err := cfg.ShaderKinds()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	jobs, err := build.Discover(build.Options{
		SourceDir: cfg.Shaders.SourceDir,
		OutputDir: cfg.OutputDir(),
		Kinds:     kinds,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	for _, job := range jobs {
		fmt.Fprintf(stdout, "%-6s %s\n", job.Kind, job)
	}
	fmt.Fprintf(stderr, "\n(%d shaders)\n", len(jobs))
	return exitOK
}

func cmdWatch(ctx context.Context, cfg *config.Config, stdout io.Writer) int {
	d, err := newDriver(cfg, stdout)
	if err != nil {
		logger.Error("cannot set up build", zap.Error(err))
		return exitSetup
	}

	w := watch.New(cfg.Shaders.SourceDir, cfg.Build.WatchDebounce)
	err = w.Run(ctx, func(ctx context.Context) error {
		report, err := d.Run(ctx)
		if err != nil {
			return err
		}
		if n := report.Failed(); n > 0 {
			logger.Warn("some shaders failed to compile", zap.Int("failed", n))
		}
		return nil
	})
	if err != nil {
		logger.Error("watch stopped", zap.Error(err))
		return exitSetup
	}
	return exitOK
}

// cmdInit writes the effective config, refusing to replace an existing file.
func cmdInit(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	path := "./" + config.FileName
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stderr, "Refusing to overwrite existing %s\n", path)
		return exitSetup
	} else if !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitSetup
	}

	if err := cfg.SaveTo(path); err != nil {
		fmt.Fprintf(stderr, "Error writing config: %v\n", err)
		return exitSetup
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return exitOK
}
