package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagSourceDir     = flag.String("src", "", "Shader source directory")
	flagOutputDir     = flag.String("out", "", "Compiled SPIR-V output directory")
	flagBin           = flag.String("glslc", "", "Compiler binary")
	flagTargetSPV     = flag.String("target-spv", "", "SPIR-V target version (e.g. spv1.6)")
	flagAllowFailures = flag.Bool("allow-failures", false, "Exit 0 even when some shaders fail to compile")
)

// ParseArgs parses flags given before and after the subcommand, so both
// "shaderbuild -src x build" and "shaderbuild build -src x" work.
// It returns the subcommand ("" when absent) and its positional arguments.
func ParseArgs(args []string) (command string, rest []string) {
	fs := flag.CommandLine
	fs.Parse(args)
	if fs.NArg() == 0 {
		return "", nil
	}
	command = fs.Arg(0)
	fs.Parse(fs.Args()[1:])
	return command, fs.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSourceDir != "" {
		cfg.Shaders.SourceDir = *flagSourceDir
	}
	if *flagOutputDir != "" {
		cfg.Shaders.OutputDir = *flagOutputDir
	}
	if *flagBin != "" {
		cfg.Compiler.Bin = *flagBin
	}
	if *flagTargetSPV != "" {
		cfg.Compiler.TargetSPV = *flagTargetSPV
	}
	if *flagAllowFailures {
		cfg.Build.AllowFailures = true
	}
}
