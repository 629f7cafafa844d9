package compiler

import (
	"fmt"
	"strings"
)

// FailureKind tells why a compile did not produce output.
type FailureKind uint8

const (
	// LaunchFailure means the compiler process could not be started,
	// typically because the binary is not on PATH.
	LaunchFailure FailureKind = iota + 1
	// ExitFailure means the compiler ran and exited with a non-zero status.
	ExitFailure
)

func (k FailureKind) String() string {
	switch k {
	case LaunchFailure:
		return "launch failure"
	case ExitFailure:
		return "exit failure"
	default:
		return fmt.Sprintf("FailureKind(%d)", uint8(k))
	}
}

// CompileError describes a failed compile of a single source file.
type CompileError struct {
	Kind     FailureKind
	Source   string
	ExitCode int    // -1 for launch failures
	Output   string // combined stdout/stderr of the compiler, all lines
	Err      error
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case ExitFailure:
		if first := e.FirstLine(); first != "" {
			return fmt.Sprintf("compiler exited with status %d: %s", e.ExitCode, first)
		}
		return fmt.Sprintf("compiler exited with status %d", e.ExitCode)
	default:
		return fmt.Sprintf("cannot launch compiler: %v", e.Err)
	}
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// FirstLine returns the first non-empty line of the compiler output.
// glslc puts the first diagnostic there.
func (e *CompileError) FirstLine() string {
	for _, line := range strings.Split(e.Output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
