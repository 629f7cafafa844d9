// Package compiler runs the external glslc compiler on shader compile jobs.
package compiler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/shaderbuild/internal/logger"
	"github.com/Faultbox/shaderbuild/pkg/shader"
)

// Defaults used when no configuration overrides them.
const (
	DefaultBin       = "glslc"
	DefaultTargetSPV = "spv1.6"
)

// Glslc invokes the glslc binary with a fixed argument template.
type Glslc struct {
	Bin       string
	TargetSPV string
	ExtraArgs []string // inserted before -o
	Dir       string   // working directory of the child process
}

// New returns a Glslc for the given binary and SPIR-V target version.
func New(bin, targetSPV string, extraArgs ...string) *Glslc {
	return &Glslc{
		Bin:       bin,
		TargetSPV: targetSPV,
		ExtraArgs: extraArgs,
	}
}

// Args returns the compiler arguments for job:
// <source> --target-spv=<version> [extra...] -o <output>
func (g *Glslc) Args(job shader.Job) []string {
	args := make([]string, 0, 4+len(g.ExtraArgs))
	args = append(args, job.Source, "--target-spv="+g.TargetSPV)
	args = append(args, g.ExtraArgs...)
	args = append(args, "-o", job.Output)
	return args
}

// Compile runs the compiler for job and waits for it to exit.
// A cancelled ctx is returned as ctx.Err(); any other failure is a *CompileError.
func (g *Glslc) Compile(ctx context.Context, job shader.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := g.Args(job)
	cmd := exec.CommandContext(ctx, g.Bin, args...)
	cmd.Dir = g.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Named("glslc").Debug("running compiler",
		zap.String("bin", g.Bin),
		zap.Strings("args", args),
		zap.String("kind", job.Kind.String()),
	)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("compiling %s: %w", job.Source, ctxErr)
	}

	cerr := &CompileError{
		Source: job.Source,
		Output: strings.TrimSpace(out.String()),
		Err:    err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.Kind = ExitFailure
		cerr.ExitCode = exitErr.ExitCode()
	} else {
		cerr.Kind = LaunchFailure
		cerr.ExitCode = -1
	}
	return cerr
}

// Version runs "<bin> --version" and returns the first line of its output.
func (g *Glslc) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, g.Bin, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("running %s --version: %w", g.Bin, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", fmt.Errorf("%s --version printed nothing", g.Bin)
}
