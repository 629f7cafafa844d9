package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shaderbuild/internal/compiler"
	"github.com/Faultbox/shaderbuild/internal/logger"
	"github.com/Faultbox/shaderbuild/pkg/shader"
)

// Compiler compiles a single job, blocking until it finishes.
type Compiler interface {
	Compile(ctx context.Context, job shader.Job) error
}

// Result is the outcome of one compile job.
type Result struct {
	Job shader.Job
	Err error
}

// Report collects the results of a build pass in job order.
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Compiled returns the number of jobs that succeeded.
func (r *Report) Compiled() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of jobs that failed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Compiled()
}

// Err joins every job failure, or returns nil when all jobs compiled.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job.Source, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Driver runs a full build pass: discover, then compile each job in turn.
type Driver struct {
	Options  Options
	Compiler Compiler
	Console  io.Writer // per-file result lines; nil discards them
}

// NewDriver returns a Driver writing result lines to console.
func NewDriver(opts Options, c Compiler, console io.Writer) *Driver {
	return &Driver{
		Options:  opts,
		Compiler: c,
		Console:  console,
	}
}

// Run ensures the output directory exists and compiles every discovered
// source sequentially. A failed compile is reported and the pass continues.
// The returned error covers setup failures and cancellation; on cancellation
// the partial report is returned with an error wrapping ctx.Err().
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	log := logger.Named("build")

	if err := EnsureOutputDir(d.Options.outputDir()); err != nil {
		return nil, err
	}

	jobs, err := Discover(d.Options)
	if err != nil {
		return nil, err
	}
	log.Debug("discovered shaders",
		zap.String("source_dir", d.Options.SourceDir),
		zap.Int("count", len(jobs)),
	)

	report := &Report{Results: make([]Result, 0, len(jobs))}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return d.interrupted(report, start, len(jobs), err)
		}

		err := d.Compiler.Compile(ctx, job)
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			return d.interrupted(report, start, len(jobs), ctxErr)
		}
		report.Results = append(report.Results, Result{Job: job, Err: err})

		if err != nil {
			d.printf("Error compiling %s: %v\n", job.Source, err)
			fields := []zap.Field{zap.String("source", job.Source), zap.Error(err)}
			var cerr *compiler.CompileError
			if errors.As(err, &cerr) {
				fields = append(fields,
					zap.Stringer("failure", cerr.Kind),
					zap.Int("exit_code", cerr.ExitCode),
					zap.String("output", cerr.Output),
				)
			}
			log.Warn("compile failed", fields...)
			continue
		}
		d.printf("Compiled: %s -> %s\n", job.Source, job.Output)
	}

	report.Duration = time.Since(start)
	log.Info("build finished",
		zap.Int("compiled", report.Compiled()),
		zap.Int("failed", report.Failed()),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

func (d *Driver) interrupted(report *Report, start time.Time, total int, err error) (*Report, error) {
	report.Duration = time.Since(start)
	logger.Named("build").Warn("build interrupted",
		zap.Int("done", len(report.Results)),
		zap.Int("total", total),
	)
	return report, fmt.Errorf("build interrupted: %w", err)
}

func (d *Driver) printf(format string, args ...any) {
	if d.Console != nil {
		fmt.Fprintf(d.Console, format, args...)
	}
}
