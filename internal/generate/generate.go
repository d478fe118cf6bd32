// Package generate orchestrates one full run: load and normalize the
// description, probe media, build the entity graph, serialize the document,
// and write the diagnostics report.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"hroxgen/internal/deps"
	"hroxgen/internal/document"
	"hroxgen/internal/fileutil"
	"hroxgen/internal/hieroxml"
	"hroxgen/internal/identity"
	"hroxgen/internal/logging"
	"hroxgen/internal/probe"
	"hroxgen/internal/report"
	"hroxgen/internal/timeline"
)

// Options carries everything one run needs, resolved from config and flags by
// the caller.
type Options struct {
	InputPath  string
	OutputPath string
	ReportPath string

	Strict bool
	DryRun bool

	Backend          string
	RelativePaths    bool
	PathBase         string
	ProjectDirectory string
	TargetRelease    string
	TargetVersion    string

	FFprobeBinary string
	ProbeTimeout  time.Duration
	Workers       int
	CacheEnabled  bool
	CachePath     string

	Logger *slog.Logger
}

// Result summarizes a finished run. Report is always populated, also when the
// run failed; Written reports whether the document reached disk.
type Result struct {
	Report     *report.Report
	OutputPath string
	Written    bool
}

// Run executes the pipeline. A fatal condition aborts before the document is
// written but still flushes the report when a report path was requested; the
// returned error carries the fatal cause.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	rep := report.New()
	result := &Result{Report: rep, OutputPath: opts.OutputPath}

	err := run(ctx, opts, logger, rep, result)
	if err != nil {
		if flushErr := flushReport(rep, opts.ReportPath); flushErr != nil {
			logger.Warn("report write failed", logging.Error(flushErr))
		}
		return result, err
	}
	if flushErr := flushReport(rep, opts.ReportPath); flushErr != nil {
		return result, flushErr
	}
	return result, nil
}

func run(ctx context.Context, opts Options, logger *slog.Logger, rep *report.Report, result *Result) error {
	input, err := timeline.Load(opts.InputPath)
	if err != nil {
		rep.Fatal(report.StageSchema, opts.InputPath, "%v", err)
		return err
	}

	desc, violations := input.Normalize()
	for _, violation := range violations {
		if violation.Fatal {
			rep.Fatal(report.StageSchema, violation.Field, "%s", violation.Message)
		} else {
			rep.Info(report.StageSchema, violation.Field, "%s", violation.Message)
		}
	}
	if desc == nil {
		return report.Wrap(report.ErrSchema, report.StageSchema, opts.InputPath,
			fmt.Sprintf("%d fatal validation errors", len(timeline.FatalViolations(violations))), nil)
	}

	logger.Info("description normalized",
		logging.String("project", desc.Project.Name),
		logging.Int("tracks", len(desc.Tracks)),
		logging.Int("clips", len(desc.Clips)))

	var cache *probe.Cache
	if opts.CacheEnabled && opts.CachePath != "" {
		cache, err = probe.OpenCache(opts.CachePath)
		if err != nil {
			logger.Warn("duration cache unavailable", logging.Error(err))
		} else {
			defer func() {
				_ = cache.Close()
			}()
		}
	}

	prober := probe.New(probe.Options{
		Binary:  deps.ResolveFFprobe(opts.FFprobeBinary),
		Timeout: opts.ProbeTimeout,
		Workers: opts.Workers,
		Cache:   cache,
		Logger:  logger,
	})
	media, err := prober.Resolve(ctx, desc.Clips, rep)
	if err != nil {
		rep.Fatal(report.StageProbe, "", "probe interrupted: %v", err)
		return err
	}

	for _, m := range media {
		if m.Exists {
			continue
		}
		missing := report.Wrap(report.ErrMissingMedia, report.StageProbe, m.Path, "file not found", nil)
		if !report.Fatal(missing, opts.Strict) {
			continue
		}
		rep.Fatal(report.StageProbe, m.Path, "file not found (strict mode)")
		return missing
	}

	graph, err := document.Build(desc, media, identity.NewRegistry(), rep, document.Options{
		RelativePaths: opts.RelativePaths,
		PathBase:      opts.PathBase,
		OutputPath:    opts.OutputPath,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	data, err := hieroxml.Render(graph, opts.Backend, hieroxml.Options{
		ProjectDirectory: opts.ProjectDirectory,
		TargetRelease:    opts.TargetRelease,
		TargetVersion:    opts.TargetVersion,
	})
	if err != nil {
		rep.Fatal(report.StageSerialize, opts.Backend, "%v", err)
		return report.Wrap(report.ErrSerialize, report.StageSerialize, opts.Backend, "render document", err)
	}

	if opts.DryRun {
		logger.Info("dry run, skipping document write",
			logging.String("output", opts.OutputPath),
			logging.Int("bytes", len(data)))
		return nil
	}

	if err := writeDocument(ctx, opts.OutputPath, data); err != nil {
		rep.Fatal(report.StageIO, opts.OutputPath, "%v", err)
		return report.Wrap(report.ErrIO, report.StageIO, opts.OutputPath, "write document", err)
	}
	result.Written = true
	logger.Info("document written",
		logging.String("output", opts.OutputPath),
		logging.Int("bytes", len(data)))
	return nil
}

// writeDocument takes an advisory lock beside the output path so concurrent
// runs against the same document serialize, then writes atomically.
func writeDocument(ctx context.Context, path string, data []byte) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return fmt.Errorf("output %s is locked by another run", path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return fileutil.WriteFileAtomic(path, data, 0o644)
}

func flushReport(rep *report.Report, path string) error {
	if path == "" {
		return nil
	}
	return rep.WriteFile(path)
}
