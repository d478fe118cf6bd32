package probe

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"hroxgen/internal/logging"
	"hroxgen/internal/media/ffprobe"
	"hroxgen/internal/report"
	"hroxgen/internal/timeline"
)

// Method records where a frame count came from.
type Method string

const (
	// MethodDeclared means the input description supplied the duration.
	MethodDeclared Method = "declared"
	// MethodMeasured means ffprobe counted frames directly.
	MethodMeasured Method = "measured"
	// MethodEstimated means container duration times average frame rate.
	MethodEstimated Method = "estimated"
	// MethodUnavailable means no duration could be resolved.
	MethodUnavailable Method = "unavailable"
)

// Media is the resolved entity for one distinct source path.
type Media struct {
	Path        string
	Name        string
	Exists      bool
	Frames      int64
	FramesKnown bool
	Method      Method
	Meta        Metadata
}

// inspect is swapped in tests so probing never shells out.
var inspect = ffprobe.Inspect

// Prober resolves durations for the distinct media paths in a description.
type Prober struct {
	binary  string
	timeout time.Duration
	workers int
	cache   *Cache
	logger  *slog.Logger
}

// Options configures a Prober.
type Options struct {
	Binary  string
	Timeout time.Duration
	Workers int
	Cache   *Cache
	Logger  *slog.Logger
}

// New constructs a Prober. A nil cache disables duration caching.
func New(opts Options) *Prober {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{
		binary:  opts.Binary,
		timeout: timeout,
		workers: workers,
		cache:   opts.Cache,
		logger:  logging.NewComponentLogger(opts.Logger, "prober"),
	}
}

type job struct {
	index    int
	path     string
	name     string
	declared *int64
}

// Resolve produces one Media per distinct normalized path in first-reference
// order. Probes run concurrently over the worker pool; results are collected
// by index so ordering never depends on completion time. Diagnostics go to
// rep; the only error returned is context cancellation.
func (p *Prober) Resolve(ctx context.Context, clips []timeline.Clip, rep *report.Report) ([]*Media, error) {
	jobs := p.collectJobs(clips)
	results := make([]*Media, len(jobs))

	queue := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results[j.index] = p.probeOne(ctx, j, rep)
			}
		}()
	}

	for _, j := range jobs {
		select {
		case queue <- j:
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// collectJobs deduplicates clips by normalized path, keeping first-reference
// order. The first clip to declare an explicit source duration wins for that
// path.
func (p *Prober) collectJobs(clips []timeline.Clip) []job {
	jobs := make([]job, 0, len(clips))
	byPath := make(map[string]int, len(clips))
	for _, clip := range clips {
		if idx, seen := byPath[clip.File]; seen {
			if jobs[idx].declared == nil && clip.SourceDuration != nil {
				jobs[idx].declared = clip.SourceDuration
			}
			continue
		}
		byPath[clip.File] = len(jobs)
		jobs = append(jobs, job{
			index:    len(jobs),
			path:     clip.File,
			name:     clip.DisplayName(),
			declared: clip.SourceDuration,
		})
	}
	return jobs
}

func (p *Prober) probeOne(ctx context.Context, j job, rep *report.Report) *Media {
	media := &Media{
		Path:   j.path,
		Name:   j.name,
		Method: MethodUnavailable,
		Meta:   DefaultMetadata(j.path),
	}

	_, statErr := os.Stat(j.path)
	media.Exists = statErr == nil

	if !media.Exists {
		rep.Warn(report.StageProbe, j.path, "file not found")
		p.logger.Warn("media file not found", logging.String(logging.FieldSourcePath, j.path))
	}

	if j.declared != nil {
		media.Frames = *j.declared
		media.FramesKnown = true
		media.Method = MethodDeclared
		return media
	}

	if !media.Exists {
		rep.Warn(report.StageProbe, j.path, "duration unavailable for missing file")
		return media
	}

	if frames, method, ok := p.cacheLookup(ctx, j.path); ok {
		media.Frames = frames
		media.FramesKnown = true
		media.Method = method
		rep.Info(report.StageProbe, j.path, "duration %d served from cache (%s)", frames, method)
		return media
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := inspect(probeCtx, p.binary, j.path)
	if err != nil {
		rep.Warn(report.StageProbe, j.path, "ffprobe failed: %v", err)
		p.logger.Warn("probe failed",
			logging.String(logging.FieldSourcePath, j.path),
			logging.Error(err))
		return media
	}

	media.Meta.applyResult(result)

	if stream, ok := result.VideoStream(); ok {
		if frames, ok := stream.FrameCount(); ok {
			media.Frames = frames
			media.FramesKnown = true
			media.Method = MethodMeasured
			p.cacheStore(ctx, j.path, frames, MethodMeasured)
			return media
		}
	}

	if frames, ok := estimateFrames(result); ok {
		media.Frames = frames
		media.FramesKnown = true
		media.Method = MethodEstimated
		rep.Warn(report.StageProbe, j.path, "duration estimated from container duration and frame rate (%d frames)", frames)
		p.cacheStore(ctx, j.path, frames, MethodEstimated)
		return media
	}

	rep.Warn(report.StageProbe, j.path, "ffprobe could not determine duration")
	return media
}

func (p *Prober) cacheLookup(ctx context.Context, path string) (int64, Method, bool) {
	if p.cache == nil {
		return 0, "", false
	}
	size, mtime, ok := statIdentity(path)
	if !ok {
		return 0, "", false
	}
	frames, method, hit, err := p.cache.Lookup(ctx, path, size, mtime)
	if err != nil {
		p.logger.Warn("duration cache lookup failed",
			logging.String(logging.FieldSourcePath, path),
			logging.Error(err))
		return 0, "", false
	}
	return frames, method, hit
}

func (p *Prober) cacheStore(ctx context.Context, path string, frames int64, method Method) {
	if p.cache == nil {
		return
	}
	size, mtime, ok := statIdentity(path)
	if !ok {
		return
	}
	if err := p.cache.Store(ctx, path, size, mtime, frames, method); err != nil {
		p.logger.Warn("duration cache store failed",
			logging.String(logging.FieldSourcePath, path),
			logging.Error(err))
	}
}

// estimateFrames derives a frame count from container duration and average
// frame rate, rounded to the nearest integer.
func estimateFrames(result ffprobe.Result) (int64, bool) {
	duration, okD := result.DurationSeconds()
	stream, okS := result.VideoStream()
	if !okD || !okS {
		return 0, false
	}
	rate, okR := stream.FrameRate()
	if !okR {
		return 0, false
	}
	frames := int64(math.Round(duration * rate))
	if frames <= 0 {
		return 0, false
	}
	return frames, true
}
