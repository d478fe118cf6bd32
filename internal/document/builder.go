package document

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"hroxgen/internal/identity"
	"hroxgen/internal/logging"
	"hroxgen/internal/probe"
	"hroxgen/internal/report"
	"hroxgen/internal/timeline"
)

// Source is one deduplicated media reference. DisplayPath is the string the
// document carries, after relative-path formatting and the MISSING: prefix
// for absent files.
type Source struct {
	GUID        string
	Path        string
	DisplayPath string
	Name        string
	Exists      bool
	Frames      int64
	FramesKnown bool
	Method      probe.Method
	Meta        probe.Metadata
}

// Placement is one clip laid onto a track, with its paired timeline and
// source track-item identifiers already issued.
type Placement struct {
	GUID             string
	SourceItemGUID   string
	ClipGUID         string
	TimelineLinkGUID string
	SourceLinkGUID   string
	Name             string
	Track            string
	Source           *Source
	TimelineIn       int64
	TimelineDuration int64
	SourceIn         int64
	SourceDuration   int64
	Context          NamingContext
}

// End returns the first frame after the placement.
func (p *Placement) End() int64 {
	return p.TimelineIn + p.TimelineDuration
}

// Track is a declared track with its placements ordered by timeline-in.
type Track struct {
	GUID  string
	Name  string
	Kind  timeline.TrackKind
	Items []*Placement
}

// Graph is the complete entity graph for one run.
type Graph struct {
	Project             timeline.Project
	Sources             []*Source
	Tracks              []*Track
	Naming              NamingContext
	PrimaryTrack        string
	SequenceGUID        string
	SequenceVersionGUID string
	SequenceRootGUID    string

	// IDs stays available to the serializer for per-element identifiers
	// (bins, value sets) that are not part of the graph proper.
	IDs *identity.Registry
}

// Placements returns every placement across all tracks in track order.
func (g *Graph) Placements() []*Placement {
	var out []*Placement
	for _, track := range g.Tracks {
		out = append(out, track.Items...)
	}
	return out
}

// Duration returns the last occupied frame across all tracks.
func (g *Graph) Duration() int64 {
	var max int64
	for _, track := range g.Tracks {
		for _, item := range track.Items {
			if end := item.End(); end > max {
				max = end
			}
		}
	}
	return max
}

// Options controls path emission in the built graph.
type Options struct {
	RelativePaths bool
	PathBase      string
	OutputPath    string
	Logger        *slog.Logger
}

type builder struct {
	desc    *timeline.Description
	byPath  map[string]*probe.Media
	ids     *identity.Registry
	rep     *report.Report
	opts    Options
	logger  *slog.Logger
	sources map[string]*Source
	cursors map[string]int64
}

// Build assembles the entity graph from the normalized description and the
// probe results. Any dangling cross-reference is a fatal GraphError; two
// clips occupying intersecting frame ranges on one track is a fatal
// OverlapError. Both are also recorded on rep before returning.
func Build(desc *timeline.Description, media []*probe.Media, ids *identity.Registry, rep *report.Report, opts Options) (*Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	byPath := make(map[string]*probe.Media, len(media))
	for _, m := range media {
		byPath[m.Path] = m
	}

	b := &builder{
		desc:    desc,
		byPath:  byPath,
		ids:     ids,
		rep:     rep,
		opts:    opts,
		logger:  logger,
		sources: make(map[string]*Source),
		cursors: make(map[string]int64),
	}

	naming := inferNaming(desc)
	graph := &Graph{
		Project:             desc.Project,
		Naming:              naming,
		PrimaryTrack:        primaryTrack(desc, naming),
		SequenceGUID:        ids.Issue(identity.KindSequence),
		SequenceVersionGUID: ids.Issue(identity.KindSequence),
		SequenceRootGUID:    ids.Issue(identity.KindSequence),
		IDs:                 ids,
	}

	byName := make(map[string]*Track, len(desc.Tracks))
	for _, declared := range desc.Tracks {
		track := &Track{
			GUID: b.ids.Issue(identity.KindTrack),
			Name: declared.Name,
			Kind: declared.Kind,
		}
		byName[declared.Name] = track
		graph.Tracks = append(graph.Tracks, track)
	}

	for _, clip := range desc.Clips {
		track, ok := byName[clip.Track]
		if !ok {
			err := &GraphError{Entity: clip.DisplayName(), Message: "references unknown track " + clip.Track}
			rep.Fatal(report.StageBuild, clip.DisplayName(), "%v", err)
			return nil, err
		}

		source, err := b.source(clip, graph)
		if err != nil {
			rep.Fatal(report.StageBuild, clip.DisplayName(), "%v", err)
			return nil, err
		}

		placement := b.place(clip, track, source, naming)
		track.Items = append(track.Items, placement)

		rep.AddClip(report.ClipRecord{
			Name:             placement.Name,
			Track:            track.Name,
			TimelineIn:       placement.TimelineIn,
			TimelineDuration: placement.TimelineDuration,
			SourceGUID:       source.GUID,
			ClipGUID:         placement.ClipGUID,
		})
	}

	for _, track := range graph.Tracks {
		if err := checkOverlaps(track); err != nil {
			rep.Fatal(report.StageBuild, track.Name, "%v", err)
			return nil, err
		}
	}

	b.logger.Info("document graph assembled",
		logging.Int("sources", len(graph.Sources)),
		logging.Int("tracks", len(graph.Tracks)),
		logging.Int64("frames", graph.Duration()))
	return graph, nil
}

// source returns the Source for clip's path, creating it on first reference.
// Dedup runs through the identifier registry: a path whose key already
// resolves reuses its Source, so one file keeps one GUID across the document.
func (b *builder) source(clip timeline.Clip, graph *Graph) (*Source, error) {
	key := "source/" + clip.File
	if existing, err := b.ids.Resolve(key); err == nil {
		return b.sources[existing], nil
	}

	media, ok := b.byPath[clip.File]
	if !ok {
		return nil, &GraphError{Entity: clip.DisplayName(), Message: "no probe result for " + clip.File}
	}

	guid, err := b.ids.IssueAndBind(identity.KindSource, key)
	if err != nil {
		return nil, &GraphError{Entity: clip.DisplayName(), Message: "bind source identifier", Err: err}
	}

	display := formatPath(clip.File, b.opts)
	if !media.Exists {
		display = "MISSING:" + display
	}

	source := &Source{
		GUID:        guid,
		Path:        clip.File,
		DisplayPath: display,
		Name:        clip.DisplayName(),
		Exists:      media.Exists,
		Frames:      media.Frames,
		FramesKnown: media.FramesKnown,
		Method:      media.Method,
		Meta:        media.Meta,
	}
	b.sources[guid] = source
	graph.Sources = append(graph.Sources, source)

	record := report.SourceRecord{
		GUID:   guid,
		Path:   display,
		Exists: media.Exists,
		Method: string(media.Method),
	}
	if media.FramesKnown {
		frames := media.Frames
		record.Duration = &frames
	}
	b.rep.AddSource(record)
	return source, nil
}

// place resolves the timing for one clip. An omitted timeline-in lands the
// clip at the track cursor; explicit values are taken verbatim so the overlap
// scan can reject collisions instead of hiding them.
func (b *builder) place(clip timeline.Clip, track *Track, source *Source, naming NamingContext) *Placement {
	in := b.cursors[track.Name]
	if clip.TimelineIn != nil {
		in = *clip.TimelineIn
	}

	var frames int64
	if source.FramesKnown {
		frames = source.Frames
	}

	timelineDuration := frames
	if clip.TimelineDuration != nil {
		timelineDuration = *clip.TimelineDuration
	}
	var sourceIn int64
	if clip.SourceIn != nil {
		sourceIn = *clip.SourceIn
	}
	sourceDuration := timelineDuration
	if clip.SourceDuration != nil {
		sourceDuration = *clip.SourceDuration
	} else if frames > 0 {
		sourceDuration = frames
	}

	if source.FramesKnown {
		if timelineDuration > frames {
			b.rep.Warn(report.StageBuild, clip.DisplayName(),
				"duration %d exceeds source length %d, clipped", timelineDuration, frames)
			b.logger.Warn("clip duration exceeds source length",
				logging.String(logging.FieldClip, clip.DisplayName()),
				logging.Int64("duration", timelineDuration),
				logging.Int64("source_frames", frames))
			timelineDuration = frames
		}
		if sourceDuration > frames {
			sourceDuration = frames
		}
	}

	if end := in + timelineDuration; end > b.cursors[track.Name] {
		b.cursors[track.Name] = end
	}

	return &Placement{
		GUID:             b.ids.Issue(identity.KindTrackItem),
		SourceItemGUID:   b.ids.Issue(identity.KindTrackItem),
		ClipGUID:         b.ids.Issue(identity.KindClip),
		TimelineLinkGUID: b.ids.Issue(identity.KindLinkGroup),
		SourceLinkGUID:   b.ids.Issue(identity.KindLinkGroup),
		Name:             clip.DisplayName(),
		Track:            track.Name,
		Source:           source,
		TimelineIn:       in,
		TimelineDuration: timelineDuration,
		SourceIn:         sourceIn,
		SourceDuration:   sourceDuration,
		Context:          clipNaming(clip, naming),
	}
}

// checkOverlaps orders the track's placements by timeline-in and verifies the
// occupied frame ranges are disjoint.
func checkOverlaps(track *Track) error {
	sort.SliceStable(track.Items, func(i, j int) bool {
		return track.Items[i].TimelineIn < track.Items[j].TimelineIn
	})
	for i := 1; i < len(track.Items); i++ {
		prev, cur := track.Items[i-1], track.Items[i]
		if prev.End() > cur.TimelineIn {
			return &OverlapError{
				Track:       track.Name,
				FirstClip:   prev.Name,
				SecondClip:  cur.Name,
				FirstEnd:    prev.End(),
				SecondStart: cur.TimelineIn,
			}
		}
	}
	return nil
}

// formatPath renders the document-facing spelling of path. A path base strips
// a common prefix; relative mode rewrites against the output directory.
// Forward slashes throughout.
func formatPath(path string, opts Options) string {
	candidate := path
	if opts.PathBase != "" {
		if rel, err := filepath.Rel(opts.PathBase, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			candidate = rel
		}
	}
	text := filepath.ToSlash(candidate)
	if opts.RelativePaths && opts.OutputPath != "" {
		if rel, err := filepath.Rel(filepath.Dir(opts.OutputPath), path); err == nil {
			text = filepath.ToSlash(rel)
		}
	}
	return text
}
