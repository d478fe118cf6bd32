package timeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TrackKind distinguishes video and audio tracks.
type TrackKind string

const (
	KindVideo TrackKind = "video"
	KindAudio TrackKind = "audio"
)

const (
	defaultViewerLUT  = "ACES/Rec.709"
	defaultOCIOConfig = "aces_1.2"
)

// Project holds the normalized, immutable project settings.
type Project struct {
	Name          string
	Framerate     Ratio
	Samplerate    Ratio
	TimecodeStart int64
	ViewerLUT     string
	OCIOConfig    string
}

// Track is a normalized track declaration. Order in the Description slice is
// declaration order.
type Track struct {
	Name string
	Kind TrackKind
}

// Clip is a normalized clip entry. File is the resolved absolute path;
// RawFile preserves the caller's spelling for messages.
type Clip struct {
	File             string
	RawFile          string
	Track            string
	TimelineIn       *int64
	TimelineDuration *int64
	SourceIn         *int64
	SourceDuration   *int64
	Name             string
}

// Description is the validated, normalized timeline description.
type Description struct {
	Project Project
	Tracks  []Track
	Clips   []Clip
}

// Violation describes one normalization finding. Fatal violations stop the
// pipeline; advisory ones record an applied default.
type Violation struct {
	Field   string
	Message string
	Fatal   bool
}

func (v Violation) String() string {
	field := v.Field
	if field == "" {
		field = "<root>"
	}
	return field + ": " + v.Message
}

// FatalViolations filters vs down to the fatal ones.
func FatalViolations(vs []Violation) []Violation {
	out := make([]Violation, 0, len(vs))
	for _, v := range vs {
		if v.Fatal {
			out = append(out, v)
		}
	}
	return out
}

// Normalize validates the raw input and produces the typed description. The
// returned Description is nil when any fatal violation is present.
func (in *Input) Normalize() (*Description, []Violation) {
	var violations []Violation
	fatal := func(field, format string, args ...any) {
		violations = append(violations, Violation{Field: field, Message: fmt.Sprintf(format, args...), Fatal: true})
	}
	advisory := func(field, format string, args ...any) {
		violations = append(violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	project := Project{
		Name:       strings.TrimSpace(in.Project.Name),
		ViewerLUT:  strings.TrimSpace(in.Project.ViewerLUT),
		OCIOConfig: strings.TrimSpace(in.Project.OCIOConfig),
	}
	if project.Name == "" {
		fatal("project.name", "project name is required")
	}
	if rate, err := ParseRatio(in.Project.Framerate); err != nil {
		fatal("project.framerate", "framerate %v", err)
	} else {
		project.Framerate = rate
	}
	if rate, err := ParseRatio(in.Project.Samplerate); err != nil {
		fatal("project.samplerate", "samplerate %v", err)
	} else {
		project.Samplerate = rate
	}
	switch {
	case in.Project.TimecodeStart == nil:
		fatal("project.timecodeStart", "starting timecode is required")
	case *in.Project.TimecodeStart < 0:
		fatal("project.timecodeStart", "starting timecode %d must not be negative", *in.Project.TimecodeStart)
	default:
		project.TimecodeStart = *in.Project.TimecodeStart
	}
	if project.ViewerLUT == "" {
		project.ViewerLUT = defaultViewerLUT
	}
	if project.OCIOConfig == "" {
		project.OCIOConfig = defaultOCIOConfig
	}

	tracks := make([]Track, 0, len(in.Tracks))
	if len(in.Tracks) == 0 {
		fatal("tracks", "at least one track is required")
	}
	seen := make(map[string]bool, len(in.Tracks))
	for i, raw := range in.Tracks {
		field := fmt.Sprintf("tracks[%d]", i)
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			fatal(field+".name", "track name is required")
			continue
		}
		kind := TrackKind(strings.ToLower(strings.TrimSpace(raw.Kind)))
		switch kind {
		case KindVideo, KindAudio:
		case "":
			kind = KindVideo
			advisory(field+".kind", "track %q kind omitted, defaulting to video", name)
		default:
			fatal(field+".kind", "track kind %q must be video or audio", raw.Kind)
			continue
		}
		key := string(kind) + "/" + name
		if seen[key] {
			fatal(field+".name", "duplicate %s track name %q", kind, name)
			continue
		}
		seen[key] = true
		tracks = append(tracks, Track{Name: name, Kind: kind})
	}

	known := make(map[string]bool, len(tracks))
	for _, track := range tracks {
		known[track.Name] = true
	}

	clips := make([]Clip, 0, len(in.Clips))
	if len(in.Clips) == 0 {
		fatal("clips", "at least one clip is required")
	}
	for i, raw := range in.Clips {
		field := fmt.Sprintf("clips[%d]", i)
		file := strings.TrimSpace(raw.File)
		if file == "" {
			fatal(field+".file", "clip file path is required")
			continue
		}
		track := strings.TrimSpace(raw.Track)
		if track == "" {
			fatal(field+".track", "clip track reference is required")
			continue
		}
		if !known[track] {
			fatal(field+".track", "clip references unknown track %q", track)
			continue
		}
		if raw.TimelineIn != nil && *raw.TimelineIn < 0 {
			fatal(field+".timelineIn", "timeline in %d must not be negative", *raw.TimelineIn)
			continue
		}
		if raw.TimelineDuration != nil && *raw.TimelineDuration <= 0 {
			fatal(field+".timelineDuration", "timeline duration %d must be positive", *raw.TimelineDuration)
			continue
		}
		if raw.SourceIn != nil && *raw.SourceIn < 0 {
			fatal(field+".sourceIn", "source in %d must not be negative", *raw.SourceIn)
			continue
		}
		if raw.SourceDuration != nil && *raw.SourceDuration <= 0 {
			fatal(field+".sourceDuration", "source duration %d must be positive", *raw.SourceDuration)
			continue
		}
		if raw.TimelineIn == nil {
			advisory(field+".timelineIn", "timeline in omitted for %q, defaulting to the end of the previous clip on track %q", file, track)
		}
		resolved, err := resolvePath(file)
		if err != nil {
			fatal(field+".file", "resolve path %q: %v", file, err)
			continue
		}
		clips = append(clips, Clip{
			File:             resolved,
			RawFile:          file,
			Track:            track,
			TimelineIn:       raw.TimelineIn,
			TimelineDuration: raw.TimelineDuration,
			SourceIn:         raw.SourceIn,
			SourceDuration:   raw.SourceDuration,
			Name:             strings.TrimSpace(raw.Name),
		})
	}

	if len(FatalViolations(violations)) > 0 {
		return nil, violations
	}
	return &Description{Project: project, Tracks: tracks, Clips: clips}, violations
}

// resolvePath expands a leading tilde, absolutizes, and follows symlinks when
// the target exists. Existence itself is not checked here.
func resolvePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
			path = filepath.Join(home, path[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(absolute); err == nil {
		return resolved, nil
	}
	return absolute, nil
}

// Stem returns the file name without its extension, used as the default clip
// and source display name.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DisplayName returns the clip's explicit name or the file stem.
func (c Clip) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return Stem(c.File)
}
