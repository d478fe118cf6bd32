package document

import (
	"regexp"
	"strings"

	"hroxgen/internal/timeline"
)

// NamingContext carries the episode/scene/shot identifiers inferred from clip
// names. It drives bin layout and the sequence name.
type NamingContext struct {
	Project string
	Episode string
	Scene   string
	Shot    string
	Plate   string
	Version string
}

var namePattern = regexp.MustCompile(
	`(?i)(?P<project>[A-Za-z0-9]+)_(?P<episode>ep\d+)_(?P<scene>sc\d+_[^_/]+)_(?P<shot>sh\d+)_(?P<plate>pl\d+)_(?P<version>v\d+)`)

func matchNaming(text string) (NamingContext, bool) {
	if text == "" {
		return NamingContext{}, false
	}
	match := namePattern.FindStringSubmatch(text)
	if match == nil {
		return NamingContext{}, false
	}
	get := func(name string) string {
		return match[namePattern.SubexpIndex(name)]
	}
	return NamingContext{
		Project: get("project"),
		Episode: get("episode"),
		Scene:   get("scene"),
		Shot:    get("shot"),
		Plate:   get("plate"),
		Version: get("version"),
	}, true
}

func clipCandidates(clip timeline.Clip) []string {
	return []string{
		clip.Name,
		timeline.Stem(clip.File),
		baseName(clip.File),
		strings.ReplaceAll(clip.File, `\`, "/"),
	}
}

func baseName(path string) string {
	normalized := strings.ReplaceAll(path, `\`, "/")
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		return normalized[idx+1:]
	}
	return normalized
}

// inferNaming scans every clip for the shot naming pattern and returns the
// first match, or conservative defaults named after the project.
func inferNaming(desc *timeline.Description) NamingContext {
	for _, clip := range desc.Clips {
		for _, text := range clipCandidates(clip) {
			if ctx, ok := matchNaming(text); ok {
				return ctx
			}
		}
	}
	return NamingContext{
		Project: desc.Project.Name,
		Episode: "ep000",
		Scene:   "sc000_default",
		Shot:    "sh0000",
		Plate:   "pl01",
		Version: "v01",
	}
}

// clipNaming resolves the per-clip context, falling back to the run-level one.
func clipNaming(clip timeline.Clip, base NamingContext) NamingContext {
	for _, text := range clipCandidates(clip) {
		if ctx, ok := matchNaming(text); ok {
			return ctx
		}
	}
	return base
}

// primaryTrack picks the track the sequence is named after: the video track
// matching the inferred plate name, else the first video track, else the
// first track of any kind.
func primaryTrack(desc *timeline.Description, naming NamingContext) string {
	var firstVideo string
	for _, track := range desc.Tracks {
		if track.Kind != timeline.KindVideo {
			continue
		}
		if firstVideo == "" {
			firstVideo = track.Name
		}
		if track.Name == naming.Plate {
			return track.Name
		}
	}
	if firstVideo != "" {
		return firstVideo
	}
	return desc.Tracks[0].Name
}
