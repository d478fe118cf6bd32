package timeline

import (
	"encoding/json"
	"fmt"
	"os"

	"hroxgen/internal/report"
)

// Input mirrors the raw JSON description before normalization. Unknown fields
// are ignored; optional integer fields use pointers so "absent" and "zero"
// stay distinguishable.
type Input struct {
	Project InputProject `json:"project"`
	Tracks  []InputTrack `json:"tracks"`
	Clips   []InputClip  `json:"clips"`
}

// InputProject is the raw project section. Framerate and Samplerate accept
// both string and numeric JSON forms.
type InputProject struct {
	Name          string `json:"name"`
	Framerate     any    `json:"framerate"`
	Samplerate    any    `json:"samplerate"`
	TimecodeStart *int64 `json:"timecodeStart"`
	ViewerLUT     string `json:"viewerLut"`
	OCIOConfig    string `json:"ocioConfigName"`
}

// InputTrack is the raw track section entry.
type InputTrack struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// InputClip is the raw clip section entry.
type InputClip struct {
	File             string `json:"file"`
	Track            string `json:"track"`
	TimelineIn       *int64 `json:"timelineIn"`
	TimelineDuration *int64 `json:"timelineDuration"`
	SourceIn         *int64 `json:"sourceIn"`
	SourceDuration   *int64 `json:"sourceDuration"`
	Name             string `json:"name"`
}

// Load reads and parses the description at path.
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, report.Wrap(report.ErrIO, report.StageSchema, path, "read input description", err)
	}
	return Parse(data)
}

// Parse decodes a raw description. Syntactic failures are schema errors.
func Parse(data []byte) (*Input, error) {
	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, report.Wrap(report.ErrSchema, report.StageSchema, "", fmt.Sprintf("decode input description: %v", err), nil)
	}
	return &input, nil
}
