package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Severity classifies a diagnostic entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Stage names used for report entries. Ordered as the pipeline runs.
const (
	StageSchema    = "schema"
	StageProbe     = "probe"
	StageBuild     = "build"
	StageSerialize = "serialize"
	StageIO        = "io"
)

// Entry is a single diagnostic record.
type Entry struct {
	Stage    string   `json:"stage"`
	Entity   string   `json:"entity,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SourceRecord summarizes a media source for the run report.
type SourceRecord struct {
	GUID     string `json:"guid"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Duration *int64 `json:"duration,omitempty"`
	Method   string `json:"method,omitempty"`
}

// ClipRecord summarizes a clip placement for the run report.
type ClipRecord struct {
	Name             string `json:"name"`
	Track            string `json:"track"`
	TimelineIn       int64  `json:"timeline_in"`
	TimelineDuration int64  `json:"timeline_duration"`
	SourceGUID       string `json:"source_guid"`
	ClipGUID         string `json:"clip_guid"`
}

// Summary holds run-level counts per severity.
type Summary struct {
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Fatal   int `json:"fatal"`
}

// Report accumulates diagnostics from every stage of one generation run.
// Appends are safe for concurrent use; probe workers report in parallel.
type Report struct {
	mu      sync.Mutex
	entries []Entry
	sources []SourceRecord
	clips   []ClipRecord
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// Append adds a diagnostic entry.
func (r *Report) Append(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Info records an informational entry.
func (r *Report) Info(stage, entity, format string, args ...any) {
	r.Append(Entry{Stage: stage, Entity: entity, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)})
}

// Warn records a warning entry.
func (r *Report) Warn(stage, entity, format string, args ...any) {
	r.Append(Entry{Stage: stage, Entity: entity, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Fatal records a fatal entry.
func (r *Report) Fatal(stage, entity, format string, args ...any) {
	r.Append(Entry{Stage: stage, Entity: entity, Severity: SeverityFatal, Message: fmt.Sprintf(format, args...)})
}

// AddSource records a media source summary.
func (r *Report) AddSource(rec SourceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, rec)
}

// AddClip records a clip placement summary.
func (r *Report) AddClip(rec ClipRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clips = append(r.clips, rec)
}

// Entries returns a copy of the accumulated diagnostics in append order.
func (r *Report) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Sources returns a copy of the recorded source summaries.
func (r *Report) Sources() []SourceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SourceRecord, len(r.sources))
	copy(out, r.sources)
	return out
}

// Clips returns a copy of the recorded clip summaries.
func (r *Report) Clips() []ClipRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ClipRecord, len(r.clips))
	copy(out, r.clips)
	return out
}

// HasFatal reports whether any fatal entry was recorded.
func (r *Report) HasFatal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Counts returns run-level summary counts per severity.
func (r *Report) Counts() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	var summary Summary
	for _, entry := range r.entries {
		switch entry.Severity {
		case SeverityInfo:
			summary.Info++
		case SeverityWarning:
			summary.Warning++
		case SeverityFatal:
			summary.Fatal++
		}
	}
	return summary
}

type reportPayload struct {
	Entries []Entry        `json:"entries"`
	Summary Summary        `json:"summary"`
	Sources []SourceRecord `json:"sources"`
	Clips   []ClipRecord   `json:"clips"`
}

// MarshalJSON renders the report as one structured document.
func (r *Report) MarshalJSON() ([]byte, error) {
	payload := reportPayload{
		Entries: r.Entries(),
		Summary: r.Counts(),
		Sources: r.Sources(),
		Clips:   r.Clips(),
	}
	if payload.Entries == nil {
		payload.Entries = []Entry{}
	}
	if payload.Sources == nil {
		payload.Sources = []SourceRecord{}
	}
	if payload.Clips == nil {
		payload.Clips = []ClipRecord{}
	}
	return json.MarshalIndent(payload, "", "  ")
}

// WriteFile writes the JSON report to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return Wrap(ErrIO, StageIO, path, "encode report", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Wrap(ErrIO, StageIO, path, "ensure report directory", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return Wrap(ErrIO, StageIO, path, "write report", err)
	}
	return nil
}
