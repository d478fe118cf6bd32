package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestAppendPreservesOrderAndCounts(t *testing.T) {
	r := New()
	r.Info(StageSchema, "", "normalized framerate")
	r.Warn(StageProbe, "/media/a.mov", "estimated duration")
	r.Fatal(StageBuild, "clipA", "overlap with clipB")

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Severity != SeverityInfo || entries[2].Severity != SeverityFatal {
		t.Fatalf("entries out of order: %+v", entries)
	}

	counts := r.Counts()
	if counts.Info != 1 || counts.Warning != 1 || counts.Fatal != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if !r.HasFatal() {
		t.Fatal("HasFatal should be true")
	}
}

func TestHasFatalFalseForWarnings(t *testing.T) {
	r := New()
	r.Warn(StageProbe, "x", "warn only")
	if r.HasFatal() {
		t.Fatal("warnings must not count as fatal")
	}
}

func TestConcurrentAppends(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Warn(StageProbe, "p", "concurrent")
		}()
	}
	wg.Wait()
	if got := len(r.Entries()); got != 32 {
		t.Fatalf("expected 32 entries, got %d", got)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	r := New()
	r.Warn(StageProbe, "/media/a.mov", "file not found")
	duration := int64(100)
	r.AddSource(SourceRecord{GUID: "{g1}", Path: "/media/a.mov", Exists: true, Duration: &duration, Method: "measured"})
	r.AddClip(ClipRecord{Name: "a", Track: "pl01", TimelineDuration: 100, SourceGUID: "{g1}", ClipGUID: "{c1}"})

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Entries []Entry        `json:"entries"`
		Summary Summary        `json:"summary"`
		Sources []SourceRecord `json:"sources"`
		Clips   []ClipRecord   `json:"clips"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if payload.Summary.Warning != 1 {
		t.Fatalf("unexpected summary: %+v", payload.Summary)
	}
	if len(payload.Sources) != 1 || payload.Sources[0].GUID != "{g1}" {
		t.Fatalf("sources not round-tripped: %+v", payload.Sources)
	}
	if len(payload.Clips) != 1 || payload.Clips[0].SourceGUID != "{g1}" {
		t.Fatalf("clips not round-tripped: %+v", payload.Clips)
	}
}

func TestEmptyReportMarshalsArrays(t *testing.T) {
	data, err := New().MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if string(payload["entries"]) == "null" {
		t.Fatal("entries must marshal as an array, not null")
	}
}

func TestWrapTagsSentinel(t *testing.T) {
	err := Wrap(ErrOverlap, StageBuild, "clipA", "collides with clipB", nil)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap tag, got %v", err)
	}
	wrapped := Wrap(ErrProbe, StageProbe, "/m.mov", "timeout", errors.New("context deadline exceeded"))
	if !errors.Is(wrapped, ErrProbe) {
		t.Fatalf("expected ErrProbe tag, got %v", wrapped)
	}
}

func TestFatalClassification(t *testing.T) {
	cases := []struct {
		err    error
		strict bool
		want   bool
	}{
		{Wrap(ErrSchema, StageSchema, "", "bad framerate", nil), false, true},
		{Wrap(ErrOverlap, StageBuild, "", "", nil), false, true},
		{Wrap(ErrGraph, StageBuild, "", "", nil), false, true},
		{Wrap(ErrSerialize, StageSerialize, "", "", nil), false, true},
		{Wrap(ErrIO, StageIO, "", "", nil), false, true},
		{Wrap(ErrMissingMedia, StageProbe, "", "", nil), false, false},
		{Wrap(ErrMissingMedia, StageProbe, "", "", nil), true, true},
		{Wrap(ErrProbe, StageProbe, "", "", nil), true, false},
		{nil, true, false},
	}
	for i, tc := range cases {
		if got := Fatal(tc.err, tc.strict); got != tc.want {
			t.Fatalf("case %d: Fatal(%v, strict=%v) = %v, want %v", i, tc.err, tc.strict, got, tc.want)
		}
	}
}
