package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hroxgen/internal/report"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// declaredInput builds a description whose clips all carry explicit source
// durations so runs never shell out to ffprobe.
func declaredInput(t *testing.T, dir string, clips string) string {
	t.Helper()
	input := filepath.Join(dir, "input.json")
	writeFile(t, input, fmt.Sprintf(`{
		"project": {"name": "demo", "framerate": "25", "samplerate": "48000", "timecodeStart": 86400},
		"tracks": [{"name": "pl01", "kind": "video"}],
		"clips": [%s]
	}`, clips))
	return input
}

func TestRunWritesDocumentAndReport(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "plate.mov")
	writeFile(t, mediaPath, "stub")

	clip := fmt.Sprintf(`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 100}`, mediaPath)
	opts := Options{
		InputPath:  declaredInput(t, dir, clip),
		OutputPath: filepath.Join(dir, "out", "timeline.hrox"),
		ReportPath: filepath.Join(dir, "out", "report.json"),
	}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Written {
		t.Fatal("document must be written")
	}

	data, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "<!DOCTYPE hieroXML>") {
		t.Fatal("document missing DOCTYPE")
	}
	if !strings.Contains(text, `duration="100"`) {
		t.Fatal("document missing resolved source duration")
	}

	reportData, err := os.ReadFile(opts.ReportPath)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Summary report.Summary `json:"summary"`
		Sources []struct {
			Exists bool   `json:"exists"`
			Method string `json:"method"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(reportData, &payload); err != nil {
		t.Fatalf("report not valid JSON: %v", err)
	}
	if payload.Summary.Fatal != 0 || payload.Summary.Warning != 0 {
		t.Fatalf("expected clean run, got %+v", payload.Summary)
	}
	if len(payload.Sources) != 1 || !payload.Sources[0].Exists || payload.Sources[0].Method != "declared" {
		t.Fatalf("source inventory wrong: %+v", payload.Sources)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "plate.mov")
	writeFile(t, mediaPath, "stub")

	clip := fmt.Sprintf(`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 10}`, mediaPath)
	opts := Options{
		InputPath:  declaredInput(t, dir, clip),
		OutputPath: filepath.Join(dir, "timeline.hrox"),
		DryRun:     true,
	}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Written {
		t.Fatal("dry run must not write")
	}
	if _, err := os.Stat(opts.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output must not exist: %v", err)
	}
}

func TestRunSchemaFatalStillWritesReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	writeFile(t, input, `{"project": {"name": ""}, "tracks": [], "clips": []}`)

	opts := Options{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "timeline.hrox"),
		ReportPath: filepath.Join(dir, "report.json"),
	}

	result, err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("fatal schema violations must fail the run")
	}
	if !errors.Is(err, report.ErrSchema) {
		t.Fatalf("expected schema marker, got %v", err)
	}
	if result.Written {
		t.Fatal("no document on fatal runs")
	}
	if _, statErr := os.Stat(opts.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("document must not be written on fatal runs")
	}
	if _, statErr := os.Stat(opts.ReportPath); statErr != nil {
		t.Fatalf("report must still be written: %v", statErr)
	}
	if !result.Report.HasFatal() {
		t.Fatal("report must record the fatal cause")
	}
}

func TestRunStrictMissingMedia(t *testing.T) {
	dir := t.TempDir()
	clip := fmt.Sprintf(`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 20}`,
		filepath.Join(dir, "gone.mov"))
	opts := Options{
		InputPath:  declaredInput(t, dir, clip),
		OutputPath: filepath.Join(dir, "timeline.hrox"),
		Strict:     true,
	}

	_, err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("strict mode must reject missing media")
	}
	if !errors.Is(err, report.ErrMissingMedia) {
		t.Fatalf("expected missing media marker, got %v", err)
	}
}

func TestRunNonStrictMissingMediaSucceedsWithWarnings(t *testing.T) {
	dir := t.TempDir()
	clip := fmt.Sprintf(`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 20}`,
		filepath.Join(dir, "gone.mov"))
	opts := Options{
		InputPath:  declaredInput(t, dir, clip),
		OutputPath: filepath.Join(dir, "timeline.hrox"),
	}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Written {
		t.Fatal("non-strict runs keep writing the document")
	}
	if result.Report.Counts().Warning == 0 {
		t.Fatal("missing media must be warned about")
	}

	data, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "MISSING:") {
		t.Fatal("placeholder source must carry the MISSING: prefix")
	}
}

func TestRunOverlapFatal(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "plate.mov")
	writeFile(t, mediaPath, "stub")

	clips := fmt.Sprintf(
		`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 50, "name": "first"},
		 {"file": %q, "track": "pl01", "timelineIn": 10, "sourceDuration": 50, "name": "second"}`,
		mediaPath, mediaPath)
	opts := Options{
		InputPath:  declaredInput(t, dir, clips),
		OutputPath: filepath.Join(dir, "timeline.hrox"),
		ReportPath: filepath.Join(dir, "report.json"),
	}

	result, err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("overlap must fail the run")
	}
	if !errors.Is(err, report.ErrOverlap) {
		t.Fatalf("expected overlap marker, got %v", err)
	}
	if result.Written {
		t.Fatal("no document on overlap")
	}
	if _, statErr := os.Stat(opts.ReportPath); statErr != nil {
		t.Fatalf("report must still be written: %v", statErr)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "plate.mov")
	writeFile(t, mediaPath, "stub")

	clip := fmt.Sprintf(`{"file": %q, "track": "pl01", "timelineIn": 0, "sourceDuration": 10}`, mediaPath)
	opts := Options{
		InputPath:  declaredInput(t, dir, clip),
		OutputPath: filepath.Join(dir, "timeline.hrox"),
		Backend:    "carrier-pigeon",
	}

	_, err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("unknown backend must fail")
	}
	if !errors.Is(err, report.ErrSerialize) {
		t.Fatalf("expected serialize marker, got %v", err)
	}
	if errors.Is(err, report.ErrIO) {
		t.Fatal("backend selection failure is not an io error")
	}
}
