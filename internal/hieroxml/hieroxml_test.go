package hieroxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	"hroxgen/internal/document"
	"hroxgen/internal/identity"
	"hroxgen/internal/probe"
	"hroxgen/internal/report"
	"hroxgen/internal/timeline"
)

func testMedia(path string, frames int64) *probe.Media {
	return &probe.Media{
		Path:        path,
		Name:        timeline.Stem(path),
		Exists:      true,
		Frames:      frames,
		FramesKnown: true,
		Method:      probe.MethodMeasured,
		Meta:        probe.DefaultMetadata(path),
	}
}

func testGraph(t *testing.T) *document.Graph {
	t.Helper()
	desc := &timeline.Description{
		Project: timeline.Project{
			Name:          "Prestige",
			Framerate:     timeline.Ratio{Num: 25, Den: 1},
			Samplerate:    timeline.Ratio{Num: 48000, Den: 1},
			TimecodeStart: 86400,
			ViewerLUT:     "ACES/Rec.709",
			OCIOConfig:    "aces_1.2",
		},
		Tracks: []timeline.Track{{Name: "pl01", Kind: timeline.KindVideo}},
		Clips: []timeline.Clip{
			{File: "/footage/Prestige_ep008_sc111_face_sh0010_pl01_v01.mov", Track: "pl01"},
			{File: "/footage/Prestige_ep008_sc111_face_sh0030_pl01_v01.mov", Track: "pl01"},
		},
	}
	media := []*probe.Media{
		testMedia("/footage/Prestige_ep008_sc111_face_sh0010_pl01_v01.mov", 100),
		testMedia("/footage/Prestige_ep008_sc111_face_sh0030_pl01_v01.mov", 80),
	}
	graph, err := document.Build(desc, media, identity.NewRegistry(), report.New(), document.Options{})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return graph
}

// parsedToken is one structural event: element open with ordered attributes,
// character data, or element close.
type parsedToken struct {
	Kind  string
	Name  string
	Attrs []Attr
	Text  string
}

func parseStructure(t *testing.T, data []byte) []parsedToken {
	t.Helper()
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var tokens []parsedToken
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return tokens
		}
		if err != nil {
			t.Fatalf("parse rendered document: %v", err)
		}
		switch tk := token.(type) {
		case xml.StartElement:
			attrs := make([]Attr, 0, len(tk.Attr))
			for _, at := range tk.Attr {
				attrs = append(attrs, Attr{Key: at.Name.Local, Value: at.Value})
			}
			tokens = append(tokens, parsedToken{Kind: "start", Name: tk.Name.Local, Attrs: attrs})
		case xml.EndElement:
			tokens = append(tokens, parsedToken{Kind: "end", Name: tk.Name.Local})
		case xml.CharData:
			text := strings.TrimSpace(string(tk))
			if text != "" {
				tokens = append(tokens, parsedToken{Kind: "text", Text: text})
			}
		}
	}
}

func TestBackendsRenderIdenticalStructure(t *testing.T) {
	graph := testGraph(t)
	tree := Assemble(graph, Options{})

	etreeOut, err := mustBackend(t, BackendEtree).Render(tree)
	if err != nil {
		t.Fatalf("etree render: %v", err)
	}
	minimalOut, err := mustBackend(t, BackendMinimal).Render(tree)
	if err != nil {
		t.Fatalf("minimal render: %v", err)
	}

	left := parseStructure(t, etreeOut)
	right := parseStructure(t, minimalOut)
	if len(left) != len(right) {
		t.Fatalf("token counts differ: etree=%d minimal=%d", len(left), len(right))
	}
	for i := range left {
		if fmt.Sprintf("%v", left[i]) != fmt.Sprintf("%v", right[i]) {
			t.Fatalf("token %d differs:\netree:   %v\nminimal: %v", i, left[i], right[i])
		}
	}
}

func mustBackend(t *testing.T, name string) Backend {
	t.Helper()
	backend, err := SelectBackend(name)
	if err != nil {
		t.Fatalf("select backend %q: %v", name, err)
	}
	return backend
}

func TestRenderCarriesDeclarationAndDoctype(t *testing.T) {
	graph := testGraph(t)
	for _, name := range BackendNames() {
		out, err := Render(graph, name, Options{})
		if err != nil {
			t.Fatalf("%s render: %v", name, err)
		}
		text := string(out)
		if !strings.HasPrefix(text, "<?xml") {
			t.Fatalf("%s output missing declaration: %q", name, text[:40])
		}
		if !strings.Contains(text, "<!DOCTYPE hieroXML>") {
			t.Fatalf("%s output missing DOCTYPE", name)
		}
		if !strings.Contains(text, `release="12.2v2"`) || !strings.Contains(text, `version="11"`) {
			t.Fatalf("%s output missing default target attributes", name)
		}
	}
}

func TestAssembleSectionOrder(t *testing.T) {
	tree := Assemble(testGraph(t), Options{})
	if tree.Tag != "hieroXML" {
		t.Fatalf("root tag %q", tree.Tag)
	}
	var sections []string
	for _, c := range tree.Children {
		sections = append(sections, c.Tag)
	}
	want := []string{"Media", "Project", "UIState", "TrackItemLinkGroups", "trackItemCollection"}
	if len(sections) != len(want) {
		t.Fatalf("section layout %v", sections)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Fatalf("section %d = %q, want %q", i, sections[i], want[i])
		}
	}
}

func TestAssembleMediaSection(t *testing.T) {
	graph := testGraph(t)
	tree := Assemble(graph, Options{})
	media := tree.Children[0]

	var sources, clips int
	for _, c := range media.Children {
		switch c.Tag {
		case "Source":
			sources++
			if guid, ok := c.attr("guid"); !ok || !strings.HasPrefix(guid, "{") {
				t.Fatalf("source guid malformed: %v", c.Attrs)
			}
			if _, ok := c.attr("duration"); !ok {
				t.Fatal("resolved source must carry a duration attribute")
			}
		case "Clip":
			clips++
			last := c.Children[len(c.Children)-1]
			if last.Tag != "node" || !strings.HasPrefix(last.Text, "Read {") {
				t.Fatalf("clip entry missing Read node: %+v", last)
			}
		}
	}
	if sources != 2 || clips != 2 {
		t.Fatalf("media section has %d sources and %d clips", sources, clips)
	}
}

func TestAssemblePairsTrackItems(t *testing.T) {
	graph := testGraph(t)
	tree := Assemble(graph, Options{})
	collection := tree.Children[4]

	byType := map[string]int{}
	for _, item := range collection.Children {
		if item.Tag != "TrackItem" {
			t.Fatalf("unexpected child %q in trackItemCollection", item.Tag)
		}
		kind, _ := item.attr("type")
		byType[kind]++
	}
	if byType["0"] != 2 || byType["1"] != 2 {
		t.Fatalf("expected two timeline and two source items, got %v", byType)
	}

	groups := tree.Children[3]
	if len(groups.Children) != 4 {
		t.Fatalf("expected one link group per track item, got %d", len(groups.Children))
	}
}

func TestAssembleMissingSourceKeepsPrefix(t *testing.T) {
	desc := &timeline.Description{
		Project: timeline.Project{
			Name:          "demo",
			Framerate:     timeline.Ratio{Num: 24, Den: 1},
			Samplerate:    timeline.Ratio{Num: 48000, Den: 1},
			TimecodeStart: 0,
			ViewerLUT:     "ACES/Rec.709",
			OCIOConfig:    "aces_1.2",
		},
		Tracks: []timeline.Track{{Name: "pl01", Kind: timeline.KindVideo}},
		Clips:  []timeline.Clip{{File: "/gone/a.mov", Track: "pl01"}},
	}
	media := []*probe.Media{{
		Path:   "/gone/a.mov",
		Name:   "a",
		Method: probe.MethodUnavailable,
		Meta:   probe.DefaultMetadata("/gone/a.mov"),
	}}
	graph, err := document.Build(desc, media, identity.NewRegistry(), report.New(), document.Options{})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	tree := Assemble(graph, Options{})
	source := tree.Children[0].Children[0]
	if file, _ := source.attr("file"); file != "MISSING:/gone/a.mov" {
		t.Fatalf("missing file attribute wrong: %q", file)
	}
	if _, ok := source.attr("duration"); ok {
		t.Fatal("unresolved source must omit the duration attribute")
	}
}

// guidPattern matches both brace-delimited identifiers and the bare UUIDs
// used for source UMIDs.
var guidPattern = regexp.MustCompile(`\{?[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\}?`)

func TestRenderIsIdempotentModuloIdentifiers(t *testing.T) {
	first, err := Render(testGraph(t), BackendEtree, Options{})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := Render(testGraph(t), BackendEtree, Options{})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	normalize := func(data []byte) string {
		return guidPattern.ReplaceAllString(string(data), "{GUID}")
	}
	if normalize(first) != normalize(second) {
		t.Fatal("renders of the same description must agree modulo identifiers")
	}
}

func TestSelectBackendUnknown(t *testing.T) {
	if _, err := SelectBackend("carrier-pigeon"); err == nil {
		t.Fatal("unknown backend must be rejected")
	}
	if backend, err := SelectBackend(""); err != nil || backend.Name() != BackendEtree {
		t.Fatalf("empty name must select the default backend: %v", err)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		1:        "1",
		1.5:      "1.5",
		0:        "0",
		23.976:   "23.976",
		1.000001: "1.000001",
	}
	for value, want := range cases {
		if got := formatFloat(value); got != want {
			t.Fatalf("formatFloat(%v) = %q, want %q", value, got, want)
		}
	}
}

func TestSplitRatio(t *testing.T) {
	cases := []struct {
		in       string
		num, den int64
	}{
		{"25/1", 25, 1},
		{"24000/1001", 24000, 1001},
		{"23.976", 24, 1},
		{"", 25, 1},
		{"garbage", 25, 1},
	}
	for _, tc := range cases {
		num, den := splitRatio(tc.in)
		if num != tc.num || den != tc.den {
			t.Fatalf("splitRatio(%q) = %d/%d, want %d/%d", tc.in, num, den, tc.num, tc.den)
		}
	}
}

// Every identifier the graph hands the assembler must appear at least twice
// in the document: once where the entity is defined and once where another
// element points at it. A count of one means a reference dangles (or a
// definition is orphaned).
func TestAssembleCrossReferencesResolve(t *testing.T) {
	graph := testGraph(t)
	data, err := Render(graph, BackendEtree, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(data)

	requireTwice := func(label, guid string) {
		t.Helper()
		if guid == "" {
			t.Fatalf("%s has no identifier", label)
		}
		if n := strings.Count(text, guid); n < 2 {
			t.Fatalf("%s %s occurs %d time(s), want definition plus reference", label, guid, n)
		}
	}

	requireTwice("sequence", graph.SequenceGUID)
	requireTwice("sequence version", graph.SequenceVersionGUID)
	if !strings.Contains(text, graph.SequenceRootGUID) {
		t.Fatal("sequence root identifier missing from document")
	}
	for _, source := range graph.Sources {
		requireTwice("source", source.GUID)
	}
	for _, placement := range graph.Placements() {
		requireTwice("timeline item", placement.GUID)
		requireTwice("source item", placement.SourceItemGUID)
		requireTwice("clip", placement.ClipGUID)
		requireTwice("timeline link", placement.TimelineLinkGUID)
		requireTwice("source link", placement.SourceLinkGUID)
	}
}
