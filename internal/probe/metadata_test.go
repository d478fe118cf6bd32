package probe

import (
	"testing"

	"hroxgen/internal/media/ffprobe"
)

func TestTimecodeToFrames(t *testing.T) {
	cases := []struct {
		tc   string
		rate float64
		want int64
	}{
		{"00:00:00:00", 25, 0},
		{"00:00:01:00", 25, 25},
		{"01:00:00:10", 24, 86410},
		{"00;00;01;00", 30, 30},
		{"garbage", 25, 0},
		{"00:00:01:00", 0, 0},
	}
	for _, tc := range cases {
		if got := timecodeToFrames(tc.tc, tc.rate); got != tc.want {
			t.Fatalf("timecodeToFrames(%q, %v) = %d, want %d", tc.tc, tc.rate, got, tc.want)
		}
	}
}

func TestParseAspectRatio(t *testing.T) {
	if value, ok := parseAspectRatio("4:3"); !ok || value < 1.33 || value > 1.34 {
		t.Fatalf("4:3 parsed wrong: %v ok=%v", value, ok)
	}
	if _, ok := parseAspectRatio("0:1"); ok {
		t.Fatal("0:1 must be rejected")
	}
	if _, ok := parseAspectRatio("N/A"); ok {
		t.Fatal("N/A must be rejected")
	}
	if value, ok := parseAspectRatio("1.5"); !ok || value != 1.5 {
		t.Fatalf("plain float parsed wrong: %v ok=%v", value, ok)
	}
}

func TestDefaultMetadataNukeScript(t *testing.T) {
	meta := DefaultMetadata("/shots/comp_v01.nk")
	if meta.CodecID != "nk" || meta.FileReader != "nk" {
		t.Fatalf("nk defaults not applied: %+v", meta)
	}
	if meta.HasAlpha {
		t.Fatal("nk scripts default to no alpha")
	}
	if meta.BitsPerChannel != 8 {
		t.Fatalf("nk bit depth wrong: %d", meta.BitsPerChannel)
	}
}

func TestDefaultMetadataProRes(t *testing.T) {
	meta := DefaultMetadata("/media/plate.mov")
	if meta.CodecID != "ap4h" || meta.MediaTypeLabel != "QuickTime ProRes4444" {
		t.Fatalf("ProRes defaults missing: %+v", meta)
	}
	if meta.UMID == "" {
		t.Fatal("UMID must be populated")
	}
}

func TestApplyResultOverlaysProbedValues(t *testing.T) {
	meta := DefaultMetadata("/media/plate.mov")
	meta.applyResult(ffprobe.Result{
		Streams: []ffprobe.Stream{{
			CodecType:        "video",
			CodecName:        "h264",
			CodecLongName:    "H.264 / AVC",
			Width:            1920,
			Height:           1080,
			PixFmt:           "yuv420p",
			AvgFrameRate:     "24000/1001",
			BitsPerRawSample: "10",
			ColorSpace:       "bt709",
			Tags:             map[string]string{"timecode": "00:00:02:00"},
		}},
		Format: ffprobe.Format{Size: "123456"},
	})

	if meta.Width != 1920 || meta.Height != 1080 {
		t.Fatalf("dimensions not applied: %+v", meta)
	}
	if meta.HasAlpha {
		t.Fatal("yuv420p has no alpha")
	}
	if meta.FrameRate != "24000/1001" {
		t.Fatalf("frame rate not applied: %q", meta.FrameRate)
	}
	if meta.BitsPerChannelLabel != "10-bit fixed" {
		t.Fatalf("bit depth not applied: %q", meta.BitsPerChannelLabel)
	}
	if meta.ColorMatrix != "BT709" {
		t.Fatalf("colorspace not normalized: %q", meta.ColorMatrix)
	}
	if meta.FileSize != 123456 {
		t.Fatalf("size not applied: %d", meta.FileSize)
	}
	if meta.TimecodeFrames == 0 {
		t.Fatal("timecode frames should be derived")
	}
	if meta.MediaTypeLabel != "QuickTime h264" {
		t.Fatalf("media type label not updated: %q", meta.MediaTypeLabel)
	}
}

func TestPixFmtHasAlpha(t *testing.T) {
	cases := map[string]bool{
		"":              true,
		"yuv420p":       false,
		"yuv422p10le":   false,
		"gray":          false,
		"gray16be":      false,
		"ya8":           true,
		"ya16le":        true,
		"yuva444p10le":  true,
		"yuva420p":      true,
		"rgba":          true,
		"rgba64be":      true,
		"bgra":          true,
		"argb":          true,
		"abgr":          true,
		"gbrp":          false,
		"gbrap12le":     true,
		"nv12":          false,
		"pal8":          false,
		"monob":         false,
		"rgb24":         false,
	}
	for pixFmt, want := range cases {
		if got := pixFmtHasAlpha(pixFmt); got != want {
			t.Fatalf("pixFmtHasAlpha(%q) = %v, want %v", pixFmt, got, want)
		}
	}
}
