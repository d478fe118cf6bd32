package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hroxgen/internal/media/ffprobe"
)

// Metadata carries the per-source display attributes the document serializer
// needs. Fields default to the values Hiero writes for ProRes 4444 media and
// are overwritten with probed values where available.
type Metadata struct {
	Width               int
	Height              int
	FrameRate           string
	FrameRateValue      float64
	Samplerate          string
	PixelAspect         float64
	TimecodeFrames      int64
	TimecodeDisplay     string
	CodecID             string
	CodecName           string
	Encoder             string
	ColorMatrix         string
	ColorPrimaries      string
	ColorTransfer       string
	BitsPerChannel      int
	BitsPerChannelLabel string
	ChannelFormat       string
	Layers              string
	HasAlpha            bool
	LayerTypeName       string
	PixelFormatDesc     string
	FileSize            int64
	CreationTime        string
	ModificationTime    string
	FileReader          string
	QuickTimeWriter     string
	QuickTimeApp        string
	QuickTimeAppVersion string
	QuickTimeColorspace string
	QuickTimeMatrix     string
	QuickTimeCodec      string
	MediaTypeLabel      string
	FileExtension       string
	UMID                string
}

// DefaultMetadata returns the static defaults for path, including the Nuke
// script special case and file stat data when the file exists.
func DefaultMetadata(path string) Metadata {
	meta := Metadata{
		FrameRate:           "25/1",
		FrameRateValue:      25,
		Samplerate:          "0/0",
		PixelAspect:         1.0,
		TimecodeDisplay:     "00:00:00:00",
		CodecID:             "ap4h",
		CodecName:           "Apple ProRes 4444",
		Encoder:             "Apple ProRes 4444",
		ColorMatrix:         "BT709",
		ColorPrimaries:      "ITU-R BT.709",
		ColorTransfer:       "ITU-R BT.709",
		BitsPerChannel:      12,
		BitsPerChannelLabel: "12-bit fixed",
		ChannelFormat:       "integer",
		Layers:              "colour",
		HasAlpha:            true,
		LayerTypeName:       "colourAlpha",
		PixelFormatDesc:     "RGBA (Int16)  Open Color IO space: 8",
		FileReader:          "mov64",
		QuickTimeWriter:     "mov64",
		QuickTimeApp:        "Nuke",
		QuickTimeAppVersion: "12.0v2",
		QuickTimeColorspace: "Output - Rec.709",
		QuickTimeMatrix:     "Rec 709",
		QuickTimeCodec:      "ProRes4444",
		MediaTypeLabel:      "QuickTime ProRes4444",
		FileExtension:       strings.ToLower(filepath.Ext(path)),
		UMID:                uuid.NewString(),
	}

	if meta.FileExtension == ".nk" {
		meta.CodecID = "nk"
		meta.CodecName = "Nuke Script"
		meta.Encoder = "nk"
		meta.QuickTimeCodec = "nk"
		meta.MediaTypeLabel = "Nuke Script"
		meta.FileReader = "nk"
		meta.QuickTimeWriter = "nk"
		meta.BitsPerChannel = 8
		meta.BitsPerChannelLabel = "8-bit fixed"
		meta.HasAlpha = false
		meta.LayerTypeName = "colour"
		meta.PixelFormatDesc = "RGBA (Int8)  Open Color IO space: 6"
	}

	if info, err := os.Stat(path); err == nil {
		meta.FileSize = info.Size()
		meta.ModificationTime = info.ModTime().Format("2006-01-02 15:04:05")
		meta.CreationTime = meta.ModificationTime
	}

	return meta
}

// applyResult overlays probed values onto the defaults.
func (m *Metadata) applyResult(result ffprobe.Result) {
	stream, ok := result.VideoStream()
	if !ok {
		return
	}
	if stream.Width > 0 {
		m.Width = stream.Width
	}
	if stream.Height > 0 {
		m.Height = stream.Height
	}
	m.HasAlpha = pixFmtHasAlpha(stream.PixFmt)
	if m.HasAlpha {
		m.LayerTypeName = "colourAlpha"
	} else {
		m.LayerTypeName = "colour"
	}

	if rate, ok := stream.FrameRate(); ok {
		m.FrameRateValue = rate
		m.FrameRate = formatRate(stream.AvgFrameRate, stream.RFrameRate, rate)
	}

	if stream.CodecName != "" {
		m.CodecName = stream.CodecName
		m.QuickTimeCodec = stream.CodecName
	}
	if stream.CodecLongName != "" {
		m.Encoder = stream.CodecLongName
	}
	if stream.CodecTag != "" {
		m.CodecID = stream.CodecTag
	}
	if m.FileExtension == ".mov" && stream.CodecName != "" {
		m.MediaTypeLabel = "QuickTime " + stream.CodecName
	}

	if aspect, ok := parseAspectRatio(stream.SampleAspectRatio); ok {
		m.PixelAspect = aspect
	}
	if bits, err := strconv.Atoi(strings.TrimSpace(stream.BitsPerRawSample)); err == nil && bits > 0 {
		m.BitsPerChannel = bits
		m.BitsPerChannelLabel = fmt.Sprintf("%d-bit fixed", bits)
	}
	if cs := normalizeColorspace(stream.ColorSpace); cs != "" {
		m.ColorMatrix = cs
	}
	if stream.ColorTransfer != "" {
		m.ColorTransfer = stream.ColorTransfer
	}
	if stream.ColorPrimaries != "" {
		m.ColorPrimaries = stream.ColorPrimaries
	}

	if tc := firstTag("timecode", stream.Tags, result.Format.Tags); tc != "" {
		m.TimecodeDisplay = tc
	}
	m.TimecodeFrames = timecodeToFrames(m.TimecodeDisplay, m.FrameRateValue)

	if m.CreationTime == "" {
		m.CreationTime = firstTag("creation_time", stream.Tags, result.Format.Tags)
	}
	if cs := stream.Tags["com.apple.quicktime.colorspace"]; cs != "" {
		m.QuickTimeColorspace = cs
	}
	if matrix := stream.Tags["com.apple.quicktime.matrix"]; matrix != "" {
		m.QuickTimeMatrix = matrix
	}

	if size := result.SizeBytes(); size > 0 {
		m.FileSize = size
	}
}

func firstTag(key string, maps ...map[string]string) string {
	for _, tags := range maps {
		if value := strings.TrimSpace(tags[key]); value != "" {
			return value
		}
	}
	return ""
}

func formatRate(avg, raw string, value float64) string {
	for _, candidate := range []string{avg, raw} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == "N/A" || strings.HasPrefix(candidate, "0/") {
			continue
		}
		if strings.Contains(candidate, "/") {
			return candidate
		}
	}
	return fmt.Sprintf("%d/1", int64(value+0.5))
}

func parseAspectRatio(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "N/A" || text == "0:1" {
		return 0, false
	}
	left, right, found := strings.Cut(text, ":")
	if !found {
		value, err := strconv.ParseFloat(text, 64)
		return value, err == nil && value > 0
	}
	num, errN := strconv.ParseFloat(left, 64)
	den, errD := strconv.ParseFloat(right, 64)
	if errN != nil || errD != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

func normalizeColorspace(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	upper := strings.ToUpper(value)
	if strings.HasPrefix(upper, "BT") && !strings.HasPrefix(upper, "BT.") {
		return upper
	}
	return value
}

// timecodeToFrames converts an HH:MM:SS:FF display timecode to a frame offset.
// Drop-frame semicolons are treated as colons.
func timecodeToFrames(timecode string, frameRate float64) int64 {
	if timecode == "" || frameRate <= 0 {
		return 0
	}
	parts := strings.Split(strings.ReplaceAll(timecode, ";", ":"), ":")
	if len(parts) != 4 {
		return 0
	}
	values := make([]int64, 4)
	for i, part := range parts {
		parsed, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0
		}
		values[i] = parsed
	}
	totalSeconds := values[0]*3600 + values[1]*60 + values[2]
	return int64(float64(totalSeconds)*frameRate+0.5) + values[3]
}

// statIdentity returns the size and mtime used as the cache key for path.
func statIdentity(path string) (int64, time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, false
	}
	return info.Size(), info.ModTime(), true
}

// alphaPixFmtLayouts holds the ffmpeg pixel format family names that carry an
// alpha channel. Depth and endianness suffixes (yuva420p10le, rgba64be) are
// stripped before lookup.
var alphaPixFmtLayouts = map[string]bool{
	"yuva":  true,
	"ayuv":  true,
	"vuya":  true,
	"rgba":  true,
	"bgra":  true,
	"argb":  true,
	"abgr":  true,
	"gbrap": true,
	"ya":    true,
}

// pixFmtHasAlpha reports whether the pixel format family includes an alpha
// channel. An unreported format keeps the ProRes 4444 default of true.
func pixFmtHasAlpha(pixFmt string) bool {
	if pixFmt == "" {
		return true
	}
	layout := strings.ToLower(pixFmt)
	for i, r := range layout {
		if r >= '0' && r <= '9' {
			layout = layout[:i]
			break
		}
	}
	return alphaPixFmtLayouts[layout]
}
