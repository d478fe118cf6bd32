package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index             int               `json:"index"`
	CodecName         string            `json:"codec_name"`
	CodecLongName     string            `json:"codec_long_name"`
	CodecType         string            `json:"codec_type"`
	CodecTag          string            `json:"codec_tag_string"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	PixFmt            string            `json:"pix_fmt"`
	AvgFrameRate      string            `json:"avg_frame_rate"`
	RFrameRate        string            `json:"r_frame_rate"`
	NBReadFrames      string            `json:"nb_read_frames"`
	NBFrames          string            `json:"nb_frames"`
	Duration          string            `json:"duration"`
	BitRate           string            `json:"bit_rate"`
	BitsPerRawSample  string            `json:"bits_per_raw_sample"`
	SampleAspectRatio string            `json:"sample_aspect_ratio"`
	ColorSpace        string            `json:"color_space"`
	ColorTransfer     string            `json:"color_transfer"`
	ColorPrimaries    string            `json:"color_primaries"`
	Tags              map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

// Inspect executes ffprobe against the provided path with frame counting
// enabled and decodes the JSON response. The path is the only variable
// argument; everything else is fixed.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=index,codec_type,codec_name,codec_long_name,codec_tag_string," +
			"width,height,avg_frame_rate,r_frame_rate,nb_read_frames,nb_frames,duration,bit_rate," +
			"pix_fmt,color_space,color_transfer,color_primaries,bits_per_raw_sample,sample_aspect_ratio,tags",
		"-show_entries", "format=format_name,duration,size,bit_rate,tags",
		"-print_format", "json",
		"--", path,
	}
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream, or the first stream when none
// is marked video, or false when the container carried no streams at all.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	if len(r.Streams) > 0 {
		return r.Streams[0], true
	}
	return Stream{}, false
}

// FrameCount returns the measured frame count from nb_read_frames or
// nb_frames, or false when neither was reported.
func (s Stream) FrameCount() (int64, bool) {
	if count, ok := parseInt(s.NBReadFrames); ok {
		return count, true
	}
	return parseInt(s.NBFrames)
}

// FrameRate returns the stream frame rate in frames per second, preferring
// the average rate over the raw rate.
func (s Stream) FrameRate() (float64, bool) {
	if value, ok := parseRational(s.AvgFrameRate); ok {
		return value, true
	}
	return parseRational(s.RFrameRate)
}

// DurationSeconds returns the stream duration falling back to the container
// duration, or false when neither is available.
func (r Result) DurationSeconds() (float64, bool) {
	stream, ok := r.VideoStream()
	if ok {
		if value, okD := parseFloat(stream.Duration); okD {
			return value, true
		}
	}
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	value, ok := parseFloat(r.Format.Size)
	if !ok || value < 0 {
		return 0
	}
	return int64(value)
}

func parseInt(value string) (int64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func parseFloat(value string) (float64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) {
		return 0, false
	}
	return parsed, true
}

// parseRational parses ffprobe's "num/den" rate strings, tolerating plain
// numbers. Zero denominators (ffprobe's "0/0" for unknown) yield false.
func parseRational(value string) (float64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0, false
	}
	if left, right, found := strings.Cut(cleaned, "/"); found {
		num, errN := strconv.ParseFloat(left, 64)
		den, errD := strconv.ParseFloat(right, 64)
		if errN != nil || errD != nil || den == 0 {
			return 0, false
		}
		rate := num / den
		if rate <= 0 {
			return 0, false
		}
		return rate, true
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
