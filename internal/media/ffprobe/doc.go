// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no hroxgen-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties including read frame counts
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe with frame counting enabled and returns a
//     parsed Result
//
// Helper methods on Result expose frame counts, frame rates, and durations
// with N/A-tolerant parsing.
package ffprobe
