// Package probe resolves a frame count and display metadata for every media
// source referenced by the timeline description.
//
// Each distinct normalized path becomes exactly one Media entity. Missing
// files are marked unverified and reported, never dropped. Existing files are
// probed with ffprobe under a bounded worker pool and a per-file timeout; a
// failed or timed-out probe falls back to estimating frames from the
// container duration and average frame rate, and when no basis for an
// estimate exists the duration stays unknown. Results are collected by input
// index so the Media list always preserves first-reference order no matter
// which probes finish first.
//
// An optional SQLite cache keyed by (path, size, mtime) lets unchanged media
// skip the frame-accurate probe on later runs; frame counting decodes the
// whole file, so this matters for long plates.
package probe
