// Package timeline validates and normalizes the canonical timeline
// description hroxgen consumes.
//
// Input is a JSON document with project, tracks, and clips sections. Parse
// accepts the raw bytes; Normalize returns a strongly typed Description or a
// list of violations, each carrying a field path, a message, and whether it is
// fatal. Fatal violations (missing project name, unparsable framerate, a clip
// referencing an unknown track) stop the pipeline before any I/O; advisory
// ones (a clip omitting its timeline-in, a track omitting its kind) record
// the applied default.
//
// Paths are expanded and resolved here but never checked for existence; that
// is the prober's job, keeping path resolution separable from I/O-dependent
// validation.
package timeline
