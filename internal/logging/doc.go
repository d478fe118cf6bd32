// Package logging assembles the structured slog loggers used across hroxgen.
//
// It owns the console/JSON handler selection, centralizes level parsing, and
// exposes typed attribute helpers plus standardized field keys so pipeline
// stages tag log lines consistently (component, stage, source path, clip).
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
