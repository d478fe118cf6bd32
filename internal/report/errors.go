package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema marks malformed or inconsistent input descriptions. Fatal.
	ErrSchema = errors.New("schema error")
	// ErrMissingMedia marks a referenced media file that does not exist.
	// Warning by default, fatal under strict mode.
	ErrMissingMedia = errors.New("missing media")
	// ErrProbe marks an ffprobe failure or timeout. Warning; the estimate
	// fallback always applies.
	ErrProbe = errors.New("probe error")
	// ErrOverlap marks two clips occupying overlapping frame ranges on one
	// track. Fatal.
	ErrOverlap = errors.New("overlap error")
	// ErrGraph marks a dangling cross-reference in the entity graph. Fatal.
	ErrGraph = errors.New("graph error")
	// ErrSerialize marks a serializer fault or an unknown backend name.
	// Fatal; no bytes have reached disk when it is raised.
	ErrSerialize = errors.New("serialize error")
	// ErrIO marks a failure to read input or write output. Fatal.
	ErrIO = errors.New("io error")
)

// Wrap builds an error message that includes stage and entity context while
// tagging it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, entity, message string, err error) error {
	detail := buildDetail(stage, entity, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err represents a condition that must abort the run
// and suppress the output document. strict escalates missing media.
func Fatal(err error, strict bool) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSchema), errors.Is(err, ErrOverlap), errors.Is(err, ErrGraph),
		errors.Is(err, ErrSerialize), errors.Is(err, ErrIO):
		return true
	case errors.Is(err, ErrMissingMedia):
		return strict
	default:
		return false
	}
}

func buildDetail(stage, entity, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if entity = strings.TrimSpace(entity); entity != "" {
		parts = append(parts, entity)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "generation failure"
	}
	return strings.Join(parts, ": ")
}
