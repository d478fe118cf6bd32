package document

import (
	"fmt"

	"hroxgen/internal/report"
)

// OverlapError reports two clips on the same track occupying intersecting
// frame ranges. It unwraps to report.ErrOverlap.
type OverlapError struct {
	Track       string
	FirstClip   string
	SecondClip  string
	FirstEnd    int64
	SecondStart int64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("track %q: clip %q (ends at frame %d) overlaps clip %q (starts at frame %d)",
		e.Track, e.FirstClip, e.FirstEnd, e.SecondClip, e.SecondStart)
}

func (e *OverlapError) Unwrap() error {
	return report.ErrOverlap
}

// GraphError reports a dangling cross-reference while assembling the graph.
// It unwraps to report.ErrGraph.
type GraphError struct {
	Entity  string
	Message string
	Err     error
}

func (e *GraphError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph: %s: %s: %v", e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("graph: %s: %s", e.Entity, e.Message)
}

func (e *GraphError) Unwrap() error {
	return report.ErrGraph
}
