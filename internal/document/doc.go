// Package document builds the in-memory entity graph for one generation run:
// deduplicated sources, tracks in declared order, clip placements with
// resolved timing, and the sequence context the serializer renders. The graph
// is a pure function of the normalized description and the probe results,
// deterministic modulo identifier values, and is discarded after
// serialization.
package document
