// Package report collects diagnostics from every generation stage into one
// ordered, structured run report.
//
// It owns the error taxonomy shared by the pipeline: sentinel errors tag
// failures for classification (schema, missing media, probe, overlap, graph,
// I/O) and the Report type accumulates entries keyed by stage and entity with
// info/warning/fatal severities. The presence of any fatal entry means no
// output document was produced for the run.
package report
