package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"hroxgen/internal/generate"
	"hroxgen/internal/report"
)

// printSummary renders the run diagnostics: a table on interactive terminals,
// plain lines otherwise.
func printSummary(out io.Writer, result *generate.Result) {
	entries := result.Report.Entries()
	counts := result.Report.Counts()

	if stdoutIsTerminal() && len(entries) > 0 {
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{string(entry.Severity), entry.Stage, entry.Entity, entry.Message})
		}
		fmt.Fprintln(out, renderTable([]string{"Severity", "Stage", "Entity", "Message"}, rows))
	} else {
		for _, entry := range entries {
			printEntry(out, entry)
		}
	}

	fmt.Fprintf(out, "%d source(s), %d clip(s); %d warning(s), %d fatal\n",
		len(result.Report.Sources()), len(result.Report.Clips()), counts.Warning, counts.Fatal)
	if result.Written {
		fmt.Fprintf(out, "Wrote %s\n", result.OutputPath)
	}
}

func printEntry(out io.Writer, entry report.Entry) {
	if entry.Entity != "" {
		fmt.Fprintf(out, "%s [%s] %s: %s\n", entry.Severity, entry.Stage, entry.Entity, entry.Message)
		return
	}
	fmt.Fprintf(out, "%s [%s] %s\n", entry.Severity, entry.Stage, entry.Message)
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
