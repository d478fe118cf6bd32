// Package deps reports the availability of the external binaries hroxgen
// shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency hroxgen relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// FFprobeEnv names the environment variable that overrides the ffprobe
// location when the configuration leaves it unset.
const FFprobeEnv = "HROXGEN_FFPROBE"

// ResolveFFprobe picks the ffprobe binary for a run: the configured path
// first, then the environment override, then PATH lookup.
func ResolveFFprobe(configured string) string {
	if binary := strings.TrimSpace(configured); binary != "" {
		return binary
	}
	if binary := strings.TrimSpace(os.Getenv(FFprobeEnv)); binary != "" {
		return binary
	}
	return "ffprobe"
}

// Requirements lists the binaries a full hroxgen run can invoke. The ffprobe
// entry is optional because declared source durations skip probing entirely.
func Requirements(ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "ffprobe",
			Command:     ResolveFFprobe(ffprobeBinary),
			Description: "Measures source frame counts and media metadata",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if strings.ContainsRune(cmd, os.PathSeparator) {
			info, err := os.Stat(cmd)
			if err != nil || info.IsDir() {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				results = append(results, status)
				continue
			}
			status.Available = true
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
