// Package deps reports the availability of the external binaries clipper
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"clipper/internal/config"
)

// Requirement defines an external dependency clipper relies on.
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

// FromConfig lists the external tools the configured pipeline will invoke.
func FromConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "ffmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Renders clips and extracts detection frames",
		},
		{
			Name:        "ffprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects downloaded media",
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.Download.Binary,
			Description: "Fetches source video sections",
		},
		{
			Name:        "detector",
			Command:     cfg.Tracking.DetectorBinary,
			Description: "Finds subject boxes in sampled frames",
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
