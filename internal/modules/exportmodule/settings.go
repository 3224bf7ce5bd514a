package exportmodule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/framecut/framecut/internal/utils"
	"github.com/shirou/gopsutil/v4/disk"
)

// ValidateSettings checks an export request before any work begins.
// Problems are collected rather than short-circuited so the user sees all
// of them at once. estimatedBytes > 0 additionally checks free disk space
// in the output directory.
func ValidateSettings(settings Settings, estimatedBytes int64) []string {
	var problems []string

	if strings.TrimSpace(settings.Filename) == "" {
		problems = append(problems, "filename is required")
	} else if !utils.IsSafeFilename(settings.Filename) {
		problems = append(problems, "filename contains invalid characters")
	}

	if strings.TrimSpace(settings.OutputDir) == "" {
		problems = append(problems, "output path is required")
	}

	switch settings.Resolution {
	case "", Resolution1080p, Resolution720p, Resolution4K, ResolutionSource:
	default:
		problems = append(problems, fmt.Sprintf("unknown resolution %q", settings.Resolution))
	}

	switch settings.Quality {
	case "", QualityHigh, QualityMedium, QualityLow:
	default:
		problems = append(problems, fmt.Sprintf("unknown quality %q", settings.Quality))
	}

	if settings.FPS != "" && settings.FPS != FPSMatchSource {
		if fps, err := strconv.ParseFloat(settings.FPS, 64); err != nil || fps <= 0 {
			problems = append(problems, fmt.Sprintf("invalid frame rate %q", settings.FPS))
		}
	}

	if estimatedBytes > 0 && settings.OutputDir != "" {
		if usage, err := disk.Usage(settings.OutputDir); err == nil && usage.Free < uint64(estimatedBytes) {
			problems = append(problems, fmt.Sprintf(
				"not enough disk space: need about %d MB, %d MB free",
				estimatedBytes/(1024*1024), usage.Free/(1024*1024)))
		}
	}

	return problems
}
