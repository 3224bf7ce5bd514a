// Package exportmodule turns a timeline snapshot into a rendered file: a
// planner that derives per-clip extraction segments and one composition
// command, and an executor that runs the sequence against ffmpeg.
package exportmodule

import "fmt"

// Resolution presets for the rendered output.
const (
	Resolution1080p  = "1080p"
	Resolution720p   = "720p"
	Resolution4K     = "4k"
	ResolutionSource = "source"
)

// Quality tiers map to encoder CRF values; lower CRF is better quality.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// FPSMatchSource leaves the frame rate to the source material.
const FPSMatchSource = "match-source"

// Settings describes one export request.
type Settings struct {
	Filename   string `json:"filename"`
	OutputDir  string `json:"output_dir"`
	Resolution string `json:"resolution"`
	Quality    string `json:"quality"`
	FPS        string `json:"fps"` // numeric string or FPSMatchSource
}

// Segment is one planned single-clip extraction: trim
// [StartTime, StartTime+Duration) out of InputFile into OutputFile.
type Segment struct {
	ClipID     string  `json:"clip_id"`
	TrackID    string  `json:"track_id"`
	InputFile  string  `json:"input_file"`
	StartTime  float64 `json:"start_time"` // offset into the source
	Duration   float64 `json:"duration"`
	OutputFile string  `json:"output_file"`
}

// Command is one planned ffmpeg invocation. Stage 1 commands extract
// segments; the single stage 2 command composes them.
type Command struct {
	Stage int      `json:"stage"`
	Args  []string `json:"args"`
}

// QualityCRF maps a quality tier to its x264 CRF value.
func QualityCRF(quality string) int {
	switch quality {
	case QualityHigh:
		return 20
	case QualityLow:
		return 26
	default:
		return 23
	}
}

// ResolutionScale returns the scale filter target for a resolution preset,
// or ok=false for ResolutionSource, which emits no scale step at all.
func ResolutionScale(resolution string) (string, bool) {
	switch resolution {
	case Resolution1080p:
		return "1920:1080", true
	case Resolution720p:
		return "1280:720", true
	case Resolution4K:
		return "3840:2160", true
	default:
		return "", false
	}
}

// EstimateSize returns a rough output size in bytes for a timeline of the
// given duration. Surfaced to the user before export; never used for
// control flow.
func EstimateSize(durationSeconds float64, settings Settings) int64 {
	const baseMBPerMinute = 50.0

	qualityMultiplier := 1.0
	switch settings.Quality {
	case QualityHigh:
		qualityMultiplier = 1.2
	case QualityLow:
		qualityMultiplier = 0.5
	}

	resolutionMultiplier := 1.0
	switch settings.Resolution {
	case Resolution4K:
		resolutionMultiplier = 4.0
	case Resolution720p:
		resolutionMultiplier = 0.5
	}

	mb := (durationSeconds / 60) * baseMBPerMinute * qualityMultiplier * resolutionMultiplier
	return int64(mb * 1024 * 1024)
}

// formatSeconds renders a seconds value for an ffmpeg argument.
func formatSeconds(s float64) string {
	return fmt.Sprintf("%g", s)
}
