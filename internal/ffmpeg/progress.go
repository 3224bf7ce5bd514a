package ffmpeg

import (
	"regexp"
	"strconv"

	"github.com/framecut/framecut/internal/utils"
)

var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d{2,}:\d{2}:\d{2}\.\d{2})`)
	timeRe     = regexp.MustCompile(`time=(\d{2,}:\d{2}:\d{2}\.\d{2})`)
	speedRe    = regexp.MustCompile(`speed=\s*([\d.]+)x`)
)

// ProgressUpdate is one parsed progress line from ffmpeg's stderr.
type ProgressUpdate struct {
	Time  float64 // seconds of output produced so far
	Speed float64 // encode speed multiplier, 0 when absent
}

// ParseDuration extracts the input duration from an ffmpeg or ffprobe
// banner line ("Duration: 00:01:30.05, start: ...").
func ParseDuration(line string) (float64, bool) {
	m := durationRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	seconds, err := utils.ParseFFmpegTimestamp(m[1])
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// ParseProgress extracts progress from an ffmpeg stderr status line
// ("frame= 120 fps= 30 ... time=00:00:04.00 bitrate= ... speed=1.01x").
func ParseProgress(line string) (ProgressUpdate, bool) {
	m := timeRe.FindStringSubmatch(line)
	if m == nil {
		return ProgressUpdate{}, false
	}
	seconds, err := utils.ParseFFmpegTimestamp(m[1])
	if err != nil {
		return ProgressUpdate{}, false
	}
	update := ProgressUpdate{Time: seconds}
	if sm := speedRe.FindStringSubmatch(line); sm != nil {
		if speed, err := strconv.ParseFloat(sm[1], 64); err == nil {
			update.Speed = speed
		}
	}
	return update, true
}
