// Package utils provides shared helpers: ffmpeg timestamp handling and
// filename checks used by the export and recording pipelines.
package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

var ffmpegTimestampRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})\.(\d{2})$`)

// ParseFFmpegTimestamp converts an "HH:MM:SS.ff" marker from ffmpeg's
// diagnostic output into seconds.
func ParseFFmpegTimestamp(s string) (float64, error) {
	m := ffmpegTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid ffmpeg timestamp: %q", s)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	centis, _ := strconv.Atoi(m[4])
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("invalid ffmpeg timestamp: %q", s)
	}
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(centis)/100, nil
}

// FormatFFmpegTimestamp renders seconds as "HH:MM:SS.ff".
func FormatFFmpegTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	centis := int((seconds - float64(total)) * 100)
	return fmt.Sprintf("%02d:%02d:%02d.%02d", total/3600, (total%3600)/60, total%60, centis)
}

var safeFilenameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// IsSafeFilename reports whether name contains only characters permitted in
// export filenames.
func IsSafeFilename(name string) bool {
	return safeFilenameRe.MatchString(name)
}
