package recordingmodule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/utils"
)

// Processor remuxes finished WebM captures into MP4 with normalized AAC
// audio. Video is stream-copied, only the audio track is re-encoded.
type Processor struct {
	runner     ffmpeg.CommandRunner
	ffmpegPath string
	logger     hclog.Logger
}

// NewProcessor creates a processor around the given command runner.
func NewProcessor(runner ffmpeg.CommandRunner, ffmpegPath string, logger hclog.Logger) *Processor {
	return &Processor{runner: runner, ffmpegPath: ffmpegPath, logger: logger}
}

// ProgressFunc receives remux progress in percent.
type ProgressFunc func(percent float64)

// Convert remuxes inputPath into an MP4 next to it and returns the output
// path. The WebM source is deleted after a successful conversion; a failed
// cleanup is logged and otherwise ignored.
func (p *Processor) Convert(ctx context.Context, inputPath string, onProgress ProgressFunc) (string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", fmt.Errorf("recording not found: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("recording %s is empty", inputPath)
	}

	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".mp4"
	args := []string{
		"-i", inputPath,
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-ar", "44100",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	p.logger.Info("converting recording", "input", inputPath, "output", outputPath)

	var totalDuration float64
	onLine := func(line string) {
		if d, ok := ffmpeg.ParseDuration(line); ok {
			totalDuration = d
		}
		if update, ok := ffmpeg.ParseProgress(line); ok && totalDuration > 0 && onProgress != nil {
			percent := update.Time / totalDuration * 100
			if percent > 100 {
				percent = 100
			}
			onProgress(percent)
		}
	}
	if err := p.runner.RunStreaming(ctx, p.ffmpegPath, args, onLine); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("recording conversion failed: %w", err)
	}

	if !utils.FileNonEmpty(outputPath) {
		return "", fmt.Errorf("conversion produced no output at %s", outputPath)
	}

	if err := os.Remove(inputPath); err != nil {
		p.logger.Warn("could not remove source recording", "path", inputPath, "error", err)
	}
	return outputPath, nil
}

// SaveCapture writes a captured stream into the recordings directory under a
// timestamped name and returns the file path.
func SaveCapture(dir string, data []byte) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("creating recordings directory: %w", err)
	}
	name := fmt.Sprintf("recording-%s.webm", time.Now().Format("2006-01-02-15-04-05"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing recording: %w", err)
	}
	return path, nil
}
