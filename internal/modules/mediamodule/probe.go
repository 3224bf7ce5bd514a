package mediamodule

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/utils"
	"github.com/hashicorp/go-hclog"
)

// Prober extracts metadata and thumbnails through ffprobe/ffmpeg, with hard
// timeouts so a wedged process cannot hang an import.
type Prober struct {
	runner           ffmpeg.CommandRunner
	ffmpegPath       string
	ffprobePath      string
	probeTimeout     time.Duration
	thumbnailTimeout time.Duration
	logger           hclog.Logger
}

// NewProber creates a prober. Zero timeouts fall back to 15s and 60s.
func NewProber(runner ffmpeg.CommandRunner, ffmpegPath, ffprobePath string, probeTimeout, thumbnailTimeout time.Duration, logger hclog.Logger) *Prober {
	if probeTimeout <= 0 {
		probeTimeout = 15 * time.Second
	}
	if thumbnailTimeout <= 0 {
		thumbnailTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Prober{
		runner:           runner,
		ffmpegPath:       ffmpegPath,
		ffprobePath:      ffprobePath,
		probeTimeout:     probeTimeout,
		thumbnailTimeout: thumbnailTimeout,
		logger:           logger,
	}
}

// Probe extracts stream metadata from a source file.
func (p *Prober) Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()
	return ffmpeg.Probe(ctx, p.runner, p.ffprobePath, path)
}

// Thumbnail renders a single frame from one second in, scaled to 320 wide,
// into thumbnailDir, and returns the generated path.
func (p *Prober) Thumbnail(ctx context.Context, path, thumbnailDir, mediaID string) (string, error) {
	if err := utils.EnsureDir(thumbnailDir); err != nil {
		return "", err
	}
	out := filepath.Join(thumbnailDir, mediaID+".jpg")

	ctx, cancel := context.WithTimeout(ctx, p.thumbnailTimeout)
	defer cancel()

	_, err := p.runner.Run(ctx, p.ffmpegPath,
		"-y",
		"-ss", "1",
		"-i", path,
		"-vframes", "1",
		"-vf", "scale=320:-1",
		out,
	)
	if err != nil {
		return "", fmt.Errorf("thumbnail %s: %w", path, err)
	}
	if !utils.FileNonEmpty(out) {
		return "", fmt.Errorf("thumbnail %s: empty output", path)
	}
	return out, nil
}
