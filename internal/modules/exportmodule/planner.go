package exportmodule

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/framecut/framecut/internal/utils"
	"github.com/hashicorp/go-hclog"
)

// ErrNoValidSegments distinguishes "nothing exportable" from a plan that
// merely produced zero-length output.
var ErrNoValidSegments = errors.New("no valid segments in timeline")

// MediaRef is the read-only media record the planner needs.
type MediaRef struct {
	ID       string
	Path     string
	Duration float64
}

// MediaInventory resolves clip media references. Implemented by the media
// library.
type MediaInventory interface {
	Lookup(mediaID string) (MediaRef, bool)
}

// BuildExportPlan derives the ordered extraction segments for a clip set.
// Clips are taken in timeline start order across all tracks. A clip whose
// media is missing, whose source file is unreachable, or whose effective
// duration is not positive is skipped with a log line rather than failing
// the whole plan.
func BuildExportPlan(clips []timelinemodule.Clip, inventory MediaInventory, tempDir string, logger hclog.Logger) ([]Segment, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	sorted := make([]timelinemodule.Clip, len(clips))
	copy(sorted, clips)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].TrackID < sorted[j].TrackID
	})

	segments := make([]Segment, 0, len(sorted))
	for _, clip := range sorted {
		media, ok := inventory.Lookup(clip.MediaID)
		if !ok {
			logger.Warn("skipping clip, media not in inventory", "clipId", clip.ID, "mediaId", clip.MediaID)
			continue
		}
		if !utils.FileExists(media.Path) {
			logger.Warn("skipping clip, source unreachable", "clipId", clip.ID, "path", media.Path)
			continue
		}
		effective := math.Min(clip.Duration, media.Duration-clip.Offset)
		if effective <= 0 {
			logger.Warn("skipping clip, no effective duration", "clipId", clip.ID, "offset", clip.Offset, "source", media.Duration)
			continue
		}

		segments = append(segments, Segment{
			ClipID:     clip.ID,
			TrackID:    clip.TrackID,
			InputFile:  media.Path,
			StartTime:  clip.Offset,
			Duration:   effective,
			OutputFile: filepath.Join(tempDir, fmt.Sprintf("segment-%s-%s.mp4", clip.TrackID, clip.ID)),
		})
	}

	if len(segments) == 0 {
		return nil, ErrNoValidSegments
	}
	return segments, nil
}
