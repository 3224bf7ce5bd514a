// Package timelinemodule owns the canonical editing state: tracks, clips,
// and the timeline cursor, plus the mutation operations over them. All other
// modules read this state through narrow interfaces; nothing mutates it
// except the operations defined here.
package timelinemodule

import "math"

// Track kinds. Track ordering is the compositing order: the first video
// track is the preview foreground.
const (
	TrackKindVideo   = "video"
	TrackKindOverlay = "overlay"
	TrackKindAudio   = "audio"
)

// Well-known track IDs created with every new project.
const (
	PrimaryTrackID = "track-1"
	OverlayTrackID = "track-2"
)

const (
	// MinClipDuration is the floor a trim can shrink a clip to, in seconds.
	MinClipDuration = 0.1

	// MinTotalDuration keeps the ruler usable when the timeline is empty
	// or nearly so. UI floor only; export uses the raw content duration.
	MinTotalDuration = 10.0

	// DefaultClipDuration is used when the source media's duration is
	// unknown at insert time.
	DefaultClipDuration = 10.0

	MinZoom     = 1.0    // pixels per second
	MaxZoom     = 1000.0 //
	DefaultZoom = 50.0

	DefaultSnapThreshold = 10.0 // pixels
)

// Epsilon absorbs float drift in duration bookkeeping.
const Epsilon = 1e-9

// Transforms are the per-clip preview transforms.
type Transforms struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Clip is a timeline-placed, trimmed reference to a portion of a media file.
// Start/End are timeline-space seconds; Offset is the trim-in point into the
// source. Duration always equals End-Start.
type Clip struct {
	ID         string     `json:"id"`
	MediaID    string     `json:"mediaId"`
	TrackID    string     `json:"trackId"`
	Start      float64    `json:"start"`
	End        float64    `json:"end"`
	Offset     float64    `json:"offset"`
	Duration   float64    `json:"duration"`
	Transforms Transforms `json:"transforms"`
	Volume     float64    `json:"volume"`
}

// VideoTimeAt converts a timeline instant to the clip's source-local time.
func (c *Clip) VideoTimeAt(timelineTime float64) float64 {
	return c.Offset + (timelineTime - c.Start)
}

// TimelineTimeAt converts a source-local time to the timeline instant.
func (c *Clip) TimelineTimeAt(videoTime float64) float64 {
	return c.Start + (videoTime - c.Offset)
}

// Contains reports whether t falls inside the clip's half-open interval.
func (c *Clip) Contains(t float64) bool {
	return t >= c.Start && t < c.End
}

// Track is an ordered lane of clips. ClipIDs holds insertion order, which
// drives rendering stacking, not temporal order.
type Track struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Name    string   `json:"name"`
	ClipIDs []string `json:"clips"`
	Height  int      `json:"height"`
	Locked  bool     `json:"locked"`
}

// Timeline carries the cursor and view settings.
type Timeline struct {
	Zoom          float64 `json:"zoom"` // pixels per second
	Playhead      float64 `json:"playhead"`
	Snap          bool    `json:"snap"`
	SnapThreshold float64 `json:"snapThreshold"` // pixels
	TotalDuration float64 `json:"totalDuration"`
}

// MediaResolver supplies source durations for trim-bound validation.
// Implemented by the media inventory; absent media resolves to unknown.
type MediaResolver interface {
	MediaDuration(mediaID string) (float64, bool)
}

// clampZoom bounds a requested zoom to the supported range.
func clampZoom(zoom float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}
