// Package playbackmodule keeps preview surfaces in lockstep with the
// timeline cursor. It owns seek classification, drift correction, clip-end
// handling, and playback across the gaps between clips.
package playbackmodule

import "context"

// MediaHandle is a playable preview surface for one track, typically backed
// by a player embedding the decoded stream of the track's active clip. All
// times are source-local seconds.
type MediaHandle interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, videoTime float64) error
	CurrentTime(ctx context.Context) (float64, error)

	// Load points the surface at a different source file. Called when the
	// active clip changes to one backed by other media.
	Load(ctx context.Context, mediaID string) error
}
