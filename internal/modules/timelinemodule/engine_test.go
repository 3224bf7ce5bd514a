package timelinemodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	durations map[string]float64
}

func (r *stubResolver) MediaDuration(mediaID string) (float64, bool) {
	d, ok := r.durations[mediaID]
	return d, ok
}

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(&stubResolver{durations: map[string]float64{
		"media-a": 30.0,
		"media-b": 12.5,
	}}, nil)
}

func TestAddClip(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 5, 8, 2)
	require.NotNil(t, clip)
	assert.Equal(t, PrimaryTrackID, clip.TrackID)
	assert.Equal(t, 5.0, clip.Start)
	assert.Equal(t, 13.0, clip.End)
	assert.Equal(t, 2.0, clip.Offset)
	assert.Equal(t, clip.End-clip.Start, clip.Duration)
	assert.Equal(t, 1.0, clip.Volume)
	assert.Equal(t, 1.0, clip.Transforms.Scale)

	tracks := s.Tracks()
	require.Len(t, tracks, 2)
	assert.Contains(t, tracks[0].ClipIDs, clip.ID)
}

func TestAddClipDurationFallback(t *testing.T) {
	s := newTestState(t)

	// Known media: duration comes from the source.
	clip := s.AddClip("media-b", PrimaryTrackID, 0, 0, 0)
	require.NotNil(t, clip)
	assert.Equal(t, 12.5, clip.Duration)

	// Unknown media: default duration.
	clip = s.AddClip("media-x", PrimaryTrackID, 20, 0, 0)
	require.NotNil(t, clip)
	assert.Equal(t, DefaultClipDuration, clip.Duration)
}

func TestAddClipRejects(t *testing.T) {
	s := newTestState(t)

	assert.Nil(t, s.AddClip("media-a", "track-99", 0, 5, 0))
	assert.Nil(t, s.AddClip("media-a", PrimaryTrackID, -1, 5, 0))
	assert.Nil(t, s.AddClip("media-a", PrimaryTrackID, 0, 5, -1))
	assert.Empty(t, s.Clips())
}

func TestTotalDurationDerived(t *testing.T) {
	s := newTestState(t)

	// Empty timeline keeps the floor.
	assert.Equal(t, MinTotalDuration, s.Timeline().TotalDuration)
	assert.Equal(t, 0.0, s.ContentDuration())

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 25, 0)
	require.NotNil(t, clip)
	assert.Equal(t, 25.0, s.Timeline().TotalDuration)
	assert.Equal(t, 25.0, s.ContentDuration())

	// Shrinking back under the floor restores it.
	s.TrimClip(clip.ID, TrimEnd, 4)
	assert.Equal(t, MinTotalDuration, s.Timeline().TotalDuration)
	assert.Equal(t, 4.0, s.ContentDuration())

	s.DeleteClip(clip.ID)
	assert.Equal(t, MinTotalDuration, s.Timeline().TotalDuration)
	assert.Equal(t, 0.0, s.ContentDuration())
}

func TestMoveClipPreservesDuration(t *testing.T) {
	s := newTestState(t)
	s.SetSnap(false)

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 8, 0)
	require.NotNil(t, clip)

	moved := s.MoveClip(clip.ID, 14, "")
	require.NotNil(t, moved)
	assert.Equal(t, 14.0, moved.Start)
	assert.Equal(t, 22.0, moved.End)
	assert.Equal(t, 8.0, moved.Duration)
	assert.Equal(t, clip.Offset, moved.Offset)
}

func TestMoveClipAcrossTracks(t *testing.T) {
	s := newTestState(t)
	s.SetSnap(false)

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 8, 0)
	require.NotNil(t, clip)

	moved := s.MoveClip(clip.ID, 3, OverlayTrackID)
	require.NotNil(t, moved)
	assert.Equal(t, OverlayTrackID, moved.TrackID)

	tracks := s.Tracks()
	assert.NotContains(t, tracks[0].ClipIDs, clip.ID)
	assert.Contains(t, tracks[1].ClipIDs, clip.ID)
}

func TestMoveClipSnapping(t *testing.T) {
	s := newTestState(t)

	anchor := s.AddClip("media-a", PrimaryTrackID, 0, 10, 0)
	require.NotNil(t, anchor)
	clip := s.AddClip("media-b", PrimaryTrackID, 20, 5, 0)
	require.NotNil(t, clip)

	// Default zoom 50 px/s and threshold 10 px give a 0.2 s window.
	moved := s.MoveClip(clip.ID, 10.15, "")
	require.NotNil(t, moved)
	assert.Equal(t, 10.0, moved.Start)

	// Outside the window nothing snaps.
	moved = s.MoveClip(moved.ID, 10.5, "")
	require.NotNil(t, moved)
	assert.Equal(t, 10.5, moved.Start)

	// Snapping off leaves the raw position.
	s.SetSnap(false)
	moved = s.MoveClip(moved.ID, 10.15, "")
	require.NotNil(t, moved)
	assert.Equal(t, 10.15, moved.Start)
}

func TestMoveClipSnapsToPlayhead(t *testing.T) {
	s := newTestState(t)
	s.SetPlayhead(42)

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 5, 0)
	require.NotNil(t, clip)

	moved := s.MoveClip(clip.ID, 41.9, "")
	require.NotNil(t, moved)
	assert.Equal(t, 42.0, moved.Start)
}

func TestTrimStartPreservesContentAtEnd(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 4, 10, 3)
	require.NotNil(t, clip)
	endSource := clip.VideoTimeAt(clip.End)

	trimmed := s.TrimClip(clip.ID, TrimStart, 6)
	require.NotNil(t, trimmed)
	assert.Equal(t, 6.0, trimmed.Start)
	assert.Equal(t, clip.End, trimmed.End)
	assert.Equal(t, 5.0, trimmed.Offset)
	assert.Equal(t, trimmed.End-trimmed.Start, trimmed.Duration)

	// The source frame shown at the fixed end edge is unchanged.
	assert.InDelta(t, endSource, trimmed.VideoTimeAt(trimmed.End), 1e-9)
}

func TestTrimEnd(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 10, 0)
	require.NotNil(t, clip)

	trimmed := s.TrimClip(clip.ID, TrimEnd, 7)
	require.NotNil(t, trimmed)
	assert.Equal(t, 7.0, trimmed.End)
	assert.Equal(t, 7.0, trimmed.Duration)
	assert.Equal(t, clip.Offset, trimmed.Offset)
}

func TestTrimRejections(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-b", PrimaryTrackID, 0, 10, 1)
	require.NotNil(t, clip)

	// Below the minimum duration.
	out := s.TrimClip(clip.ID, TrimEnd, 0.05)
	require.NotNil(t, out)
	assert.Equal(t, 10.0, out.Duration)

	// Start trim that would push the offset negative.
	out = s.TrimClip(clip.ID, TrimStart, -2)
	require.NotNil(t, out)
	assert.Equal(t, 0.0, out.Start)

	// End trim that would need source material past media-b's 12.5 s.
	out = s.TrimClip(clip.ID, TrimEnd, 12)
	require.NotNil(t, out)
	assert.Equal(t, 10.0, out.End)

	assert.Nil(t, s.TrimClip("missing", TrimEnd, 5))
}

func TestSplitClip(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 2, 10, 1)
	require.NotNil(t, clip)
	originalDuration := clip.Duration

	first, second := s.SplitClip(clip.ID, 6)
	require.NotNil(t, first)
	require.NotNil(t, second)

	// First half keeps the original identity.
	assert.Equal(t, clip.ID, first.ID)
	assert.NotEqual(t, clip.ID, second.ID)

	assert.Equal(t, 2.0, first.Start)
	assert.Equal(t, 6.0, first.End)
	assert.Equal(t, 6.0, second.Start)
	assert.Equal(t, 12.0, second.End)

	// Combined duration is unchanged and halves abut exactly.
	assert.InDelta(t, originalDuration, first.Duration+second.Duration, 1e-9)
	assert.Equal(t, first.End, second.Start)

	// Second half continues from the same point in the source.
	assert.InDelta(t, first.VideoTimeAt(first.End), second.VideoTimeAt(second.Start), 1e-9)
	assert.Equal(t, 5.0, second.Offset)

	// Track sequence places the new clip right after the original.
	tracks := s.Tracks()
	require.Len(t, tracks[0].ClipIDs, 2)
	assert.Equal(t, []string{first.ID, second.ID}, tracks[0].ClipIDs)
}

func TestSplitClipRequiresInteriorPoint(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 2, 10, 0)
	require.NotNil(t, clip)

	for _, at := range []float64{2, 12, 1, 13} {
		first, second := s.SplitClip(clip.ID, at)
		assert.Nil(t, first, "split at %v", at)
		assert.Nil(t, second, "split at %v", at)
	}
	assert.Len(t, s.Clips(), 1)
}

func TestDeleteClip(t *testing.T) {
	s := newTestState(t)

	clip := s.AddClip("media-a", PrimaryTrackID, 0, 5, 0)
	require.NotNil(t, clip)
	s.SelectClip(clip.ID)

	assert.True(t, s.DeleteClip(clip.ID))
	assert.Empty(t, s.Clips())
	assert.Empty(t, s.Tracks()[0].ClipIDs)
	assert.Empty(t, s.SelectedClipID())

	assert.False(t, s.DeleteClip(clip.ID))
}

func TestSetPlayhead(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, 12.5, s.SetPlayhead(12.5))
	assert.Equal(t, 0.0, s.SetPlayhead(-3))

	// No upper bound: the cursor may run past the content.
	assert.Equal(t, 9999.0, s.SetPlayhead(9999))
}

func TestSetZoomClamped(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, 120.0, s.SetZoom(120))
	assert.Equal(t, MinZoom, s.SetZoom(0.1))
	assert.Equal(t, MaxZoom, s.SetZoom(5000))
}

func TestSnapControls(t *testing.T) {
	s := newTestState(t)

	assert.True(t, s.Timeline().Snap)
	assert.False(t, s.ToggleSnap())
	assert.True(t, s.ToggleSnap())

	s.SetSnapThreshold(25)
	assert.Equal(t, 25.0, s.Timeline().SnapThreshold)
	s.SetSnapThreshold(0)
	assert.Equal(t, 1.0, s.Timeline().SnapThreshold)
}
