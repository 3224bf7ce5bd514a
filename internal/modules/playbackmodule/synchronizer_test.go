package playbackmodule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu sync.Mutex

	current float64
	loaded  string
	playing bool

	playCalls  int
	pauseCalls int
	seekCalls  int

	playErr error
}

func (f *fakeHandle) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playCalls++
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakeHandle) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	f.playing = false
	return nil
}

func (f *fakeHandle) Seek(ctx context.Context, videoTime float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekCalls++
	f.current = videoTime
	return nil
}

func (f *fakeHandle) CurrentTime(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeHandle) Load(ctx context.Context, mediaID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = mediaID
	return nil
}

func (f *fakeHandle) snapshot() fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeHandle{
		current:    f.current,
		loaded:     f.loaded,
		playing:    f.playing,
		playCalls:  f.playCalls,
		pauseCalls: f.pauseCalls,
		seekCalls:  f.seekCalls,
	}
}

type syncResolver struct{}

func (syncResolver) MediaDuration(string) (float64, bool) { return 60, true }

func testConfig() config.PlaybackConfig {
	return config.PlaybackConfig{
		SeekJumpThreshold:   0.5,
		NaturalUpdateWindow: 200 * time.Millisecond,
		DriftTolerance:      1.0,
		GapTickInterval:     time.Millisecond,
	}
}

func newTestSynchronizer(t *testing.T) (*Synchronizer, *timelinemodule.State) {
	t.Helper()
	timeline := timelinemodule.NewState(syncResolver{}, nil)
	s := NewSynchronizer(timeline, nil, testConfig(), nil)
	t.Cleanup(func() { s.Pause(context.Background()) })
	return s, timeline
}

func TestPlayPauseMirrorsAllHandles(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))
	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.OverlayTrackID, 0, 10, 0))

	primary := &fakeHandle{}
	overlay := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, primary)
	s.RegisterHandle(timelinemodule.OverlayTrackID, overlay)

	s.Play(ctx)
	assert.True(t, s.Playing())
	assert.True(t, primary.snapshot().playing)
	assert.True(t, overlay.snapshot().playing)
	assert.Equal(t, "media-a", primary.snapshot().loaded)
	assert.Equal(t, "media-b", overlay.snapshot().loaded)

	s.Pause(ctx)
	assert.False(t, s.Playing())
	assert.False(t, primary.snapshot().playing)
	assert.False(t, overlay.snapshot().playing)
}

func TestHandleFailureDoesNotStallOthers(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))
	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.OverlayTrackID, 0, 10, 0))

	broken := &fakeHandle{playErr: errors.New("surface gone")}
	healthy := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, broken)
	s.RegisterHandle(timelinemodule.OverlayTrackID, healthy)

	s.Play(ctx)
	assert.True(t, s.Playing())
	assert.True(t, healthy.snapshot().playing)
	assert.False(t, broken.snapshot().playing)
}

func TestManualSeekForceSyncsHandles(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	// Clip offset 2: timeline 0-10 maps to source 2-12.
	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 2))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)

	// A 5 s jump with no recent natural update is a user scrub.
	s.Seek(ctx, 5)

	snap := h.snapshot()
	assert.Equal(t, 5.0, timeline.Timeline().Playhead)
	assert.Equal(t, 7.0, snap.current, "sought to offset + (t - start)")
	assert.False(t, s.Playing(), "a scrub stops playback")
	assert.False(t, snap.playing)
	assert.GreaterOrEqual(t, snap.pauseCalls, 1)
}

func TestManualSeekForcesSyncBelowDriftTolerance(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))

	// The handle sits at 0; a 0.8 s scrub is past the jump threshold but
	// inside the drift tolerance, and must still be corrected.
	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)

	s.Seek(ctx, 0.8)

	snap := h.snapshot()
	assert.Equal(t, 0.8, timeline.Timeline().Playhead)
	assert.Equal(t, 0.8, snap.current, "forced sync ignores the drift tolerance")
	assert.GreaterOrEqual(t, snap.seekCalls, 1)
}

func TestSmallSeekDoesNotForceSync(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)
	before := h.snapshot()

	// Within the jump threshold: cursor moves, surfaces are left alone.
	s.Seek(ctx, 0.3)

	after := h.snapshot()
	assert.Equal(t, 0.3, timeline.Timeline().Playhead)
	assert.Equal(t, before.seekCalls, after.seekCalls)
	assert.Equal(t, before.pauseCalls, after.pauseCalls)
}

func TestSeekDuringPlaybackProgressIsNatural(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)

	// A natural time update immediately before the seek marks it as
	// playback progress even though the jump exceeds the threshold.
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 2)
	before := h.snapshot()

	s.Seek(ctx, 8)

	after := h.snapshot()
	assert.Equal(t, 8.0, timeline.Timeline().Playhead)
	assert.Equal(t, before.pauseCalls, after.pauseCalls)
}

func TestTimeUpdateDrivesPlayheadFromPrimary(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 2, 10, 1))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	timeline.SetPlayhead(3)
	s.Play(ctx)

	// Source time 4 on a clip starting at 2 with offset 1 is timeline 5.
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 4)
	assert.Equal(t, 5.0, timeline.Timeline().Playhead)

	// While the primary track has a clip under the cursor, overlay
	// updates never drive it.
	s.HandleTimeUpdate(ctx, timelinemodule.OverlayTrackID, 9)
	assert.Equal(t, 5.0, timeline.Timeline().Playhead)
}

func TestOverlayDrivesPlayheadWhenPrimaryIsSilent(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	// Content only on the overlay track: its handle becomes the clock.
	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.OverlayTrackID, 0, 10, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.OverlayTrackID, h)
	s.Play(ctx)

	s.HandleTimeUpdate(ctx, timelinemodule.OverlayTrackID, 4)
	assert.Equal(t, 4.0, timeline.Timeline().Playhead)

	// The update counts as natural progress, so an immediate follow-up
	// seek is not misclassified as a user scrub.
	pausesBefore := h.snapshot().pauseCalls
	s.Seek(ctx, 4.8)
	assert.Equal(t, pausesBefore, h.snapshot().pauseCalls)
	assert.True(t, s.Playing())
}

func TestOverlayClockFiresClipEnd(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.OverlayTrackID, 0, 5, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.OverlayTrackID, h)
	s.Play(ctx)

	s.HandleTimeUpdate(ctx, timelinemodule.OverlayTrackID, 5.2)

	assert.Equal(t, 5.0, timeline.Timeline().Playhead)
	assert.False(t, s.Playing())
	assert.False(t, h.snapshot().playing)
}

func TestOverlayDriftCorrection(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))
	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.OverlayTrackID, 0, 10, 0))

	primary := &fakeHandle{}
	overlay := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, primary)
	s.RegisterHandle(timelinemodule.OverlayTrackID, overlay)
	s.Play(ctx)

	// Within tolerance: no correction.
	overlay.mu.Lock()
	overlay.current = 2.4
	seeksBefore := overlay.seekCalls
	overlay.mu.Unlock()
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 3)
	assert.Equal(t, seeksBefore, overlay.snapshot().seekCalls)

	// Past tolerance: the overlay is pulled back to the cursor.
	overlay.mu.Lock()
	overlay.current = 7.5
	overlay.mu.Unlock()
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 4)
	assert.Equal(t, 4.0, overlay.snapshot().current)
}

func TestResyncIsIdempotent(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 10, 0))

	h := &fakeHandle{current: 30}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	timeline.SetPlayhead(4)

	s.Resync(ctx)
	assert.Equal(t, 4.0, h.snapshot().current)
	seeks := h.snapshot().seekCalls

	// Already in sync: the second pass performs no extra seeks.
	s.Resync(ctx)
	assert.Equal(t, seeks, h.snapshot().seekCalls)
}

func TestClipEndAtContentEndStopsPlayback(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	clip := timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 5, 0)
	require.NotNil(t, clip)

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)

	// The handle overshoots slightly; the cursor snaps to the boundary.
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 5.2)

	assert.Equal(t, 5.0, timeline.Timeline().Playhead)
	assert.False(t, s.Playing())
	assert.False(t, h.snapshot().playing)
}

func TestClipEndRollsIntoAdjacentClip(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()
	timeline.SetSnap(false)

	first := timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 5, 0)
	require.NotNil(t, first)
	second := timeline.AddClip("media-b", timelinemodule.PrimaryTrackID, 5, 5, 2)
	require.NotNil(t, second)

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)

	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 5.1)

	snap := h.snapshot()
	assert.Equal(t, 5.0, timeline.Timeline().Playhead)
	assert.True(t, s.Playing())
	assert.Equal(t, "media-b", snap.loaded)
	assert.Equal(t, 2.0, snap.current, "second clip starts at its own offset")
	assert.True(t, snap.playing)
}

func TestClipEndWithOverlappingNextNeverRewinds(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()
	timeline.SetSnap(false)

	first := timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 5, 0)
	require.NotNil(t, first)
	// Overlaps the first clip: starts before it ends.
	second := timeline.AddClip("media-b", timelinemodule.PrimaryTrackID, 3, 5, 0)
	require.NotNil(t, second)

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)
	s.Play(ctx)

	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 5.1)

	snap := h.snapshot()
	assert.Equal(t, 5.0, timeline.Timeline().Playhead, "the cursor stays at the boundary instead of rewinding to the overlap start")
	assert.True(t, s.Playing())
	assert.Equal(t, "media-b", snap.loaded)
	assert.Equal(t, 2.0, snap.current, "entered the overlapping clip at the boundary: offset + (5 - 3)")
	assert.True(t, snap.playing)
}

func TestGapTickerAdvancesToNextClip(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()
	timeline.SetSnap(false)

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 2, 0))
	require.NotNil(t, timeline.AddClip("media-b", timelinemodule.PrimaryTrackID, 3, 2, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)

	// Start inside the gap between the clips.
	timeline.SetPlayhead(2.5)
	s.Play(ctx)

	assert.Eventually(t, func() bool {
		snap := h.snapshot()
		return snap.loaded == "media-b" && snap.playing
	}, 2*time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, timeline.Timeline().Playhead, 3.0)
}

func TestGapTickerStopsAtContentEnd(t *testing.T) {
	s, timeline := newTestSynchronizer(t)
	ctx := context.Background()

	require.NotNil(t, timeline.AddClip("media-a", timelinemodule.PrimaryTrackID, 0, 2, 0))

	h := &fakeHandle{}
	s.RegisterHandle(timelinemodule.PrimaryTrackID, h)

	timeline.SetPlayhead(1.95)
	s.Play(ctx)
	s.HandleTimeUpdate(ctx, timelinemodule.PrimaryTrackID, 2.1)

	assert.False(t, s.Playing())
	assert.Equal(t, 2.0, timeline.Timeline().Playhead)
}
