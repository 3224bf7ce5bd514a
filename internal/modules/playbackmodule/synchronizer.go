package playbackmodule

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/modules/timelinemodule"
	"github.com/hashicorp/go-hclog"
)

// Synchronizer drives the registered media handles from the timeline cursor
// and folds their time updates back into it. The primary track's handle is
// the clock source during natural playback, with the overlay track taking
// over when the primary has nothing under the cursor; every other handle is
// corrected against the cursor when it drifts past the tolerance.
type Synchronizer struct {
	mu sync.Mutex

	timeline *timelinemodule.State
	eventBus events.EventBus
	cfg      config.PlaybackConfig
	logger   hclog.Logger

	handles map[string]MediaHandle
	playing bool

	// lastNaturalUpdate marks the most recent time update that came from a
	// playing handle, used to tell user scrubs apart from playback progress.
	lastNaturalUpdate time.Time

	// loadedMedia tracks which source each handle currently has loaded.
	loadedMedia map[string]string

	gapCancel context.CancelFunc

	now func() time.Time
}

// NewSynchronizer creates a synchronizer over the given timeline state.
func NewSynchronizer(timeline *timelinemodule.State, eventBus events.EventBus, cfg config.PlaybackConfig, logger hclog.Logger) *Synchronizer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Synchronizer{
		timeline:    timeline,
		eventBus:    eventBus,
		cfg:         cfg,
		logger:      logger,
		handles:     make(map[string]MediaHandle),
		loadedMedia: make(map[string]string),
		now:         time.Now,
	}
}

// RegisterHandle attaches a preview surface to a track. A handle registered
// for a track replaces any previous one.
func (s *Synchronizer) RegisterHandle(trackID string, handle MediaHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[trackID] = handle
	delete(s.loadedMedia, trackID)
	s.logger.Debug("handle registered", "trackId", trackID)
}

// UnregisterHandle detaches a track's surface.
func (s *Synchronizer) UnregisterHandle(trackID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, trackID)
	delete(s.loadedMedia, trackID)
}

// Playing reports whether playback is running.
func (s *Synchronizer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Play starts playback from the current cursor. Every track with an active
// clip is synced and started; a handle failure is logged and skipped so one
// broken surface cannot stall the rest. With no active clip under the
// cursor the gap ticker advances it to the next clip.
func (s *Synchronizer) Play(ctx context.Context) {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = true
	playhead := s.timeline.Timeline().Playhead
	s.syncAllLocked(ctx, playhead, true, false)
	hasActive := s.anyActiveLocked(playhead)
	if !hasActive {
		s.startGapTickerLocked()
	}
	s.mu.Unlock()

	s.publish(events.EventPlaybackStarted, "Playback started", map[string]interface{}{"time": playhead})
}

// Pause stops playback and every handle.
func (s *Synchronizer) Pause(ctx context.Context) {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.stopGapTickerLocked()
	for trackID, h := range s.handles {
		if err := h.Pause(ctx); err != nil {
			s.logger.Warn("pause failed", "trackId", trackID, "error", err)
		}
	}
	playhead := s.timeline.Timeline().Playhead
	s.mu.Unlock()

	s.publish(events.EventPlaybackPaused, "Playback paused", map[string]interface{}{"time": playhead})
}

// Seek moves the cursor to t. A jump larger than the seek threshold with no
// recent natural update is a user scrub: playback stops and every handle is
// paused and force-synced to the new position regardless of drift, since
// the user is repositioning to look around. Small or playback-adjacent
// moves only nudge the cursor and let drift correction handle the surfaces.
func (s *Synchronizer) Seek(ctx context.Context, t float64) {
	s.mu.Lock()
	prev := s.timeline.Timeline().Playhead
	jump := math.Abs(t - prev)
	natural := s.now().Sub(s.lastNaturalUpdate) <= s.cfg.NaturalUpdateWindow
	manual := jump > s.cfg.SeekJumpThreshold && !natural

	target := s.timeline.SetPlayhead(t)

	wasPlaying := s.playing
	if manual {
		s.playing = false
		s.stopGapTickerLocked()
		for trackID, h := range s.handles {
			if err := h.Pause(ctx); err != nil {
				s.logger.Warn("pause failed during seek", "trackId", trackID, "error", err)
			}
		}
		s.syncAllLocked(ctx, target, false, true)
	}
	s.mu.Unlock()

	s.publish(events.EventPlayheadUpdated, "Playhead moved", map[string]interface{}{
		"time":   target,
		"manual": manual,
	})
	if manual && wasPlaying {
		s.publish(events.EventPlaybackPaused, "Playback paused", map[string]interface{}{"time": target})
	}
}

// HandleTimeUpdate folds a handle's natural progress back into the cursor.
// The primary track is the clock source; the overlay track takes over when
// the primary has no clip under the cursor, and is otherwise corrected
// against it. Crossing the active clip's end snaps the cursor to the clip
// boundary and hands off to the next clip or the gap ticker.
func (s *Synchronizer) HandleTimeUpdate(ctx context.Context, trackID string, videoTime float64) {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}

	playhead := s.timeline.Timeline().Playhead
	if trackID != timelinemodule.PrimaryTrackID {
		if _, primaryActive := s.timeline.ActiveClipOnTrack(timelinemodule.PrimaryTrackID, playhead); primaryActive {
			s.mu.Unlock()
			return
		}
	}
	clip, ok := s.timeline.ActiveClipOnTrack(trackID, playhead)
	if !ok {
		s.mu.Unlock()
		return
	}

	timelineTime := clip.TimelineTimeAt(videoTime)
	if timelineTime >= clip.End {
		s.mu.Unlock()
		s.handleClipEnded(ctx, clip)
		return
	}

	s.lastNaturalUpdate = s.now()
	s.timeline.SetPlayhead(timelineTime)

	// Correct the other tracks against the new cursor position.
	for otherID := range s.handles {
		if otherID != trackID {
			s.syncTrackLocked(ctx, otherID, timelineTime, false, false)
		}
	}
	s.mu.Unlock()

	s.publish(events.EventPlayheadUpdated, "Playhead moved", map[string]interface{}{
		"time":   timelineTime,
		"manual": false,
	})
}

// handleClipEnded snaps the cursor to the boundary and either rolls into
// whatever clip covers it, starts ticking across the gap, or stops at the
// end of content. The cursor never moves backwards here: an overlapping
// clip that started earlier is entered at the boundary, not at its start.
func (s *Synchronizer) handleClipEnded(ctx context.Context, clip timelinemodule.Clip) {
	s.mu.Lock()
	s.timeline.SetPlayhead(clip.End)

	_, covered := s.timeline.ActiveClipOnTrack(clip.TrackID, clip.End)
	_, hasNext := s.timeline.NextClipOnTrack(clip)
	stopped := false
	switch {
	case covered:
		// Back-to-back or overlapping: another clip already owns the
		// boundary, so keep rolling from right here.
		s.syncTrackLocked(ctx, clip.TrackID, clip.End, true, true)
	case hasNext:
		s.startGapTickerLocked()
	default:
		stopped = true
		s.playing = false
		s.stopGapTickerLocked()
		for trackID, h := range s.handles {
			if err := h.Pause(ctx); err != nil {
				s.logger.Warn("pause failed at end", "trackId", trackID, "error", err)
			}
		}
	}
	s.mu.Unlock()

	s.publish(events.EventClipEnded, "Clip ended", map[string]interface{}{
		"clip_id": clip.ID,
		"time":    clip.End,
	})
	if stopped {
		s.publish(events.EventPlaybackPaused, "Playback finished", map[string]interface{}{"time": clip.End})
	}
}

// Resync forces every handle to the cursor, within drift tolerance. Calling
// it twice in a row performs no extra seeks.
func (s *Synchronizer) Resync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncAllLocked(ctx, s.timeline.Timeline().Playhead, s.playing, false)
}

// syncAllLocked aligns every registered handle with the cursor.
func (s *Synchronizer) syncAllLocked(ctx context.Context, timelineTime float64, andPlay, force bool) {
	for trackID := range s.handles {
		s.syncTrackLocked(ctx, trackID, timelineTime, andPlay, force)
	}
}

// syncTrackLocked aligns one track's handle with the cursor: loads the
// active clip's media if needed, seeks to the expected source time, and
// starts or pauses the surface to match the desired transport state. A
// forced sync always seeks; otherwise the handle is only corrected when
// its drift exceeds the tolerance. Handle errors are logged and contained
// to the track.
func (s *Synchronizer) syncTrackLocked(ctx context.Context, trackID string, timelineTime float64, andPlay, force bool) {
	h, ok := s.handles[trackID]
	if !ok {
		return
	}

	clip, active := s.timeline.ActiveClipOnTrack(trackID, timelineTime)
	if !active {
		if err := h.Pause(ctx); err != nil {
			s.logger.Warn("pause failed", "trackId", trackID, "error", err)
		}
		return
	}

	if s.loadedMedia[trackID] != clip.MediaID {
		if err := h.Load(ctx, clip.MediaID); err != nil {
			s.logger.Warn("load failed", "trackId", trackID, "mediaId", clip.MediaID, "error", err)
			return
		}
		s.loadedMedia[trackID] = clip.MediaID
	}

	expected := clip.VideoTimeAt(timelineTime)
	current, err := h.CurrentTime(ctx)
	if err != nil {
		s.logger.Warn("current time unavailable", "trackId", trackID, "error", err)
		current = math.Inf(1)
	}
	if force || math.Abs(current-expected) > s.cfg.DriftTolerance {
		if err := h.Seek(ctx, expected); err != nil {
			s.logger.Warn("seek failed", "trackId", trackID, "error", err)
			return
		}
	}

	if andPlay {
		if err := h.Play(ctx); err != nil {
			s.logger.Warn("play failed", "trackId", trackID, "error", err)
		}
	}
}

// anyActiveLocked reports whether any track has a clip under the cursor.
func (s *Synchronizer) anyActiveLocked(timelineTime float64) bool {
	_, ok := s.timeline.ActiveClipAt(timelineTime)
	return ok
}

// startGapTickerLocked advances the cursor through clip-free regions on a
// wall-clock tick until it reaches the next clip or runs out of content.
func (s *Synchronizer) startGapTickerLocked() {
	if s.gapCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.gapCancel = cancel

	interval := s.cfg.GapTickInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	go s.runGapTicker(ctx, interval)
}

func (s *Synchronizer) stopGapTickerLocked() {
	if s.gapCancel != nil {
		s.gapCancel()
		s.gapCancel = nil
	}
}

func (s *Synchronizer) runGapTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			elapsed := now.Sub(last).Seconds()
			last = now
			if s.advanceThroughGap(ctx, elapsed) {
				return
			}
		}
	}
}

// advanceThroughGap moves the cursor forward by elapsed seconds of gap time.
// It returns true when the ticker should stop: a clip was reached and
// playback handed back to the handles, or the content ran out.
func (s *Synchronizer) advanceThroughGap(ctx context.Context, elapsed float64) bool {
	s.mu.Lock()

	// A tick may already be in flight when the ticker is cancelled; never
	// touch state on behalf of a superseded ticker.
	if ctx.Err() != nil {
		s.mu.Unlock()
		return true
	}

	if !s.playing {
		s.gapCancel = nil
		s.mu.Unlock()
		return true
	}

	playhead := s.timeline.Timeline().Playhead
	target := playhead + elapsed

	if clip, ok := s.timeline.ActiveClipAt(target); ok {
		// Entering a clip: land exactly on its start if we skipped over it.
		if playhead < clip.Start {
			target = clip.Start
		}
		s.timeline.SetPlayhead(target)
		s.syncAllLocked(ctx, target, true, true)
		s.gapCancel = nil
		s.mu.Unlock()
		s.publish(events.EventPlayheadUpdated, "Playhead moved", map[string]interface{}{"time": target, "manual": false})
		return true
	}

	if target >= s.timeline.ContentDuration() {
		s.timeline.SetPlayhead(target)
		s.playing = false
		s.gapCancel = nil
		s.mu.Unlock()
		s.publish(events.EventPlaybackPaused, "Playback finished", map[string]interface{}{"time": target})
		return true
	}

	s.timeline.SetPlayhead(target)
	s.mu.Unlock()
	s.publish(events.EventPlayheadUpdated, "Playhead moved", map[string]interface{}{"time": target, "manual": false})
	return false
}

func (s *Synchronizer) publish(eventType events.EventType, title string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	evt := events.NewEvent(eventType, data)
	evt.Title = title
	s.eventBus.PublishAsync(evt)
}
