package timelinemodule

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

// State is the explicit container for all timeline data. It is owned by the
// timeline module and handed to collaborators by reference; there are no
// package-level globals.
type State struct {
	mu sync.RWMutex

	tracks   []*Track
	clips    []*Clip
	timeline Timeline

	selectedClipID string

	resolver MediaResolver
	logger   hclog.Logger
}

// NewState creates a state container with the default two tracks.
func NewState(resolver MediaResolver, logger hclog.Logger) *State {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &State{
		tracks: []*Track{
			{ID: PrimaryTrackID, Kind: TrackKindVideo, Name: "Track 1", ClipIDs: []string{}, Height: 80},
			{ID: OverlayTrackID, Kind: TrackKindOverlay, Name: "Track 2", ClipIDs: []string{}, Height: 80},
		},
		timeline: Timeline{
			Zoom:          DefaultZoom,
			Playhead:      0,
			Snap:          true,
			SnapThreshold: DefaultSnapThreshold,
			TotalDuration: MinTotalDuration,
		},
		resolver: resolver,
		logger:   logger,
	}
}

// Timeline returns a copy of the current timeline settings.
func (s *State) Timeline() Timeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeline
}

// Tracks returns copies of all tracks in lane order.
func (s *State) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		c := *t
		c.ClipIDs = append([]string(nil), t.ClipIDs...)
		out = append(out, c)
	}
	return out
}

// Clips returns copies of all clips in insertion order.
func (s *State) Clips() []Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Clip, 0, len(s.clips))
	for _, c := range s.clips {
		out = append(out, *c)
	}
	return out
}

// Clip returns a copy of the clip with the given ID.
func (s *State) Clip(clipID string) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.findClip(clipID); c != nil {
		return *c, true
	}
	return Clip{}, false
}

// SelectedClipID returns the current selection, empty when none.
func (s *State) SelectedClipID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedClipID
}

// SelectClip sets the selection; empty clears it. Selecting an unknown clip
// is a no-op.
func (s *State) SelectClip(clipID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clipID != "" && s.findClip(clipID) == nil {
		return
	}
	s.selectedClipID = clipID
}

// ActiveClipAt returns the clip active at time t, preferring the primary
// track, then the overlay track. Preview compositing priority only.
func (s *State) ActiveClipAt(t float64) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, trackID := range []string{PrimaryTrackID, OverlayTrackID} {
		if c := s.activeClipOnTrack(trackID, t); c != nil {
			return *c, true
		}
	}
	return Clip{}, false
}

// ActiveClipOnTrack returns the clip on the given track containing time t.
func (s *State) ActiveClipOnTrack(trackID string, t float64) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.activeClipOnTrack(trackID, t); c != nil {
		return *c, true
	}
	return Clip{}, false
}

// NextClipOnTrack returns the first clip on the same track that begins at
// or after current ends. Clips that overlap current do not count as next;
// playback reaches them through the active-clip query instead.
func (s *State) NextClipOnTrack(current Clip) (Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next *Clip
	for _, c := range s.clips {
		if c.TrackID != current.TrackID || c.ID == current.ID {
			continue
		}
		if c.Start < current.End-Epsilon {
			continue
		}
		if next == nil || c.Start < next.Start {
			next = c
		}
	}
	if next == nil {
		return Clip{}, false
	}
	return *next, true
}

// ContentDuration returns the raw max clip end, without the UI floor.
func (s *State) ContentDuration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentDuration()
}

// Snapshot returns a consistent copy of tracks, clips, and timeline for the
// export planner.
func (s *State) Snapshot() ([]Track, []Clip, Timeline) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := make([]Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		c := *t
		c.ClipIDs = append([]string(nil), t.ClipIDs...)
		tracks = append(tracks, c)
	}
	clips := make([]Clip, 0, len(s.clips))
	for _, c := range s.clips {
		clips = append(clips, *c)
	}
	return tracks, clips, s.timeline
}

// internal helpers; callers hold the lock

func (s *State) findClip(clipID string) *Clip {
	for _, c := range s.clips {
		if c.ID == clipID {
			return c
		}
	}
	return nil
}

func (s *State) findTrack(trackID string) *Track {
	for _, t := range s.tracks {
		if t.ID == trackID {
			return t
		}
	}
	return nil
}

func (s *State) activeClipOnTrack(trackID string, t float64) *Clip {
	for _, c := range s.clips {
		if c.TrackID == trackID && c.Contains(t) {
			return c
		}
	}
	return nil
}

func (s *State) contentDuration() float64 {
	max := 0.0
	for _, c := range s.clips {
		if c.End > max {
			max = c.End
		}
	}
	return max
}

// recomputeTotalDuration refreshes the derived timeline duration. Called
// after every clip mutation.
func (s *State) recomputeTotalDuration() {
	total := s.contentDuration()
	if total < MinTotalDuration {
		total = MinTotalDuration
	}
	s.timeline.TotalDuration = total
}
