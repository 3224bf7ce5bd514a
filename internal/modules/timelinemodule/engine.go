package timelinemodule

import (
	"math"

	"github.com/google/uuid"
)

// Mutation operations. Invalid input is a logged no-op rather than an
// error: the UI treats every edit gesture as best-effort and the model must
// never end up half-mutated.

// AddClip places a new clip on a track. Duration falls back to the source
// media's duration, then to DefaultClipDuration when the media is unknown.
// Overlapping clips on one track are permitted.
func (s *State) AddClip(mediaID, trackID string, start, duration, offset float64) *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	track := s.findTrack(trackID)
	if track == nil || start < 0 || offset < 0 {
		s.logger.Debug("addClip rejected", "trackId", trackID, "start", start, "offset", offset)
		return nil
	}

	if duration <= 0 {
		duration = DefaultClipDuration
		if s.resolver != nil {
			if d, ok := s.resolver.MediaDuration(mediaID); ok && d > 0 {
				duration = d
			}
		}
	}

	clip := &Clip{
		ID:         uuid.NewString(),
		MediaID:    mediaID,
		TrackID:    trackID,
		Start:      start,
		End:        start + duration,
		Offset:     offset,
		Duration:   duration,
		Transforms: Transforms{Scale: 1},
		Volume:     1,
	}

	s.clips = append(s.clips, clip)
	track.ClipIDs = append(track.ClipIDs, clip.ID)
	s.recomputeTotalDuration()

	s.logger.Debug("clip added", "clipId", clip.ID, "trackId", trackID, "start", start, "end", clip.End)
	out := *clip
	return &out
}

// MoveClip shifts a clip to a new start, optionally onto another track,
// preserving its duration. When snapping is enabled the new start is pulled
// to the nearest same-track clip edge or the playhead within the snap
// window; snapping silently does nothing when no candidate is close enough.
func (s *State) MoveClip(clipID string, newStart float64, newTrackID string) *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip := s.findClip(clipID)
	if clip == nil || newStart < 0 {
		s.logger.Debug("moveClip rejected", "clipId", clipID, "newStart", newStart)
		return nil
	}

	targetTrackID := clip.TrackID
	if newTrackID != "" {
		targetTrackID = newTrackID
	}
	target := s.findTrack(targetTrackID)
	if target == nil {
		s.logger.Debug("moveClip rejected, unknown track", "clipId", clipID, "trackId", newTrackID)
		return nil
	}

	if s.timeline.Snap {
		newStart = s.snapStart(clip, target.ID, newStart)
	}

	duration := clip.End - clip.Start
	clip.Start = newStart
	clip.End = newStart + duration

	if targetTrackID != clip.TrackID {
		if old := s.findTrack(clip.TrackID); old != nil {
			old.ClipIDs = removeID(old.ClipIDs, clipID)
		}
		target.ClipIDs = append(target.ClipIDs, clipID)
		clip.TrackID = targetTrackID
	}

	s.recomputeTotalDuration()
	out := *clip
	return &out
}

// TrimEdge selects which clip edge a trim adjusts.
type TrimEdge string

const (
	TrimStart TrimEdge = "start"
	TrimEnd   TrimEdge = "end"
)

// TrimClip moves one edge of a clip while holding the other fixed. A
// start-edge trim shifts the source offset by the same delta so the frame
// shown at the fixed end edge does not change. Rejected when the result
// would drop below MinClipDuration, push the offset negative, or request
// source material past the media's end.
func (s *State) TrimClip(clipID string, edge TrimEdge, newValue float64) *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip := s.findClip(clipID)
	if clip == nil {
		return nil
	}

	newStart, newEnd, newOffset := clip.Start, clip.End, clip.Offset
	switch edge {
	case TrimStart:
		if newValue < 0 {
			out := *clip
			return &out
		}
		newStart = newValue
		newOffset = clip.Offset + (newValue - clip.Start)
	case TrimEnd:
		newEnd = newValue
	default:
		return nil
	}

	newDuration := newEnd - newStart
	if newDuration < MinClipDuration-Epsilon || newOffset < 0 {
		s.logger.Debug("trimClip rejected", "clipId", clipID, "edge", edge, "value", newValue)
		out := *clip
		return &out
	}
	if s.resolver != nil {
		if srcDur, ok := s.resolver.MediaDuration(clip.MediaID); ok && newOffset+newDuration > srcDur+Epsilon {
			s.logger.Debug("trimClip rejected, exceeds source", "clipId", clipID, "offset", newOffset, "duration", newDuration, "source", srcDur)
			out := *clip
			return &out
		}
	}

	clip.Start = newStart
	clip.End = newEnd
	clip.Offset = newOffset
	clip.Duration = newDuration
	s.recomputeTotalDuration()
	out := *clip
	return &out
}

// SplitClip cuts a clip in two at splitTime. The first half keeps the
// original ID; the second half gets a fresh ID, inherits track, media,
// transforms and volume, and is placed immediately after the original in
// the track's clip sequence. No-op unless splitTime is strictly inside the
// clip.
func (s *State) SplitClip(clipID string, splitTime float64) (*Clip, *Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip := s.findClip(clipID)
	if clip == nil || splitTime <= clip.Start || splitTime >= clip.End {
		s.logger.Debug("splitClip rejected", "clipId", clipID, "splitTime", splitTime)
		return nil, nil
	}

	second := &Clip{
		ID:         uuid.NewString(),
		MediaID:    clip.MediaID,
		TrackID:    clip.TrackID,
		Start:      splitTime,
		End:        clip.End,
		Offset:     clip.Offset + (splitTime - clip.Start),
		Duration:   clip.End - splitTime,
		Transforms: clip.Transforms,
		Volume:     clip.Volume,
	}

	clip.End = splitTime
	clip.Duration = splitTime - clip.Start

	s.clips = append(s.clips, second)
	if track := s.findTrack(clip.TrackID); track != nil {
		track.ClipIDs = insertAfter(track.ClipIDs, clip.ID, second.ID)
	}
	s.recomputeTotalDuration()

	first := *clip
	sec := *second
	return &first, &sec
}

// DeleteClip removes a clip from the model and its track, clearing the
// selection if it pointed at the deleted clip.
func (s *State) DeleteClip(clipID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip := s.findClip(clipID)
	if clip == nil {
		return false
	}

	for i, c := range s.clips {
		if c.ID == clipID {
			s.clips = append(s.clips[:i], s.clips[i+1:]...)
			break
		}
	}
	if track := s.findTrack(clip.TrackID); track != nil {
		track.ClipIDs = removeID(track.ClipIDs, clipID)
	}
	if s.selectedClipID == clipID {
		s.selectedClipID = ""
	}
	s.recomputeTotalDuration()
	return true
}

// SetPlayhead moves the cursor, clamped at zero. The playhead may run past
// the end of the content.
func (s *State) SetPlayhead(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Playhead = math.Max(0, t)
	return s.timeline.Playhead
}

// SetZoom sets pixels-per-second within the supported bounds.
func (s *State) SetZoom(zoom float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Zoom = clampZoom(zoom)
	return s.timeline.Zoom
}

// ToggleSnap flips edge snapping.
func (s *State) ToggleSnap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Snap = !s.timeline.Snap
	return s.timeline.Snap
}

// SetSnap sets edge snapping explicitly.
func (s *State) SetSnap(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Snap = enabled
}

// SetSnapThreshold sets the snap window in pixels, floored at one.
func (s *State) SetSnapThreshold(px float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.SnapThreshold = math.Max(1, px)
}

// snapStart pulls a candidate start toward the nearest snap target on the
// target track: other clips' start/end edges and the playhead. The window
// is snapThreshold pixels converted to seconds at the current zoom.
func (s *State) snapStart(moving *Clip, trackID string, start float64) float64 {
	window := s.timeline.SnapThreshold / s.timeline.Zoom

	best := start
	bestDist := math.Inf(1)
	consider := func(candidate float64) {
		if d := math.Abs(candidate - start); d <= window && d < bestDist {
			best = candidate
			bestDist = d
		}
	}

	for _, c := range s.clips {
		if c.ID == moving.ID || c.TrackID != trackID {
			continue
		}
		consider(c.Start)
		consider(c.End)
	}
	consider(s.timeline.Playhead)

	return best
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertAfter(ids []string, after, id string) []string {
	for i, v := range ids {
		if v == after {
			out := make([]string, 0, len(ids)+1)
			out = append(out, ids[:i+1]...)
			out = append(out, id)
			out = append(out, ids[i+1:]...)
			return out
		}
	}
	return append(ids, id)
}
