// Package events provides the in-process event bus that carries editor
// notifications (playhead movement, clip boundaries, export and recording
// lifecycle) from the core to the UI shell.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	// Playback events
	EventPlayheadUpdated EventType = "playback.playhead.updated"
	EventClipEnded       EventType = "playback.clip.ended"
	EventPlaybackStarted EventType = "playback.started"
	EventPlaybackPaused  EventType = "playback.paused"

	// Timeline events
	EventClipAdded   EventType = "timeline.clip.added"
	EventClipMoved   EventType = "timeline.clip.moved"
	EventClipTrimmed EventType = "timeline.clip.trimmed"
	EventClipSplit   EventType = "timeline.clip.split"
	EventClipDeleted EventType = "timeline.clip.deleted"

	// Media events
	EventMediaImported EventType = "media.imported"
	EventMediaRemoved  EventType = "media.removed"

	// Export events
	EventExportStarted  EventType = "export.started"
	EventExportProgress EventType = "export.progress"
	EventExportComplete EventType = "export.complete"
	EventExportError    EventType = "export.error"

	// Recording events
	EventRecordingStatus EventType = "recording.status"

	// System events
	EventSystemStarted EventType = "system.started"
	EventInfo          EventType = "info"
)

// Event is a single notification published on the bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Title     string                 `json:"title,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(eventType EventType, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewSystemEvent creates an informational event with a title and message.
func NewSystemEvent(eventType EventType, title, message string) Event {
	e := NewEvent(eventType, nil)
	e.Title = title
	e.Message = message
	return e
}
