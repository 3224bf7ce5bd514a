// Package recordingmodule manages capture sessions: the session state
// machine, saving captured streams to disk, and converting finished WebM
// captures into importable MP4 files.
package recordingmodule

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the capture session lifecycle state.
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusRecording  SessionStatus = "recording"
	StatusPaused     SessionStatus = "paused"
	StatusStopped    SessionStatus = "stopped"
	StatusProcessing SessionStatus = "processing"
)

// legalTransitions enumerates the allowed session moves; illegal ones are
// rejected at the boundary.
var legalTransitions = map[SessionStatus][]SessionStatus{
	StatusIdle:       {StatusRecording},
	StatusRecording:  {StatusPaused, StatusStopped},
	StatusPaused:     {StatusRecording, StatusStopped},
	StatusStopped:    {StatusProcessing, StatusIdle},
	StatusProcessing: {StatusIdle},
}

// Session is one capture run. A new recording always starts a new session;
// the machine returns to idle when processing finishes.
type Session struct {
	mu sync.Mutex

	ID        string
	Status    SessionStatus
	StartedAt time.Time
	Path      string
	Duration  float64
	Size      int64
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), Status: StatusIdle}
}

// Transition moves the session to a new status, rejecting illegal moves.
func (s *Session) Transition(to SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range legalTransitions[s.Status] {
		if allowed == to {
			if to == StatusRecording && s.Status == StatusIdle {
				s.StartedAt = time.Now()
			}
			s.Status = to
			return nil
		}
	}
	return fmt.Errorf("illegal recording status transition %s -> %s", s.Status, to)
}

// CurrentStatus returns the session status.
func (s *Session) CurrentStatus() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

// View returns a consistent copy for serialization.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := SessionView{
		ID:       s.ID,
		Status:   s.Status,
		Path:     s.Path,
		Duration: s.Duration,
		Size:     s.Size,
	}
	if !s.StartedAt.IsZero() {
		view.StartedAt = s.StartedAt.Format(time.RFC3339)
	}
	return view
}

// SessionView is the serialized form of a session.
type SessionView struct {
	ID        string        `json:"id"`
	Status    SessionStatus `json:"status"`
	StartedAt string        `json:"started_at,omitempty"`
	Path      string        `json:"path,omitempty"`
	Duration  float64       `json:"duration,omitempty"`
	Size      int64         `json:"size,omitempty"`
}
