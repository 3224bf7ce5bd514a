package exportmodule

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the export job lifecycle state.
type JobStatus string

const (
	StatusPreparing JobStatus = "preparing"
	StatusEncoding  JobStatus = "encoding"
	StatusComplete  JobStatus = "complete"
	StatusError     JobStatus = "error"
	StatusCancelled JobStatus = "cancelled"
)

// legalTransitions enumerates the allowed status moves. Anything else is
// rejected at the boundary instead of trusting callers to keep the strings
// consistent.
var legalTransitions = map[JobStatus][]JobStatus{
	StatusPreparing: {StatusEncoding, StatusError, StatusCancelled},
	StatusEncoding:  {StatusComplete, StatusError, StatusCancelled},
}

// Job is one export run. Single job active at a time; a retry is a brand
// new job, never a resumption.
type Job struct {
	mu sync.Mutex

	ID                 string
	Status             JobStatus
	Progress           float64 // 0-100
	CurrentStep        string
	EstimatedRemaining time.Duration
	OutputPath         string
	Err                string

	started time.Time
}

// NewJob creates a job in the preparing state.
func NewJob(outputPath string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Status:     StatusPreparing,
		OutputPath: outputPath,
		started:    time.Now(),
	}
}

// Transition moves the job to a new status, rejecting illegal moves.
func (j *Job) Transition(to JobStatus) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, allowed := range legalTransitions[j.Status] {
		if allowed == to {
			j.Status = to
			return nil
		}
	}
	return fmt.Errorf("illegal export status transition %s -> %s", j.Status, to)
}

// Terminal reports whether the job has finished, in any way.
func (j *Job) Terminal() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.Status {
	case StatusComplete, StatusError, StatusCancelled:
		return true
	}
	return false
}

// SetProgress records overall progress and the step label, deriving the
// time remaining from elapsed wall clock once any progress exists.
func (j *Job) SetProgress(percent float64, step string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	j.Progress = percent
	j.CurrentStep = step
	if percent > 0 {
		elapsed := time.Since(j.started)
		j.EstimatedRemaining = time.Duration(float64(elapsed) / percent * (100 - percent))
	}
}

// Fail records the failure detail; the status transition is separate so the
// caller controls ordering.
func (j *Job) Fail(detail string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Err = detail
}

// View returns a consistent copy for serialization.
func (j *Job) View() JobView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobView{
		ID:                 j.ID,
		Status:             j.Status,
		Progress:           j.Progress,
		CurrentStep:        j.CurrentStep,
		EstimatedRemaining: j.EstimatedRemaining.Seconds(),
		OutputPath:         j.OutputPath,
		Error:              j.Err,
	}
}

// JobView is the serialized form of a job.
type JobView struct {
	ID                 string    `json:"id"`
	Status             JobStatus `json:"status"`
	Progress           float64   `json:"progress"`
	CurrentStep        string    `json:"current_step"`
	EstimatedRemaining float64   `json:"estimated_time_remaining"` // seconds
	OutputPath         string    `json:"output_path,omitempty"`
	Error              string    `json:"error,omitempty"`
}
