package exportmodule

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/framecut/framecut/internal/events"
	"github.com/framecut/framecut/internal/ffmpeg"
	"github.com/framecut/framecut/internal/utils"
	"github.com/hashicorp/go-hclog"
)

// Executor runs a planned command sequence strictly in order: stage 2
// structurally depends on every stage 1 output existing. One job runs at a
// time; starting a second while one is active is a conflict.
type Executor struct {
	runner     ffmpeg.CommandRunner
	ffmpegPath string
	eventBus   events.EventBus
	logger     hclog.Logger

	mu     sync.Mutex
	job    *Job
	cancel context.CancelFunc
}

// NewExecutor creates an executor using the given runner; pass
// ffmpeg.NewExecRunner() outside tests.
func NewExecutor(runner ffmpeg.CommandRunner, ffmpegPath string, eventBus events.EventBus, logger hclog.Logger) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Executor{
		runner:     runner,
		ffmpegPath: ffmpegPath,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// CurrentJob returns the most recent job, which may be terminal.
func (e *Executor) CurrentJob() *Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job
}

// Start launches the command sequence in the background and returns the
// tracking job. The temp directory holding intermediate segment files is
// removed on every exit path.
func (e *Executor) Start(commands []Command, tempDir, outputPath string) (*Job, error) {
	e.mu.Lock()
	if e.job != nil && !e.job.Terminal() {
		e.mu.Unlock()
		return nil, fmt.Errorf("an export is already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := NewJob(outputPath)
	e.job = job
	e.cancel = cancel
	e.mu.Unlock()

	go e.run(ctx, job, commands, tempDir, outputPath)
	return job, nil
}

// Cancel requests termination of the active job. The process is signalled
// and cleanup runs on its exit path; the call does not wait for the
// process to die.
func (e *Executor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || e.job.Terminal() || e.cancel == nil {
		return false
	}
	e.cancel()
	return true
}

func (e *Executor) run(ctx context.Context, job *Job, commands []Command, tempDir, outputPath string) {
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			e.logger.Warn("temp cleanup failed", "dir", tempDir, "error", err)
		}
	}()

	if err := job.Transition(StatusEncoding); err != nil {
		e.logger.Error("export job in unexpected state", "error", err)
		return
	}
	e.publish(events.EventExportStarted, map[string]interface{}{
		"job_id": job.ID,
		"output": outputPath,
	})

	total := len(commands)
	for i, cmd := range commands {
		step := stepLabel(cmd, i, total)
		job.SetProgress(overallPercent(i, 0, total), step)
		e.publishProgress(job)

		if err := e.runCommand(ctx, job, cmd, i, total, step); err != nil {
			e.finishFailure(ctx, job, err)
			return
		}
	}

	if !utils.FileNonEmpty(outputPath) {
		e.finishFailure(ctx, job, fmt.Errorf("output file missing or empty: %s", outputPath))
		return
	}

	job.SetProgress(100, "Complete")
	if err := job.Transition(StatusComplete); err != nil {
		e.logger.Error("export completion rejected", "error", err)
		return
	}
	e.publish(events.EventExportComplete, map[string]interface{}{
		"job_id": job.ID,
		"output": outputPath,
	})
	e.logger.Info("export complete", "jobId", job.ID, "output", outputPath)
}

// runCommand executes one ffmpeg invocation, folding its stderr progress
// into the job. Per-command percent is currentPosition/totalDuration from
// the stream; overall percent weights every command equally.
func (e *Executor) runCommand(ctx context.Context, job *Job, cmd Command, index, total int, step string) error {
	var commandDuration float64
	return e.runner.RunStreaming(ctx, e.ffmpegPath, cmd.Args, func(line string) {
		if d, ok := ffmpeg.ParseDuration(line); ok && commandDuration == 0 {
			commandDuration = d
			return
		}
		update, ok := ffmpeg.ParseProgress(line)
		if !ok || commandDuration <= 0 {
			return
		}
		frac := update.Time / commandDuration
		if frac > 1 {
			frac = 1
		}
		job.SetProgress(overallPercent(index, frac*100, total), step)
		e.publishProgress(job)
	})
}

func (e *Executor) finishFailure(ctx context.Context, job *Job, cause error) {
	if ctx.Err() != nil {
		if err := job.Transition(StatusCancelled); err == nil {
			e.logger.Info("export cancelled", "jobId", job.ID)
			e.publish(events.EventExportError, map[string]interface{}{
				"job_id":    job.ID,
				"cancelled": true,
			})
		}
		return
	}

	job.Fail(cause.Error())
	if err := job.Transition(StatusError); err != nil {
		e.logger.Error("export failure transition rejected", "error", err)
		return
	}
	e.logger.Error("export failed", "jobId", job.ID, "error", cause)
	e.publish(events.EventExportError, map[string]interface{}{
		"job_id": job.ID,
		"error":  cause.Error(),
	})
}

func (e *Executor) publishProgress(job *Job) {
	view := job.View()
	e.publish(events.EventExportProgress, map[string]interface{}{
		"job_id":                   view.ID,
		"progress":                 view.Progress,
		"current_step":             view.CurrentStep,
		"estimated_time_remaining": view.EstimatedRemaining,
	})
}

func (e *Executor) publish(eventType events.EventType, data map[string]interface{}) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.PublishAsync(events.NewEvent(eventType, data))
}

// overallPercent aggregates progress across the sequence by command count.
func overallPercent(completed int, currentFraction float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return (float64(completed) + currentFraction/100) / float64(total) * 100
}

func stepLabel(cmd Command, index, total int) string {
	if cmd.Stage == 1 {
		return fmt.Sprintf("Extracting segment %d/%d", index+1, total-1)
	}
	return "Composing final video"
}
