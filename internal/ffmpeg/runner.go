// Package ffmpeg wraps process execution and output parsing for the ffmpeg
// and ffprobe binaries. Everything that shells out to them goes through the
// CommandRunner interface so tests can substitute canned output.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes external commands.
type CommandRunner interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunStreaming executes a command and delivers each stderr line to
	// onLine as it is produced. ffmpeg writes its progress to stderr.
	RunStreaming(ctx context.Context, name string, args []string, onLine func(string)) error
}

// ExecRunner is the os/exec backed CommandRunner.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner { return &ExecRunner{} }

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (r *ExecRunner) RunStreaming(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	// Keep a tail of stderr so a failure can report what ffmpeg said.
	var tail bytes.Buffer
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if tail.Len() < 16*1024 {
			tail.WriteString(line)
			tail.WriteByte('\n')
		}
		if onLine != nil {
			onLine(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(tail.String())
		if len(detail) > 2048 {
			detail = detail[len(detail)-2048:]
		}
		return fmt.Errorf("%s exited: %w: %s", name, err, detail)
	}
	return nil
}
