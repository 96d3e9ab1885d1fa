package local

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CommandSpec is one tool process launch.
type CommandSpec struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner abstracts process execution for tool invocation.
type CommandRunner interface {
	// Run streams stdout lines to onLine and returns the tail of stderr and
	// the exit code.
	Run(ctx context.Context, spec CommandSpec, onLine func(string)) (stderrTail string, exitCode int32, err error)
}

const stderrTailBytes = 4096

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, spec CommandSpec, onLine func(string)) (string, int32, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	stderr := &tailBuffer{max: stderrTailBytes}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", 1, err
	}
	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", 127, err
		}
		return "", 1, err
	}

	readErr := streamLines(stdout, onLine)
	if readErr != nil {
		// keep the pipe drained so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	err = cmd.Wait()
	if err == nil && readErr != nil {
		return stderr.String(), 1, fmt.Errorf("local: read tool output: %w", readErr)
	}
	if err == nil {
		return stderr.String(), 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stderr.String(), int32(exitErr.ExitCode()), err
	}
	return stderr.String(), 1, err
}

// streamLines hands every line of r to onLine without a length limit. A final
// line without a newline is still delivered.
func streamLines(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			onLine(strings.TrimSuffix(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
