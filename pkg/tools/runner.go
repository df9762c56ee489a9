// Package tools wraps the external GateMate toolchain binaries. Each adapter
// builds its command line from the resolved access string and the project
// configuration, runs it as a blocking subprocess, and records the outcome in
// its own log file.
package tools

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"ccpm/pkg/applog"
)

// Result captures one external tool invocation.
type Result struct {
	RunID    string
	Command  string
	Output   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Err      error
}

// OK reports whether the invocation completed with a zero exit code within
// its time bound.
func (r Result) OK() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// prefixWriter copies each output line into the adapter log, tagged with the
// run id, while accumulating the raw output.
type prefixWriter struct {
	prefix string
	log    *applog.Logger
	buf    bytes.Buffer
	line   bytes.Buffer
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for _, b := range p {
		if b == '\n' {
			w.log.Info("[%s] %s", w.prefix, w.line.String())
			w.line.Reset()
			continue
		}
		w.line.WriteByte(b)
	}
	return len(p), nil
}

func (w *prefixWriter) flush() {
	if w.line.Len() > 0 {
		w.log.Info("[%s] %s", w.prefix, w.line.String())
		w.line.Reset()
	}
}

// run executes name with args, streaming combined output into logger. A
// timeout of zero means no bound (synthesis and place-and-route legitimately
// run for minutes). With a bound set, a goroutine drains the process so a
// wall-clock timer can kill it without blocking on a read.
func run(logger *applog.Logger, timeout time.Duration, name string, args ...string) Result {
	res := Result{
		RunID:   uuid.NewString()[:8],
		Command: name + " " + strings.Join(args, " "),
	}
	logger.Info("[%s] executing: %s", res.RunID, res.Command)

	pw := &prefixWriter{prefix: res.RunID, log: logger}
	cmd := exec.Command(name, args...)
	cmd.Stdout = io.Writer(pw)
	cmd.Stderr = io.Writer(pw)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Err = fmt.Errorf("failed to start %s: %w", name, err)
		res.ExitCode = -1
		logger.Error("[%s] %v", res.RunID, res.Err)
		return res
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	if timeout <= 0 {
		waitErr = <-done
	} else {
		select {
		case waitErr = <-done:
		case <-time.After(timeout):
			res.TimedOut = true
			cmd.Process.Kill()
			<-done
		}
	}

	pw.flush()
	res.Duration = time.Since(start)
	res.Output = pw.buf.String()

	switch {
	case res.TimedOut:
		res.ExitCode = -1
		logger.Error("[%s] timed out after %s", res.RunID, timeout)
	case waitErr != nil:
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = waitErr
		}
		logger.Error("[%s] exited with code %d", res.RunID, res.ExitCode)
	default:
		logger.Info("[%s] completed in %s", res.RunID, res.Duration.Round(time.Millisecond))
	}
	return res
}
