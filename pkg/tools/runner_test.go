package tools

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ccpm/pkg/applog"
)

func TestRunCapturesOutput(t *testing.T) {
	res := run(applog.Discard(), 0, "sh", "-c", "echo hello; echo world 1>&2")
	if !res.OK() {
		t.Fatalf("run failed: %+v", res)
	}
	if !strings.Contains(res.Output, "hello") || !strings.Contains(res.Output, "world") {
		t.Errorf("combined output missing streams: %q", res.Output)
	}
	if len(res.RunID) != 8 {
		t.Errorf("run id %q, want 8 characters", res.RunID)
	}
}

func TestRunExitCode(t *testing.T) {
	res := run(applog.Discard(), 0, "sh", "-c", "exit 3")
	if res.OK() {
		t.Fatal("nonzero exit reported as OK")
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if res.Err != nil {
		t.Errorf("exit status should not surface as Err: %v", res.Err)
	}
}

func TestRunTimeout(t *testing.T) {
	res := run(applog.Discard(), 100*time.Millisecond, "sh", "-c", "sleep 5")
	if res.OK() {
		t.Fatal("timed-out run reported as OK")
	}
	if !res.TimedOut {
		t.Error("TimedOut not set")
	}
	if res.Duration >= 5*time.Second {
		t.Errorf("run was not killed: took %s", res.Duration)
	}
}

func TestRunMissingBinary(t *testing.T) {
	res := run(applog.Discard(), 0, "definitely-not-a-real-binary-xyz")
	if res.OK() {
		t.Fatal("missing binary reported as OK")
	}
	if res.Err == nil {
		t.Error("start failure should set Err")
	}
}

func TestResultOK(t *testing.T) {
	if !(Result{}).OK() {
		t.Error("zero result should be OK")
	}
	if (Result{ExitCode: 1}).OK() {
		t.Error("nonzero exit is OK")
	}
	if (Result{TimedOut: true}).OK() {
		t.Error("timeout is OK")
	}
	if (Result{Err: errors.New("boom")}).OK() {
		t.Error("error is OK")
	}
}

func TestPrefixWriterAccumulates(t *testing.T) {
	pw := &prefixWriter{prefix: "test", log: applog.Discard()}
	pw.Write([]byte("line one\nline "))
	pw.Write([]byte("two\ntail"))
	pw.flush()
	want := "line one\nline two\ntail"
	if pw.buf.String() != want {
		t.Errorf("accumulated %q, want %q", pw.buf.String(), want)
	}
}
