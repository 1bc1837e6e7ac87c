package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "out" {
		t.Fatalf("Stdout = %q", got)
	}
	if got := strings.TrimSpace(string(result.Stderr)); got != "err" {
		t.Fatalf("Stderr = %q", got)
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d", result.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	result, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 3"},
	})
	if err == nil {
		t.Fatal("Run succeeded on exit 3")
	}
	if result.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestRunRequiresBinary(t *testing.T) {
	if _, err := Run(context.Background(), Command{}); err == nil {
		t.Fatal("Run succeeded without a binary")
	}
}

func TestRunKilledByContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, Command{
		Binary:      "sh",
		Args:        []string{"-c", "sleep 10"},
		GracePeriod: time.Second,
	})
	if err == nil {
		t.Fatal("Run survived context expiry")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestRunWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	result, err := Run(context.Background(), Command{
		Binary: "pwd",
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != dir {
		t.Fatalf("pwd = %q, want %q", got, dir)
	}
}
