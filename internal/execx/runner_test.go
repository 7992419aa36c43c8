package execx

import (
	"errors"
	"testing"
)

type fakeExecutor struct {
	calls    int
	failures int
	output   []byte
}

func (f *fakeExecutor) Run(name string, args ...string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeExecutor) Output(name string, args ...string) ([]byte, error) {
	if err := f.Run(name, args...); err != nil {
		return nil, err
	}
	return f.output, nil
}

func (f *fakeExecutor) RunInput(input, name string, args ...string) error {
	return f.Run(name, args...)
}

func TestRunner_PersistentFailureExhaustsRetries(t *testing.T) {
	fake := &fakeExecutor{failures: 10}
	runner := NewRunner(fake)
	runner.Delay = 0

	if err := runner.Run("mysql", "-e", "SELECT 1;"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if fake.calls != DefaultMaxRetries {
		t.Fatalf("expected exactly %d attempts, got %d", DefaultMaxRetries, fake.calls)
	}
}

func TestRunner_StopsOnFirstSuccess(t *testing.T) {
	fake := &fakeExecutor{}
	runner := NewRunner(fake)
	runner.Delay = 0

	if err := runner.Run("systemctl", "status", "mysql"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", fake.calls)
	}
}

func TestRunner_SucceedsAfterRetry(t *testing.T) {
	fake := &fakeExecutor{failures: 2}
	runner := NewRunner(fake)
	runner.Delay = 0

	if err := runner.Run("mysqldump", "--all-databases"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fake.calls)
	}
}

func TestRunner_OutputCaptured(t *testing.T) {
	fake := &fakeExecutor{output: []byte("ok\n")}
	runner := NewRunner(fake)
	runner.Delay = 0

	out, err := runner.Output("mysql", "-e", "SHOW DATABASES;")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(out) != "ok\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunner_ZeroMaxRetriesRunsOnce(t *testing.T) {
	fake := &fakeExecutor{failures: 10}
	runner := NewRunner(fake)
	runner.MaxRetries = 0
	runner.Delay = 0

	if err := runner.Run("mysql"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", fake.calls)
	}
}
