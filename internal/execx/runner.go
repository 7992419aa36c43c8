package execx

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxRetries bounds how often an administrative command is attempted.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 2 * time.Second
)

// Runner executes commands through an Executor with bounded retries.
// Every nonzero exit is retried the same way; the runner makes no
// distinction between transient and permanent failures.
type Runner struct {
	exec       Executor
	MaxRetries int
	Delay      time.Duration
}

// NewRunner constructs a Runner with the provided executor
// (defaults to SystemExecutor).
func NewRunner(exec Executor) *Runner {
	if exec == nil {
		exec = SystemExecutor{}
	}
	return &Runner{
		exec:       exec,
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultRetryDelay,
	}
}

// Run invokes the command, retrying up to MaxRetries times with a fixed
// delay, stopping immediately on the first success.
func (r *Runner) Run(name string, args ...string) error {
	return r.attempt(func() error {
		return r.exec.Run(name, args...)
	}, name)
}

// RunInput invokes the command with the given stdin, applying the same
// retry policy as Run.
func (r *Runner) RunInput(input, name string, args ...string) error {
	return r.attempt(func() error {
		return r.exec.RunInput(input, name, args...)
	}, name)
}

// Output invokes the command capturing stdout, applying the same retry
// policy as Run.
func (r *Runner) Output(name string, args ...string) ([]byte, error) {
	var out []byte
	err := r.attempt(func() error {
		var runErr error
		out, runErr = r.exec.Output(name, args...)
		return runErr
	}, name)
	return out, err
}

func (r *Runner) attempt(fn func() error, name string) error {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var err error
	for i := 1; i <= maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i < maxRetries && r.Delay > 0 {
			time.Sleep(r.Delay)
		}
	}

	return errors.Wrapf(err, "command %s failed after %d attempts", name, maxRetries)
}
