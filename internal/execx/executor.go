package execx

import (
	"os"
	"os/exec"
	"strings"
)

// Executor abstracts command execution to ease testing.
type Executor interface {
	// Run executes a command, streaming output to the terminal.
	Run(name string, args ...string) error
	// Output executes a command and captures its stdout.
	Output(name string, args ...string) ([]byte, error)
	// RunInput executes a command feeding the given string on stdin.
	RunInput(input, name string, args ...string) error
}

// SystemExecutor executes commands using the local OS.
type SystemExecutor struct{}

func (SystemExecutor) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (SystemExecutor) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

func (SystemExecutor) RunInput(input, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// QuietExecutor executes commands discarding their output. Only the exit
// status is observed.
type QuietExecutor struct{}

func (QuietExecutor) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (QuietExecutor) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func (QuietExecutor) RunInput(input, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}
