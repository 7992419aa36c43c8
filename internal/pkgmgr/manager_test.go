package pkgmgr

import (
	"errors"
	"strings"
	"testing"
)

type recordingExecutor struct {
	commands [][]string
	output   map[string][]byte
	fail     map[string]error
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		output: make(map[string][]byte),
		fail:   make(map[string]error),
	}
}

func (r *recordingExecutor) key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (r *recordingExecutor) Run(name string, args ...string) error {
	r.commands = append(r.commands, append([]string{name}, args...))
	return r.fail[r.key(name, args)]
}

func (r *recordingExecutor) Output(name string, args ...string) ([]byte, error) {
	r.commands = append(r.commands, append([]string{name}, args...))
	key := r.key(name, args)
	if err := r.fail[key]; err != nil {
		return nil, err
	}
	return r.output[key], nil
}

func (r *recordingExecutor) RunInput(input, name string, args ...string) error {
	return r.Run(name, args...)
}

func TestInstallDependencies_SkipsWhenAllInstalled(t *testing.T) {
	exec := newRecordingExecutor()
	exec.output["dpkg-query -W -f=${binary:Package}\n"] = []byte(strings.Join(RequiredPackages, "\n"))

	m := NewManager(exec)
	if err := m.InstallDependencies(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, cmd := range exec.commands {
		if cmd[0] == "apt" {
			t.Fatalf("apt should not run when nothing is missing: %v", cmd)
		}
	}
}

func TestInstallDependencies_InstallsMissing(t *testing.T) {
	exec := newRecordingExecutor()
	exec.output["dpkg-query -W -f=${binary:Package}\n"] = []byte("apache2\ncurl\n")

	m := NewManager(exec)
	if err := m.InstallDependencies(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var installCmd []string
	for _, cmd := range exec.commands {
		if cmd[0] == "apt" && len(cmd) > 1 && cmd[1] == "install" {
			installCmd = cmd
		}
	}
	if installCmd == nil {
		t.Fatal("expected an apt install invocation")
	}

	joined := strings.Join(installCmd, " ")
	if strings.Contains(joined, " apache2") || strings.Contains(joined, " curl ") {
		t.Fatalf("already installed packages should not be reinstalled: %v", installCmd)
	}
	if !strings.Contains(joined, "mariadb-server") {
		t.Fatalf("missing package not scheduled for install: %v", installCmd)
	}
}

func TestInstallDependencies_QueryFailure(t *testing.T) {
	exec := newRecordingExecutor()
	exec.fail["dpkg-query -W -f=${binary:Package}\n"] = errors.New("exit status 2")

	m := NewManager(exec)
	if err := m.InstallDependencies(); err == nil {
		t.Fatal("expected error when dpkg-query fails")
	}
}
