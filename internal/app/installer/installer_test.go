package installer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"lampwright/internal/config"
	"lampwright/internal/history"
	"lampwright/internal/logger"
	"lampwright/internal/ssl"
	"lampwright/internal/system"
	"lampwright/internal/timesync"
)

type failingExecutor struct {
	commands [][]string
	failOn   string
}

func (f *failingExecutor) record(name string, args []string) error {
	cmd := append([]string{name}, args...)
	f.commands = append(f.commands, cmd)
	if f.failOn != "" && strings.HasPrefix(strings.Join(cmd, " "), f.failOn) {
		return errors.New("exit status 100")
	}
	return nil
}

func (f *failingExecutor) Run(name string, args ...string) error {
	return f.record(name, args)
}

func (f *failingExecutor) Output(name string, args ...string) ([]byte, error) {
	return nil, f.record(name, args)
}

func (f *failingExecutor) RunInput(input, name string, args ...string) error {
	return f.record(name, args)
}

type memoryHistory struct {
	records []history.Record
}

func (m *memoryHistory) Bootstrap(ctx context.Context) error { return nil }

func (m *memoryHistory) Append(ctx context.Context, rec history.Record) (int64, error) {
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

func (m *memoryHistory) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	return m.records, nil
}

func (m *memoryHistory) Prune(ctx context.Context, keep int) error { return nil }
func (m *memoryHistory) Close() error                              { return nil }

func testSystemConfig(t *testing.T) *system.Config {
	t.Helper()
	base := t.TempDir()
	return &system.Config{
		Architecture: "amd64",
		WorkingDir:   base,
		WebRoot:      base + "/html",
		TmpDir:       base + "/tmp",
	}
}

func newTestInstaller(t *testing.T, exec *failingExecutor, hist history.Repository) *Installer {
	t.Helper()
	inst := New(testSystemConfig(t), exec, logger.NewNopLogger(), hist)
	inst.syncTime = func(ctx context.Context, opts *timesync.Options) (*timesync.Result, error) {
		return &timesync.Result{Source: "test", HwClockInfo: "skipped"}, nil
	}
	inst.lookupHost = func(string) ([]string, error) { return []string{"203.0.113.10"}, nil }
	inst.primaryIP = func() (string, error) { return "203.0.113.10", nil }
	return inst
}

// recordingApache captures web server calls without touching /etc.
type recordingApache struct {
	calls []string
}

func (a *recordingApache) ConfigurePorts(httpPort, httpsPort int, enableHTTPS bool) error {
	a.calls = append(a.calls, fmt.Sprintf("ConfigurePorts %d %d %t", httpPort, httpsPort, enableHTTPS))
	return nil
}

func (a *recordingApache) EnableModules(modules ...string) error {
	a.calls = append(a.calls, "EnableModules "+strings.Join(modules, ","))
	return nil
}

func (a *recordingApache) Enable() error {
	a.calls = append(a.calls, "Enable")
	return nil
}

func (a *recordingApache) Restart() error {
	a.calls = append(a.calls, "Restart")
	return nil
}

func (a *recordingApache) InstallVHost(content string) error {
	a.calls = append(a.calls, "InstallVHost")
	return nil
}

func (a *recordingApache) InstallTrustedProxies(ranges []string) error {
	a.calls = append(a.calls, "InstallTrustedProxies")
	return nil
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	exec := &failingExecutor{failOn: "apt update --fix-missing"}
	hist := &memoryHistory{}

	inst := newTestInstaller(t, exec, hist)

	cfg := config.Default()
	cfg.EnableHTTPS = false
	cfg.EnableFirewall = false

	err := inst.Run(cfg)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if !strings.Contains(err.Error(), "Install packages failed") {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fail-fast: nothing after the failing state may run.
	for _, cmd := range exec.commands {
		joined := strings.Join(cmd, " ")
		if strings.Contains(joined, "a2enmod") || strings.Contains(joined, "mysql") {
			t.Fatalf("later state executed after failure: %s", joined)
		}
	}
}

func TestRun_RecordsOutcome(t *testing.T) {
	exec := &failingExecutor{failOn: "apt update --fix-missing"}
	hist := &memoryHistory{}

	inst := newTestInstaller(t, exec, hist)

	cfg := config.Default()
	cfg.EnableHTTPS = false
	cfg.EnableFirewall = false

	if err := inst.Run(cfg); err == nil {
		t.Fatal("expected run to fail")
	}

	if len(hist.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(hist.records))
	}
	rec := hist.records[0]
	if rec.Tool != "installer" || rec.Outcome != history.OutcomeFailure {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestIssuanceFailureIsDowngradeSignal(t *testing.T) {
	exec := &failingExecutor{failOn: "certbot"}

	cfg := config.Default()
	cfg.SSLType = config.SSLLetsEncrypt
	cfg.SSLDomain = "example.com"

	strategy, err := ssl.NewStrategy(cfg, ssl.Deps{
		Exec:       exec,
		Log:        logger.NewNopLogger(),
		PrimaryIP:  func() (string, error) { return "203.0.113.10", nil },
		LookupHost: func(string) ([]string, error) { return []string{"203.0.113.10"}, nil },
	})
	if err != nil {
		t.Fatalf("strategy selection failed: %v", err)
	}

	_, err = strategy.Prepare()
	if err == nil {
		t.Fatal("expected issuance to fail")
	}
	if !errors.Is(err, ssl.ErrIssuanceFailed) {
		t.Fatalf("issuance failure must match the downgrade sentinel, got %v", err)
	}
}

func TestIssuanceFailureDowngradesListenPorts(t *testing.T) {
	exec := &failingExecutor{failOn: "certbot"}
	inst := newTestInstaller(t, exec, &memoryHistory{})

	apache := &recordingApache{}
	inst.apache = apache

	cfg := config.Default()
	cfg.SSLType = config.SSLLetsEncrypt
	cfg.SSLDomain = "blog.example.com"
	cfg.HTTPSPort = 8443

	material, err := inst.configureHTTPSOrDowngrade(cfg)
	if err != nil {
		t.Fatalf("downgrade must not fail the run: %v", err)
	}
	if material != nil {
		t.Fatalf("no certificate material expected, got %+v", material)
	}
	if cfg.EnableHTTPS {
		t.Fatal("HTTPS must be disabled after the downgrade")
	}

	// The listen configuration must drop the HTTPS port and Apache must
	// be restarted so the change takes effect.
	var rewrote, restarted bool
	for _, call := range apache.calls {
		if call == "ConfigurePorts 80 8443 false" {
			rewrote = true
			continue
		}
		if rewrote && call == "Restart" {
			restarted = true
		}
	}
	if !rewrote || !restarted {
		t.Fatalf("listen ports were not rewritten after downgrade: %v", apache.calls)
	}
}

func TestSiteURL(t *testing.T) {
	inst := New(testSystemConfig(t), &failingExecutor{}, logger.NewNopLogger(), nil)

	cfg := config.Default()
	cfg.EnableHTTPS = true
	cfg.HTTPSPort = 8443

	url := inst.siteURL(cfg, &ssl.Material{Domain: "example.com"})
	if url != "https://example.com:8443" {
		t.Fatalf("unexpected url %s", url)
	}

	cfg.HTTPSPort = 443
	url = inst.siteURL(cfg, &ssl.Material{Domain: "example.com"})
	if url != "https://example.com" {
		t.Fatalf("unexpected url %s", url)
	}

	cfg.EnableHTTPS = false
	cfg.HTTPPort = 80
	url = inst.siteURL(cfg, &ssl.Material{Domain: "example.com"})
	if url != "http://example.com" {
		t.Fatalf("unexpected url %s", url)
	}
}
