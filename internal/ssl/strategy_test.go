package ssl

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lampwright/internal/config"
	"lampwright/internal/logger"
)

// scriptExecutor replays canned results keyed by the joined command line.
type scriptExecutor struct {
	commands []string
	outputs  map[string][]byte
	failures map[string]error
}

func newScriptExecutor() *scriptExecutor {
	return &scriptExecutor{
		outputs:  make(map[string][]byte),
		failures: make(map[string]error),
	}
}

func (s *scriptExecutor) record(name string, args []string) string {
	cmd := strings.Join(append([]string{name}, args...), " ")
	s.commands = append(s.commands, cmd)
	return cmd
}

func (s *scriptExecutor) Run(name string, args ...string) error {
	return s.failures[s.record(name, args)]
}

func (s *scriptExecutor) Output(name string, args ...string) ([]byte, error) {
	cmd := s.record(name, args)
	if err := s.failures[cmd]; err != nil {
		return nil, err
	}
	return s.outputs[cmd], nil
}

func (s *scriptExecutor) RunInput(input, name string, args ...string) error {
	return s.failures[s.record(name, args)]
}

// warnRecorder captures warning messages.
type warnRecorder struct {
	logger.NopLogger
	warns []string
}

func (w *warnRecorder) Warn(format string, args ...interface{}) {
	w.warns = append(w.warns, fmt.Sprintf(format, args...))
}

func TestNewStrategy_SelectsMode(t *testing.T) {
	deps := Deps{Exec: newScriptExecutor(), Log: logger.NewNopLogger()}

	cases := map[config.SSLType]string{
		config.SSLSelfSigned:  "self-signed",
		config.SSLCloudflare:  "cloudflare",
		config.SSLLetsEncrypt: "letsencrypt",
		config.SSLCustom:      "custom",
	}

	for mode, name := range cases {
		cfg := config.Default()
		cfg.SSLType = mode
		strategy, err := NewStrategy(cfg, deps)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if strategy.Name() != name {
			t.Fatalf("expected %s, got %s", name, strategy.Name())
		}
	}

	cfg := config.Default()
	cfg.SSLType = "acme-v0"
	if _, err := NewStrategy(cfg, deps); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCloudflare_EmptyDomainFailsBeforeAnyWrite(t *testing.T) {
	exec := newScriptExecutor()
	cfg := config.Default()
	cfg.SSLType = config.SSLCloudflare
	cfg.SSLDomain = ""

	strategy := &Cloudflare{cfg: cfg, deps: Deps{Exec: exec, Log: logger.NewNopLogger()}}

	if _, err := strategy.Prepare(); err == nil {
		t.Fatal("expected error for empty domain")
	}
	if len(exec.commands) != 0 {
		t.Fatalf("no commands may run before validation: %v", exec.commands)
	}
}

func TestCloudflare_TrustedProxyRangesAreValidCIDRs(t *testing.T) {
	ranges := TrustedProxyRanges()
	if len(ranges) != len(TrustedProxyRangesV4)+len(TrustedProxyRangesV6) {
		t.Fatalf("unexpected range count: %d", len(ranges))
	}
	for _, cidr := range ranges {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			t.Fatalf("invalid CIDR %q: %v", cidr, err)
		}
	}
}

func TestLetsEncrypt_DomainMismatchWarnsOnly(t *testing.T) {
	tmp := t.TempDir()
	oldCron := renewalCronPath
	renewalCronPath = filepath.Join(tmp, "renew.cron")
	defer func() { renewalCronPath = oldCron }()

	exec := newScriptExecutor()
	// No service is active, certbot succeeds.
	exec.failures["systemctl is-active --quiet apache2"] = errors.New("inactive")
	exec.failures["systemctl is-active --quiet nginx"] = errors.New("inactive")

	log := &warnRecorder{}
	cfg := config.Default()
	cfg.SSLType = config.SSLLetsEncrypt
	cfg.SSLDomain = "blog.example.com"
	cfg.SSLEmail = "ops@example.com"

	strategy := &LetsEncrypt{cfg: cfg, deps: Deps{
		Exec:       exec,
		Log:        log,
		PrimaryIP:  func() (string, error) { return "203.0.113.10", nil },
		LookupHost: func(host string) ([]string, error) { return []string{"198.51.100.7"}, nil },
	}}

	material, err := strategy.Prepare()
	if err != nil {
		t.Fatalf("mismatch must not abort the run: %v", err)
	}
	if len(log.warns) == 0 {
		t.Fatal("expected a resolution-mismatch warning")
	}
	if material.CertPath != "/etc/letsencrypt/live/blog.example.com/fullchain.pem" {
		t.Fatalf("unexpected cert path: %s", material.CertPath)
	}
}

func TestLetsEncrypt_CertbotFailureReturnsError(t *testing.T) {
	exec := newScriptExecutor()
	exec.failures["systemctl is-active --quiet apache2"] = errors.New("inactive")
	exec.failures["systemctl is-active --quiet nginx"] = errors.New("inactive")
	exec.failures["certbot certonly --standalone -d blog.example.com --agree-tos --non-interactive --email ops@example.com"] = errors.New("exit status 1")

	cfg := config.Default()
	cfg.SSLType = config.SSLLetsEncrypt
	cfg.SSLDomain = "blog.example.com"
	cfg.SSLEmail = "ops@example.com"

	strategy := &LetsEncrypt{cfg: cfg, deps: Deps{
		Exec:       exec,
		Log:        logger.NewNopLogger(),
		PrimaryIP:  func() (string, error) { return "203.0.113.10", nil },
		LookupHost: func(host string) ([]string, error) { return []string{"203.0.113.10"}, nil },
	}}

	if _, err := strategy.Prepare(); err == nil {
		t.Fatal("expected certbot failure to surface")
	}
}

func TestLetsEncrypt_StopsAndRestoresWebServer(t *testing.T) {
	tmp := t.TempDir()
	oldCron := renewalCronPath
	renewalCronPath = filepath.Join(tmp, "renew.cron")
	defer func() { renewalCronPath = oldCron }()

	exec := newScriptExecutor()
	// apache2 is active, nginx is not.
	exec.failures["systemctl is-active --quiet nginx"] = errors.New("inactive")

	cfg := config.Default()
	cfg.SSLType = config.SSLLetsEncrypt
	cfg.SSLDomain = "blog.example.com"

	strategy := &LetsEncrypt{cfg: cfg, deps: Deps{
		Exec:       exec,
		Log:        logger.NewNopLogger(),
		PrimaryIP:  func() (string, error) { return "203.0.113.10", nil },
		LookupHost: func(host string) ([]string, error) { return []string{"203.0.113.10"}, nil },
	}}

	if _, err := strategy.Prepare(); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	var stopped, started bool
	for _, cmd := range exec.commands {
		if cmd == "systemctl stop apache2" {
			stopped = true
		}
		if cmd == "systemctl start apache2" {
			started = true
		}
	}
	if !stopped || !started {
		t.Fatalf("web server was not cycled around the challenge: %v", exec.commands)
	}
}

func TestCustom_ModulusMismatchFails(t *testing.T) {
	tmp := t.TempDir()
	certPath := writeTempFile(t, tmp, "site.crt")
	keyPath := writeTempFile(t, tmp, "site.key")

	exec := newScriptExecutor()
	exec.outputs["openssl x509 -noout -modulus -in "+certPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl rsa -noout -modulus -in "+keyPath] = []byte("Modulus=CCDD\n")

	cfg := config.Default()
	cfg.SSLType = config.SSLCustom
	cfg.CustomCertPath = certPath
	cfg.CustomKeyPath = keyPath

	strategy := &Custom{cfg: cfg, deps: Deps{Exec: exec, Log: logger.NewNopLogger()}}

	if _, err := strategy.Prepare(); err == nil {
		t.Fatal("expected modulus mismatch to fail the selection")
	}
}

func TestCustom_MatchingPairDerivesDomainFromCN(t *testing.T) {
	tmp := t.TempDir()
	certPath := writeTempFile(t, tmp, "site.crt")
	keyPath := writeTempFile(t, tmp, "site.key")

	exec := newScriptExecutor()
	exec.outputs["openssl x509 -noout -modulus -in "+certPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl rsa -noout -modulus -in "+keyPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl x509 -noout -subject -in "+certPath] = []byte("subject=O = Example, CN = shop.example.com\n")

	cfg := config.Default()
	cfg.SSLType = config.SSLCustom
	cfg.CustomCertPath = certPath
	cfg.CustomKeyPath = keyPath

	strategy := &Custom{cfg: cfg, deps: Deps{Exec: exec, Log: logger.NewNopLogger()}}

	material, err := strategy.Prepare()
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if material.Domain != "shop.example.com" {
		t.Fatalf("expected CN-derived domain, got %q", material.Domain)
	}
	if material.CertPath != certPath || material.KeyPath != keyPath {
		t.Fatalf("operator paths must be used directly: %+v", material)
	}
}

func TestCustom_CNNotConfusedByOtherAttributes(t *testing.T) {
	tmp := t.TempDir()
	certPath := writeTempFile(t, tmp, "site.crt")
	keyPath := writeTempFile(t, tmp, "site.key")

	exec := newScriptExecutor()
	exec.outputs["openssl x509 -noout -modulus -in "+certPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl rsa -noout -modulus -in "+keyPath] = []byte("Modulus=AABB\n")
	// An organization name containing "CN" must not shadow the CN attribute.
	exec.outputs["openssl x509 -noout -subject -in "+certPath] = []byte("subject=O = CNN Inc, CN = shop.example.com\n")

	cfg := config.Default()
	cfg.SSLType = config.SSLCustom
	cfg.CustomCertPath = certPath
	cfg.CustomKeyPath = keyPath

	strategy := &Custom{cfg: cfg, deps: Deps{Exec: exec, Log: logger.NewNopLogger()}}

	material, err := strategy.Prepare()
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if material.Domain != "shop.example.com" {
		t.Fatalf("expected CN attribute value, got %q", material.Domain)
	}
}

func TestCustom_UnparsableCNPromptsForDomain(t *testing.T) {
	tmp := t.TempDir()
	certPath := writeTempFile(t, tmp, "site.crt")
	keyPath := writeTempFile(t, tmp, "site.key")

	exec := newScriptExecutor()
	exec.outputs["openssl x509 -noout -modulus -in "+certPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl rsa -noout -modulus -in "+keyPath] = []byte("Modulus=AABB\n")
	exec.outputs["openssl x509 -noout -subject -in "+certPath] = []byte("subject=O = Example\n")

	cfg := config.Default()
	cfg.SSLType = config.SSLCustom
	cfg.CustomCertPath = certPath
	cfg.CustomKeyPath = keyPath

	prompted := false
	strategy := &Custom{cfg: cfg, deps: Deps{
		Exec: exec,
		Log:  logger.NewNopLogger(),
		PromptDomain: func() (string, error) {
			prompted = true
			return "manual.example.com", nil
		},
	}}

	material, err := strategy.Prepare()
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if !prompted {
		t.Fatal("expected domain prompt for unparsable CN")
	}
	if material.Domain != "manual.example.com" {
		t.Fatalf("unexpected domain: %q", material.Domain)
	}
}

func TestCustom_MissingFileFails(t *testing.T) {
	cfg := config.Default()
	cfg.SSLType = config.SSLCustom
	cfg.CustomCertPath = "/nonexistent/site.crt"
	cfg.CustomKeyPath = "/nonexistent/site.key"

	exec := newScriptExecutor()
	strategy := &Custom{cfg: cfg, deps: Deps{Exec: exec, Log: logger.NewNopLogger()}}

	if _, err := strategy.Prepare(); err == nil {
		t.Fatal("expected error for missing files")
	}
	if len(exec.commands) != 0 {
		t.Fatalf("no openssl command may run for unreadable input: %v", exec.commands)
	}
}

func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("dummy"), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
