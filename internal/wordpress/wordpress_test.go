package wordpress

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lampwright/internal/logger"
	"lampwright/internal/system"
)

type recordingExecutor struct {
	commands [][]string
	onRun    func(args []string) error
}

func (e *recordingExecutor) Run(name string, args ...string) error {
	cmd := append([]string{name}, args...)
	e.commands = append(e.commands, cmd)
	if e.onRun != nil {
		return e.onRun(cmd)
	}
	return nil
}

func (e *recordingExecutor) Output(name string, args ...string) ([]byte, error) {
	return nil, nil
}

func (e *recordingExecutor) RunInput(input, name string, args ...string) error {
	return e.Run(name, args...)
}

func testInstaller(t *testing.T) (*Installer, *recordingExecutor) {
	t.Helper()
	cfg := &system.Config{
		TmpDir:  t.TempDir(),
		WebRoot: filepath.Join(t.TempDir(), "html"),
	}
	exec := &recordingExecutor{}
	return NewInstaller(cfg, exec, logger.NewNopLogger()), exec
}

func TestDownload_RejectsTruncatedArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a real tarball"))
	}))
	defer srv.Close()

	inst, _ := testInstaller(t)
	inst.downloadURL = srv.URL

	path := filepath.Join(inst.config.TmpDir, "wp.tar.gz")
	err := inst.download(path)
	if err == nil {
		t.Fatal("expected error for undersized archive")
	}
	if !strings.Contains(err.Error(), "too small") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("truncated archive must be removed")
	}
}

func TestDownload_RejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	inst, _ := testInstaller(t)
	inst.downloadURL = srv.URL

	if err := inst.download(filepath.Join(inst.config.TmpDir, "wp.tar.gz")); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestRenderConfig(t *testing.T) {
	out, err := RenderConfig(ConfigParams{
		DBName:     "wordpress_abc",
		DBUser:     "wp_abc",
		DBPassword: "dbpass",
		Salts:      "define( 'AUTH_KEY', 'x' );",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		"define( 'DB_NAME', 'wordpress_abc' );",
		"define( 'DB_USER', 'wp_abc' );",
		"define( 'DB_PASSWORD', 'dbpass' );",
		"define( 'AUTH_KEY', 'x' );",
		"require_once ABSPATH . 'wp-settings.php';",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered config missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "HTTP_X_FORWARDED_PROTO") {
		t.Fatal("proxy block must be absent when not behind a proxy")
	}
}

func TestRenderConfig_ProxyBlock(t *testing.T) {
	out, err := RenderConfig(ConfigParams{
		DBName:      "db",
		DBUser:      "u",
		DBPassword:  "p",
		Salts:       "define( 'AUTH_KEY', 'x' );",
		BehindProxy: true,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "HTTP_X_FORWARDED_PROTO") {
		t.Fatalf("proxy block missing:\n%s", out)
	}
}

func TestGenerateLocalSalts(t *testing.T) {
	salts, err := GenerateLocalSalts()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	lines := strings.Split(salts, "\n")
	if len(lines) != len(saltKeys) {
		t.Fatalf("expected %d salt lines, got %d", len(saltKeys), len(lines))
	}
	for i, key := range saltKeys {
		if !strings.Contains(lines[i], key) {
			t.Fatalf("line %d missing key %s: %s", i, key, lines[i])
		}
	}
}

func TestFetchSalts_FallsBackLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	srv.Close()

	inst, _ := testInstaller(t)
	// Closed server forces the transport error path.
	inst.saltURL = srv.URL
	salts := inst.fetchSalts()
	if !strings.Contains(salts, "AUTH_KEY") {
		t.Fatalf("fallback salts missing keys:\n%s", salts)
	}
}
