package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lampwright/internal/config"
)

func TestRandomPassword(t *testing.T) {
	a, err := RandomPassword(24)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(a) != 24 {
		t.Fatalf("expected 24 characters, got %d", len(a))
	}
	for _, c := range a {
		if !strings.ContainsRune(passwordAlphabet, c) {
			t.Fatalf("unexpected character %q", c)
		}
	}

	b, err := RandomPassword(24)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if a == b {
		t.Fatal("two generated passwords should not collide")
	}

	if _, err := RandomPassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestGenerate(t *testing.T) {
	s, err := Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(s.DBName, "wordpress_") || !strings.HasPrefix(s.DBUser, "wp_") {
		t.Fatalf("unexpected identifiers: %s / %s", s.DBName, s.DBUser)
	}
	if s.DBPassword == s.RootPassword {
		t.Fatal("database and root passwords should differ")
	}
}

func TestWriteReport(t *testing.T) {
	cfg := config.Default()
	cfg.HTTPSPort = 8443
	cfg.SSLType = config.SSLSelfSigned

	s := &GeneratedSecrets{
		DBName:       "wordpress_abc123",
		DBUser:       "wp_abc123",
		DBPassword:   "dbpass",
		RootPassword: "rootpass",
	}

	path := filepath.Join(t.TempDir(), "credentials.txt")
	if err := WriteReport(path, cfg, s, "https://203.0.113.10:8443"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("report must be world-unreadable, got %v", info.Mode().Perm())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, want := range []string{"wordpress_abc123", "wp_abc123", "dbpass", "rootpass", "8443", "self-signed"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("report missing %q:\n%s", want, content)
		}
	}
}
