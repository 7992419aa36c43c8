package secrets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"lampwright/internal/config"
)

// WriteReport emits the single flat-file credentials report. The file is
// written once per run with mode 0600 and never re-read by the tool.
func WriteReport(path string, cfg *config.InstallConfig, s *GeneratedSecrets, siteURL string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# WordPress installation report - %s\n", time.Now().Format(time.RFC1123))
	fmt.Fprintf(&buf, "\n[site]\n")
	fmt.Fprintf(&buf, "url            = %s\n", siteURL)
	fmt.Fprintf(&buf, "http_port      = %d\n", cfg.HTTPPort)
	if cfg.EnableHTTPS {
		fmt.Fprintf(&buf, "https_port     = %d\n", cfg.HTTPSPort)
		fmt.Fprintf(&buf, "ssl_type       = %s\n", cfg.SSLType)
		if cfg.SSLDomain != "" {
			fmt.Fprintf(&buf, "domain         = %s\n", cfg.SSLDomain)
		}
	}
	fmt.Fprintf(&buf, "firewall       = %t\n", cfg.EnableFirewall)

	fmt.Fprintf(&buf, "\n[database]\n")
	fmt.Fprintf(&buf, "name           = %s\n", s.DBName)
	fmt.Fprintf(&buf, "user           = %s\n", s.DBUser)
	fmt.Fprintf(&buf, "password       = %s\n", s.DBPassword)
	fmt.Fprintf(&buf, "root_password  = %s\n", s.RootPassword)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create report directory for %s", path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "failed to write credentials report %s", path)
	}

	return nil
}
