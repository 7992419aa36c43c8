package wordpress

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"lampwright/internal/secrets"
)

//go:embed templates/*
var templateFS embed.FS

const saltEndpoint = "https://api.wordpress.org/secret-key/1.1/salt/"

var saltKeys = []string{
	"AUTH_KEY",
	"SECURE_AUTH_KEY",
	"LOGGED_IN_KEY",
	"NONCE_KEY",
	"AUTH_SALT",
	"SECURE_AUTH_SALT",
	"LOGGED_IN_SALT",
	"NONCE_SALT",
}

// ConfigParams drives wp-config.php rendering.
type ConfigParams struct {
	DBName      string
	DBUser      string
	DBPassword  string
	Salts       string
	BehindProxy bool
}

// RenderConfig produces the wp-config.php content.
func RenderConfig(params ConfigParams) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/wp-config.php.tmpl")
	if err != nil {
		return "", errors.Wrap(err, "failed to parse wp-config template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", errors.Wrap(err, "failed to render wp-config template")
	}

	return buf.String(), nil
}

// WriteConfig renders and installs wp-config.php into the web root.
func (i *Installer) WriteConfig(params ConfigParams) error {
	if params.Salts == "" {
		params.Salts = i.fetchSalts()
	}

	content, err := RenderConfig(params)
	if err != nil {
		return err
	}

	path := filepath.Join(i.config.WebRoot, "wp-config.php")
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	if err := i.exec.Run("chown", "www-data:www-data", path); err != nil {
		return errors.Wrapf(err, "failed to set ownership on %s", path)
	}

	return nil
}

// fetchSalts asks the wordpress.org generator for authentication keys and
// falls back to local generation when the endpoint is unreachable.
func (i *Installer) fetchSalts() string {
	resp, err := i.client.Get(i.saltURL)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			if readErr == nil && strings.Contains(string(body), "AUTH_KEY") {
				return strings.TrimSpace(string(body))
			}
		}
	}

	i.logger.Warn("Salt endpoint unreachable, generating keys locally")
	salts, genErr := GenerateLocalSalts()
	if genErr != nil {
		// crypto/rand failures are unrecoverable anyway; surface a
		// clearly broken config rather than silently weak keys.
		i.logger.Error("Local salt generation failed: %v", genErr)
		return ""
	}
	return salts
}

// GenerateLocalSalts builds the eight define() lines with local randomness.
func GenerateLocalSalts() (string, error) {
	var b strings.Builder
	for _, key := range saltKeys {
		value, err := secrets.RandomPassword(64)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "define( '%s', '%s' );\n", key, value)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
