package system

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// Config captures runtime characteristics and directories used by the installer.
type Config struct {
	Architecture string `json:"architecture"`
	VirtType     string `json:"virt_type"`
	WorkingDir   string `json:"working_dir"`
	WebRoot      string `json:"web_root"`
	TmpDir       string `json:"tmp_dir"`
}

// LoadConfig builds a Config populated with detected system attributes.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		WorkingDir: "/opt/lampwright",
		WebRoot:    "/var/www/html",
		TmpDir:     "/tmp",
	}

	arch, err := detectArchitecture()
	if err != nil {
		return nil, errors.Wrap(err, "architecture detection failed")
	}
	cfg.Architecture = arch

	virtType, err := detectVirtualization()
	if err != nil {
		return nil, errors.Wrap(err, "virtualization detection failed")
	}
	cfg.VirtType = virtType

	return cfg, nil
}

// Validate ensures working directories exist and required commands are present.
func (c *Config) Validate() error {
	if err := os.MkdirAll(c.WorkingDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create working directory %s", c.WorkingDir)
	}

	if err := os.MkdirAll(c.TmpDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create temporary directory %s", c.TmpDir)
	}

	requiredCommands := []string{"apt", "openssl", "systemctl"}
	for _, cmd := range requiredCommands {
		if _, err := exec.LookPath(cmd); err != nil {
			return errors.Errorf("missing required system command: %s", cmd)
		}
	}

	return nil
}

// GetLogDir returns the directory where runtime logs are stored.
func (c *Config) GetLogDir() string {
	return fmt.Sprintf("%s/logs", c.WorkingDir)
}

// GetHistoryDBPath returns the path of the local run-history database.
func (c *Config) GetHistoryDBPath() string {
	return fmt.Sprintf("%s/history.db", c.WorkingDir)
}

// GetCredentialsPath returns the path of the generated credentials report.
func (c *Config) GetCredentialsPath() string {
	return fmt.Sprintf("%s/credentials.txt", c.WorkingDir)
}

// GetConfigPath returns the path where the effective install configuration
// is persisted.
func (c *Config) GetConfigPath() string {
	return fmt.Sprintf("%s/install.yaml", c.WorkingDir)
}

// IsSupportedArchitecture reports whether the detected architecture is supported.
func (c *Config) IsSupportedArchitecture() bool {
	return c.Architecture == "amd64" || c.Architecture == "arm64"
}

// IsContainer reports whether the environment is containerized.
func (c *Config) IsContainer() bool {
	return c.VirtType == "container"
}
