package webserver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "lampwright/internal/errors"
	"lampwright/internal/execx"
	"lampwright/internal/logger"
)

const (
	portsConfPath  = "/etc/apache2/ports.conf"
	sitesDir       = "/etc/apache2/sites-available"
	confDir        = "/etc/apache2/conf-available"
	vhostName      = "wordpress-ssl.conf"
	remoteIPName   = "cloudflare-remoteip.conf"
	apacheService  = "apache2"
	configFileMode = 0o644
)

// Apache configures the Apache web server for the WordPress deployment.
type Apache struct {
	exec execx.Executor
	log  logger.Logger
}

// NewApache constructs an Apache configurator.
func NewApache(exec execx.Executor, log logger.Logger) *Apache {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &Apache{exec: exec, log: log}
}

// ConfigurePorts writes the Listen directives for the configured HTTP and
// (optionally) HTTPS ports.
func (a *Apache) ConfigurePorts(httpPort, httpsPort int, enableHTTPS bool) error {
	content := BuildPortsConf(httpPort, httpsPort, enableHTTPS)
	return a.writeConfigFile(portsConfPath, content)
}

// BuildPortsConf renders the ports.conf content.
func BuildPortsConf(httpPort, httpsPort int, enableHTTPS bool) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Listen %d\n", httpPort)
	if enableHTTPS {
		fmt.Fprintf(&buf, "<IfModule ssl_module>\n    Listen %d\n</IfModule>\n", httpsPort)
	}
	return buf.String()
}

// EnableModules enables the Apache modules the deployment depends on.
func (a *Apache) EnableModules(modules ...string) error {
	if len(modules) == 0 {
		modules = []string{"ssl", "rewrite", "headers"}
	}

	args := append([]string{"-q"}, modules...)
	if err := a.exec.Run("a2enmod", args...); err != nil {
		return newWebserverError("webserver.EnableModules", "failed to enable apache modules", err, apperrors.Metadata{
			"modules": strings.Join(modules, ","),
		})
	}

	return nil
}

// InstallVHost writes the virtual host definition and enables the site.
// The write is idempotent: an unchanged file is left untouched.
func (a *Apache) InstallVHost(content string) error {
	path := filepath.Join(sitesDir, vhostName)

	changed, err := a.writeIfChanged(path, content)
	if err != nil {
		return err
	}
	if !changed && a.log != nil {
		a.log.Debug("Virtual host %s unchanged, skipping write", path)
	}

	if err := a.exec.Run("a2ensite", "-q", vhostName); err != nil {
		return newWebserverError("webserver.InstallVHost", "failed to enable site", err, apperrors.Metadata{
			"site": vhostName,
		})
	}

	return nil
}

// InstallTrustedProxies writes the CloudFlare remoteip configuration and
// enables the remoteip module so client IPs are restored from the
// forwarded header for the trusted edge ranges only.
func (a *Apache) InstallTrustedProxies(ranges []string) error {
	if err := a.exec.Run("a2enmod", "-q", "remoteip"); err != nil {
		return newWebserverError("webserver.InstallTrustedProxies", "failed to enable remoteip module", err, nil)
	}

	content := BuildRemoteIPConf(ranges)
	path := filepath.Join(confDir, remoteIPName)
	if err := a.writeConfigFile(path, content); err != nil {
		return err
	}

	if err := a.exec.Run("a2enconf", "-q", strings.TrimSuffix(remoteIPName, ".conf")); err != nil {
		return newWebserverError("webserver.InstallTrustedProxies", "failed to enable remoteip configuration", err, apperrors.Metadata{
			"conf": remoteIPName,
		})
	}

	return nil
}

// BuildRemoteIPConf renders the remoteip trusted-proxy configuration.
func BuildRemoteIPConf(ranges []string) string {
	var buf bytes.Buffer
	buf.WriteString("RemoteIPHeader CF-Connecting-IP\n")
	for _, cidr := range ranges {
		fmt.Fprintf(&buf, "RemoteIPTrustedProxy %s\n", cidr)
	}
	return buf.String()
}

// Restart restarts Apache so configuration changes take effect.
func (a *Apache) Restart() error {
	if err := a.exec.Run("systemctl", "restart", apacheService); err != nil {
		return newWebserverError("webserver.Restart", "failed to restart apache", err, nil)
	}
	return nil
}

// Reload reloads Apache, falling back to restart.
func (a *Apache) Reload() error {
	if err := a.exec.Run("systemctl", "reload", apacheService); err != nil {
		return a.Restart()
	}
	return nil
}

// Enable enables Apache at boot.
func (a *Apache) Enable() error {
	if err := a.exec.Run("systemctl", "enable", apacheService); err != nil {
		return newWebserverError("webserver.Enable", "failed to enable apache", err, nil)
	}
	return nil
}

func (a *Apache) writeConfigFile(path, content string) error {
	if _, err := a.writeIfChanged(path, content); err != nil {
		return err
	}
	return nil
}

func (a *Apache) writeIfChanged(path, content string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, newWebserverError("webserver.writeIfChanged", "failed to create directory", err, apperrors.Metadata{
			"path": path,
		})
	}

	if err := os.WriteFile(path, []byte(content), configFileMode); err != nil {
		return false, newWebserverError("webserver.writeIfChanged", "failed to write configuration file", err, apperrors.Metadata{
			"path": path,
		})
	}

	return true, nil
}

func newWebserverError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	appErr := apperrors.ConfigError(apperrors.CodeConfigGeneric, message, err).
		WithModule("webserver").
		WithOperation(operation)
	if metadata != nil {
		appErr.WithFields(metadata)
	}
	return appErr
}
