package mysqladmin

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"lampwright/internal/execx"
	"lampwright/internal/logger"
)

// servicePatterns are matched against service names when locating the
// database service.
var servicePatterns = []string{"mysql", "mariadb"}

// ServiceController drives the OS service manager for the database
// service. Verbs are mapped per platform; service lookup is a name
// pattern match over the manager's inventory.
type ServiceController struct {
	exec   execx.Executor
	runner *execx.Runner
	logger logger.Logger
	goos   string
}

// NewServiceController builds a controller for the current platform.
func NewServiceController(exec execx.Executor, log logger.Logger) *ServiceController {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &ServiceController{
		exec:   exec,
		runner: execx.NewRunner(exec),
		logger: log,
		goos:   runtime.GOOS,
	}
}

// Find locates the database service by pattern match against the service
// manager's inventory.
func (c *ServiceController) Find() (string, error) {
	names, err := c.listServices()
	if err != nil {
		return "", err
	}

	for _, name := range names {
		lower := strings.ToLower(name)
		for _, pattern := range servicePatterns {
			if strings.Contains(lower, pattern) {
				return name, nil
			}
		}
	}

	return "", errors.New("no MySQL or MariaDB service found")
}

// Start starts the named service.
func (c *ServiceController) Start(name string) error {
	if c.goos == "windows" {
		return c.runner.Run("net", "start", name)
	}
	return c.runner.Run("systemctl", "start", name)
}

// Stop stops the named service.
func (c *ServiceController) Stop(name string) error {
	if c.goos == "windows" {
		return c.runner.Run("net", "stop", name)
	}
	return c.runner.Run("systemctl", "stop", name)
}

// Restart restarts the named service.
func (c *ServiceController) Restart(name string) error {
	if c.goos == "windows" {
		if err := c.runner.Run("net", "stop", name); err != nil {
			c.logger.Warn("Stop before restart failed: %v", err)
		}
		return c.runner.Run("net", "start", name)
	}
	return c.runner.Run("systemctl", "restart", name)
}

// Status returns the service manager's status output.
func (c *ServiceController) Status(name string) (string, error) {
	var out []byte
	var err error
	if c.goos == "windows" {
		out, err = c.runner.Output("sc", "query", name)
	} else {
		out, err = c.runner.Output("systemctl", "status", name, "--no-pager")
	}
	if err != nil {
		return string(out), errors.Wrapf(err, "failed to query status of %s", name)
	}
	return string(out), nil
}

// IsRunning reports whether the service is active.
func (c *ServiceController) IsRunning(name string) bool {
	if c.goos == "windows" {
		out, err := c.exec.Output("sc", "query", name)
		return err == nil && strings.Contains(string(out), "RUNNING")
	}
	return c.exec.Run("systemctl", "is-active", "--quiet", name) == nil
}

// KillServerProcess terminates a directly started server process, used to
// end the init-file bootstrap.
func (c *ServiceController) KillServerProcess() error {
	if c.goos == "windows" {
		return c.exec.Run("taskkill", "/f", "/im", "mysqld.exe")
	}
	return c.exec.Run("pkill", "-f", "--", "--init-file")
}

// listServices enumerates service names from the platform service manager.
func (c *ServiceController) listServices() ([]string, error) {
	if c.goos == "windows" {
		out, err := c.runner.Output("sc", "query", "state=", "all")
		if err != nil {
			return nil, errors.Wrap(err, "failed to enumerate services")
		}
		return parseScQuery(string(out)), nil
	}

	out, err := c.runner.Output("systemctl", "list-units", "--type=service", "--all", "--no-legend", "--plain")
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate services")
	}
	return parseSystemctlList(string(out)), nil
}

// parseScQuery extracts SERVICE_NAME values from `sc query` output.
func parseScQuery(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "SERVICE_NAME:"); ok {
			names = append(names, strings.TrimSpace(value))
		}
	}
	return names
}

// parseSystemctlList extracts unit names from `systemctl list-units` output.
func parseSystemctlList(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimSuffix(fields[0], ".service")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
