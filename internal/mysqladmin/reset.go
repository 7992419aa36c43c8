package mysqladmin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"lampwright/internal/execx"
	"lampwright/internal/logger"
)

// DefaultBootstrapWait is how long the unauthenticated bootstrap server is
// given to apply the init file before it is terminated. There is no
// readiness signal from the server; the wait is a fixed interval.
const DefaultBootstrapWait = 15 * time.Second

// Resetter performs the unattended root-password reset: stop the service,
// start the server in init-file bootstrap mode, wait, terminate it, and
// restart the service normally.
//
// The procedure is not atomic. An interruption can leave the service
// stopped or the init file on disk; ResetRoot cleans up what it can.
type Resetter struct {
	install Installation
	service *ServiceController
	exec    execx.Executor
	logger  logger.Logger

	BootstrapWait time.Duration

	// initFileDir is overridable for tests; defaults to the system temp dir.
	initFileDir string
	goos        string
}

// NewResetter builds a Resetter for the given installation.
func NewResetter(install Installation, service *ServiceController, exec execx.Executor, log logger.Logger) *Resetter {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &Resetter{
		install:       install,
		service:       service,
		exec:          exec,
		logger:        log,
		BootstrapWait: DefaultBootstrapWait,
		initFileDir:   os.TempDir(),
		goos:          runtime.GOOS,
	}
}

// ResetRoot sets the root password without normal authentication and
// returns once the service is back up. The new password is reported to the
// operator by the caller; it is never logged here.
func (r *Resetter) ResetRoot(newPassword string) error {
	if r.install.ServerPath == "" {
		return errors.New("installation has no server binary, cannot bootstrap")
	}

	initFile, err := r.writeInitFile(newPassword)
	if err != nil {
		return err
	}
	defer os.Remove(initFile)

	serviceName, err := r.service.Find()
	if err != nil {
		return errors.Wrap(err, "failed to locate database service")
	}

	r.logger.Info("Stopping service %s", serviceName)
	if err := r.service.Stop(serviceName); err != nil {
		return errors.Wrap(err, "failed to stop database service")
	}

	r.logger.Info("Starting bootstrap server with init file")
	if err := r.startBootstrap(initFile); err != nil {
		// Best effort: bring the normal service back before failing.
		if startErr := r.service.Start(serviceName); startErr != nil {
			r.logger.Error("Service restart after failed bootstrap also failed: %v", startErr)
		}
		return errors.Wrap(err, "failed to start bootstrap server")
	}

	time.Sleep(r.BootstrapWait)

	r.logger.Info("Terminating bootstrap server")
	if err := r.killBootstrap(); err != nil {
		r.logger.Warn("Failed to terminate bootstrap server cleanly: %v", err)
	}

	r.logger.Info("Restarting service %s", serviceName)
	if err := r.service.Start(serviceName); err != nil {
		return errors.Wrap(err, "failed to restart database service after reset")
	}

	return nil
}

func (r *Resetter) writeInitFile(newPassword string) (string, error) {
	content := fmt.Sprintf(
		"ALTER USER 'root'@'localhost' IDENTIFIED BY '%s';\nFLUSH PRIVILEGES;\n",
		newPassword,
	)

	path := filepath.Join(r.initFileDir, "mysql-root-reset.sql")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.Wrapf(err, "failed to write init file %s", path)
	}
	return path, nil
}

func (r *Resetter) startBootstrap(initFile string) error {
	if r.goos == "windows" {
		return r.exec.Run("cmd", "/c", "start", "/b", r.install.ServerPath, "--init-file="+initFile)
	}
	return r.exec.Run(r.install.ServerPath, "--init-file="+initFile, "--daemonize")
}

func (r *Resetter) killBootstrap() error {
	return r.service.KillServerProcess()
}
