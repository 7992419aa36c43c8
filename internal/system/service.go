package system

import (
	"os/exec"
	"strings"

	apperrors "lampwright/internal/errors"
)

// ServiceState reports a coarse systemd service state.
type ServiceState string

const (
	ServiceActive       ServiceState = "active"
	ServiceInactive     ServiceState = "inactive"
	ServiceNotInstalled ServiceState = "not-installed"
)

// IsServiceRunning reports whether the named systemd unit is active.
func IsServiceRunning(name string) bool {
	return exec.Command("systemctl", "is-active", "--quiet", name).Run() == nil
}

// ServiceStatus probes the current state of a systemd unit.
func ServiceStatus(name string) ServiceState {
	if IsServiceRunning(name) {
		return ServiceActive
	}

	output, err := exec.Command("systemctl", "list-unit-files", name+".service").Output()
	if err != nil || !strings.Contains(string(output), name) {
		return ServiceNotInstalled
	}

	return ServiceInactive
}

// StartService starts a systemd unit.
func StartService(name string) error {
	return serviceCommand("start", name)
}

// StopService stops a systemd unit.
func StopService(name string) error {
	return serviceCommand("stop", name)
}

// RestartService restarts a systemd unit.
func RestartService(name string) error {
	return serviceCommand("restart", name)
}

// ReloadService reloads a systemd unit, falling back to restart when the
// unit does not support reload.
func ReloadService(name string) error {
	if err := serviceCommand("reload", name); err != nil {
		return serviceCommand("restart", name)
	}
	return nil
}

// EnableService enables a systemd unit at boot.
func EnableService(name string) error {
	return serviceCommand("enable", name)
}

func serviceCommand(action, name string) error {
	output, err := exec.Command("systemctl", action, name).CombinedOutput()
	if err != nil {
		return apperrors.ServiceError(apperrors.CodeServiceGeneric, "systemctl command failed", err).
			WithOperation("system.serviceCommand").
			WithFields(apperrors.Metadata{
				"action":  action,
				"service": name,
				"output":  strings.TrimSpace(string(output)),
			})
	}
	return nil
}
