package pkgmgr

import (
	"strings"

	apperrors "lampwright/internal/errors"
	"lampwright/internal/execx"
)

// Manager orchestrates package installation via dpkg/apt.
type Manager struct {
	exec execx.Executor
}

// NewManager constructs a Manager with the provided executor
// (defaults to SystemExecutor).
func NewManager(exec execx.Executor) *Manager {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &Manager{exec: exec}
}

// RequiredPackages defines the baseline LAMP stack package set.
var RequiredPackages = []string{
	"apache2",
	"mariadb-server",
	"mariadb-client",
	"php",
	"libapache2-mod-php",
	"php-mysql",
	"php-curl",
	"php-gd",
	"php-mbstring",
	"php-xml",
	"php-zip",
	"openssl",
	"certbot",
	"wget",
	"curl",
	"tar",
	"cron",
	"ca-certificates",
}

// InstallDependencies installs all missing baseline packages.
func (m *Manager) InstallDependencies() error {
	missing, err := m.missingPackages()
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		return nil
	}

	return m.installPackages(missing)
}

// UpgradeSystem refreshes the package index and applies pending upgrades.
func (m *Manager) UpgradeSystem() error {
	steps := [][]string{
		{"apt", "update", "--fix-missing"},
		{"apt", "full-upgrade", "-y"},
	}
	for _, step := range steps {
		if err := m.exec.Run(step[0], step[1:]...); err != nil {
			return pkgError("pkgmgr.UpgradeSystem", "package upgrade command failed", err, apperrors.Metadata{
				"command": strings.Join(step, " "),
			})
		}
	}
	return nil
}

func (m *Manager) missingPackages() ([]string, error) {
	installed, err := m.installedPackageSet()
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, pkg := range RequiredPackages {
		if _, exists := installed[pkg]; !exists {
			missing = append(missing, pkg)
		}
	}

	return missing, nil
}

func (m *Manager) installedPackageSet() (map[string]struct{}, error) {
	output, err := m.exec.Output("dpkg-query", "-W", "-f=${binary:Package}\n")
	if err != nil {
		return nil, pkgError("pkgmgr.installedPackageSet", "dpkg-query failed", err, apperrors.Metadata{
			"command": "dpkg-query -W",
		})
	}

	result := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		pkg := strings.TrimSpace(line)
		if pkg == "" {
			continue
		}
		result[pkg] = struct{}{}
		if idx := strings.Index(pkg, ":"); idx > 0 {
			result[pkg[:idx]] = struct{}{}
		}
	}
	return result, nil
}

func (m *Manager) installPackages(packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	if err := m.exec.Run("apt", "update"); err != nil {
		return pkgError("pkgmgr.installPackages", "failed to update package index", err, nil)
	}

	args := append([]string{"install", "-y"}, packages...)
	if err := m.exec.Run("apt", args...); err != nil {
		return pkgError("pkgmgr.installPackages", "failed to install packages via apt", err, apperrors.Metadata{
			"packages": strings.Join(packages, ","),
		})
	}

	return nil
}

func pkgError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	appErr := apperrors.DependencyError(apperrors.CodeDependencyGeneric, message, err).
		WithModule("pkgmgr").
		WithOperation(operation)
	if metadata != nil {
		appErr.WithFields(metadata)
	}
	return appErr
}
