package database

import (
	"fmt"

	apperrors "lampwright/internal/errors"
	"lampwright/internal/execx"
	"lampwright/internal/logger"
)

// Provisioner prepares the local MariaDB/MySQL server for WordPress.
// Only exit statuses are observed; client output is never parsed.
type Provisioner struct {
	exec execx.Executor
	log  logger.Logger
}

// NewProvisioner constructs a database provisioner.
func NewProvisioner(exec execx.Executor, log logger.Logger) *Provisioner {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &Provisioner{exec: exec, log: log}
}

// SecureRoot ensures the root account carries the generated password.
// A passwordless root account is updated directly. When a password is
// already set, promptCurrent supplies it; the password is verified with a
// trial query before rotation and a wrong password is fatal.
func (p *Provisioner) SecureRoot(newPassword string, promptCurrent func() (string, error)) error {
	if p.trialQuery("") == nil {
		p.log.Debug("Root account has no password, setting one directly")
		return p.rotateRoot("", newPassword)
	}

	current, err := promptCurrent()
	if err != nil {
		return newDatabaseError("database.SecureRoot", "failed to read current root password", err, nil)
	}

	if err := p.trialQuery(current); err != nil {
		return newDatabaseError("database.SecureRoot", "current root password is incorrect", err, nil)
	}

	return p.rotateRoot(current, newPassword)
}

// CreateWordPressDB creates the application database and a user scoped to it.
func (p *Provisioner) CreateWordPressDB(rootPassword, dbName, dbUser, dbPassword string) error {
	statements := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS %s DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci;\n"+
			"CREATE USER IF NOT EXISTS '%s'@'localhost' IDENTIFIED BY '%s';\n"+
			"GRANT ALL PRIVILEGES ON %s.* TO '%s'@'localhost';\n"+
			"FLUSH PRIVILEGES;\n",
		dbName, dbUser, dbPassword, dbName, dbUser,
	)

	if err := p.execSQL(rootPassword, statements); err != nil {
		return newDatabaseError("database.CreateWordPressDB", "failed to create application database", err, apperrors.Metadata{
			"database": dbName,
			"user":     dbUser,
		})
	}

	return nil
}

// EnsureRunning starts and enables the database service.
func (p *Provisioner) EnsureRunning() error {
	if err := p.exec.Run("systemctl", "start", "mariadb"); err != nil {
		return newDatabaseError("database.EnsureRunning", "failed to start database service", err, nil)
	}
	if err := p.exec.Run("systemctl", "enable", "mariadb"); err != nil {
		return newDatabaseError("database.EnsureRunning", "failed to enable database service", err, nil)
	}
	return nil
}

func (p *Provisioner) rotateRoot(currentPassword, newPassword string) error {
	statements := fmt.Sprintf(
		"ALTER USER 'root'@'localhost' IDENTIFIED BY '%s';\nFLUSH PRIVILEGES;\n",
		newPassword,
	)

	if err := p.execSQL(currentPassword, statements); err != nil {
		return newDatabaseError("database.rotateRoot", "failed to set root password", err, nil)
	}

	return nil
}

// trialQuery runs a trivial query and reports only the exit status.
func (p *Provisioner) trialQuery(password string) error {
	return p.execSQL(password, "SELECT 1;")
}

func (p *Provisioner) execSQL(password, statements string) error {
	args := []string{"-uroot"}
	if password != "" {
		args = append(args, "--password="+password)
	}
	return p.exec.RunInput(statements, "mysql", args...)
}

func newDatabaseError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	appErr := apperrors.DatabaseError(apperrors.CodeDatabaseGeneric, message, err).
		WithModule("database").
		WithOperation(operation)
	if metadata != nil {
		appErr.WithFields(metadata)
	}
	return appErr
}
