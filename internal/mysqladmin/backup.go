package mysqladmin

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// BackupManager dumps databases to timestamped files.
type BackupManager struct {
	session *Session

	// now is overridable so tests get stable file names.
	now func() time.Time
}

// NewBackupManager wraps a session with backup commands.
func NewBackupManager(session *Session) *BackupManager {
	return &BackupManager{session: session, now: time.Now}
}

// BackupDatabase dumps one database into dir and returns the file path.
// The directory is created when absent.
func (m *BackupManager) BackupDatabase(database, dir string) (string, error) {
	return m.dump(database, dir, database)
}

// BackupAll dumps every database into dir and returns the file path.
func (m *BackupManager) BackupAll(dir string) (string, error) {
	return m.dump("", dir, "all-databases")
}

func (m *BackupManager) dump(database, dir, label string) (string, error) {
	if m.session.install.DumpPath == "" {
		return "", errors.New("installation has no dump binary")
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create backup directory %s", dir)
	}

	stamp := m.now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", label, stamp))

	args := []string{"-u" + m.session.User()}
	if password := m.session.Password(); password != "" {
		args = append(args, "--password="+password)
	}
	if database == "" {
		args = append(args, "--all-databases")
	} else {
		args = append(args, database)
	}

	out, err := m.session.Runner().Output(m.session.install.DumpPath, args...)
	if err != nil {
		return "", errors.Wrapf(err, "failed to dump %s", label)
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", errors.Wrapf(err, "failed to write backup file %s", path)
	}

	return path, nil
}
