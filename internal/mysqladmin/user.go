package mysqladmin

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ParseUserHost splits a user@host specification. Malformed input is
// rejected before any command is executed.
func ParseUserHost(input string) (user, host string, err error) {
	parts := strings.Split(input, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid user specification %q, expected user@host", input)
	}
	return parts[0], parts[1], nil
}

// UserManager implements the user administration commands.
type UserManager struct {
	session *Session
}

// NewUserManager wraps a session with user administration.
func NewUserManager(session *Session) *UserManager {
	return &UserManager{session: session}
}

// Create adds a user with a full superuser grant.
func (m *UserManager) Create(userHost, password string) error {
	user, host, err := ParseUserHost(userHost)
	if err != nil {
		return err
	}

	statements := fmt.Sprintf(
		"CREATE USER '%s'@'%s' IDENTIFIED BY '%s';\n"+
			"GRANT ALL PRIVILEGES ON *.* TO '%s'@'%s' WITH GRANT OPTION;\n"+
			"FLUSH PRIVILEGES;\n",
		user, host, password, user, host,
	)
	return m.session.ExecSQL(statements)
}

// ChangePassword rotates a user's password.
func (m *UserManager) ChangePassword(userHost, newPassword string) error {
	user, host, err := ParseUserHost(userHost)
	if err != nil {
		return err
	}

	statements := fmt.Sprintf(
		"ALTER USER '%s'@'%s' IDENTIFIED BY '%s';\nFLUSH PRIVILEGES;\n",
		user, host, newPassword,
	)
	return m.session.ExecSQL(statements)
}

// Delete removes a user.
func (m *UserManager) Delete(userHost string) error {
	user, host, err := ParseUserHost(userHost)
	if err != nil {
		return err
	}

	statements := fmt.Sprintf(
		"DROP USER '%s'@'%s';\nFLUSH PRIVILEGES;\n",
		user, host,
	)
	return m.session.ExecSQL(statements)
}

// List returns the user@host pairs known to the server.
func (m *UserManager) List() ([]string, error) {
	out, err := m.session.QuerySQL("SELECT CONCAT(User, '@', Host) FROM mysql.user ORDER BY User;")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return splitLines(string(out)), nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
