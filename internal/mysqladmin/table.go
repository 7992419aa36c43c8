package mysqladmin

import (
	"fmt"

	"github.com/pkg/errors"
)

// TableManager implements the table administration commands.
type TableManager struct {
	session *Session
}

// NewTableManager wraps a session with table administration.
func NewTableManager(session *Session) *TableManager {
	return &TableManager{session: session}
}

// ListDatabases returns the databases visible to the session user.
func (m *TableManager) ListDatabases() ([]string, error) {
	out, err := m.session.QuerySQL("SHOW DATABASES;")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list databases")
	}
	return splitLines(string(out)), nil
}

// ListTables returns the tables of the chosen database.
func (m *TableManager) ListTables(database string) ([]string, error) {
	out, err := m.session.QuerySQL(fmt.Sprintf("SHOW TABLES FROM `%s`;", database))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tables of %s", database)
	}
	return splitLines(string(out)), nil
}

// CreateTable creates a table from an operator-supplied column definition.
// The definition is executed verbatim; the server is the validator.
func (m *TableManager) CreateTable(database, table, columnDef string) error {
	if columnDef == "" {
		return errors.New("column definition must not be empty")
	}
	statement := fmt.Sprintf("CREATE TABLE `%s`.`%s` (%s);\n", database, table, columnDef)
	return m.session.ExecSQL(statement)
}

// DropTable removes a table. Confirmation is the caller's responsibility.
func (m *TableManager) DropTable(database, table string) error {
	statement := fmt.Sprintf("DROP TABLE `%s`.`%s`;\n", database, table)
	return m.session.ExecSQL(statement)
}
