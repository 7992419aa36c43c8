package dbadmin

import (
	"fmt"

	"lampwright/internal/logger"
	"lampwright/internal/menu"
	"lampwright/internal/mysqladmin"
	"lampwright/internal/ui"
)

// Menu is the interactive surface of the database administration binary.
// Every option maps to one or more client invocations through the
// session's retrying runner.
type Menu struct {
	session *mysqladmin.Session
	users   *mysqladmin.UserManager
	tables  *mysqladmin.TableManager
	backups *mysqladmin.BackupManager
	service *mysqladmin.ServiceController
	printer *ui.Printer
	console *ui.Console
	logger  logger.Logger
}

// NewMenu wires the admin menu around an authenticated session.
func NewMenu(session *mysqladmin.Session, service *mysqladmin.ServiceController, log logger.Logger) *Menu {
	return &Menu{
		session: session,
		users:   mysqladmin.NewUserManager(session),
		tables:  mysqladmin.NewTableManager(session),
		backups: mysqladmin.NewBackupManager(session),
		service: service,
		printer: ui.NewPrinter(),
		console: ui.NewConsole(log, nil),
		logger:  log,
	}
}

// Show displays the main menu until the operator quits.
func (m *Menu) Show() error {
	for {
		m.printer.PrintAdminBanner()

		options := []menu.Option{
			{Label: "1. User management", Color: "green", Enabled: true, Handler: m.userMenu},
			{Label: "2. Table management", Color: "green", Enabled: true, Handler: m.tableMenu},
			{Label: "3. Backup", Color: "cyan", Enabled: true, Handler: m.backupMenu},
			{Label: "4. Service control", Color: "yellow", Enabled: true, Handler: m.serviceMenu},
			{Label: "5. Exit", Color: "red", Enabled: true, Handler: nil},
		}

		selected, err := menu.Select("Please select an operation", options)
		if err != nil {
			if menu.IsInterrupt(err) {
				return nil
			}
			return err
		}

		handler := options[selected].Handler
		if handler == nil {
			return nil
		}

		if err := handler(); err != nil {
			if menu.IsInterrupt(err) {
				continue
			}
			m.logger.Error("Operation failed: %v", err)
			menu.WaitEnter("Press Enter to continue")
		}
	}
}

func (m *Menu) userMenu() error {
	options := []menu.Option{
		{Label: "1. List users", Enabled: true, Handler: m.handleListUsers},
		{Label: "2. Create user", Color: "green", Enabled: true, Handler: m.handleCreateUser},
		{Label: "3. Change password", Color: "yellow", Enabled: true, Handler: m.handleChangePassword},
		{Label: "4. Delete user", Color: "red", Enabled: true, Handler: m.handleDeleteUser},
		{Label: "5. Back", Enabled: true, Handler: nil},
	}
	return m.runSubMenu("User management", options)
}

func (m *Menu) tableMenu() error {
	options := []menu.Option{
		{Label: "1. List tables", Enabled: true, Handler: m.handleListTables},
		{Label: "2. Create table", Color: "green", Enabled: true, Handler: m.handleCreateTable},
		{Label: "3. Drop table", Color: "red", Enabled: true, Handler: m.handleDropTable},
		{Label: "4. Back", Enabled: true, Handler: nil},
	}
	return m.runSubMenu("Table management", options)
}

func (m *Menu) backupMenu() error {
	options := []menu.Option{
		{Label: "1. Backup one database", Color: "cyan", Enabled: true, Handler: m.handleBackupDatabase},
		{Label: "2. Backup all databases", Color: "cyan", Enabled: true, Handler: m.handleBackupAll},
		{Label: "3. Back", Enabled: true, Handler: nil},
	}
	return m.runSubMenu("Backup", options)
}

func (m *Menu) serviceMenu() error {
	options := []menu.Option{
		{Label: "1. Status", Enabled: true, Handler: m.serviceAction("status")},
		{Label: "2. Start", Color: "green", Enabled: true, Handler: m.serviceAction("start")},
		{Label: "3. Stop", Color: "red", Enabled: true, Handler: m.serviceAction("stop")},
		{Label: "4. Restart", Color: "yellow", Enabled: true, Handler: m.serviceAction("restart")},
		{Label: "5. Back", Enabled: true, Handler: nil},
	}
	return m.runSubMenu("Service control", options)
}

func (m *Menu) runSubMenu(label string, options []menu.Option) error {
	for {
		selected, err := menu.Select(label, options)
		if err != nil {
			if menu.IsInterrupt(err) {
				return nil
			}
			return err
		}

		handler := options[selected].Handler
		if handler == nil {
			return nil
		}

		if err := handler(); err != nil {
			if menu.IsInterrupt(err) {
				continue
			}
			m.logger.Error("Operation failed: %v", err)
		}
		menu.WaitEnter("Press Enter to continue")
	}
}

func (m *Menu) handleListUsers() error {
	users, err := m.users.List()
	if err != nil {
		return err
	}
	for _, user := range users {
		m.printer.PrintKeyValue("user", user)
	}
	return nil
}

func (m *Menu) handleCreateUser() error {
	userHost, err := menu.PromptString("New user (user@host)", nil)
	if err != nil {
		return err
	}
	password, err := menu.PromptPassword("Password")
	if err != nil {
		return err
	}

	if err := m.users.Create(userHost, password); err != nil {
		return err
	}
	m.logger.Success("User %s created", userHost)
	return nil
}

func (m *Menu) handleChangePassword() error {
	userHost, err := menu.PromptString("User (user@host)", nil)
	if err != nil {
		return err
	}
	password, err := menu.PromptPassword("New password")
	if err != nil {
		return err
	}

	if err := m.users.ChangePassword(userHost, password); err != nil {
		return err
	}
	m.logger.Success("Password updated for %s", userHost)
	return nil
}

func (m *Menu) handleDeleteUser() error {
	userHost, err := menu.PromptString("User to delete (user@host)", nil)
	if err != nil {
		return err
	}

	confirmed, err := menu.PromptYesNo(fmt.Sprintf("Really delete %s", userHost), false)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := m.users.Delete(userHost); err != nil {
		return err
	}
	m.logger.Success("User %s deleted", userHost)
	return nil
}

func (m *Menu) handleListTables() error {
	database, err := m.selectDatabase()
	if err != nil {
		return err
	}

	tables, err := m.tables.ListTables(database)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		m.logger.Info("Database %s has no tables", database)
	}
	for _, table := range tables {
		m.printer.PrintKeyValue(database, table)
	}
	return nil
}

func (m *Menu) handleCreateTable() error {
	database, err := m.selectDatabase()
	if err != nil {
		return err
	}
	table, err := menu.PromptString("Table name", nil)
	if err != nil {
		return err
	}
	columnDef, err := menu.PromptString("Column definition (raw SQL, executed verbatim)", nil)
	if err != nil {
		return err
	}

	if err := m.tables.CreateTable(database, table, columnDef); err != nil {
		return err
	}
	m.logger.Success("Table %s.%s created", database, table)
	return nil
}

func (m *Menu) handleDropTable() error {
	database, err := m.selectDatabase()
	if err != nil {
		return err
	}
	table, err := menu.PromptString("Table to drop", nil)
	if err != nil {
		return err
	}

	confirmed, err := menu.PromptYesNo(fmt.Sprintf("Really drop %s.%s", database, table), false)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := m.tables.DropTable(database, table); err != nil {
		return err
	}
	m.logger.Success("Table %s.%s dropped", database, table)
	return nil
}

func (m *Menu) handleBackupDatabase() error {
	database, err := m.selectDatabase()
	if err != nil {
		return err
	}
	dir, err := menu.PromptOptional("Backup directory (empty for current)")
	if err != nil {
		return err
	}

	m.console.StartProgress("Running mysqldump")
	path, err := m.backups.BackupDatabase(database, dir)
	m.console.StopProgress("mysqldump finished")
	if err != nil {
		return err
	}
	m.logger.Success("Backup written to %s", path)
	return nil
}

func (m *Menu) handleBackupAll() error {
	dir, err := menu.PromptOptional("Backup directory (empty for current)")
	if err != nil {
		return err
	}

	m.console.StartProgress("Running mysqldump")
	path, err := m.backups.BackupAll(dir)
	m.console.StopProgress("mysqldump finished")
	if err != nil {
		return err
	}
	m.logger.Success("Backup written to %s", path)
	return nil
}

func (m *Menu) serviceAction(action string) func() error {
	return func() error {
		name, err := m.service.Find()
		if err != nil {
			return err
		}

		switch action {
		case "status":
			out, err := m.service.Status(name)
			if err != nil {
				return err
			}
			m.console.WriteLine("%s", out)
			return nil
		case "start":
			if err := m.service.Start(name); err != nil {
				return err
			}
			m.logger.Success("Service %s started", name)
		case "stop":
			if err := m.service.Stop(name); err != nil {
				return err
			}
			m.logger.Success("Service %s stopped", name)
		case "restart":
			if err := m.service.Restart(name); err != nil {
				return err
			}
			m.logger.Success("Service %s restarted", name)
		}
		return nil
	}
}

func (m *Menu) selectDatabase() (string, error) {
	databases, err := m.tables.ListDatabases()
	if err != nil {
		return "", err
	}
	if len(databases) == 0 {
		return "", fmt.Errorf("no databases visible to this session")
	}

	options := make([]menu.Option, 0, len(databases))
	for i, db := range databases {
		options = append(options, menu.Option{
			Label:   fmt.Sprintf("%d. %s", i+1, db),
			Enabled: true,
		})
	}

	selected, err := menu.Select("Select database", options)
	if err != nil {
		return "", err
	}
	return databases[selected], nil
}
