package dbadmin

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"lampwright/internal/execx"
	"lampwright/internal/history"
	"lampwright/internal/logger"
	"lampwright/internal/menu"
	dbmenu "lampwright/internal/menu/dbadmin"
	"lampwright/internal/mysqladmin"
	"lampwright/internal/secrets"
)

// App drives the administration session: discover installations, select
// one, authenticate with bounded retries, optionally reset the root
// password, then enter the menu loop.
type App struct {
	logger  logger.Logger
	exec    execx.Executor
	history history.Repository

	// PathOverride is the optional operator-supplied installation
	// directory from the command line.
	PathOverride string
}

// New creates the admin application.
func New(exec execx.Executor, log logger.Logger, hist history.Repository) *App {
	if exec == nil {
		exec = execx.QuietExecutor{}
	}
	return &App{logger: log, exec: exec, history: hist}
}

// Run executes the full session flow.
func (a *App) Run() error {
	install, err := a.selectInstallation()
	if err != nil {
		return err
	}
	a.logger.Info("Using installation %s (%s)", install.Name, install.Root)

	session := mysqladmin.NewSession(install, a.exec, a.logger)
	service := mysqladmin.NewServiceController(a.exec, a.logger)

	if err := a.authenticate(session, service); err != nil {
		if menu.IsInterrupt(err) {
			return nil
		}
		return err
	}

	a.record("login", install.Name, history.OutcomeSuccess)

	return dbmenu.NewMenu(session, service, a.logger).Show()
}

func (a *App) selectInstallation() (mysqladmin.Installation, error) {
	installs := mysqladmin.Discover(a.PathOverride)
	if len(installs) == 0 {
		return mysqladmin.Installation{}, errors.New("no MySQL installation found; use -path to point at one")
	}
	if len(installs) == 1 {
		return installs[0], nil
	}

	options := make([]menu.Option, 0, len(installs))
	for i, install := range installs {
		options = append(options, menu.Option{
			Label:   fmt.Sprintf("%d. %s (%s)", i+1, install.Name, install.Root),
			Enabled: true,
		})
	}

	selected, err := menu.Select("Select MySQL installation", options)
	if err != nil {
		return mysqladmin.Installation{}, err
	}
	return installs[selected], nil
}

// authenticate runs the bounded login loop and falls back to the
// root-password reset flow when the attempts are exhausted.
func (a *App) authenticate(session *mysqladmin.Session, service *mysqladmin.ServiceController) error {
	err := session.Authenticate(func(attempt int) (mysqladmin.Credentials, error) {
		a.logger.Info("Login attempt %d of 3", attempt)
		user, err := menu.PromptString("Username", nil)
		if err != nil {
			return mysqladmin.Credentials{}, err
		}
		password, err := menu.PromptPassword("Password")
		if err != nil {
			return mysqladmin.Credentials{}, err
		}
		return mysqladmin.Credentials{User: user, Password: password}, nil
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, mysqladmin.ErrLoginAttemptsExhausted) {
		return err
	}

	a.record("login", "", history.OutcomeFailure)

	doReset, promptErr := menu.PromptYesNo("Login failed 3 times. Reset the root password", false)
	if promptErr != nil {
		return promptErr
	}
	if !doReset {
		return err
	}

	newPassword, err := a.resetRoot(session, service)
	if err != nil {
		a.record("root-reset", "", history.OutcomeFailure)
		return err
	}
	a.record("root-reset", "", history.OutcomeSuccess)

	// One retry with the fresh credentials; exit status decides.
	creds := mysqladmin.Credentials{User: "root", Password: newPassword}
	if err := session.TestCredentials(creds); err != nil {
		return errors.Wrap(err, "authentication still failing after reset")
	}
	session.Adopt(creds)
	return nil
}

func (a *App) resetRoot(session *mysqladmin.Session, service *mysqladmin.ServiceController) (string, error) {
	newPassword, err := secrets.RandomPassword(16)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate password")
	}

	resetter := mysqladmin.NewResetter(session.Installation(), service, a.exec, a.logger)
	if err := resetter.ResetRoot(newPassword); err != nil {
		return "", err
	}

	// Reported in cleartext so the operator can store it.
	a.logger.Success("Root password reset. New password: %s", newPassword)
	return newPassword, nil
}

func (a *App) record(action, detail, outcome string) {
	if a.history == nil {
		return
	}
	if _, err := a.history.Append(context.Background(), history.Record{
		Tool:    "dbadmin",
		Action:  action,
		Detail:  detail,
		Outcome: outcome,
	}); err != nil {
		a.logger.Warn("Failed to record history: %v", err)
	}
}
