package mysqladmin

import (
	"github.com/pkg/errors"

	"lampwright/internal/execx"
	"lampwright/internal/logger"
)

// maxLoginAttempts bounds interactive authentication.
const maxLoginAttempts = 3

// ErrLoginAttemptsExhausted signals that the operator failed to
// authenticate within the attempt budget; callers may offer the
// root-password reset flow.
var ErrLoginAttemptsExhausted = errors.New("login attempts exhausted")

// Credentials is one username/password pair supplied by the operator.
type Credentials struct {
	User     string
	Password string
}

// Session is an authenticated connection context against one installation.
// All administrative commands run through its retrying runner.
type Session struct {
	install  Installation
	exec     execx.Executor
	runner   *execx.Runner
	logger   logger.Logger
	creds    Credentials
	loggedIn bool
}

// NewSession creates an unauthenticated session for the given installation.
func NewSession(install Installation, exec execx.Executor, log logger.Logger) *Session {
	if exec == nil {
		exec = execx.QuietExecutor{}
	}
	return &Session{
		install: install,
		exec:    exec,
		runner:  execx.NewRunner(exec),
		logger:  log,
	}
}

// Installation returns the installation this session is bound to.
func (s *Session) Installation() Installation {
	return s.install
}

// LoggedIn reports whether authentication succeeded.
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

// Authenticate prompts for credentials up to maxLoginAttempts times. Each
// attempt issues a trivial query and inspects only the exit status.
func (s *Session) Authenticate(prompt func(attempt int) (Credentials, error)) error {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		creds, err := prompt(attempt)
		if err != nil {
			return errors.Wrap(err, "failed to read credentials")
		}

		if err := s.TestCredentials(creds); err != nil {
			s.logger.Warn("Authentication failed (attempt %d/%d)", attempt, maxLoginAttempts)
			continue
		}

		s.creds = creds
		s.loggedIn = true
		return nil
	}

	return ErrLoginAttemptsExhausted
}

// Adopt marks the session authenticated with known-good credentials, used
// after a successful root-password reset.
func (s *Session) Adopt(creds Credentials) {
	s.creds = creds
	s.loggedIn = true
}

// TestCredentials verifies a credential pair with a single trivial query.
// The retry runner is deliberately bypassed; each interactive attempt is
// exactly one client invocation.
func (s *Session) TestCredentials(creds Credentials) error {
	return s.exec.RunInput("SELECT 1;", s.install.ClientPath, s.clientArgs(creds)...)
}

// ExecSQL runs SQL statements through the retrying runner.
func (s *Session) ExecSQL(statements string) error {
	if !s.loggedIn {
		return errors.New("session is not authenticated")
	}
	return s.runner.RunInput(statements, s.install.ClientPath, s.clientArgs(s.creds)...)
}

// QuerySQL runs a query and returns raw client output, with retries.
func (s *Session) QuerySQL(query string) ([]byte, error) {
	if !s.loggedIn {
		return nil, errors.New("session is not authenticated")
	}
	args := append(s.clientArgs(s.creds), "-N", "-e", query)
	return s.runner.Output(s.install.ClientPath, args...)
}

// Runner exposes the session's retrying runner for non-SQL commands that
// must follow the same retry policy (dump, service control).
func (s *Session) Runner() *execx.Runner {
	return s.runner
}

// User returns the authenticated username.
func (s *Session) User() string {
	return s.creds.User
}

// Password returns the authenticated password, needed by the dump tool.
func (s *Session) Password() string {
	return s.creds.Password
}

func (s *Session) clientArgs(creds Credentials) []string {
	args := []string{"-u" + creds.User}
	if creds.Password != "" {
		args = append(args, "--password="+creds.Password)
	}
	return args
}
