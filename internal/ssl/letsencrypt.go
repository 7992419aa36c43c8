package ssl

import (
	"errors"
	"fmt"
	"os"

	"lampwright/internal/config"
	"lampwright/internal/execx"

	apperrors "lampwright/internal/errors"
)

const letsEncryptLiveDir = "/etc/letsencrypt/live"

// ErrIssuanceFailed marks a certificate-authority failure. Callers treat
// it as a downgrade to HTTP rather than a fatal error.
var ErrIssuanceFailed = errors.New("certificate issuance failed")

// renewalCronPath is a var so tests can redirect the cron write.
var renewalCronPath = "/etc/cron.d/lampwright-certbot-renew"

// LetsEncrypt issues a publicly trusted certificate via certbot's
// standalone HTTP-01 challenge.
type LetsEncrypt struct {
	cfg  *config.InstallConfig
	deps Deps
}

func (s *LetsEncrypt) Name() string { return "letsencrypt" }

// Prepare requires a domain, verifies its A record against the host's
// primary IP (warning only on mismatch), temporarily stops the web server
// to free port 80, and schedules a daily renewal job on success. A certbot
// failure is returned to the caller, which downgrades the run to HTTP-only.
func (s *LetsEncrypt) Prepare() (*Material, error) {
	domain := s.cfg.SSLDomain
	if domain == "" {
		return nil, newSSLError("ssl.LetsEncrypt.Prepare", "letsencrypt mode requires a domain", errors.New("empty domain"), nil)
	}

	s.verifyDomainResolution(domain)

	handler := newPort80Handler(s.deps.Exec)
	if err := handler.preparePort80(); err != nil {
		return nil, err
	}

	issueErr := s.issueCertificate(domain)

	if err := handler.restoreServices(); err != nil && s.deps.Log != nil {
		s.deps.Log.Warn("Failed to restore web server after challenge: %v", err)
	}

	if issueErr != nil {
		return nil, issueErr
	}

	if err := s.scheduleRenewal(); err != nil {
		return nil, err
	}

	return &Material{
		CertPath: fmt.Sprintf("%s/%s/fullchain.pem", letsEncryptLiveDir, domain),
		KeyPath:  fmt.Sprintf("%s/%s/privkey.pem", letsEncryptLiveDir, domain),
		Domain:   domain,
	}, nil
}

// verifyDomainResolution compares the domain's A record with the host's
// primary IP. A mismatch or lookup failure never aborts the run.
func (s *LetsEncrypt) verifyDomainResolution(domain string) {
	log := s.deps.Log

	addrs, err := s.deps.LookupHost(domain)
	if err != nil {
		if log != nil {
			log.Warn("Could not resolve %s: %v; the HTTP-01 challenge may fail", domain, err)
		}
		return
	}

	hostIP, err := s.deps.PrimaryIP()
	if err != nil {
		if log != nil {
			log.Warn("Could not determine the host's primary IP: %v", err)
		}
		return
	}

	for _, addr := range addrs {
		if addr == hostIP {
			return
		}
	}

	if log != nil {
		log.Warn("Domain %s resolves to %v, not to this host (%s); continuing anyway", domain, addrs, hostIP)
	}
}

func (s *LetsEncrypt) issueCertificate(domain string) error {
	args := []string{
		"certonly", "--standalone",
		"-d", domain,
		"--agree-tos",
		"--non-interactive",
	}
	if s.cfg.SSLEmail != "" {
		args = append(args, "--email", s.cfg.SSLEmail)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}

	if err := s.deps.Exec.Run("certbot", args...); err != nil {
		cause := fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
		return newSSLError("ssl.LetsEncrypt.issueCertificate", "certbot certificate issuance failed", cause, apperrors.Metadata{
			"domain": domain,
		})
	}

	return nil
}

func (s *LetsEncrypt) scheduleRenewal() error {
	content := "0 3 * * * root certbot renew --quiet --deploy-hook \"systemctl reload apache2\"\n"
	if err := os.WriteFile(renewalCronPath, []byte(content), 0o644); err != nil {
		return newSSLError("ssl.LetsEncrypt.scheduleRenewal", "failed to write renewal cron entry", err, apperrors.Metadata{
			"path": renewalCronPath,
		})
	}
	return nil
}

// port80Handler stops whichever web server currently binds port 80 and
// restores it afterwards, in reverse order.
type port80Handler struct {
	exec            execx.Executor
	stoppedServices []string
}

func newPort80Handler(exec execx.Executor) *port80Handler {
	return &port80Handler{exec: exec}
}

func (h *port80Handler) preparePort80() error {
	candidates := []string{"apache2", "nginx"}

	for _, svc := range candidates {
		if h.isServiceRunning(svc) {
			if err := h.exec.Run("systemctl", "stop", svc); err != nil {
				return newSSLError("ssl.port80Handler.preparePort80", "failed to stop service for port 80 access", err, apperrors.Metadata{
					"service": svc,
				})
			}
			h.stoppedServices = append(h.stoppedServices, svc)
		}
	}

	return nil
}

func (h *port80Handler) restoreServices() error {
	var firstErr error
	for i := len(h.stoppedServices) - 1; i >= 0; i-- {
		svc := h.stoppedServices[i]
		if err := h.exec.Run("systemctl", "start", svc); err != nil && firstErr == nil {
			firstErr = newSSLError("ssl.port80Handler.restoreServices", "failed to restart service after issuance", err, apperrors.Metadata{
				"service": svc,
			})
		}
	}
	return firstErr
}

func (h *port80Handler) isServiceRunning(name string) bool {
	return h.exec.Run("systemctl", "is-active", "--quiet", name) == nil
}
