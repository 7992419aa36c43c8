package ssl

import (
	"lampwright/internal/config"
	"lampwright/internal/execx"
	"lampwright/internal/logger"

	apperrors "lampwright/internal/errors"
)

const (
	// CertificateDir is where locally generated certificate material lives.
	CertificateDir = "/etc/apache2/ssl"

	SelfSignedCertPath = CertificateDir + "/selfsigned.crt"
	SelfSignedKeyPath  = CertificateDir + "/selfsigned.key"
	OriginCertPath     = CertificateDir + "/origin.crt"
	OriginKeyPath      = CertificateDir + "/origin.key"
)

// Material describes the certificate output of a strategy. All strategies
// converge on the same virtual-host template, parameterized only by these
// fields.
type Material struct {
	CertPath string
	KeyPath  string
	// Domain is empty when no server name is known; the virtual host then
	// carries a commented-out ServerName line.
	Domain string
	// Notes are operator-facing follow-up instructions (e.g. Cloudflare
	// dashboard steps). They are informational only.
	Notes []string
}

// Strategy prepares certificate material for one SSL mode.
type Strategy interface {
	Name() string
	Prepare() (*Material, error)
}

// Deps carries the collaborators shared by all strategies.
type Deps struct {
	Exec execx.Executor
	Log  logger.Logger
	// PrimaryIP resolves the host's outbound IPv4 address.
	PrimaryIP func() (string, error)
	// LookupHost resolves a domain's addresses. Injected for tests.
	LookupHost func(host string) ([]string, error)
	// PromptDomain asks the operator for a domain when one cannot be
	// derived from the certificate material.
	PromptDomain func() (string, error)
}

// NewStrategy selects the strategy implementation for the configured mode.
func NewStrategy(cfg *config.InstallConfig, deps Deps) (Strategy, error) {
	switch cfg.SSLType {
	case config.SSLSelfSigned:
		return &SelfSigned{cfg: cfg, deps: deps}, nil
	case config.SSLCloudflare:
		return &Cloudflare{cfg: cfg, deps: deps}, nil
	case config.SSLLetsEncrypt:
		return &LetsEncrypt{cfg: cfg, deps: deps}, nil
	case config.SSLCustom:
		return &Custom{cfg: cfg, deps: deps}, nil
	default:
		return nil, newSSLError("ssl.NewStrategy", "unknown SSL mode", nil, apperrors.Metadata{
			"mode": string(cfg.SSLType),
		})
	}
}
