package ssl

import (
	"fmt"
	"os"

	"lampwright/internal/config"

	apperrors "lampwright/internal/errors"
)

// SelfSigned generates a local 2048-bit key and a 365-day certificate.
// No external validation takes place.
type SelfSigned struct {
	cfg  *config.InstallConfig
	deps Deps
}

func (s *SelfSigned) Name() string { return "self-signed" }

// Prepare writes the key and certificate to the fixed locations. The CN is
// the configured domain, falling back to the host's primary IP.
func (s *SelfSigned) Prepare() (*Material, error) {
	commonName := s.cfg.SSLDomain
	if commonName == "" {
		ip, err := s.deps.PrimaryIP()
		if err != nil {
			return nil, err
		}
		commonName = ip
	}

	if err := generateSelfSignedPair(s.deps, commonName, SelfSignedCertPath, SelfSignedKeyPath); err != nil {
		return nil, err
	}

	return &Material{
		CertPath: SelfSignedCertPath,
		KeyPath:  SelfSignedKeyPath,
		Domain:   s.cfg.SSLDomain,
	}, nil
}

func generateSelfSignedPair(deps Deps, commonName, certPath, keyPath string) error {
	if err := os.MkdirAll(CertificateDir, 0o755); err != nil {
		return newSSLError("ssl.generateSelfSignedPair", "failed to prepare certificate directory", err, apperrors.Metadata{
			"path": CertificateDir,
		})
	}

	args := []string{
		"req", "-x509", "-nodes",
		"-days", "365",
		"-newkey", "rsa:2048",
		"-keyout", keyPath,
		"-out", certPath,
		"-subj", fmt.Sprintf("/CN=%s", commonName),
	}

	if err := deps.Exec.Run("openssl", args...); err != nil {
		return newSSLError("ssl.generateSelfSignedPair", "openssl certificate generation failed", err, apperrors.Metadata{
			"common_name": commonName,
		})
	}

	if err := os.Chmod(keyPath, 0o600); err != nil {
		return newSSLError("ssl.generateSelfSignedPair", "failed to restrict key permissions", err, apperrors.Metadata{
			"path": keyPath,
		})
	}

	return nil
}
