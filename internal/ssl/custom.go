package ssl

import (
	"crypto/md5"
	"errors"
	"os"
	"strings"

	"lampwright/internal/config"

	apperrors "lampwright/internal/errors"
)

// Custom validates an operator-supplied certificate/key pair before use.
type Custom struct {
	cfg  *config.InstallConfig
	deps Deps
}

func (s *Custom) Name() string { return "custom" }

// Prepare checks that both files exist and are readable, that the
// certificate modulus matches the key modulus, and derives the domain from
// the certificate subject, prompting the operator when the CN cannot be
// parsed. Validation failures happen before any virtual-host generation.
func (s *Custom) Prepare() (*Material, error) {
	certPath := s.cfg.CustomCertPath
	keyPath := s.cfg.CustomKeyPath

	for _, path := range []string{certPath, keyPath} {
		if err := checkReadable(path); err != nil {
			return nil, err
		}
	}

	if err := s.verifyModulusMatch(certPath, keyPath); err != nil {
		return nil, err
	}

	domain := s.cfg.SSLDomain
	if domain == "" {
		domain = s.certificateCN(certPath)
	}
	if domain == "" && s.deps.PromptDomain != nil {
		prompted, err := s.deps.PromptDomain()
		if err != nil {
			return nil, newSSLError("ssl.Custom.Prepare", "failed to read domain", err, nil)
		}
		domain = prompted
	}

	return &Material{
		CertPath: certPath,
		KeyPath:  keyPath,
		Domain:   domain,
	}, nil
}

// verifyModulusMatch compares md5 digests of the certificate and key
// moduli, the same check `openssl ... -modulus | md5sum` performs.
func (s *Custom) verifyModulusMatch(certPath, keyPath string) error {
	certModulus, err := s.deps.Exec.Output("openssl", "x509", "-noout", "-modulus", "-in", certPath)
	if err != nil {
		return newSSLError("ssl.Custom.verifyModulusMatch", "failed to read certificate modulus", err, apperrors.Metadata{
			"path": certPath,
		})
	}

	keyModulus, err := s.deps.Exec.Output("openssl", "rsa", "-noout", "-modulus", "-in", keyPath)
	if err != nil {
		return newSSLError("ssl.Custom.verifyModulusMatch", "failed to read key modulus", err, apperrors.Metadata{
			"path": keyPath,
		})
	}

	certDigest := md5.Sum([]byte(strings.TrimSpace(string(certModulus))))
	keyDigest := md5.Sum([]byte(strings.TrimSpace(string(keyModulus))))

	if certDigest != keyDigest {
		return newSSLError("ssl.Custom.verifyModulusMatch", "certificate does not match private key", errors.New("modulus mismatch"), apperrors.Metadata{
			"cert": certPath,
			"key":  keyPath,
		})
	}

	return nil
}

// certificateCN extracts the CN from the certificate subject, returning ""
// when it cannot be parsed.
func (s *Custom) certificateCN(certPath string) string {
	output, err := s.deps.Exec.Output("openssl", "x509", "-noout", "-subject", "-in", certPath)
	if err != nil {
		return ""
	}

	subject := strings.TrimSpace(string(output))
	subject = strings.TrimPrefix(subject, "subject=")

	for _, part := range strings.FieldsFunc(subject, func(r rune) bool {
		return r == ',' || r == '/'
	}) {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == "CN" {
			return strings.TrimSpace(value)
		}
	}

	return ""
}

func checkReadable(path string) error {
	if path == "" {
		return newSSLError("ssl.checkReadable", "certificate and key paths are required", errors.New("empty path"), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return newSSLError("ssl.checkReadable", "file is not readable", err, apperrors.Metadata{
			"path": path,
		})
	}
	f.Close()

	return nil
}
