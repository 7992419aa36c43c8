package secrets

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratedSecrets holds the credentials produced for one installation run.
type GeneratedSecrets struct {
	DBName       string
	DBUser       string
	DBPassword   string
	RootPassword string
}

// Generate produces a fresh set of database credentials.
func Generate() (*GeneratedSecrets, error) {
	dbPassword, err := RandomPassword(24)
	if err != nil {
		return nil, err
	}

	rootPassword, err := RandomPassword(24)
	if err != nil {
		return nil, err
	}

	suffix, err := RandomPassword(6)
	if err != nil {
		return nil, err
	}

	return &GeneratedSecrets{
		DBName:       "wordpress_" + suffix,
		DBUser:       "wp_" + suffix,
		DBPassword:   dbPassword,
		RootPassword: rootPassword,
	}, nil
}

// RandomPassword returns an alphanumeric password of the given length using
// a cryptographic source.
func RandomPassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random source")
		}
		out[i] = passwordAlphabet[n.Int64()]
	}

	return string(out), nil
}
