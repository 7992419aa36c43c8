package firewall

import (
	"sort"

	"lampwright/internal/config"
)

// Config describes the ruleset programmed into the kernel.
type Config struct {
	TableName      string
	InputChainName string

	// AllowedTCPPorts are accepted on the input hook; everything else
	// falls through to the chain's drop policy.
	AllowedTCPPorts []uint16
}

// DefaultConfig returns the table and chain naming used by the installer.
func DefaultConfig() *Config {
	return &Config{
		TableName:      "lampwright",
		InputChainName: "input",
	}
}

// FromInstallConfig derives the allowed port set from an installation
// configuration. SSH is always included so the operator cannot lock
// themselves out.
func FromInstallConfig(install *config.InstallConfig) *Config {
	cfg := DefaultConfig()

	seen := make(map[uint16]struct{})
	add := func(port int) {
		if port <= 0 || port > 65535 {
			return
		}
		p := uint16(port)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		cfg.AllowedTCPPorts = append(cfg.AllowedTCPPorts, p)
	}

	add(install.SSHPort)
	add(install.HTTPPort)
	if install.EnableHTTPS {
		add(install.HTTPSPort)
	}
	for _, port := range install.AdditionalPorts {
		add(port)
	}

	sort.Slice(cfg.AllowedTCPPorts, func(i, j int) bool {
		return cfg.AllowedTCPPorts[i] < cfg.AllowedTCPPorts[j]
	})

	return cfg
}
