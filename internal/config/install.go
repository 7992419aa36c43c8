package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SSLType identifies the certificate strategy selected by the operator.
type SSLType string

const (
	SSLSelfSigned  SSLType = "self-signed"
	SSLCloudflare  SSLType = "cloudflare"
	SSLLetsEncrypt SSLType = "letsencrypt"
	SSLCustom      SSLType = "custom"
)

// InstallConfig is the flat configuration record produced by the interactive
// collector. It is built once per run and read-only afterwards.
type InstallConfig struct {
	HTTPPort        int     `yaml:"http_port"`
	HTTPSPort       int     `yaml:"https_port"`
	SSHPort         int     `yaml:"ssh_port"`
	EnableHTTPS     bool    `yaml:"enable_https"`
	EnableFirewall  bool    `yaml:"enable_firewall"`
	AdditionalPorts []int   `yaml:"additional_ports,omitempty"`
	SSLType         SSLType `yaml:"ssl_type,omitempty"`
	SSLDomain       string  `yaml:"ssl_domain,omitempty"`
	SSLEmail        string  `yaml:"ssl_email,omitempty"`

	// Optional Cloudflare API credentials. They are surfaced as manual
	// dashboard instructions only; no API call is made.
	CloudflareEmail  string `yaml:"cloudflare_email,omitempty"`
	CloudflareAPIKey string `yaml:"cloudflare_api_key,omitempty"`

	// Custom certificate mode inputs.
	CustomCertPath string `yaml:"custom_cert_path,omitempty"`
	CustomKeyPath  string `yaml:"custom_key_path,omitempty"`
}

// Default returns an InstallConfig populated with the standard ports.
func Default() *InstallConfig {
	return &InstallConfig{
		HTTPPort:       80,
		HTTPSPort:      443,
		SSHPort:        22,
		EnableHTTPS:    true,
		EnableFirewall: true,
		SSLType:        SSLSelfSigned,
	}
}

// Validate checks port ranges and mode-specific required fields.
func (c *InstallConfig) Validate() error {
	ports := map[string]int{
		"http_port":  c.HTTPPort,
		"https_port": c.HTTPSPort,
		"ssh_port":   c.SSHPort,
	}
	for name, port := range ports {
		if port < 1 || port > 65535 {
			return errors.Errorf("%s out of range: %d", name, port)
		}
	}

	seen := map[int]string{c.HTTPPort: "http_port"}
	if prev, ok := seen[c.SSHPort]; ok {
		return errors.Errorf("ssh_port %d conflicts with %s", c.SSHPort, prev)
	}
	seen[c.SSHPort] = "ssh_port"
	if c.EnableHTTPS {
		if prev, ok := seen[c.HTTPSPort]; ok {
			return errors.Errorf("https_port %d conflicts with %s", c.HTTPSPort, prev)
		}
		seen[c.HTTPSPort] = "https_port"
	}

	for _, port := range c.AdditionalPorts {
		if port < 1 || port > 65535 {
			return errors.Errorf("additional port out of range: %d", port)
		}
		if prev, ok := seen[port]; ok {
			return errors.Errorf("additional port %d conflicts with %s", port, prev)
		}
		seen[port] = "additional_ports"
	}

	if c.EnableHTTPS {
		switch c.SSLType {
		case SSLSelfSigned:
		case SSLCloudflare, SSLLetsEncrypt:
			if c.SSLDomain == "" {
				return errors.Errorf("%s mode requires a domain", c.SSLType)
			}
		case SSLCustom:
			if c.CustomCertPath == "" || c.CustomKeyPath == "" {
				return errors.New("custom mode requires certificate and key paths")
			}
		default:
			return errors.Errorf("unknown ssl type: %q", c.SSLType)
		}
	}

	return nil
}

// Save writes the effective configuration to disk as YAML.
func (c *InstallConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode install configuration")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write install configuration: %s", path)
	}

	return nil
}

// Load reads a previously saved configuration file.
func Load(path string) (*InstallConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read install configuration: %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse install configuration: %s", path)
	}

	return cfg, nil
}
