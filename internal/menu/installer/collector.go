package installer

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"lampwright/internal/config"
	"lampwright/internal/logger"
	"lampwright/internal/menu"
)

// Collector gathers the installation configuration through sequential
// interactive prompts.
type Collector struct {
	logger logger.Logger
}

// NewCollector creates a configuration collector.
func NewCollector(log logger.Logger) *Collector {
	return &Collector{logger: log}
}

// Collect walks the operator through every setting and returns a validated
// configuration.
func (c *Collector) Collect() (*config.InstallConfig, error) {
	cfg := config.Default()

	httpPort, err := menu.PromptPort("HTTP port", cfg.HTTPPort)
	if err != nil {
		return nil, err
	}
	cfg.HTTPPort = httpPort

	enableHTTPS, err := menu.PromptYesNo("Enable HTTPS", cfg.EnableHTTPS)
	if err != nil {
		return nil, err
	}
	cfg.EnableHTTPS = enableHTTPS

	if cfg.EnableHTTPS {
		httpsPort, err := menu.PromptPort("HTTPS port", cfg.HTTPSPort)
		if err != nil {
			return nil, err
		}
		cfg.HTTPSPort = httpsPort

		if err := c.collectSSL(cfg); err != nil {
			return nil, err
		}
	}

	enableFirewall, err := menu.PromptYesNo("Configure firewall", cfg.EnableFirewall)
	if err != nil {
		return nil, err
	}
	cfg.EnableFirewall = enableFirewall

	if cfg.EnableFirewall {
		sshPort, err := menu.PromptPort("SSH port to keep open", cfg.SSHPort)
		if err != nil {
			return nil, err
		}
		cfg.SSHPort = sshPort

		extra, err := menu.PromptOptional("Additional ports to open (comma separated, empty for none)")
		if err != nil {
			return nil, err
		}
		ports, err := ParsePortList(extra)
		if err != nil {
			return nil, err
		}
		cfg.AdditionalPorts = ports
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Collector) collectSSL(cfg *config.InstallConfig) error {
	options := []menu.Option{
		{Label: "1. Self-signed certificate", Description: "No domain required", Color: "green", Enabled: true},
		{Label: "2. CloudFlare origin certificate", Description: "Domain behind CloudFlare", Color: "cyan", Enabled: true},
		{Label: "3. Let's Encrypt", Description: "Public domain with DNS pointing here", Color: "green", Enabled: true},
		{Label: "4. Custom certificate", Description: "Existing certificate and key files", Color: "yellow", Enabled: true},
	}

	selected, err := menu.Select("SSL certificate type", options)
	if err != nil {
		return err
	}

	switch selected {
	case 0:
		cfg.SSLType = config.SSLSelfSigned
		domain, err := menu.PromptOptional("Domain (empty to use the server IP)")
		if err != nil {
			return err
		}
		cfg.SSLDomain = strings.TrimSpace(domain)

	case 1:
		cfg.SSLType = config.SSLCloudflare
		domain, err := menu.PromptString("Domain", validateDomain)
		if err != nil {
			return err
		}
		cfg.SSLDomain = domain

		withAPI, err := menu.PromptYesNo("Provide CloudFlare API credentials", false)
		if err != nil {
			return err
		}
		if withAPI {
			email, err := menu.PromptString("CloudFlare account email", validateEmail)
			if err != nil {
				return err
			}
			apiKey, err := menu.PromptPassword("CloudFlare API key")
			if err != nil {
				return err
			}
			cfg.CloudflareEmail = email
			cfg.CloudflareAPIKey = apiKey
		}

	case 2:
		cfg.SSLType = config.SSLLetsEncrypt
		domain, err := menu.PromptString("Domain", validateDomain)
		if err != nil {
			return err
		}
		cfg.SSLDomain = domain

		email, err := menu.PromptOptional("Email for expiry notices (empty to register without)")
		if err != nil {
			return err
		}
		cfg.SSLEmail = strings.TrimSpace(email)

	case 3:
		cfg.SSLType = config.SSLCustom
		certPath, err := menu.PromptString("Certificate file path", validateNonEmpty)
		if err != nil {
			return err
		}
		keyPath, err := menu.PromptString("Private key file path", validateNonEmpty)
		if err != nil {
			return err
		}
		cfg.CustomCertPath = certPath
		cfg.CustomKeyPath = keyPath
	}

	return nil
}

// ParsePortList parses a comma separated port list. An empty input yields
// no ports; any invalid entry rejects the whole input.
func ParsePortList(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var ports []int
	seen := make(map[int]struct{})
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		port, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Errorf("invalid port %q", part)
		}
		if port < 1 || port > 65535 {
			return nil, errors.Errorf("port %d out of range", port)
		}
		if _, dup := seen[port]; dup {
			continue
		}
		seen[port] = struct{}{}
		ports = append(ports, port)
	}
	return ports, nil
}

func validateDomain(input string) error {
	input = strings.TrimSpace(input)
	if len(input) < 3 || !strings.Contains(input, ".") {
		return errors.New("please enter a valid domain")
	}
	return nil
}

func validateEmail(input string) error {
	if !strings.Contains(input, "@") {
		return errors.New("please enter a valid email address")
	}
	return nil
}

func validateNonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value must not be empty")
	}
	return nil
}
