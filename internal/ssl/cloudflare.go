package ssl

import (
	"errors"

	"lampwright/internal/config"
)

// TrustedProxyRangesV4 is the fixed list of CloudFlare IPv4 edge ranges
// honoured as trusted reverse proxies.
var TrustedProxyRangesV4 = []string{
	"173.245.48.0/20",
	"103.21.244.0/22",
	"103.22.200.0/22",
	"103.31.4.0/22",
	"141.101.64.0/18",
	"108.162.192.0/18",
	"190.93.240.0/20",
	"188.114.96.0/20",
	"197.234.240.0/22",
	"198.41.128.0/17",
	"162.158.0.0/15",
	"104.16.0.0/13",
	"104.24.0.0/14",
	"172.64.0.0/13",
	"131.0.72.0/22",
}

// TrustedProxyRangesV6 is the fixed list of CloudFlare IPv6 edge ranges.
var TrustedProxyRangesV6 = []string{
	"2400:cb00::/32",
	"2606:4700::/32",
	"2803:f800::/32",
	"2405:b500::/32",
	"2405:8100::/32",
	"2a06:98c0::/29",
	"2c0f:f248::/32",
}

// TrustedProxyRanges returns the combined CloudFlare IPv4 and IPv6 ranges.
func TrustedProxyRanges() []string {
	ranges := make([]string, 0, len(TrustedProxyRangesV4)+len(TrustedProxyRangesV6))
	ranges = append(ranges, TrustedProxyRangesV4...)
	ranges = append(ranges, TrustedProxyRangesV6...)
	return ranges
}

// Cloudflare prepares an origin certificate for use behind the CloudFlare
// edge. API credentials, when supplied, are only surfaced as manual
// dashboard instructions; no API call is made.
type Cloudflare struct {
	cfg  *config.InstallConfig
	deps Deps
}

func (s *Cloudflare) Name() string { return "cloudflare" }

// Prepare fails before any file is written when no domain is configured.
func (s *Cloudflare) Prepare() (*Material, error) {
	if s.cfg.SSLDomain == "" {
		return nil, newSSLError("ssl.Cloudflare.Prepare", "cloudflare mode requires a domain", errors.New("empty domain"), nil)
	}

	if err := generateSelfSignedPair(s.deps, s.cfg.SSLDomain, OriginCertPath, OriginKeyPath); err != nil {
		return nil, err
	}

	notes := []string{
		"Set the CloudFlare SSL/TLS encryption mode to \"Full\" in the dashboard.",
		"Point the domain's A record at this server through the orange-cloud proxy.",
	}
	if s.cfg.CloudflareEmail != "" && s.cfg.CloudflareAPIKey != "" {
		notes = append(notes,
			"For a dashboard-issued origin certificate, generate one under SSL/TLS > Origin Server "+
				"using the supplied API credentials and replace "+OriginCertPath+".")
	}

	return &Material{
		CertPath: OriginCertPath,
		KeyPath:  OriginKeyPath,
		Domain:   s.cfg.SSLDomain,
		Notes:    notes,
	}, nil
}
