package ssl

import (
	"bytes"
	"embed"
	"text/template"

	apperrors "lampwright/internal/errors"
)

//go:embed templates/*
var templateFS embed.FS

// VHostParams parameterize the shared Apache virtual-host template.
type VHostParams struct {
	Port         int
	Domain       string
	DocumentRoot string
	CertPath     string
	KeyPath      string
}

// RenderVHost produces the Apache virtual-host definition all four SSL
// modes converge on.
func RenderVHost(params VHostParams) (string, error) {
	content, err := templateFS.ReadFile("templates/vhost.conf.tmpl")
	if err != nil {
		return "", newSSLError("ssl.RenderVHost", "failed to load virtual host template", err, nil)
	}

	tmpl, err := template.New("vhost").Parse(string(content))
	if err != nil {
		return "", newSSLError("ssl.RenderVHost", "failed to parse virtual host template", err, nil)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", newSSLError("ssl.RenderVHost", "failed to execute virtual host template", err, apperrors.Metadata{
			"port": params.Port,
		})
	}

	return buf.String(), nil
}
