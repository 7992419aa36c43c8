package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ServiceStatus represents a high level service health status.
type ServiceStatus string

const (
	StatusActive       ServiceStatus = "active"
	StatusInactive     ServiceStatus = "inactive"
	StatusNotInstalled ServiceStatus = "not-installed"
	StatusUnknown      ServiceStatus = "unknown"
)

// Printer renders rich terminal UI fragments used by the CLI tools.
type Printer struct {
	colorEnabled bool
	success      *color.Color
	info         *color.Color
	warn         *color.Color
	error        *color.Color
}

// NewPrinter constructs a Printer with colour automatically enabled for TTY outputs.
func NewPrinter() *Printer {
	enabled := supportsColor(os.Stdout) && os.Getenv("NO_COLOR") == ""

	p := &Printer{
		colorEnabled: enabled,
		success:      color.New(color.FgGreen, color.Bold),
		info:         color.New(color.FgBlue, color.Bold),
		warn:         color.New(color.FgYellow, color.Bold),
		error:        color.New(color.FgRed, color.Bold),
	}

	if !enabled {
		p.success.DisableColor()
		p.info.DisableColor()
		p.warn.DisableColor()
		p.error.DisableColor()
	}

	return p
}

// PrintInstallerBanner renders the LAMP installer banner.
func (p *Printer) PrintInstallerBanner() {
	lines := []string{
		"=========================================================",
		"   __    ___    __  _______           _       __    __",
		"  / /   /   |  /  |/  / __ \\_      __(_)___  / /_  / /_",
		" / /   / /| | / /|_/ / /_/ / | /| / / / __ \\/ __ \\/ __/",
		"/ /___/ ___ |/ /  / / ____/| |/ |/ / / /_/ / / / / /_",
		"/_____/_/  |_/_/  /_/_/     |__/|__/_/\\__, /_/ /_/\\__/",
		"                                     /____/",
		"",
		"LAMP + WordPress provisioning (Debian amd64/arm64)",
		"=========================================================",
	}

	for _, line := range lines {
		p.success.Println(line)
	}
}

// PrintAdminBanner renders the MySQL administration tool banner.
func (p *Printer) PrintAdminBanner() {
	lines := []string{
		"=========================================================",
		"  MySQL Administration Tool",
		"  users | tables | backups | service control",
		"=========================================================",
	}

	for _, line := range lines {
		p.info.Println(line)
	}
}

// PrintSeparator prints a repeated character separator.
func (p *Printer) PrintSeparator(char string, length int) {
	if length <= 0 {
		return
	}
	fmt.Println(strings.Repeat(char, length))
}

// PrintServiceStatus renders the service status indicator line.
func (p *Printer) PrintServiceStatus(service string, status ServiceStatus) {
	var (
		mark string
		text string
	)

	switch status {
	case StatusActive:
		mark = p.success.Sprint("✓")
		text = "active"
	case StatusInactive:
		mark = p.error.Sprint("✕")
		text = "inactive"
	case StatusNotInstalled:
		mark = p.warn.Sprint("!")
		text = "not installed"
	default:
		mark = "-"
		text = "unknown"
	}

	fmt.Printf("[ %s ] %s (%s)\n", mark, service, text)
}

// PrintKeyValue renders an aligned key/value information line.
func (p *Printer) PrintKeyValue(key, value string) {
	fmt.Printf("%s %s\n", p.info.Sprintf("%-18s", key+":"), p.warn.Sprint(value))
}

func supportsColor(w *os.File) bool {
	return term.IsTerminal(int(w.Fd()))
}
