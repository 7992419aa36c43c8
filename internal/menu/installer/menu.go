package installer

import (
	"context"
	"fmt"

	"lampwright/internal/config"
	"lampwright/internal/history"
	"lampwright/internal/logger"
	"lampwright/internal/menu"
	"lampwright/internal/system"
	"lampwright/internal/ui"
)

// Menu is the top-level interactive surface of the installer binary.
type Menu struct {
	logger    logger.Logger
	printer   *ui.Printer
	collector *Collector
	history   history.Repository

	installHandler func(*config.InstallConfig) error
}

// NewMenu creates the installer menu.
func NewMenu(log logger.Logger, hist history.Repository) *Menu {
	return &Menu{
		logger:    log,
		printer:   ui.NewPrinter(),
		collector: NewCollector(log),
		history:   hist,
	}
}

// SetInstallHandler registers the handler that executes the provisioning
// run with the collected configuration.
func (m *Menu) SetInstallHandler(handler func(*config.InstallConfig) error) {
	m.installHandler = handler
}

// Show displays the main menu until the operator quits.
func (m *Menu) Show() error {
	for {
		m.clearScreen()
		m.printer.PrintInstallerBanner()

		options := []menu.Option{
			{Label: "1. Install WordPress stack", Description: "Provision Apache, MariaDB, PHP, and WordPress", Color: "green", Enabled: true, Handler: m.handleInstall},
			{Label: "2. Stack status", Description: "Current state of the web and database services", Color: "yellow", Enabled: true, Handler: m.handleStatus},
			{Label: "3. Show recent runs", Description: "Provisioning history on this host", Color: "cyan", Enabled: true, Handler: m.handleHistory},
			{Label: "4. Exit", Color: "red", Enabled: true, Handler: nil},
		}

		selected, err := menu.Select("Please select an operation", options)
		if err != nil {
			if menu.IsInterrupt(err) {
				m.logger.Info("Operator cancelled")
				return nil
			}
			return err
		}

		handler := options[selected].Handler
		if handler == nil {
			return nil
		}

		if err := handler(); err != nil {
			m.logger.Error("Operation failed: %v", err)
			menu.WaitEnter("Press Enter to continue")
		}
	}
}

func (m *Menu) handleInstall() error {
	if m.installHandler == nil {
		return fmt.Errorf("no install handler registered")
	}

	cfg, err := m.collector.Collect()
	if err != nil {
		if menu.IsInterrupt(err) {
			m.logger.Info("Configuration cancelled")
			return nil
		}
		return err
	}

	if err := m.installHandler(cfg); err != nil {
		return err
	}

	menu.WaitEnter("Installation finished, press Enter to continue")
	return nil
}

func (m *Menu) handleStatus() error {
	m.printer.PrintSeparator("-", 57)
	for _, svc := range []string{"apache2", "mariadb", "cron"} {
		m.printer.PrintServiceStatus(svc, uiStatus(system.ServiceStatus(svc)))
	}
	m.printer.PrintSeparator("-", 57)

	menu.WaitEnter("Press Enter to continue")
	return nil
}

func uiStatus(state system.ServiceState) ui.ServiceStatus {
	switch state {
	case system.ServiceActive:
		return ui.StatusActive
	case system.ServiceInactive:
		return ui.StatusInactive
	case system.ServiceNotInstalled:
		return ui.StatusNotInstalled
	default:
		return ui.StatusUnknown
	}
}

func (m *Menu) handleHistory() error {
	if m.history == nil {
		m.logger.Warn("History store is unavailable")
		return nil
	}

	records, err := m.history.Recent(context.Background(), 20)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		m.logger.Info("No recorded runs yet")
	}
	for _, rec := range records {
		m.printer.PrintKeyValue(
			rec.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s %s (%s)", rec.Tool, rec.Action, rec.Outcome),
		)
	}

	menu.WaitEnter("Press Enter to continue")
	return nil
}

func (m *Menu) clearScreen() {
	fmt.Print("\033[H\033[2J")
}
