package installer

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"

	"lampwright/internal/config"
	"lampwright/internal/database"
	"lampwright/internal/execx"
	"lampwright/internal/firewall"
	"lampwright/internal/history"
	"lampwright/internal/logger"
	"lampwright/internal/menu"
	"lampwright/internal/pkgmgr"
	"lampwright/internal/secrets"
	"lampwright/internal/ssl"
	"lampwright/internal/system"
	"lampwright/internal/timesync"
	"lampwright/internal/webserver"
	"lampwright/internal/wordpress"
)

// Installer coordinates the full provisioning run.
type Installer struct {
	system  *system.Config
	logger  logger.Logger
	exec    execx.Executor
	pkgmgr  *pkgmgr.Manager
	apache  webServer
	history history.Repository

	// newFirewall, syncTime, lookupHost and primaryIP are swapped in
	// tests; programming nftables needs root and a netlink socket, and
	// clock sync, DNS lookups and outbound-address probing touch the
	// network.
	newFirewall func(cfg *firewall.Config) firewallManager
	syncTime    func(ctx context.Context, opts *timesync.Options) (*timesync.Result, error)
	lookupHost  func(host string) ([]string, error)
	primaryIP   func() (string, error)
}

type firewallManager interface {
	Ensure() error
}

type webServer interface {
	ConfigurePorts(httpPort, httpsPort int, enableHTTPS bool) error
	EnableModules(modules ...string) error
	Enable() error
	Restart() error
	InstallVHost(content string) error
	InstallTrustedProxies(ranges []string) error
}

// New creates a fully wired installer.
func New(sysCfg *system.Config, exec execx.Executor, log logger.Logger, hist history.Repository) *Installer {
	if exec == nil {
		exec = execx.SystemExecutor{}
	}
	return &Installer{
		system:  sysCfg,
		logger:  log,
		exec:    exec,
		pkgmgr:  pkgmgr.NewManager(exec),
		apache:  webserver.NewApache(exec, log),
		history: hist,
		newFirewall: func(cfg *firewall.Config) firewallManager {
			return firewall.NewManager(cfg, log)
		},
		syncTime:   timesync.Sync,
		lookupHost: net.LookupHost,
		primaryIP:  system.PrimaryIP,
	}
}

// Run executes the provisioning states in their fixed order. A failure in
// any state aborts the run; nothing already done is rolled back. The one
// exception is certificate issuance: a Let's Encrypt failure downgrades
// the run to HTTP only instead of aborting.
func (i *Installer) Run(cfg *config.InstallConfig) error {
	err := i.run(cfg)
	i.record(cfg, err)
	return err
}

func (i *Installer) run(cfg *config.InstallConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration invalid")
	}

	generated, err := secrets.Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate credentials")
	}

	var material *ssl.Material

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Synchronize clock", func() error { i.syncClock(); return nil }},
		{"Install packages", i.installPackages},
		{"Configure web server", func() error { return i.configureWebServer(cfg) }},
		{"Configure HTTPS", func() error {
			if !cfg.EnableHTTPS {
				return nil
			}
			m, err := i.configureHTTPSOrDowngrade(cfg)
			material = m
			return err
		}},
		{"Configure database", func() error { return i.configureDatabase(generated) }},
		{"Install WordPress", func() error { return i.installWordPress() }},
		{"Configure WordPress", func() error { return i.configureWordPress(cfg, generated) }},
		{"Configure firewall", func() error {
			if !cfg.EnableFirewall {
				return nil
			}
			return i.configureFirewall(cfg)
		}},
		{"Write credentials report", func() error { return i.writeReport(cfg, generated, material) }},
	}

	for _, step := range steps {
		i.logger.Progress(step.name)
		if err := step.fn(); err != nil {
			return errors.Wrapf(err, "%s failed", step.name)
		}
		i.logger.ProgressDone(step.name)
	}

	i.report(cfg, material)
	return nil
}

// syncClock corrects the system time before any certificate work. A
// failure is reported but never aborts the run.
func (i *Installer) syncClock() {
	result, err := i.syncTime(context.Background(), &timesync.Options{
		SkipHardwareClock: i.system.IsContainer(),
	})
	if err != nil {
		i.logger.Warn("Clock synchronization failed, continuing: %v", err)
		return
	}
	i.logger.Debug("Clock synchronized from %s (hwclock: %s)", result.Source, result.HwClockInfo)
}

func (i *Installer) installPackages() error {
	if err := i.pkgmgr.UpgradeSystem(); err != nil {
		return err
	}
	return i.pkgmgr.InstallDependencies()
}

func (i *Installer) configureWebServer(cfg *config.InstallConfig) error {
	if err := i.apache.ConfigurePorts(cfg.HTTPPort, cfg.HTTPSPort, cfg.EnableHTTPS); err != nil {
		return err
	}
	if err := i.apache.EnableModules("rewrite", "headers"); err != nil {
		return err
	}
	if err := i.apache.Enable(); err != nil {
		return err
	}
	return i.apache.Restart()
}

// configureHTTPSOrDowngrade prepares certificate material. A certificate
// issuance failure disables HTTPS for the remainder of the run and
// rewrites the listen ports so Apache does not keep serving plain HTTP
// on the HTTPS port; every other failure is fatal.
func (i *Installer) configureHTTPSOrDowngrade(cfg *config.InstallConfig) (*ssl.Material, error) {
	material, err := i.configureHTTPS(cfg)
	if err == nil {
		return material, nil
	}
	if !errors.Is(err, ssl.ErrIssuanceFailed) {
		return nil, err
	}

	i.logger.Warn("Certificate issuance failed, continuing with HTTP only: %v", err)
	cfg.EnableHTTPS = false

	if err := i.apache.ConfigurePorts(cfg.HTTPPort, cfg.HTTPSPort, false); err != nil {
		return nil, err
	}
	if err := i.apache.Restart(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (i *Installer) configureHTTPS(cfg *config.InstallConfig) (*ssl.Material, error) {
	strategy, err := ssl.NewStrategy(cfg, ssl.Deps{
		Exec:       i.exec,
		Log:        i.logger,
		PrimaryIP:  i.primaryIP,
		LookupHost: i.lookupHost,
		PromptDomain: func() (string, error) {
			return menu.PromptString("Domain for the certificate", nil)
		},
	})
	if err != nil {
		return nil, err
	}

	material, err := strategy.Prepare()
	if err != nil {
		return nil, err
	}

	vhost, err := ssl.RenderVHost(ssl.VHostParams{
		Port:         cfg.HTTPSPort,
		Domain:       material.Domain,
		DocumentRoot: i.system.WebRoot,
		CertPath:     material.CertPath,
		KeyPath:      material.KeyPath,
	})
	if err != nil {
		return nil, err
	}

	if err := i.apache.EnableModules("ssl"); err != nil {
		return nil, err
	}
	if err := i.apache.InstallVHost(vhost); err != nil {
		return nil, err
	}

	if cfg.SSLType == config.SSLCloudflare {
		if err := i.apache.InstallTrustedProxies(ssl.TrustedProxyRanges()); err != nil {
			return nil, err
		}
	}

	if err := i.apache.Restart(); err != nil {
		return nil, err
	}

	return material, nil
}

func (i *Installer) configureDatabase(generated *secrets.GeneratedSecrets) error {
	db := database.NewProvisioner(i.exec, i.logger)

	if err := db.EnsureRunning(); err != nil {
		return err
	}

	promptCurrent := func() (string, error) {
		return menu.PromptPassword("Current MySQL root password")
	}
	if err := db.SecureRoot(generated.RootPassword, promptCurrent); err != nil {
		return err
	}

	return db.CreateWordPressDB(generated.RootPassword, generated.DBName, generated.DBUser, generated.DBPassword)
}

func (i *Installer) installWordPress() error {
	return wordpress.NewInstaller(i.system, i.exec, i.logger).Install()
}

func (i *Installer) configureWordPress(cfg *config.InstallConfig, generated *secrets.GeneratedSecrets) error {
	wp := wordpress.NewInstaller(i.system, i.exec, i.logger)
	return wp.WriteConfig(wordpress.ConfigParams{
		DBName:      generated.DBName,
		DBUser:      generated.DBUser,
		DBPassword:  generated.DBPassword,
		BehindProxy: cfg.SSLType == config.SSLCloudflare,
	})
}

func (i *Installer) configureFirewall(cfg *config.InstallConfig) error {
	return i.newFirewall(firewall.FromInstallConfig(cfg)).Ensure()
}

func (i *Installer) writeReport(cfg *config.InstallConfig, generated *secrets.GeneratedSecrets, material *ssl.Material) error {
	return secrets.WriteReport(i.system.GetCredentialsPath(), cfg, generated, i.siteURL(cfg, material))
}

func (i *Installer) siteURL(cfg *config.InstallConfig, material *ssl.Material) string {
	host := ""
	if material != nil && material.Domain != "" {
		host = material.Domain
	} else if ip, err := i.primaryIP(); err == nil {
		host = ip
	} else {
		host = "localhost"
	}

	if cfg.EnableHTTPS {
		if cfg.HTTPSPort == 443 {
			return "https://" + host
		}
		return fmt.Sprintf("https://%s:%d", host, cfg.HTTPSPort)
	}
	if cfg.HTTPPort == 80 {
		return "http://" + host
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.HTTPPort)
}

func (i *Installer) report(cfg *config.InstallConfig, material *ssl.Material) {
	i.logger.Success("Installation completed")
	i.logger.Info("Site URL: %s", i.siteURL(cfg, material))
	i.logger.Info("Credentials written to %s", i.system.GetCredentialsPath())
	if material != nil {
		for _, note := range material.Notes {
			i.logger.Info("%s", note)
		}
	}
}

func (i *Installer) record(cfg *config.InstallConfig, runErr error) {
	if i.history == nil {
		return
	}

	outcome := history.OutcomeSuccess
	detail := string(cfg.SSLType)
	if runErr != nil {
		outcome = history.OutcomeFailure
		detail = runErr.Error()
	}

	if _, err := i.history.Append(context.Background(), history.Record{
		Tool:    "installer",
		Action:  "install",
		Detail:  detail,
		Outcome: outcome,
	}); err != nil {
		i.logger.Warn("Failed to record run history: %v", err)
	}
}
