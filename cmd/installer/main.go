package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appinstaller "lampwright/internal/app/installer"
	"lampwright/internal/config"
	"lampwright/internal/history"
	"lampwright/internal/logger"
	menuinstaller "lampwright/internal/menu/installer"
	"lampwright/internal/system"
)

func main() {
	log := logger.NewColoredLogger()

	if os.Geteuid() != 0 {
		log.Error("This program requires root privileges to run. Please run with sudo.")
		os.Exit(1)
	}

	sysCfg, err := system.LoadConfig()
	if err != nil {
		log.Error("System detection failed: %v", err)
		os.Exit(1)
	}
	if err := sysCfg.Validate(); err != nil {
		log.Error("Environment check failed: %v", err)
		os.Exit(1)
	}

	hist, err := history.Open(sysCfg.GetHistoryDBPath())
	if err != nil {
		log.Warn("Run history unavailable: %v", err)
	} else {
		defer hist.Close()
		if err := hist.Bootstrap(context.Background()); err != nil {
			log.Warn("Run history unavailable: %v", err)
			hist = nil
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received exit signal, shutting down...")
		os.Exit(130)
	}()

	installer := appinstaller.New(sysCfg, nil, log, repoOrNil(hist))

	m := menuinstaller.NewMenu(log, repoOrNil(hist))
	m.SetInstallHandler(func(cfg *config.InstallConfig) error {
		// Persist the effective configuration next to the credentials.
		if err := cfg.Save(sysCfg.GetConfigPath()); err != nil {
			log.Warn("Could not persist configuration: %v", err)
		}
		return installer.Run(cfg)
	})

	if err := m.Show(); err != nil {
		log.Error("Installer failed: %v", err)
		os.Exit(1)
	}

	log.Info("Installer exited safely")
}

// repoOrNil keeps a typed nil out of the history.Repository interface.
func repoOrNil(hist *history.SQLiteRepository) history.Repository {
	if hist == nil {
		return nil
	}
	return hist
}
