package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	appdbadmin "lampwright/internal/app/dbadmin"
	"lampwright/internal/history"
	"lampwright/internal/logger"
)

func main() {
	pathOverride := flag.String("path", "", "MySQL installation directory (overrides discovery)")
	flag.Parse()

	log := logger.NewColoredLogger()

	hist, err := history.Open(historyPath())
	var repo history.Repository
	if err != nil {
		log.Warn("Run history unavailable: %v", err)
	} else {
		defer hist.Close()
		if err := hist.Bootstrap(context.Background()); err != nil {
			log.Warn("Run history unavailable: %v", err)
		} else {
			repo = hist
		}
	}

	app := appdbadmin.New(nil, log, repo)
	app.PathOverride = *pathOverride

	if err := app.Run(); err != nil {
		log.Error("Database admin tool failed: %v", err)
		os.Exit(1)
	}

	log.Info("Database admin tool exited safely")
}

// historyPath stores the history database under the user's cache
// directory; the tool does not require root.
func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lampwright", "history.db")
}
