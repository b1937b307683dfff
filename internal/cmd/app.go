package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/runger/tubedash/internal/config"
	"github.com/runger/tubedash/internal/credential"
	"github.com/runger/tubedash/internal/dashboard"
	"github.com/runger/tubedash/internal/enrich"
	"github.com/runger/tubedash/internal/logging"
	"github.com/runger/tubedash/internal/storage"
	"github.com/runger/tubedash/internal/youtube"
)

// app holds the wiring shared by commands: config, logger, the state
// database and the credential slot inside it.
type app struct {
	cfg     *config.Config
	paths   *config.Paths
	cfgPath string
	logger  *slog.Logger
	store   *storage.SQLiteStore
	creds   credential.Store
	logFile *os.File
}

// loadConfig reads --config or the default config file.
func loadConfig() (*config.Config, *config.Paths, string, error) {
	paths := config.DefaultPaths()
	path := flagConfigPath
	if path == "" {
		path = paths.ConfigFile()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, paths, path, nil
}

// openApp loads config, creates the logger and opens the state database.
// A nil logOut logs to the configured log file, for the full-screen
// dashboard which owns the terminal.
func openApp(logOut io.Writer) (*app, error) {
	cfg, paths, cfgPath, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, paths: paths, cfgPath: cfgPath}
	if logOut == nil {
		f, err := logging.OpenFile(cfg.LogFile(paths))
		if err != nil {
			return nil, err
		}
		a.logFile = f
		logOut = f
	}
	a.logger = logging.New(&logging.Config{Output: logOut, Level: level, Debug: flagDebug})

	dbPath := cfg.DBPath(paths)
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	a.store = store
	a.creds = credential.WithEnvOverride(store.Credential(storage.APIKeySetting), credential.EnvVar)

	logging.LogStartup(a.logger, Version, cfgPath, dbPath)
	return a, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	a.closeLog()
	return err
}

func (a *app) closeLog() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// client builds the upstream API client from the api section.
func (a *app) client() *youtube.Client {
	return youtube.NewClient(
		youtube.WithBaseURL(a.cfg.API.BaseURL),
		youtube.WithHTTPClient(&http.Client{Timeout: time.Duration(a.cfg.API.TimeoutMs) * time.Millisecond}),
		youtube.WithRateLimit(a.cfg.API.RequestsPerSecond),
		youtube.WithLogger(a.logger),
	)
}

func (a *app) newController(p dashboard.Presenter) *dashboard.Controller {
	pipeline := enrich.New(a.client(), a.logger)
	return dashboard.NewController(a.creds, pipeline, p, dashboard.WithLogger(a.logger))
}

// defaultOrder returns search.default_order, already validated on load.
func (a *app) defaultOrder() youtube.Order {
	return youtube.Order(a.cfg.Search.DefaultOrder)
}
