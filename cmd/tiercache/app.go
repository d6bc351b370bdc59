package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mmcdole/tiercache/internal/cache"
	"github.com/mmcdole/tiercache/internal/config"
	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/mmcdole/tiercache/internal/filestore"
	"github.com/mmcdole/tiercache/internal/log"
	"github.com/mmcdole/tiercache/internal/notify"
	"github.com/mmcdole/tiercache/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// app holds state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	configFile      string
	verbose         bool
	noFlush         bool
	metricsTextfile string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	metrics  *prometheus.Registry
	registry *registry.BoltRegistry
	cache    *cache.TieredCache
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, logger: log.NullLogger()}
}

// setup loads configuration and logging. Runs before every command.
// With configOptional a missing --config file falls back to the defaults.
func (a *app) setup(configOptional bool) error {
	configFile := a.configFile
	if configOptional && configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			configFile = ""
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	if a.metricsTextfile != "" {
		cfg.Metrics.Textfile = a.metricsTextfile
	}
	a.cfg = cfg

	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	a.logger = logger
	a.logCloser = closer
	slog.SetDefault(logger)

	a.metrics = prometheus.NewRegistry()
	return nil
}

func (a *app) sessionID() string {
	if a.cfg.Session.ID != "" {
		return a.cfg.Session.ID
	}
	return registry.DefaultSessionID()
}

func (a *app) openRegistry() (*registry.BoltRegistry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	reg, err := registry.OpenBolt(a.cfg.SessionPath(), registry.Namespace(a.cfg.CachePath()), a.sessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to open session registry: %w", err)
	}
	a.registry = reg
	return reg, nil
}

// openCache returns the cache for this invocation, opening it on first use.
func (a *app) openCache() (*cache.TieredCache, error) {
	if a.cache != nil {
		return a.cache, nil
	}

	reg, err := a.openRegistry()
	if err != nil {
		return nil, err
	}

	var notifier domain.Notifier = notify.NewLog(a.logger)
	if a.cfg.UI.Notify {
		notifier = notify.Multi{a.terminalNotifier(), notifier}
	}

	c, err := cache.New(reg, filestore.NewOS(), a.cfg.CachePath(),
		cache.WithLogger(a.logger),
		cache.WithNotifier(notifier),
		cache.WithDefaultLifetime(a.cfg.Cache.DefaultLifetimeHours),
		cache.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, err
	}
	a.cache = c
	return c, nil
}

func (a *app) terminalNotifier() domain.Notifier {
	if f, ok := a.stderr.(*os.File); ok {
		return notify.NewTerminal(f)
	}
	return notify.NewWriter(a.stderr)
}

// flush writes the cache file unless --no-flush defers it to a later call.
func (a *app) flush(c *cache.TieredCache) {
	if a.noFlush {
		a.logger.Debug("flush deferred", "dirty", c.Dirty())
		return
	}
	c.Flush()
}

// close releases everything opened by the invocation.
func (a *app) close() {
	if a.cfg != nil && a.cfg.Metrics.Textfile != "" && a.metrics != nil {
		if err := prometheus.WriteToTextfile(config.ExpandHome(a.cfg.Metrics.Textfile), a.metrics); err != nil {
			a.logger.Warn("failed to write metrics textfile", "error", err)
		}
	}
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			a.logger.Warn("failed to close session registry", "error", err)
		}
		a.registry = nil
	}
	a.cache = nil
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}
