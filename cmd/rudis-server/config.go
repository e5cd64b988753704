package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/yndnr/rudis-go/internal/infra/confloader"
	"github.com/yndnr/rudis-go/internal/server/config"
	"github.com/yndnr/rudis-go/internal/telemetry/logger"
)

// options carries the command-line flags.
type options struct {
	configFile string
	logLevel   string
	// port replaces the port of server.redis.addr when portSet.
	port    int
	portSet bool
}

// loadConfig loads configuration from file, environment and flags.
// Flag values are recorded as loader overrides so they survive reloads.
func loadConfig(opts options) (*confloader.Loader, *config.ServerConfig, error) {
	var loaderOpts []confloader.Option
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, confloader.WithConfigFile(opts.configFile))
	}
	loader := confloader.NewLoader(loaderOpts...)

	if opts.logLevel != "" {
		loader.Set("log.level", opts.logLevel)
	}

	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if opts.portSet {
		addr, err := withPort(cfg.Server.Redis.Addr, opts.port)
		if err != nil {
			return nil, nil, err
		}
		loader.Set("server.redis.addr", addr)
		cfg.Server.Redis.Addr = addr
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// withPort replaces the port of addr.
func withPort(addr string, port int) (string, error) {
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("server.redis.addr: %w", err)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// watchConfig re-applies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig(loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(string) { reloadConfig(loader, log) })
	w.StartAsync()
	return w, nil
}

func reloadConfig(loader *confloader.Loader, log logger.Logger) *config.ServerConfig {
	cfg := config.Default()
	if err := loader.Reload(cfg); err != nil {
		log.Warn("config reload failed", "error", err)
		return nil
	}
	if err := config.Verify(cfg); err != nil {
		log.Warn("config reload rejected", "error", err)
		return nil
	}
	logger.SetLevel(cfg.Log.Level)
	log.Info("config reloaded", "log_level", cfg.Log.Level)
	return cfg
}
