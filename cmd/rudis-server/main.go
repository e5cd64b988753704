package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rudis-go/internal/infra/buildinfo"
	"github.com/yndnr/rudis-go/internal/infra/shutdown"
	"github.com/yndnr/rudis-go/internal/server/httpserver"
	"github.com/yndnr/rudis-go/internal/server/redisserver"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/internal/telemetry/logger"
	"github.com/yndnr/rudis-go/internal/telemetry/metric"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "rudis-server",
		Usage:   "in-memory key/value and pub/sub server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"RUDIS_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("port to listen on (default %d)", redisserver.DefaultPort),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Action: func(c *cli.Context) error {
			opts := options{
				configFile: c.String("config"),
				logLevel:   c.String("log-level"),
				port:       c.Int("port"),
				portSet:    c.IsSet("port"),
			}
			return run(c.Context, opts)
		},
	}
}

func run(parent context.Context, opts options) error {
	loader, cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting rudis-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath())

	reg := metric.NewRegistry()

	guard := memory.NewGuard(
		memory.WithStrictExpiry(cfg.Storage.StrictExpiry),
		memory.WithSubscriberBuffer(cfg.Storage.SubscriberBuffer),
		memory.WithMetrics(reg),
		memory.WithLogger(log),
	)
	reg.MustRegister(metric.NewCollector(guard.Store()))

	srvCfg := redisserver.DefaultConfig()
	srvCfg.Addr = cfg.Server.Redis.Addr
	srvCfg.RateLimit = cfg.Server.Redis.RateLimit
	srv := redisserver.New(srvCfg, guard.Store(),
		redisserver.WithLogger(log),
		redisserver.WithMetrics(reg),
	)

	ln, err := srv.Listen()
	if err != nil {
		guard.Close()
		return err
	}

	// Hooks run in reverse order, so the store closes last.
	hooks := shutdown.NewHandler(cfg.Shutdown.Timeout)
	hooks.OnShutdown(func(context.Context) error {
		log.Info("closing store")
		guard.Close()
		return nil
	})

	health := &httpserver.Health{}
	if cfg.Server.Admin.Enabled {
		admin := httpserver.New(cfg.Server.Admin.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Logger:  log,
			Metrics: reg,
			Health:  health,
		}))
		adminLn, err := net.Listen("tcp", admin.Addr())
		if err != nil {
			ln.Close()
			guard.Close()
			return fmt.Errorf("admin listen: %w", err)
		}
		go func() {
			log.Info("admin server listening", "addr", adminLn.Addr().String())
			if err := admin.Serve(adminLn); err != nil {
				log.Error("admin server error", "error", err)
			}
		}()
		hooks.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin server")
			return admin.Shutdown(ctx)
		})
	}

	if loader.FilePath() != "" {
		w, err := watchConfig(loader, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			hooks.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	ctx, stop := shutdown.WithSignals(parent)
	defer stop()

	go func() {
		<-ctx.Done()
		health.SetDraining(true)
		log.Info("shutdown requested, draining connections")
	}()

	log.Info("server listening", "addr", ln.Addr().String())
	runErr := srv.Run(ctx, ln)
	if runErr != nil {
		log.Error("server stopped", "error", runErr)
	}

	if err := hooks.Run(); err != nil {
		log.Error("shutdown error", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		log.Info("server stopped gracefully")
	}
	return runErr
}
