// Package main provides the entry point for retire-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/yndnr/retire-go/internal/core/retire"
	"github.com/yndnr/retire-go/internal/infra/buildinfo"
	"github.com/yndnr/retire-go/internal/infra/confloader"
	"github.com/yndnr/retire-go/internal/infra/fault"
	"github.com/yndnr/retire-go/internal/infra/shutdown"
	"github.com/yndnr/retire-go/internal/server/config"
	"github.com/yndnr/retire-go/internal/server/httpserver"
	"github.com/yndnr/retire-go/internal/server/localserver"
	"github.com/yndnr/retire-go/internal/server/worker"
	"github.com/yndnr/retire-go/internal/telemetry/logger"
	"github.com/yndnr/retire-go/internal/telemetry/metric"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run returns the process exit code. A process that shuts down while
// retiring exits with retire.exit_code.
func run() (int, error) {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	info := buildinfo.Get()
	if *showVersion {
		fmt.Println("retire-server", buildinfo.String())
		return 0, nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return 0, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting retire-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	retireCfg, err := cfg.RetireConfig()
	if err != nil {
		return 0, fmt.Errorf("retire config: %w", err)
	}

	reg := metric.Global()

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, nil, httpserver.Options{
		DrainTimeout: cfg.Server.HTTP.DrainTimeout,
		Logger:       log,
	})

	opts := []retire.Option{
		retire.WithLogger(log),
		retire.WithMetrics(reg),
	}
	if w, ok := worker.FromEnv(worker.WithLogger(log)); ok {
		log.Info("running under supervisor", "worker_id", w.ID())
		opts = append(opts, retire.WithWorker(w))
	}

	ctrl, err := retire.New(httpServer, retireCfg, opts...)
	if err != nil {
		return 0, fmt.Errorf("init controller: %w", err)
	}
	if err := reg.Register(metric.NewCollector(ctrl)); err != nil {
		return 0, fmt.Errorf("register collector: %w", err)
	}

	ctrl.OnRetire(func(r *retire.Retirement) {
		log.Warn("process retiring",
			"retirement_id", r.ID,
			"reason", r.Reason,
			"exit_at", r.ExitAt)
	})

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Controller = ctrl
	routerCfg.Logger = log
	routerCfg.Metrics = reg
	routerCfg.ReportFault = httpServer.ReportFault
	routerCfg.AdminAllowList = cfg.Admin.AllowList
	routerCfg.TrustedProxies = cfg.Server.HTTP.TrustedProxies
	routerCfg.AdminToken = cfg.Admin.Token
	routerCfg.AllowManualRetire = cfg.Admin.AllowManualRetire
	routerCfg.GlobalRateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.EnableAudit = cfg.Server.HTTP.Audit
	routerCfg.Version = info.Version
	httpServer.SetHandler(httpserver.NewRouter(routerCfg))

	// Hooks run in reverse order: the controller detaches last. The same
	// hooks run on a signal and when the controller exits the process.
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.DrainTimeout)
	shutdownHandler.SetLogger(log)
	shutdownHandler.RegisterAtExit()

	shutdownHandler.OnShutdown(func(context.Context) error {
		ctrl.Close()
		return nil
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if path := cfg.Server.Local.Path; path != "" {
		local := localserver.New(path, localserver.NewHandler(ctrl, cfg.Admin.AllowManualRetire), log)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down local socket")
			return local.Shutdown(ctx)
		})
		go func() {
			defer fault.Guard()
			if err := local.ListenAndServe(); err != nil {
				log.Error("local socket error", "error", err, "path", path)
			}
		}()
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("configuration watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		defer fault.Guard()
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// Once a retirement has drained the HTTP server there is nothing left
	// to serve, so the process exits without sitting out the deferral.
	shutdownHandler.TriggerWhen(httpServer.Stopped())

	log.Info("server started, press Ctrl+C to stop")
	err = shutdownHandler.Wait()

	code := 0
	if ctrl.State().Retiring() {
		code = retireCfg.ExitCode
	}
	if err != nil {
		log.Error("shutdown error", "error", err)
		return code, err
	}

	log.Info("server stopped gracefully", "exit_code", code)
	return code, nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// watchConfig reloads the log level when the configuration file changes.
// Retirement settings are fixed for the life of the process.
func watchConfig(path string, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("configuration reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
