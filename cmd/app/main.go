// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fair-model-service/internal/config"
	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	pg "fair-model-service/internal/infra/db/postgres"
	httpapi "fair-model-service/internal/infra/http"
	"fair-model-service/internal/infra/logging"
	"fair-model-service/internal/infra/metrics"
	red "fair-model-service/internal/infra/redis"
	"fair-model-service/internal/infra/web"
	"fair-model-service/internal/infra/worker"
	"fair-model-service/internal/model/registry"
	"fair-model-service/internal/usecase"

	// custom models register themselves
	_ "fair-model-service/internal/model/custom/threshold"
)

var (
	version = "dev"
	commit  = "none"
)

// exit codes
const (
	exitConfig  = 2
	exitRuntime = 1
)

func main() {
	cfgPath := flag.String("config", "", "optional path to YAML config file")
	devMode := flag.Bool("dev", false, "human-readable logs")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fair-model-service %s (%s)\n", version, commit)
		return
	}
	os.Exit(run(*cfgPath, *devMode))
}

func run(cfgPath string, dev bool) int {
	cfg, err := config.LoadConfig(cfgPath, dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitConfig
	}
	logger, err := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return exitConfig
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve before binding the port so a bad configuration never serves.
	handle, err := registry.Resolve(cfg.Model.Module, cfg.Model.Type, registry.Options{ParametersPath: cfg.Model.Parameters})
	if err != nil {
		logger.Error().Err(err).Str("module", cfg.Model.Module).Str("type", cfg.Model.Type).Msg("model resolution failed")
		if errors.Is(err, domain.ErrConfiguration) {
			return exitConfig
		}
		return exitRuntime
	}
	md := handle.Metadata()
	logger.Info().Str("model_name", md.ModelName).Str("model_uri", md.ModelURI).
		Strs("inputs", handle.InputParameters()).Msg("model resolved")

	var sinks []usecase.JobSink
	var closers []func()

	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Error().Err(err).Msg("redis")
			return exitRuntime
		}
		cache := red.NewJobCache(client, cfg.Redis.Key, cfg.Redis.TTL)
		sinks = append(sinks, cache)
		closers = append(closers, func() { _ = cache.Close() })
		logger.Info().Str("key", cfg.Redis.Key).Msg("redis job sink enabled")
	}
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error().Err(err).Msg("postgres")
			return exitRuntime
		}
		closers = append(closers, pool.Close)
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Error().Err(err).Msg("postgres")
			return exitRuntime
		}
		sinks = append(sinks, usecase.NewRepositorySink("postgres", pg.NewPredictionJobRepo(pool)))
		logger.Info().Msg("postgres job sink enabled")
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	pool := worker.NewPool(1, logger)
	pool.Start(ctx)

	svc := usecase.NewInferenceUseCase(handle, pool, logger,
		usecase.WithTimeout(cfg.Model.Timeout),
		usecase.WithSinks(sinks...),
		usecase.WithTransitionHook(func(job model.PredictionJob) {
			logger.Debug().Str("job_id", job.ID).Int("status", int(job.Status)).Msg("job transition")
		}),
	)

	handler, err := web.NewServer(svc, cfg.HTTP.Rate, logger).Routes()
	if err != nil {
		logger.Error().Err(err).Msg("http routes")
		return exitConfig
	}
	srv := httpapi.NewServer(&cfg.HTTP, handler, logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			code = exitRuntime
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout+time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
	logger.Info().Msg("bye")
	return code
}
