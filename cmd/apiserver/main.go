// Command apiserver serves the scoring, session, visit and report API.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/FamilyCare-Analytics/internal/app"
	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/handlers"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)
	logging.SetDefault(logger)

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("apiserver exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger logging.Logger) error {
	logger.Info("starting apiserver", logging.String("version", config.Version), logging.Int("port", cfg.Server.Port))

	infra, err := app.NewInfrastructure(cfg, logger, app.All)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := app.NewServices(infra)

	var metricsHandler http.Handler
	if infra.Collector != nil {
		metricsHandler = infra.Collector.Handler()
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.AllowedOrigins

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ScoreHandler:   handlers.NewScoreHandler(svc.Calculator, logger),
		SessionHandler: handlers.NewSessionHandler(svc.Evaluation, logger),
		VisitHandler:   handlers.NewVisitHandler(svc.Visits, logger),
		ReportHandler:  handlers.NewReportHandler(svc.Reports, logger),
		HealthHandler:  handlers.NewHealthHandler(config.Version, infra.Metrics, healthCheckers(infra.HealthChecks())...),
		CORS:           &cors,
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         logger,
		Metrics:        infra.Metrics,
		MetricsHandler: metricsHandler,
	})

	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level reloaded", logging.String("level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("configuration reload failed", logging.Err(err))
		})
	}

	srv := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received shutdown signal", logging.String("signal", sig.String()))
	}

	ctx, cancel := app.ShutdownContext(cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(ctx)
}
