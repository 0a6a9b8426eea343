// Command worker consumes visit events and publishes risk alerts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/app"
	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/worker"
)

const defaultHealthPort = 8081

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	concurrency := flag.Int("workers", 0, "concurrent fetch loops (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Worker.Concurrency = *concurrency
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	if !cfg.Kafka.Enabled {
		return errors.New("kafka.enabled must be true to run the risk worker")
	}
	logger.Info("starting risk worker",
		logging.String("version", config.Version),
		logging.Int("concurrency", cfg.Worker.Concurrency))

	infra, err := app.NewInfrastructure(cfg, logger, app.Messaging)
	if err != nil {
		return err
	}
	defer infra.Close()

	if err := ensureTopics(cfg, logger); err != nil {
		return err
	}

	alerts, err := app.NewAlerting(infra)
	if err != nil {
		return err
	}
	handler := worker.NewRiskHandler(alerts, logger)

	consumerCfg := kafka.NewConsumerConfig(cfg.Kafka, cfg.Worker, handler.Topic())
	consumerCfg.DeadLetterTopic = kafka.TopicVisitLoggedDLQ
	consumer, err := kafka.NewConsumer(consumerCfg, infra.Producer, infra.Metrics, logger)
	if err != nil {
		return err
	}
	consumer.Subscribe(handler.Topic(), handler.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	checks := append(infra.HealthChecks(), app.HealthCheck{
		Name:  "kafka",
		Check: func(ctx context.Context) error { return kafka.Ping(ctx, cfg.Kafka.Brokers) },
	})
	var metricsHandler http.Handler
	if infra.Collector != nil {
		metricsHandler = infra.Collector.Handler()
	}
	port := cfg.Worker.HealthPort
	if port == 0 {
		port = defaultHealthPort
	}
	probes := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           worker.NewProbeRouter(checks, infra.Metrics, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("probe server listening", logging.Int("port", port))
		if err := probes.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("probe server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", logging.String("signal", sig.String()))

	cancel()
	if err := consumer.Close(); err != nil {
		logger.Warn("consumer close failed", logging.Err(err))
	}

	shutdownCtx, stop := app.ShutdownContext(5 * time.Second)
	defer stop()
	if err := probes.Shutdown(shutdownCtx); err != nil {
		logger.Warn("probe server shutdown failed", logging.Err(err))
	}
	logger.Info("risk worker stopped")
	return nil
}

// ensureTopics creates the visit, alert and dead-letter topics when missing.
func ensureTopics(cfg *config.Config, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(min(len(cfg.Kafka.Brokers), 3)))
}
