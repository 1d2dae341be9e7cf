package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"tracktok/internal/biz"
	"tracktok/internal/conf"
	"tracktok/internal/data"
	"tracktok/internal/domain"
	"tracktok/pkg/database"
	"tracktok/pkg/events"
	"tracktok/pkg/observability"
)

var configFile = flag.String("config", "", "path to config file")

func main() {
	flag.Parse()

	config, err := conf.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{
		ServiceName: "alert-worker",
		Environment: config.Observability.Environment,
		Level:       config.Observability.LogLevel,
		Format:      config.Observability.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting alert worker",
		zap.Duration("eval_interval", config.Alerts.EvalInterval),
		zap.Int("tenant_concurrency", config.Alerts.TenantConcurrency),
	)

	db, err := database.NewDB(&database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.DBName,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	d, cleanup, err := data.NewData(db, logger)
	if err != nil {
		logger.Fatal("Failed to init data layer", zap.Error(err))
	}
	defer cleanup()

	var publisher domain.AlertPublisher
	if config.Kafka.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(&events.PublisherConfig{
			Brokers:  config.Kafka.Brokers,
			Topic:    config.Kafka.AlertTopic,
			RetryMax: config.Kafka.RetryMax,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create kafka publisher", zap.Error(err))
		}
		defer kafkaPublisher.Close()
		publisher = data.NewKafkaAlertPublisher(kafkaPublisher, logger)
	} else {
		publisher = data.NewNoopAlertPublisher(logger)
	}

	alerts := biz.NewAlertUsecase(
		data.NewAccountRepo(d, logger),
		data.NewBudgetRepo(d, logger),
		data.NewProjectRepo(d, logger),
		data.NewAlertRepo(d, logger),
		data.NewTenantRepo(d, logger),
		data.NewPreferencesRepo(d, logger),
		publisher,
		biz.AlertConfig{
			TenantConcurrency:     config.Alerts.TenantConcurrency,
			ForecastMinConfidence: config.Alerts.ForecastMinConfidence,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	runLoop(ctx, alerts, config.Alerts.EvalInterval, logger)
	logger.Info("Alert worker exited")
}

// runLoop evaluates all tenants immediately, then on every tick until the
// context is cancelled.
func runLoop(ctx context.Context, alerts *biz.AlertUsecase, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	evaluate := func() {
		start := time.Now()
		if err := alerts.EvaluateAll(ctx); err != nil {
			logger.Error("alert evaluation pass failed", zap.Error(err))
			return
		}
		logger.Info("alert evaluation pass complete", zap.Duration("took", time.Since(start)))
	}

	evaluate()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluate()
		}
	}
}
