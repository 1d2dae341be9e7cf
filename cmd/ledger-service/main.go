package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"tracktok/internal/conf"
	"tracktok/internal/data"
	"tracktok/internal/server"
	"tracktok/pkg/database"
	"tracktok/pkg/observability"
)

var configFile = flag.String("config", "", "path to config file")

// App bundles the running components.
type App struct {
	httpServer *server.HTTPServer
}

func newApp(httpServer *server.HTTPServer) *App {
	return &App{httpServer: httpServer}
}

func main() {
	flag.Parse()

	config, err := conf.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{
		ServiceName: "ledger-service",
		Environment: config.Observability.Environment,
		Level:       config.Observability.LogLevel,
		Format:      config.Observability.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting ledger service",
		zap.String("environment", config.Observability.Environment),
	)

	db, err := database.NewDB(provideDBConfig(config), logger)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	if config.Database.AutoMigrate {
		if err := data.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")
	}

	app, cleanup, err := initApp(config, logger, db)
	if err != nil {
		logger.Fatal("Failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	go func() {
		if err := app.httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	var metricsSrv *http.Server
	if config.Observability.EnableMetrics {
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", config.Server.MetricsPort),
			Handler: promhttp.Handler(),
		}
		go func() {
			logger.Info("Metrics server starting", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Metrics server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Servers exited")
}
