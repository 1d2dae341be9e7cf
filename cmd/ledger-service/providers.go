package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/biz"
	"tracktok/internal/conf"
	"tracktok/internal/data"
	"tracktok/internal/domain"
	"tracktok/pkg/cache"
	"tracktok/pkg/database"
	"tracktok/pkg/events"
	"tracktok/pkg/health"
)

func provideDBConfig(cfg *conf.Config) *database.Config {
	return &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}

func provideCache(cfg *conf.Config) (cache.Cache, error) {
	return cache.NewRedisCache(&cache.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
}

func provideAlertPublisher(cfg *conf.Config, logger *zap.Logger) (domain.AlertPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return data.NewNoopAlertPublisher(logger), func() {}, nil
	}

	publisher, err := events.NewKafkaPublisher(&events.PublisherConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.AlertTopic,
		RetryMax: cfg.Kafka.RetryMax,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("kafka publisher close failed", zap.Error(err))
		}
	}
	return data.NewKafkaAlertPublisher(publisher, logger), cleanup, nil
}

func provideTxManager(d *data.Data, cfg *conf.Config, logger *zap.Logger) domain.TxManager {
	return data.NewTxManager(d, cfg.Ledger.LockTimeout, logger)
}

func provideTenantResolver(tenantRepo domain.TenantRepository, c cache.Cache, cfg *conf.Config, logger *zap.Logger) *biz.TenantResolver {
	return biz.NewTenantResolver(tenantRepo, c, cfg.Tenant.BaseDomain, cfg.Tenant.ResolveCacheTTL, logger)
}

func provideAlertConfig(cfg *conf.Config) biz.AlertConfig {
	return biz.AlertConfig{
		TenantConcurrency:     cfg.Alerts.TenantConcurrency,
		ForecastMinConfidence: cfg.Alerts.ForecastMinConfidence,
	}
}

func provideServerConfig(cfg *conf.Config) *conf.ServerConfig {
	return &cfg.Server
}

func provideHealthRegistry(db *gorm.DB, c cache.Cache) *health.Registry {
	registry := health.NewRegistry()

	registry.Register(health.CheckerFunc{
		CheckerName: "postgres",
		Fn: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	registry.Register(health.CheckerFunc{
		CheckerName: "redis",
		Fn: func(ctx context.Context) error {
			_, err := c.Get(ctx, "health:probe")
			if errors.Is(err, cache.ErrCacheMiss) {
				return nil
			}
			return err
		},
	})

	return registry
}
