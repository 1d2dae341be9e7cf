//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tracktok/internal/biz"
	"tracktok/internal/conf"
	"tracktok/internal/data"
	"tracktok/internal/server"
	"tracktok/internal/service"
)

// initApp wires the application graph.
func initApp(cfg *conf.Config, logger *zap.Logger, db *gorm.DB) (*App, func(), error) {
	wire.Build(
		data.NewData,
		data.NewTenantRepo,
		data.NewAccountRepo,
		data.NewExpenseRepo,
		data.NewBudgetRepo,
		data.NewProjectRepo,
		data.NewAlertRepo,
		data.NewAuditRepo,
		data.NewPreferencesRepo,

		provideTxManager,
		provideCache,
		provideAlertPublisher,
		provideAlertConfig,
		provideTenantResolver,
		provideServerConfig,
		provideHealthRegistry,

		biz.NewLedgerUsecase,
		biz.NewQueryUsecase,
		biz.NewAlertUsecase,
		biz.NewAuditUsecase,

		service.NewLedgerService,
		server.NewHTTPServer,

		newApp,
	)
	return nil, nil, nil
}
