package data

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Data is the data access layer struct shared by all repositories.
type Data struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewData creates the data access layer and its cleanup function.
func NewData(db *gorm.DB, logger *zap.Logger) (*Data, func(), error) {
	cleanup := func() {
		logger.Info("closing the data resources")
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
	return &Data{db: db, logger: logger}, cleanup, nil
}
