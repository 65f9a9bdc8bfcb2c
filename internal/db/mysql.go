package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"animalsquad/internal/model"
)

// NewMySQL returns a connected GORM DB instance. Driver errors are translated
// so that unique index violations surface as gorm.ErrDuplicatedKey.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&model.Address{}, &model.Pet{}, &model.Post{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database migration completed")
	return nil
}
