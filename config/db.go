package config

import (
	"time"

	"classroom-booking/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zapWriter receives only what the gorm logger lets through at logger.Warn
// (slow queries, SQL errors), so every line is a warning.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// ConnectDatabase opens MySQL and migrates the rooms table.
func ConnectDatabase(dsn string, log *zap.Logger) (*gorm.DB, error) {
	newLogger := logger.New(
		zapWriter{log: log.Named("gorm").Sugar()},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.RoomRecord{}); err != nil {
		return nil, err
	}
	log.Info("database connection established and migrations applied")
	return db, nil
}
