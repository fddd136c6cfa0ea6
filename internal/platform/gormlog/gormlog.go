package gormlog

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config builds the gorm config shared by every relational driver.
func Config(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(parseLevel(level)),
		TranslateError: true,
	}
}

func parseLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
