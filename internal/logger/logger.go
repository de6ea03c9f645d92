// Package logger configures the process-wide zap logger.
package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds the global logger for the given environment.  Production
// gets JSON at info level; everything else gets the colored console
// encoder at debug level.
func Init(env string) {
	var cfg zap.Config

	if strings.EqualFold(env, "prod") || strings.EqualFold(env, "production") {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var err error
	global, err = cfg.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
}

// Get returns the global logger, initializing a development logger if
// Init was never called.
func Get() *zap.Logger {
	if global == nil {
		Init("dev")
	}
	return global
}

// Sync flushes buffered log entries.  Call on shutdown.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
