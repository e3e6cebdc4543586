package utils

import (
	"log"
	"sync"

	"guruconnect/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger, built on first use.
var (
	Logger     *zap.Logger
	loggerOnce sync.Once
)

// NewLogger builds a JSON production logger for "production" and a colored
// development logger otherwise. A parsable level overrides the env default.
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "guruconnect"), zap.String("env", env)), nil
}

// GetLogger returns the global logger, building it from AppConfig the first time.
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		logger, err := NewLogger(config.GetEnv(), config.AppConfig.LogLevel)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		Logger = logger
		zap.ReplaceGlobals(Logger)
	})
	return Logger
}
