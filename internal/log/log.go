/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package log is the router's logging facade. It installs a global zap
// logger (optionally rotated through lumberjack) and exposes the small
// printf-style surface the rest of the router calls against, so call sites
// read the same way jackal's own log.Debugf/log.Infof/log.Error do.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how verbosely the router logs.
type Config struct {
	Level    string `yaml:"level"`     // debug|info|warn|error
	File     string `yaml:"file"`      // empty means stderr only
	MaxSizeMB int   `yaml:"max_size_mb"`
	MaxAge    int   `yaml:"max_age_days"`
	MaxBackups int  `yaml:"max_backups"`
}

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger = zap.NewNop().Sugar()
)

// Init installs the process-wide logger per cfg. Safe to call once at
// startup; tests that don't call it keep the no-op logger.
func Init(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return err
		}
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)

	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	if cfg.File != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxAge:     orDefault(cfg.MaxAge, 28),
			MaxBackups: orDefault(cfg.MaxBackups, 7),
			Compress:   true,
		}))
	}
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()

	zap.ReplaceGlobals(l)
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func current() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { current().Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { current().Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Error logs a bare error value.
func Error(err error) {
	if err == nil {
		return
	}
	current().Error(err)
}

// Fatalf logs at fatal level and terminates the process.
func Fatalf(format string, args ...interface{}) { current().Fatalf(format, args...) }

// Sync flushes any buffered log entries; call on shutdown.
func Sync() error { return current().Sync() }
