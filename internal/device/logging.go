// internal/device/logging.go
package device

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger denotes the logging facility used throughout the acquisition
// core. Satisfied by *zap.SugaredLogger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NullLogger is a discarding Logger (library default).
type NullLogger struct{}

// Debugf fulfils the Logger interface
func (l *NullLogger) Debugf(format string, args ...interface{}) {}

// Infof fulfils the Logger interface
func (l *NullLogger) Infof(format string, args ...interface{}) {}

// Warnf fulfils the Logger interface
func (l *NullLogger) Warnf(format string, args ...interface{}) {}

// Errorf fulfils the Logger interface
func (l *NullLogger) Errorf(format string, args ...interface{}) {}

// NewDefaultLogger instantiates a zap console logger at Info (or Debug)
// level.
func NewDefaultLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return logger.Sugar()
}
