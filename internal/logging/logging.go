// Package logging builds the structured loggers used across corral.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRunLogger creates a file-backed logger under projectRoot's
// .corral/logs directory. Run output stays out of the terminal, which
// belongs to the TUI or the plain progress stream.
func NewRunLogger(projectRoot string) (*zap.Logger, error) {
	logDir := filepath.Join(projectRoot, ".corral", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(logDir, "corral.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a discard-everything logger for tests and read-only
// commands.
func Nop() *zap.Logger {
	return zap.NewNop()
}
