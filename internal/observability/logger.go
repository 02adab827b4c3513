// Package observability initializes the process loggers. CLI commands get a
// human-readable console logger; the HTTP server gets structured JSON.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger is used for CLI commands (console output)
	CLILogger *zap.Logger

	// ServerLogger is used for the HTTP server (structured JSON)
	ServerLogger *zap.Logger
)

// InitCLILogger initializes the CLI logger
func InitCLILogger(serviceName string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize CLI logger: %v\n", err)
		os.Exit(1)
	}

	CLILogger = logger
}

// InitServerLogger initializes the server logger with JSON output
func InitServerLogger(serviceName string, logLevel string) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLogLevel(logLevel))
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize server logger: %v\n", err)
		os.Exit(1)
	}

	ServerLogger = logger
}

// parseLogLevel converts a string log level to a zap level
func parseLogLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
