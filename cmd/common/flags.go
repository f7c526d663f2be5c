// Package common holds flag and environment helpers shared by the
// command-line tools.
package common

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/altommo/crypto-grid-trader/internal/logger"
)

// CommonFlags contains flags shared across commands.
type CommonFlags struct {
	EnvFile  *string
	LogLevel *string
	LogFile  *string
}

// RegisterCommonFlags registers the shared flags with the default flag set.
func RegisterCommonFlags() *CommonFlags {
	return &CommonFlags{
		EnvFile:  flag.String("env", ".env", "Environment file path"),
		LogLevel: flag.String("log-level", "info", "Log level (debug, info, warn, error)"),
		LogFile:  flag.String("log-file", "", "Log file path (empty for stdout only)"),
	}
}

// Setup loads the environment file if present and initializes logging.
// A missing env file is not an error.
func (f *CommonFlags) Setup() error {
	if *f.EnvFile != "" {
		if err := godotenv.Load(*f.EnvFile); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	logCfg := logger.Config{
		Level:  *f.LogLevel,
		Output: "console",
	}
	if *f.LogFile != "" {
		logCfg.Output = "both"
		logCfg.File = *f.LogFile
	}
	logger.Init(logCfg)
	return nil
}

// EnvString returns the value of an environment variable or a fallback.
func EnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// EnvFloat returns a float environment variable or a fallback.
func EnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// EnvBool returns a boolean environment variable or a fallback.
func EnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
