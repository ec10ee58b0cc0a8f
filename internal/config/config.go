// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/quantcore/internal/modules/drift"
)

// Config holds host configuration for the decision-support core.
type Config struct {
	DataDir       string // Base directory for the decisions database
	LogLevel      string
	SweepSchedule string // cron spec for the drift sweep

	// Drift monitor windows.
	WindowSize int
	MinSamples int

	// Payoff profiler grid density.
	GridPoints int

	// Drift thresholds (spec defaults, individually overridable).
	DriftPolicy drift.Policy
}

// Load reads configuration from environment variables (.env supported).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("QUANTCORE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	defaults := drift.DefaultPolicy()
	cfg := &Config{
		DataDir:       absDataDir,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SweepSchedule: getEnv("DRIFT_SWEEP_SCHEDULE", "@every 5m"),
		WindowSize:    getEnvAsInt("DRIFT_WINDOW_SIZE", 0),
		MinSamples:    getEnvAsInt("DRIFT_MIN_SAMPLES", 0),
		GridPoints:    getEnvAsInt("PAYOFF_GRID_POINTS", 0),
		DriftPolicy: drift.Policy{
			PSIWarn:  getEnvAsFloat("DRIFT_PSI_WARN", defaults.PSIWarn),
			PSIAlert: getEnvAsFloat("DRIFT_PSI_ALERT", defaults.PSIAlert),
			KSWarn:   getEnvAsFloat("DRIFT_KS_WARN", defaults.KSWarn),
			KSAlert:  getEnvAsFloat("DRIFT_KS_ALERT", defaults.KSAlert),
			// When no calibrator is wired up the calibration-error statistic
			// is reported as 0; these thresholds are then inert. They are not
			// widened automatically to compensate.
			ECEWarn:  getEnvAsFloat("DRIFT_ECE_WARN", defaults.ECEWarn),
			ECEAlert: getEnvAsFloat("DRIFT_ECE_ALERT", defaults.ECEAlert),
		},
	}
	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
