// Package main is the entry point for the quantcore host daemon. It owns the
// lifecycle of the drift monitors (created at startup, swept on a schedule,
// destroyed with the process) and the decisions database. The surrounding
// platform feeds live probabilities into the registry and reads sizing
// decisions back; neither side touches shared globals.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aristath/quantcore/internal/config"
	"github.com/aristath/quantcore/internal/database"
	"github.com/aristath/quantcore/internal/modules/monitor"
	"github.com/aristath/quantcore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	log.Info().Msg("Starting quantcore")

	db, err := database.New(cfg.DataDir + "/decisions.db")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open decisions database")
	}
	defer db.Close()

	repo, err := monitor.NewHistoryRepository(db.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize decision history")
	}

	registry := monitor.NewRegistry()
	monitorCfg := monitor.Config{
		WindowSize: cfg.WindowSize,
		MinSamples: cfg.MinSamples,
		Policy:     cfg.DriftPolicy,
	}
	for _, key := range monitorKeys() {
		registry.Register(key, monitor.New(monitorCfg, log))
	}
	log.Info().Strs("monitors", registry.Keys()).Msg("Monitor registry initialized")

	scheduler := monitor.NewScheduler(registry, repo, log)
	if err := scheduler.Start(cfg.SweepSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start drift sweep scheduler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	scheduler.Stop()
}

// monitorKeys lists the model streams to monitor. The platform's model
// serving layer registers additional monitors at runtime.
func monitorKeys() []string {
	if keys := os.Getenv("QUANTCORE_MONITORS"); keys != "" {
		var out []string
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				out = append(out, key)
			}
		}
		return out
	}
	return []string{"default"}
}
