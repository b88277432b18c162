package main

// Manage the entitlement schema:
//   go run ./cmd/migrate [up|status|down]

import (
	"context"
	"os"

	"resumeflow/internal/shared/config"
	"resumeflow/internal/shared/storage/db"
	"resumeflow/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.load_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Configure(cfg.Env, cfg.LogLevel)
	logger := telemetry.Logger("migrate")
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.ProfileMigrate))
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect database")
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	case "down":
		err = db.RollbackLast(ctx, sqlDB)
	default:
		logger.Error().Str("command", command).Msg("unknown command; expected up, status or down")
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("migration failed")
		os.Exit(1)
	}
	logger.Info().Str("command", command).Msg("migration complete")
}
