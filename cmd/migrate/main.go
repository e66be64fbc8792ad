package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/tendant/content-share/pkg/contentshare/config"
	"github.com/tendant/content-share/pkg/contentshare/migrations"
)

func main() {
	_ = config.LoadDotEnv()

	databaseURL := flag.String("database", os.Getenv("DATABASE_URL"), "postgres connection URL")
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	if *databaseURL == "" {
		slog.Error("database URL is required (set -database or DATABASE_URL)")
		os.Exit(2)
	}

	step, run := "up", migrations.Up
	if *down {
		step, run = "down", migrations.Down
	}

	if err := run(*databaseURL); err != nil {
		slog.Error("Migration failed", "step", step, "err", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied", "step", step)
}
