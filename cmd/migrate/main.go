// Command migrate applies or rolls back the PostgreSQL schema.
//
//	migrate up | down | version | list
package main

import (
	"fmt"
	"os"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/migrations"
	"github.com/anonto42/whatsyourrecipe/backend/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|version|list")
		os.Exit(2)
	}
	cmd := os.Args[1]

	if cmd == "list" {
		names, err := migrations.Names()
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to list migrations")
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	runner, err := migrations.NewRunner(cfg.PostgresConnStr)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open migration runner")
	}
	defer runner.Close()

	switch cmd {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = runner.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		runner.Close()
		os.Exit(2)
	}
	if err != nil {
		logging.Error().Err(err).Str("command", cmd).Msg("Migration failed")
		runner.Close()
		os.Exit(1)
	}
}
