// cmd/migrate/main.go
//
// Command migrate creates the wallet ledger tables in the configured
// PostgreSQL database. It is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"wallet-ledger/internal/config"
	"wallet-ledger/internal/util"
	"wallet-ledger/pkg/db"
)

func main() {
	printOnly := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		fmt.Print(db.Schema())
		return
	}

	_ = godotenv.Load()
	util.InitLogger(os.Getenv("LOG_LEVEL"))
	logger := util.GetLogger()

	cfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Error("Failed to load database configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.NewPostgresDB(ctx, *cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, database); err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Schema applied", "host", cfg.Host, "database", cfg.DBName)
}
