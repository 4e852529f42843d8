package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/samirrijal/derniermetro/internal/adapters/postgres"
	"github.com/samirrijal/derniermetro/internal/pkg/config"
	"github.com/samirrijal/derniermetro/internal/pkg/logging"
	"github.com/samirrijal/derniermetro/migrations"
)

const usage = "usage: migrate <up|seed|down|status>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	_ = godotenv.Load()

	cfg, err := config.Load("derniermetro-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("migrate only manages postgres; the %s store is created on open", cfg.Database.Driver)
	}
	logger := logging.Setup(cfg.Log.Level, "text", "derniermetro-migrate")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		err = db.Apply(ctx, migrations.Schema)
		if err == nil {
			fmt.Printf("OK  %s\n", migrations.Schema)
		}
	case "seed":
		err = db.Apply(ctx, migrations.Seed)
		if err == nil {
			fmt.Printf("OK  %s\n", migrations.Seed)
		}
	case "down":
		err = db.Reset(ctx)
		if err == nil {
			logger.Info("all tables dropped", "tables", migrations.Tables)
		}
	case "status":
		err = printStatus(ctx, db)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}

	if err != nil {
		db.Close()
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func printStatus(ctx context.Context, db *postgres.DB) error {
	status, err := db.TableStatus(ctx)
	if err != nil {
		return err
	}
	for _, table := range migrations.Tables {
		state := "missing"
		if status[table] {
			state = "present"
		}
		fmt.Printf("%-12s %s\n", table, state)
	}

	scripts, err := migrations.List()
	if err != nil {
		return err
	}
	fmt.Printf("embedded scripts: %v\n", scripts)
	return nil
}
