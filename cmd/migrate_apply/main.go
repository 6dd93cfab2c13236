package main

import (
	"context"
	"fmt"
	"os"

	"streaksage/internal/db"
	"streaksage/internal/logger"
	"streaksage/internal/migrations"
	"streaksage/internal/repository"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var CLI struct {
	Backend    string `help:"Target database." enum:"postgres,sqlite" default:"postgres" env:"STORAGE_BACKEND"`
	DSN        string `help:"Postgres connection string." env:"DATABASE_URL"`
	SQLitePath string `help:"SQLite database file." default:"data/streaksage.db" env:"SQLITE_PATH"`
	Apply      bool   `help:"Apply migrations instead of listing them."`
	Seed       bool   `help:"Install the demo data after applying."`
}

type migrator interface {
	repository.Store
	Migrate(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()
	kong.Parse(&CLI,
		kong.Name("migrate_apply"),
		kong.Description("List or apply the embedded SQL migrations."),
		kong.UsageOnError(),
	)

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	migs, err := migrations.Load(CLI.Backend)
	if err != nil {
		return err
	}
	if !CLI.Apply {
		for _, m := range migs {
			fmt.Println(m.Name)
		}
		return nil
	}

	logger.Init("info", false, "")
	var store migrator
	switch CLI.Backend {
	case migrations.DialectPostgres:
		if CLI.DSN == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}
		pool, err := db.Connect(ctx, CLI.DSN)
		if err != nil {
			return err
		}
		store = repository.NewPostgresStore(pool)
	default:
		conn, err := db.OpenSQLite(CLI.SQLitePath)
		if err != nil {
			return err
		}
		store = repository.NewSQLiteStore(conn)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	for _, m := range migs {
		fmt.Printf("applied %s\n", m.Name)
	}

	if CLI.Seed {
		if err := repository.Seed(ctx, store); err != nil {
			return err
		}
		fmt.Println("seeded demo data")
	}
	return nil
}
