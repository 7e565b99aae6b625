package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfen/radarmap/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "up" {
		log.Fatal("usage: migrate up")
	}

	cfg, err := config.Load("radarmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(ctx, pool, "migrations"); err != nil {
		log.Fatal(err)
	}
	log.Println("all migrations applied")
}

// runMigrations applies every .sql file in dir in lexical order. Files are
// named NNN_description.sql so the prefix fixes the order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Fatalf("no migrations found in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		log.Printf("applied %s", f)
	}
	return nil
}
