package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/auth-service/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/auth-service/internal/config"
)

const usage = "usage: migrations <up|down|status|version|reset|redo>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	command := os.Args[1]

	if err := config.LoadDotEnv(); err != nil {
		log.Println(err)
	}

	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := postgres.RunMigrationCommand(context.Background(), db, command); err != nil {
		log.Fatalf("migration %q failed: %v", command, err)
	}

	log.Printf("migration %q executed successfully.", command)
}
