// migrate-to-postgres copies profiles and runs from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/nightmare.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user nightmare \
//	    -pg-password nightmare \
//	    -pg-database nightmare
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/nightmare.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "nightmare", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "nightmare", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	if _, err := os.Stat(*sqlitePath); err != nil {
		log.Fatalf("SQLite database not found: %v", err)
	}
	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := database.DefaultPostgresConfig()
	pg.Host, pg.Port, pg.User, pg.Password = *pgHost, *pgPort, *pgUser, *pgPassword
	pg.Database, pg.SSLMode = *pgDatabase, *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	stats, err := database.Copy(ctx, src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Profiles: %d migrated, %d already present", stats.Profiles, stats.ProfilesSkipped)
	log.Printf("Runs:     %d migrated, %d skipped", stats.Runs, stats.RunsSkipped)
	log.Println("====================================")
	log.Println("Migration complete!")
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
