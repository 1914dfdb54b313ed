package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory containing *.sql migrations")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := run(db, *mode, *dir); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, mode, dir string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return applyPending(db, files)
	case "down":
		return rollbackLast(db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func applyPending(db *sql.DB, files []string) error {
	for _, file := range files {
		version := filepath.Base(file)

		var applied bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			log.Printf("skipping already applied migration: %s", version)
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		log.Printf("applying migration: %s", version)
		if _, err := db.Exec(sectionSQL(string(content), "Up")); err != nil {
			return fmt.Errorf("migration failed (%s): %w", version, err)
		}

		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("failed to record migration version: %w", err)
		}
	}
	log.Println("all pending migrations applied")
	return nil
}

func rollbackLast(db *sql.DB, files []string) error {
	var lastVersion string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).Scan(&lastVersion)
	if err == sql.ErrNoRows {
		log.Println("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	var filePath string
	for _, f := range files {
		if filepath.Base(f) == lastVersion {
			filePath = f
			break
		}
	}
	if filePath == "" {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	log.Printf("rolling back migration: %s", lastVersion)
	if _, err := db.Exec(sectionSQL(string(content), "Down")); err != nil {
		return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
	}

	if _, err := db.Exec(`DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return nil
}

// sectionSQL returns the statements between "-- +migrate <section>" and the
// next "-- +migrate" marker.
func sectionSQL(content, section string) string {
	var part strings.Builder
	var inSection bool

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "-- +migrate "+section) {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inSection {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
