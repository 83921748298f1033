// Package main provides a read-only inspection tool for the Quiver database.
//
// It connects below the store layer and prints row counts and a few
// recent rows per table, which is handy when debugging import runs or
// session cleanup.
//
// Usage:
//
//	DATA_PATH=~/quiver go run ./cmd/dbinspect
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// timeLayout matches the storage layout used by the store; the padded
// nanoseconds keep string comparison equal to time comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/quiver")
	}

	driver := os.Getenv("DATABASE_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && driver == "sqlite" {
		dsn = filepath.Join(dataPath, "quiver.db")
	}

	driverName := "sqlite"
	if driver == "postgres" {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	now := time.Now().UTC().Format(timeLayout)

	users := count(db, `SELECT COUNT(*) FROM users`)
	sessions := count(db, `SELECT COUNT(*) FROM sessions`)
	expired := count(db, `SELECT COUNT(*) FROM sessions WHERE expires_at < $1`, now)
	resets := count(db, `SELECT COUNT(*) FROM password_resets`)
	specs := count(db, `SELECT COUNT(*) FROM ski_specs`)
	notes := count(db, `SELECT COUNT(*) FROM notes`)

	fmt.Printf("Users:           %d\n", users)
	fmt.Printf("Sessions:        %d (%d expired, awaiting cleanup)\n", sessions, expired)
	fmt.Printf("Password resets: %d\n", resets)
	fmt.Printf("Ski specs:       %d\n", specs)
	fmt.Printf("Notes:           %d\n", notes)
	fmt.Println()

	printQuivers(db)
	printRecentSpecs(db)
}

// count runs a single-value COUNT query, treating failure as fatal since
// a missing table means the database was never migrated.
func count(db *sql.DB, query string, args ...any) int {
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		log.Fatalf("Query failed (%s): %v", query, err)
	}
	return n
}

// printQuivers shows spec counts per user.
func printQuivers(db *sql.DB) {
	rows, err := db.Query(`
		SELECT u.email, COUNT(s.id)
		FROM users u
		LEFT JOIN ski_specs s ON s.owner_id = u.id
		GROUP BY u.id, u.email
		ORDER BY COUNT(s.id) DESC, u.email
		LIMIT 10`)
	if err != nil {
		log.Printf("Failed to list quivers: %v", err)
		return
	}
	defer rows.Close()

	fmt.Println("=== Quivers ===")
	for rows.Next() {
		var email string
		var n int
		if err := rows.Scan(&email, &n); err != nil {
			log.Printf("Scan failed: %v", err)
			return
		}
		fmt.Printf("  %-40s %d specs\n", email, n)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Row iteration failed: %v", err)
	}
	fmt.Println()
}

// printRecentSpecs shows the newest specs with their derived metrics.
func printRecentSpecs(db *sql.DB) {
	rows, err := db.Query(`
		SELECT s.name, u.email, s.surface_area, s.relative_weight, s.algorithm_version
		FROM ski_specs s
		JOIN users u ON u.id = s.owner_id
		ORDER BY s.created_at DESC
		LIMIT 5`)
	if err != nil {
		log.Printf("Failed to list specs: %v", err)
		return
	}
	defer rows.Close()

	fmt.Println("=== Recent specs ===")
	for rows.Next() {
		var name, email, version string
		var area, relWeight float64
		if err := rows.Scan(&name, &email, &area, &relWeight, &version); err != nil {
			log.Printf("Scan failed: %v", err)
			return
		}
		fmt.Printf("  %-30s %-30s %8.1f cm²  %.2f g/cm²  (algo %s)\n",
			name, email, area, relWeight, version)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Row iteration failed: %v", err)
	}
}
