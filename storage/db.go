package storage

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"database/sql"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Set connection pool settings optimized for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := EnsureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// EnsureSchema creates the labor tables and the partial unique index that
// backs the one-active-timer-per-employee guarantee. Everything is
// IF NOT EXISTS so startup is idempotent.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS labor_entries (
			id UUID PRIMARY KEY,
			organization_id TEXT NOT NULL,
			work_order_id TEXT,
			work_order_number TEXT NOT NULL DEFAULT '',
			employee_id TEXT NOT NULL,
			employee_name TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			hours_worked NUMERIC(10,2),
			regular_rate NUMERIC(10,2),
			total_labor_cost NUMERIC(12,2),
			work_type TEXT NOT NULL DEFAULT '',
			task_description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT labor_entries_end_after_start
				CHECK (end_time IS NULL OR end_time > start_time),
			CONSTRAINT labor_entries_status_consistent
				CHECK ((status = 'active') = (end_time IS NULL))
		)`,
		// Cross-work-order exclusivity: an employee cannot log time on two
		// jobs simultaneously. Racing inserts resolve here, not in app code.
		`CREATE UNIQUE INDEX IF NOT EXISTS labor_entries_one_active_per_employee
			ON labor_entries (organization_id, employee_id)
			WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS labor_entries_work_order_idx
			ON labor_entries (organization_id, work_order_id)`,
		`CREATE INDEX IF NOT EXISTS labor_entries_employee_start_idx
			ON labor_entries (organization_id, employee_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS work_orders (
			id TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			number TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			regular_rate NUMERIC(10,2),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			event_context TEXT NOT NULL DEFAULT '',
			event_name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			employee_id TEXT NOT NULL DEFAULT '',
			work_order_number TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
