package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

const (
	retryDelay  = 5 * time.Second
	pingTimeout = 10 * time.Second
)

// InitDBWithRetry connects to PostgreSQL with a fixed attempt budget.
// This is the only place in the process that retries store access.
func InitDBWithRetry(maxRetries int) (*sql.DB, error) {
	var err error
	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = InitDB()
		if err == nil {
			return db, nil
		}
		log.Printf("Failed to connect to PostgreSQL (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err)
}

// InitDB opens the shared connection pool, applies pool limits, and
// verifies both connectivity and the presence of the fact table. The
// returned handle is passed into every request path; nothing else may
// open or close pool connections.
func InitDB() (*sql.DB, error) {
	host := getEnvWithDefault("DB_HOST", "localhost")
	port := getEnvWithDefault("DB_PORT", "5432")
	user := getEnvWithDefault("DB_USER", "postgres")
	password := getEnvWithDefault("DB_PASSWORD", "")
	dbname := getEnvWithDefault("DB_NAME", "census2011")
	sslmode := getEnvWithDefault("DB_SSL_MODE", "disable")

	log.Printf("DB Host: %s", host)
	log.Printf("DB Port: %s", port)
	log.Printf("DB Name: %s", dbname)
	log.Printf("DB User: %s", user)
	log.Printf("SSL Mode: %s", sslmode)

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening PostgreSQL database: %v", err)
	}

	db.SetMaxOpenConns(getEnvAsInt("DB_MAX_OPEN_CONNS", 25))
	db.SetMaxIdleConns(getEnvAsInt("DB_MAX_IDLE_CONNS", 5))
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to PostgreSQL database: %v", err)
	}

	var tableExists bool
	err = db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = 'locations'
        )`).Scan(&tableExists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking locations table: %v", err)
	}
	if !tableExists {
		db.Close()
		return nil, fmt.Errorf("locations table does not exist in the database")
	}

	log.Printf("Successfully connected to PostgreSQL database: %s", dbname)
	return db, nil
}

// CloseDB tears the pool down once at shutdown.
func CloseDB(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("Error closing PostgreSQL connection: %v", err)
	}
}

// CheckPostgresHealth pings the store with a short deadline.
func CheckPostgresHealth(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %v", err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction, rolling back on error
// or panic.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
