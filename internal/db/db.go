package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds connection pool settings
type Config struct {
	URL             string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns pool settings for short-lived, independent operations.
// Idle connections are released quickly so nothing is held between requests.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxConnections:  10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	}
}

// New opens a Postgres connection pool and verifies it
func New(cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// NewFromURL opens a database with DefaultConfig
func NewFromURL(url string) (*DB, error) {
	return New(DefaultConfig(url))
}

// Wrap adapts an existing *sql.DB, e.g. one created by sqlmock
func Wrap(sqlDB *sql.DB) *DB {
	return &DB{sqlDB}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// User represents an end user; rows are created out of band
type User struct {
	ID                int64
	Name              string
	Age               *int
	EmergencyContact  *string
	MedicalConditions *string
}

// Turn is one logged conversation exchange
type Turn struct {
	ID        int64     `json:"-"`
	UserID    int64     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	UserInput string    `json:"user_input"`
	Response  string    `json:"response"`
}
