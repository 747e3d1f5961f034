package db

import "errors"

// Errors returned while opening or migrating the database behind the mail
// queue and delivery log. Each wraps its cause with errors.Join.
var (
	// ErrFailedToParseDBConfig means ConnectionString was not a valid pgx DSN.
	ErrFailedToParseDBConfig = errors.New("db: invalid connection string")
	// ErrFailedToOpenDBConnection means every connect attempt failed or ctx ended first.
	ErrFailedToOpenDBConnection = errors.New("db: could not open pool")
	// ErrHealthcheckFailed is what the "db" readiness check reports.
	ErrHealthcheckFailed = errors.New("db: ping failed")
	// ErrSetDialect means goose could not build a provider for the mail schema.
	ErrSetDialect = errors.New("db migrator: failed to create provider")
	// ErrApplyMigrations means a mail schema migration failed.
	ErrApplyMigrations = errors.New("db migrator: failed to apply migrations")
)
