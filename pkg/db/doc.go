// Package db connects to PostgreSQL through pgxpool and applies goose
// migrations. The mail queue stores its jobs and delivery log here.
//
// # Configuration
//
// LoadConfig("DATABASE") reads:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts at startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: mailkit_migrations)
//	DATABASE_TRACING            - OpenTelemetry span per query via otelpgx (default: false)
//
// # Usage
//
//	cfg, err := db.LoadConfig("DATABASE")
//	if err != nil {
//		return err
//	}
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	app.Run(":8080", mailkit.ShutdownHook(db.Shutdown(pool)))
//
// # Errors
//
//   - [ErrFailedToParseDBConfig] - Invalid connection string format
//   - [ErrFailedToOpenDBConnection] - Connection failed after all retries
//   - [ErrHealthcheckFailed] - Database ping failed
//   - [ErrSetDialect] - Migration provider could not be created
//   - [ErrApplyMigrations] - Migration execution failed
package db
