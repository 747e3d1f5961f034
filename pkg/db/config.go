package db

import "time"

// Config holds PostgreSQL pool settings. Tags follow envconfig conventions;
// with prefix "DATABASE" the URL is read from DATABASE_CONN_URL.
type Config struct {
	ConnectionString string `envconfig:"CONN_URL" required:"true"`

	MigrationsTable string `envconfig:"MIGRATIONS_TABLE" default:"mailkit_migrations"`

	HealthCheckPeriod time.Duration `envconfig:"HEALTHCHECK_PERIOD" default:"1m"`
	MaxConnIdleTime   time.Duration `envconfig:"MAX_CONN_IDLE_TIME" default:"10m"`
	MaxConnLifetime   time.Duration `envconfig:"MAX_CONN_LIFETIME" default:"30m"`

	// Startup retries wait RetryInterval, then 2x, then 3x.
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryInterval time.Duration `envconfig:"RETRY_INTERVAL" default:"5s"`

	// Tracing adds an OpenTelemetry span per query.
	Tracing bool `envconfig:"TRACING"`

	MaxOpenConns int32 `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MinConns     int32 `envconfig:"MIN_CONNS" default:"2"`
}
