package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a shutdown hook that closes the pool.
// Hooks run before a registered mail queue stops, so a pool shared with
// the queue should be closed after Run returns instead.
//
// Example:
//
//	app.Run(":8080", mailkit.ShutdownHook(db.Shutdown(pool)))
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
