package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/migrations"
)

// retryAttempts bounds how many times a call classified as [Retryable] runs.
const retryAttempts = 3

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// retryAttempts is reached. Waits grow linearly between attempts.
func (db *DB) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}
		if attempt == retryAttempts {
			break
		}

		db.logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying database call")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return err
}
