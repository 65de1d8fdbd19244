package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

type conflictRepository struct {
	*DB
	logger *logger.Logger
}

func NewConflictRepository(db *DB, logger *logger.Logger) ConflictRepository {
	return &conflictRepository{
		DB:     db,
		logger: logger,
	}
}

func (c *conflictRepository) SaveConflict(ctx context.Context, conflict models.Conflict) error {
	log := logger.FromContext(ctx)

	row, err := newConflictRow(conflict)
	if err != nil {
		return err
	}
	query, args, err := buildSaveConflict(row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = c.withRetry(ctx, func() error {
		_, execErr := c.DB.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.SaveConflict").
			Str("id", conflict.ID).
			Msg("failed to save conflict")
		return fmt.Errorf("%w: save conflict (id=%s): %w", ErrExecutingStatement, conflict.ID, err)
	}

	return nil
}

func (c *conflictRepository) DeleteConflict(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteConflict(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = c.withRetry(ctx, func() error {
		res, execErr := c.DB.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.DeleteConflict").
			Str("id", id).
			Msg("failed to delete conflict")
		return fmt.Errorf("%w: delete conflict (id=%s): %w", ErrExecutingStatement, id, err)
	}
	if affected == 0 {
		return ErrConflictNotFound
	}

	return nil
}

func (c *conflictRepository) ListConflicts(ctx context.Context) ([]models.Conflict, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListConflicts()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "conflictRepository.ListConflicts").
			Msg("failed to query conflicts")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	conflicts := make([]models.Conflict, 0)
	for rows.Next() {
		var row conflictRow
		if err = rows.Scan(
			&row.ID,
			&row.EntityKind,
			&row.EntityID,
			&row.Path,
			&row.Name,
			&row.LocalOperation,
			&row.LocalFields,
			&row.RemoteOperation,
			&row.RemoteFields,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		conflict, convErr := row.model()
		if convErr != nil {
			log.Warn().Err(convErr).Str("id", row.ID).Msg("skipping undecodable conflict")
			continue
		}
		conflicts = append(conflicts, conflict)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return conflicts, nil
}
