package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

type pendingOperationRepository struct {
	*DB
	logger *logger.Logger
}

func NewPendingOperationRepository(db *DB, logger *logger.Logger) PendingOperationRepository {
	return &pendingOperationRepository{
		DB:     db,
		logger: logger,
	}
}

// SavePendingOperation inserts op or replaces the operation already queued
// for the same entity.
func (p *pendingOperationRepository) SavePendingOperation(ctx context.Context, op models.PendingOperation) error {
	log := logger.FromContext(ctx)

	row, err := newPendingOperationRow(op)
	if err != nil {
		return err
	}
	query, args, err := buildSavePendingOperation(row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = p.withRetry(ctx, func() error {
		_, execErr := p.DB.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.SavePendingOperation").
			Str("id", op.ID).
			Str("entity", op.Mutation.Key().String()).
			Msg("failed to upsert pending operation")
		return fmt.Errorf("%w: save pending operation (id=%s): %w", ErrExecutingStatement, op.ID, err)
	}

	return nil
}

func (p *pendingOperationRepository) DeletePendingOperation(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeletePendingOperation(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = p.withRetry(ctx, func() error {
		res, execErr := p.DB.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.DeletePendingOperation").
			Str("id", id).
			Msg("failed to delete pending operation")
		return fmt.Errorf("%w: delete pending operation (id=%s): %w", ErrExecutingStatement, id, err)
	}
	if affected == 0 {
		return ErrPendingOperationNotFound
	}

	return nil
}

func (p *pendingOperationRepository) ListPendingOperations(ctx context.Context) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPendingOperations()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.ListPendingOperations").
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.PendingOperation, 0)
	for rows.Next() {
		var row pendingOperationRow
		if err = rows.Scan(
			&row.ID,
			&row.EntityKind,
			&row.EntityID,
			&row.Operation,
			&row.Path,
			&row.Fields,
			&row.RetryCount,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		op, convErr := row.model()
		if convErr != nil {
			log.Warn().Err(convErr).Str("id", row.ID).Msg("skipping undecodable pending operation")
			continue
		}
		ops = append(ops, op)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ops, nil
}
