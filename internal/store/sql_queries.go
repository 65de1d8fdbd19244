// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	pendingOperationsTable = "pending_operations"
	conflictsTable         = "conflicts"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var pendingOperationColumns = []string{
	"id",
	"entity_kind",
	"entity_id",
	"operation",
	"path",
	"fields",
	"retry_count",
	"created_at",
}

var conflictColumns = []string{
	"id",
	"entity_kind",
	"entity_id",
	"path",
	"name",
	"local_operation",
	"local_fields",
	"remote_operation",
	"remote_fields",
	"created_at",
}

// upsertPendingOperationSuffix replaces the queued operation of the same
// entity in place.
const upsertPendingOperationSuffix = `ON CONFLICT (entity_kind, entity_id) DO UPDATE SET
		id          = excluded.id,
		operation   = excluded.operation,
		path        = excluded.path,
		fields      = excluded.fields,
		retry_count = excluded.retry_count,
		created_at  = excluded.created_at`

const upsertConflictSuffix = `ON CONFLICT (id) DO UPDATE SET
		name             = excluded.name,
		local_operation  = excluded.local_operation,
		local_fields     = excluded.local_fields,
		remote_operation = excluded.remote_operation,
		remote_fields    = excluded.remote_fields`

func buildSavePendingOperation(row pendingOperationRow) (string, []any, error) {
	return psql.Insert(pendingOperationsTable).
		Columns(pendingOperationColumns...).
		Values(row.ID, row.EntityKind, row.EntityID, row.Operation, row.Path, row.Fields, row.RetryCount, row.CreatedAt).
		Suffix(upsertPendingOperationSuffix).
		ToSql()
}

func buildDeletePendingOperation(id string) (string, []any, error) {
	return psql.Delete(pendingOperationsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildListPendingOperations() (string, []any, error) {
	return psql.Select(pendingOperationColumns...).
		From(pendingOperationsTable).
		OrderBy("created_at", "id").
		ToSql()
}

func buildSaveConflict(row conflictRow) (string, []any, error) {
	return psql.Insert(conflictsTable).
		Columns(conflictColumns...).
		Values(row.ID, row.EntityKind, row.EntityID, row.Path, row.Name,
			row.LocalOperation, row.LocalFields, row.RemoteOperation, row.RemoteFields, row.CreatedAt).
		Suffix(upsertConflictSuffix).
		ToSql()
}

func buildDeleteConflict(id string) (string, []any, error) {
	return psql.Delete(conflictsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildListConflicts() (string, []any, error) {
	return psql.Select(conflictColumns...).
		From(conflictsTable).
		OrderBy("created_at", "id").
		ToSql()
}
