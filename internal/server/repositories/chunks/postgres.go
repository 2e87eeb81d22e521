// Package chunks implements persistence for chunk upload task records.
package chunks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fileporter/fileporter/internal/common"
	"github.com/fileporter/fileporter/internal/dbx"
	"github.com/fileporter/fileporter/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new task row. The unique constraint on identifier is
// the atomic guard against two concurrent initiations of the same content:
// the loser gets common.ErrTaskConflict, never a silent overwrite.
func (r *PostgresRepository) Create(ctx context.Context, task *models.ChunkTask) error {
	query := `
		INSERT INTO chunk_tasks (identifier, upload_id, file_name, bucket_name, object_key, total_size, chunk_size, chunk_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	err := r.db.QueryRowContext(ctx, query,
		task.Identifier, task.UploadID, task.FileName, task.BucketName,
		task.ObjectKey, task.TotalSize, task.ChunkSize, task.ChunkCount).Scan(&task.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrTaskConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByIdentifier returns the active task for the identifier, or
// common.ErrNotFound.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.ChunkTask, error) {
	query := `
		SELECT id, identifier, upload_id, file_name, bucket_name, object_key, total_size, chunk_size, chunk_count, created_at, updated_at
		FROM chunk_tasks WHERE identifier=$1;
	`
	result := &models.ChunkTask{}
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&result.ID, &result.Identifier, &result.UploadID, &result.FileName,
		&result.BucketName, &result.ObjectKey, &result.TotalSize,
		&result.ChunkSize, &result.ChunkCount, &result.CreatedAt, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return result, nil
}

// Delete removes the task row by id. Exactly one row must be affected;
// tasks are deleted exactly once, on successful merge.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM chunk_tasks WHERE id=$1;`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
