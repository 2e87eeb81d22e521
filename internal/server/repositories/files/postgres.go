// Package files implements persistence for completed-file records.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fileporter/fileporter/internal/common"
	"github.com/fileporter/fileporter/internal/dbx"
	"github.com/fileporter/fileporter/internal/server/models"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a completed-file record.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (file_name, file_suffix, file_size, object_key, identifier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	if err := r.db.QueryRowContext(ctx, query,
		file.FileName, file.FileSuffix, file.FileSize, file.ObjectKey, file.Identifier).Scan(&file.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByIdentifier returns the live (not soft-deleted) file for the content
// identifier, or common.ErrNotFound.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.File, error) {
	query := `
		SELECT id, file_name, file_suffix, file_size, object_key, identifier, created_at, updated_at
		FROM files WHERE identifier=$1 AND NOT is_deleted;
	`
	result := &models.File{}
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&result.ID, &result.FileName, &result.FileSuffix, &result.FileSize,
		&result.ObjectKey, &result.Identifier, &result.CreatedAt, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// Delete soft-deletes the file row by id. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE files SET is_deleted = TRUE, updated_at = now() WHERE id=$1 AND NOT is_deleted;`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
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

// List returns live files whose name contains nameFilter (case-sensitive
// substring; an empty filter matches everything), newest first, paged.
// Page numbers are 1-based.
func (r *PostgresRepository) List(ctx context.Context, nameFilter string, page, pageSize int) ([]*models.File, error) {
	if page < 1 {
		page = 1
	}
	query := `
		SELECT id, file_name, file_suffix, file_size, object_key, identifier, created_at, updated_at
		FROM files
		WHERE NOT is_deleted AND ($1 = '' OR file_name LIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.QueryContext(ctx, query, nameFilter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.FileName, &item.FileSuffix, &item.FileSize,
			&item.ObjectKey, &item.Identifier, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
