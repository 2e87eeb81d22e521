package chunks

import (
	"context"

	"github.com/fileporter/fileporter/internal/server/models"
)

// Repository persists in-flight chunk upload tasks, one row per active
// identifier.
type Repository interface {
	Create(ctx context.Context, task *models.ChunkTask) error
	GetByIdentifier(ctx context.Context, identifier string) (*models.ChunkTask, error)
	Delete(ctx context.Context, id int64) error
}
