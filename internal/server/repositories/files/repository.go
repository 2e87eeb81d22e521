package files

import (
	"context"

	"github.com/fileporter/fileporter/internal/server/models"
)

// Repository persists completed-file records keyed by content identifier.
type Repository interface {
	Create(ctx context.Context, file *models.File) error
	GetByIdentifier(ctx context.Context, identifier string) (*models.File, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, nameFilter string, page, pageSize int) ([]*models.File, error)
}
