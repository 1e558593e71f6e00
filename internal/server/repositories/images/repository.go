package images

import (
	"context"

	"github.com/souvenirshop/backend/internal/server/models"
)

// Filter narrows List results; both fields match as case-insensitive substrings.
type Filter struct {
	Filename string
	Filepath string
}

type Repository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	GetByID(ctx context.Context, id int64) (*models.Image, error)
	GetByFilename(ctx context.Context, filename string) (*models.Image, error)
	List(ctx context.Context, f Filter) ([]*models.Image, error)
	ListBySouvenir(ctx context.Context, souvenirID int64) ([]*models.Image, error)
	Update(ctx context.Context, img *models.Image) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
