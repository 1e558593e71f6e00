package souvenirs

import (
	"context"

	"github.com/souvenirshop/backend/internal/server/models"
)

// Filter narrows List results. Text fields match as case-insensitive
// substrings; Active, when non-nil, filters on the active flag.
type Filter struct {
	Title       string
	Category    string
	SubCategory string
	Active      *bool
}

type Repository interface {
	Create(ctx context.Context, s *models.Souvenir) (*models.Souvenir, error)
	GetByID(ctx context.Context, id int64) (*models.Souvenir, error)
	GetByTitle(ctx context.Context, title string) (*models.Souvenir, error)
	List(ctx context.Context, f Filter) ([]*models.Souvenir, error)
	Update(ctx context.Context, s *models.Souvenir) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
