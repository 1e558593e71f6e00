package users

import (
	"context"

	"github.com/souvenirshop/backend/internal/server/models"
)

// Filter narrows List results. Name fields match as case-insensitive
// substrings; ActiveOnly keeps only active users.
type Filter struct {
	FirstName  string
	LastName   string
	ActiveOnly bool
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f Filter) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
