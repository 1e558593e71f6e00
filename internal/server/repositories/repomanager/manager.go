package repomanager

import (
	"context"
	"database/sql"

	"github.com/souvenirshop/backend/internal/dbx"
	"github.com/souvenirshop/backend/internal/server/repositories/images"
	"github.com/souvenirshop/backend/internal/server/repositories/souvenirs"
	"github.com/souvenirshop/backend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// repository code runs against both the pool and an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Souvenirs(db dbx.DBTX) souvenirs.Repository
	Images(db dbx.DBTX) images.Repository
}
