// Package images provides the PostgreSQL-backed repository for image metadata
// rows. The image bytes themselves live behind blob.Store; this package only
// persists the location returned by it.
package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/dbx"
	"github.com/souvenirshop/backend/internal/server/models"
)

// PostgresRepository implements image storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO image (filename, filepath, souvenir_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, img.Filename, img.Filepath, img.SouvenirID).
		Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, &common.AlreadyExistsError{Field: "filename", Value: img.Filename}
		}
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrParentNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	query :=
		`SELECT id, filename, filepath, souvenir_id, created_at, updated_at FROM image
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByFilename matches the filename exactly and case-sensitively, the same
// way the unique index treats it.
func (r *PostgresRepository) GetByFilename(ctx context.Context, filename string) (*models.Image, error) {
	query :=
		`SELECT id, filename, filepath, souvenir_id, created_at, updated_at FROM image
		 WHERE filename = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, filename))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Image, error) {
	img := &models.Image{}
	err := row.Scan(&img.ID, &img.Filename, &img.Filepath, &img.SouvenirID,
		&img.CreatedAt, &img.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return img, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Image, error) {
	query :=
		`SELECT id, filename, filepath, souvenir_id, created_at, updated_at FROM image
		 WHERE ($1 = '' OR filename ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR filepath ILIKE '%' || $2 || '%')
		 ORDER BY id
		 `
	return r.scanMany(ctx, query, f.Filename, f.Filepath)
}

func (r *PostgresRepository) ListBySouvenir(ctx context.Context, souvenirID int64) ([]*models.Image, error) {
	query :=
		`SELECT id, filename, filepath, souvenir_id, created_at, updated_at FROM image
		 WHERE souvenir_id = $1
		 ORDER BY id
		 `
	return r.scanMany(ctx, query, souvenirID)
}

func (r *PostgresRepository) scanMany(ctx context.Context, query string, args ...any) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(
			&img.ID, &img.Filename, &img.Filepath, &img.SouvenirID,
			&img.CreatedAt, &img.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, img *models.Image) (int64, error) {
	query :=
		`UPDATE image SET filename = $2, filepath = $3, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, img.ID, img.Filename, img.Filepath)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, &common.AlreadyExistsError{Field: "filename", Value: img.Filename}
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM image WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
