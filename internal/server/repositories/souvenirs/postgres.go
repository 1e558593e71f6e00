// Package souvenirs provides the PostgreSQL-backed repository for souvenir rows.
package souvenirs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/dbx"
	"github.com/souvenirshop/backend/internal/server/models"
)

// PostgresRepository implements souvenir storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Souvenir) (*models.Souvenir, error) {
	query :=
		`INSERT INTO souvenir (category, sub_category, title, description, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.Category, nullIfEmpty(s.SubCategory), s.Title, s.Description, s.Active).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, &common.AlreadyExistsError{Field: "title", Value: s.Title}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Souvenir, error) {
	query :=
		`SELECT id, category, COALESCE(sub_category, ''), title, description, active, created_at, updated_at
		 FROM souvenir
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByTitle(ctx context.Context, title string) (*models.Souvenir, error) {
	query :=
		`SELECT id, category, COALESCE(sub_category, ''), title, description, active, created_at, updated_at
		 FROM souvenir
		 WHERE title = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, title))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Souvenir, error) {
	s := &models.Souvenir{}
	err := row.Scan(&s.ID, &s.Category, &s.SubCategory, &s.Title,
		&s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Souvenir, error) {
	query :=
		`SELECT id, category, COALESCE(sub_category, ''), title, description, active, created_at, updated_at
		 FROM souvenir
		 WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR category ILIKE '%' || $2 || '%')
		   AND ($3 = '' OR sub_category ILIKE '%' || $3 || '%')
		   AND ($4::boolean IS NULL OR active = $4)
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, f.Title, f.Category, f.SubCategory, f.Active)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Souvenir
	for rows.Next() {
		var s models.Souvenir
		if err := rows.Scan(
			&s.ID, &s.Category, &s.SubCategory, &s.Title,
			&s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes title, category and sub_category only, mirroring the public
// edit form. Description and active are managed by their own flows.
func (r *PostgresRepository) Update(ctx context.Context, s *models.Souvenir) (int64, error) {
	query :=
		`UPDATE souvenir SET title = $2, category = $3, sub_category = $4, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, s.ID, s.Title, s.Category, nullIfEmpty(s.SubCategory))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, &common.AlreadyExistsError{Field: "title", Value: s.Title}
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
	query := `DELETE FROM souvenir WHERE id = $1`

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

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
