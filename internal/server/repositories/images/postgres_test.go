package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func imageColumns() []string {
	return []string{"id", "filename", "filepath", "souvenir_id", "created_at", "updated_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now)
	mock.ExpectQuery(`INSERT\s+INTO\s+image`).
		WithArgs("x.png", "uploads/x.png", int64(3)).
		WillReturnRows(rows)

	img := &models.Image{Filename: "x.png", Filepath: "uploads/x.png", SouvenirID: 3}
	got, err := repo.Create(context.Background(), img)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 10 {
		t.Fatalf("unexpected image: %+v", got)
	}
}

func TestCreate_FilenameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+image`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Image{Filename: "x.png"})
	var exists *common.AlreadyExistsError
	if !errors.As(err, &exists) || exists.Field != "filename" || exists.Value != "x.png" {
		t.Fatalf("want AlreadyExistsError for filename, got %v", err)
	}
}

func TestCreate_MissingParent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+image`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &models.Image{Filename: "x.png", SouvenirID: 999})
	if !errors.Is(err, common.ErrParentNotFound) {
		t.Fatalf("want ErrParentNotFound, got %v", err)
	}
}

func TestGetByFilename_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(imageColumns()).
		AddRow(int64(10), "x.png", "uploads/x.png", int64(3), now, now)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+image\s+WHERE\s+filename\s*=\s*\$1`).
		WithArgs("x.png").
		WillReturnRows(rows)

	got, err := repo.GetByFilename(context.Background(), "x.png")
	if err != nil {
		t.Fatalf("GetByFilename error: %v", err)
	}
	if got.ID != 10 || got.SouvenirID != 3 {
		t.Fatalf("unexpected image: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+image\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListBySouvenir(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(imageColumns()).
		AddRow(int64(10), "x.png", "uploads/x.png", int64(3), now, now).
		AddRow(int64(11), "y.png", "uploads/y.png", int64(3), now, now)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+image\s+WHERE\s+souvenir_id\s*=\s*\$1`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	got, err := repo.ListBySouvenir(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListBySouvenir error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 images, got %d", len(got))
	}
}

func TestList_Filters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(imageColumns()).
		AddRow(int64(10), "x.png", "uploads/x.png", int64(3), now, now)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+image`).
		WithArgs("x", "").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), Filter{Filename: "x"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 image, got %d", len(got))
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+image\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), 10)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}
}

func TestUpdate_FilenameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+image\s+SET`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Update(context.Background(), &models.Image{ID: 10, Filename: "taken.png"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}
