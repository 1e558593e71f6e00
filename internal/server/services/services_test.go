package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/dbx"
	"github.com/souvenirshop/backend/internal/logging"
	"github.com/souvenirshop/backend/internal/server/models"
	imagesrepo "github.com/souvenirshop/backend/internal/server/repositories/images"
	souvenirsrepo "github.com/souvenirshop/backend/internal/server/repositories/souvenirs"
	usersrepo "github.com/souvenirshop/backend/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard)
}

// --- in-memory fakes ---

type fakeUsersRepo struct {
	byID   map[int64]*models.User
	nextID int64

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	// Ordered by id, like the real query.
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.byID[id]; ok && u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context, _ usersrepo.Filter) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (int64, error) {
	if _, ok := f.byID[u.ID]; !ok {
		return 0, nil
	}
	existing := f.byID[u.ID]
	existing.FirstName, existing.LastName, existing.Email = u.FirstName, u.LastName, u.Email
	return 1, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakeUsersRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(f.byID))
	f.byID = map[int64]*models.User{}
	return n, nil
}

type fakeSouvenirsRepo struct {
	byID   map[int64]*models.Souvenir
	nextID int64

	deleteErr error
	deleted   []int64
}

func newFakeSouvenirsRepo() *fakeSouvenirsRepo {
	return &fakeSouvenirsRepo{byID: map[int64]*models.Souvenir{}, nextID: 1}
}

func (f *fakeSouvenirsRepo) add(sv *models.Souvenir) *models.Souvenir {
	sv.ID = f.nextID
	f.nextID++
	f.byID[sv.ID] = sv
	return sv
}

func (f *fakeSouvenirsRepo) Create(ctx context.Context, sv *models.Souvenir) (*models.Souvenir, error) {
	return f.add(sv), nil
}

func (f *fakeSouvenirsRepo) GetByID(ctx context.Context, id int64) (*models.Souvenir, error) {
	if sv, ok := f.byID[id]; ok {
		return sv, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeSouvenirsRepo) GetByTitle(ctx context.Context, title string) (*models.Souvenir, error) {
	// Ordered by id, like the real query.
	for id := int64(1); id < f.nextID; id++ {
		if sv, ok := f.byID[id]; ok && sv.Title == title {
			return sv, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSouvenirsRepo) List(ctx context.Context, _ souvenirsrepo.Filter) ([]*models.Souvenir, error) {
	var out []*models.Souvenir
	for _, sv := range f.byID {
		out = append(out, sv)
	}
	return out, nil
}

func (f *fakeSouvenirsRepo) Update(ctx context.Context, sv *models.Souvenir) (int64, error) {
	if _, ok := f.byID[sv.ID]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeSouvenirsRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return 1, nil
}

type fakeImagesRepo struct {
	byID   map[int64]*models.Image
	nextID int64

	createErr    error
	deleteErrFor map[int64]error
	deleted      []int64
}

func newFakeImagesRepo() *fakeImagesRepo {
	return &fakeImagesRepo{byID: map[int64]*models.Image{}, nextID: 1, deleteErrFor: map[int64]error{}}
}

func (f *fakeImagesRepo) add(img *models.Image) *models.Image {
	img.ID = f.nextID
	f.nextID++
	f.byID[img.ID] = img
	return img
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Filename == img.Filename {
			return nil, &common.AlreadyExistsError{Field: "filename", Value: img.Filename}
		}
	}
	return f.add(img), nil
}

func (f *fakeImagesRepo) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	if img, ok := f.byID[id]; ok {
		return img, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeImagesRepo) GetByFilename(ctx context.Context, filename string) (*models.Image, error) {
	// Ordered by id, like the real query.
	for id := int64(1); id < f.nextID; id++ {
		if img, ok := f.byID[id]; ok && img.Filename == filename {
			return img, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeImagesRepo) List(ctx context.Context, _ imagesrepo.Filter) ([]*models.Image, error) {
	var out []*models.Image
	for _, img := range f.byID {
		out = append(out, img)
	}
	return out, nil
}

func (f *fakeImagesRepo) ListBySouvenir(ctx context.Context, souvenirID int64) ([]*models.Image, error) {
	var out []*models.Image
	// Ordered by id, like the real query.
	for id := int64(1); id < f.nextID; id++ {
		if img, ok := f.byID[id]; ok && img.SouvenirID == souvenirID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImagesRepo) Update(ctx context.Context, img *models.Image) (int64, error) {
	if _, ok := f.byID[img.ID]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeImagesRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if err, ok := f.deleteErrFor[id]; ok {
		return 0, err
	}
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return 1, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSouvenirsRepo
	i *fakeImagesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		s: newFakeSouvenirsRepo(),
		i: newFakeImagesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) Souvenirs(db dbx.DBTX) souvenirsrepo.Repository { return m.s }

func (m *fakeRepoManager) Images(db dbx.DBTX) imagesrepo.Repository { return m.i }

// --- in-memory blob store with failure injection ---

type fakeBlobStore struct {
	objects map[string][]byte

	writeErr     error
	deleteErrFor map[string]error
	deleted      []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, deleteErrFor: map[string]error{}}
}

func (f *fakeBlobStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	location := "mem://" + name
	f.objects[location] = data
	return location, nil
}

func (f *fakeBlobStore) Read(ctx context.Context, location string) ([]byte, error) {
	data, ok := f.objects[location]
	if !ok {
		return nil, fmt.Errorf("no object at %s", location)
	}
	return data, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, location string) error {
	if err, ok := f.deleteErrFor[location]; ok {
		return err
	}
	// Absent is OK.
	delete(f.objects, location)
	f.deleted = append(f.deleted, location)
	return nil
}
