package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/souvenirshop/backend/internal/blob"
	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/logging"
	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/images"
	"github.com/souvenirshop/backend/internal/server/repositories/repomanager"
)

// ImageService coordinates the two stores an image lives in: its metadata row
// in PostgreSQL and its payload behind blob.Store. Every multi-step operation
// orders its steps so that a failure leaves no silently inconsistent state.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	logger      logging.Logger
}

// NewImageService constructs an ImageService over the given stores.
func NewImageService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *ImageService {
	return &ImageService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("service", "images"),
	}
}

// StoredFilename derives the name an uploaded file is stored under: a unique
// prefix keeping the original extension, so concurrent uploads of files with
// the same client-side name never collide.
func StoredFilename(originalName string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New(), filepath.Ext(originalName))
}

// Create runs the image creation sequence: verify the parent souvenir exists
// and is active, check the filename is free, write the blob, then commit the
// row. If the row commit fails after the blob was written, the blob is
// deleted again; if that compensation also fails, both failures are surfaced
// together so the orphaned blob can be reconciled manually.
func (s *ImageService) Create(ctx context.Context, souvenirID int64, filename string, data []byte) (*models.Image, error) {
	// Cheapest failure point first: no blob has been written yet.
	parent, err := s.repomanager.Souvenirs(s.db).GetByID(ctx, souvenirID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrParentNotFound
		}
		return nil, fmt.Errorf("error checking souvenir: %w", err)
	}
	if !parent.Active {
		return nil, common.ErrParentNotFound
	}

	repo := s.repomanager.Images(s.db)

	if _, err := repo.GetByFilename(ctx, filename); err == nil {
		return nil, &common.AlreadyExistsError{Field: "filename", Value: filename}
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking filename: %w", err)
	}

	location, err := s.blobs.Write(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBlobWriteFailed, err)
	}

	img := &models.Image{Filename: filename, Filepath: location, SouvenirID: souvenirID}
	created, err := repo.Create(ctx, img)
	if err == nil {
		return created, nil
	}

	// Row commit failed with the blob already written: roll the blob back.
	// A lost uniqueness race or a vanished parent keeps its specific kind;
	// anything else is a row commit failure.
	primary := err
	if !errors.Is(err, common.ErrAlreadyExists) && !errors.Is(err, common.ErrParentNotFound) {
		primary = fmt.Errorf("%w: %v", common.ErrRowCommitFailed, err)
	}

	if delErr := s.blobs.Delete(ctx, location); delErr != nil {
		compErr := &common.CompensationError{
			Primary:      primary,
			Compensation: fmt.Errorf("%w: %v", common.ErrBlobDeleteFailed, delErr),
		}
		s.logger.Error(ctx, "orphaned blob left after failed row commit, manual reconciliation required",
			"location", location, "error", compErr.Error())
		return nil, compErr
	}

	return nil, primary
}

// Upload stores an uploaded payload under a generated filename.
func (s *ImageService) Upload(ctx context.Context, souvenirID int64, originalName string, data []byte) (*models.Image, error) {
	return s.Create(ctx, souvenirID, StoredFilename(originalName), data)
}

// Get returns the image with the given id.
func (s *ImageService) Get(ctx context.Context, id int64) (*models.Image, error) {
	return s.repomanager.Images(s.db).GetByID(ctx, id)
}

// List returns images matching the filter.
func (s *ImageService) List(ctx context.Context, f images.Filter) ([]*models.Image, error) {
	return s.repomanager.Images(s.db).List(ctx, f)
}

// ListBySouvenir returns the images owned by the given souvenir, failing with
// ErrParentNotFound when the souvenir itself is absent.
func (s *ImageService) ListBySouvenir(ctx context.Context, souvenirID int64) ([]*models.Image, error) {
	if _, err := s.repomanager.Souvenirs(s.db).GetByID(ctx, souvenirID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrParentNotFound
		}
		return nil, fmt.Errorf("error checking souvenir: %w", err)
	}
	return s.repomanager.Images(s.db).ListBySouvenir(ctx, souvenirID)
}

// Update changes image metadata. A filename change re-runs the uniqueness check.
func (s *ImageService) Update(ctx context.Context, img *models.Image) (int64, error) {
	repo := s.repomanager.Images(s.db)

	existing, err := repo.GetByFilename(ctx, img.Filename)
	if err == nil && existing.ID != img.ID {
		return 0, &common.AlreadyExistsError{Field: "filename", Value: img.Filename}
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return 0, fmt.Errorf("error checking filename: %w", err)
	}

	return repo.Update(ctx, img)
}

// Delete removes the blob first and the row second. An already-absent blob
// counts as deleted. When the blob deletion genuinely fails the row is kept,
// so the discrepancy stays visible and the delete can be retried.
func (s *ImageService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Images(s.db)

	img, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error loading image: %w", err)
	}

	if err := s.blobs.Delete(ctx, img.Filepath); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBlobDeleteFailed, err)
	}

	if _, err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRowDeleteFailed, err)
	}

	return nil
}

// DeleteAll removes every image, blob first and row second, one image at a
// time. Images whose blob cannot be deleted keep their rows; those are
// reported in a CascadeError and the call can be retried.
func (s *ImageService) DeleteAll(ctx context.Context) (int64, error) {
	repo := s.repomanager.Images(s.db)

	imgs, err := repo.List(ctx, images.Filter{})
	if err != nil {
		return 0, fmt.Errorf("error loading images: %w", err)
	}

	var deleted int64
	var failed []common.CascadeFailure
	for _, img := range imgs {
		if err := s.blobs.Delete(ctx, img.Filepath); err != nil {
			failed = append(failed, common.CascadeFailure{
				ImageID: img.ID,
				Err:     fmt.Errorf("%w: %v", common.ErrBlobDeleteFailed, err),
			})
			continue
		}
		if _, err := repo.Delete(ctx, img.ID); err != nil {
			return deleted, fmt.Errorf("%w: %v", common.ErrRowDeleteFailed, err)
		}
		deleted++
	}

	if len(failed) > 0 {
		cascadeErr := &common.CascadeError{Failed: failed}
		s.logger.Warn(ctx, "bulk image delete incomplete, retry after resolving blob failures",
			"error", cascadeErr.Error())
		return deleted, cascadeErr
	}

	return deleted, nil
}

// ReadBlob returns the stored bytes of the image with the given id.
func (s *ImageService) ReadBlob(ctx context.Context, id int64) ([]byte, error) {
	img, err := s.repomanager.Images(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.blobs.Read(ctx, img.Filepath)
}
