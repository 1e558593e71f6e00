package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/souvenirshop/backend/internal/blob"
	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/dbx"
	"github.com/souvenirshop/backend/internal/logging"
	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/repomanager"
	"github.com/souvenirshop/backend/internal/server/repositories/souvenirs"
)

// SouvenirService handles souvenir CRUD. Deleting a souvenir cascades to
// every owned image, blob and row, as one logical unit.
type SouvenirService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	logger      logging.Logger
}

// NewSouvenirService constructs a SouvenirService over the given stores.
func NewSouvenirService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *SouvenirService {
	return &SouvenirService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("service", "souvenirs"),
	}
}

// Create adds a souvenir after checking the title is free. The unique index
// on title backs the check up against concurrent writers.
func (s *SouvenirService) Create(ctx context.Context, sv *models.Souvenir) (*models.Souvenir, error) {
	if sv.Category == "" || sv.Title == "" || sv.Description == "" {
		return nil, fmt.Errorf("%w: category, title and description can not be empty", common.ErrValidation)
	}

	repo := s.repomanager.Souvenirs(s.db)

	if _, err := repo.GetByTitle(ctx, sv.Title); err == nil {
		return nil, &common.AlreadyExistsError{Field: "title", Value: sv.Title}
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking title: %w", err)
	}

	sv.Active = true
	created, err := repo.Create(ctx, sv)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating souvenir: %w", err)
	}
	return created, nil
}

// Get returns the souvenir with its owned images populated.
func (s *SouvenirService) Get(ctx context.Context, id int64) (*models.Souvenir, error) {
	sv, err := s.repomanager.Souvenirs(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	imgs, err := s.repomanager.Images(s.db).ListBySouvenir(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading images: %w", err)
	}
	sv.Images = imgs
	return sv, nil
}

// List returns souvenirs matching the filter, each with its images populated.
func (s *SouvenirService) List(ctx context.Context, f souvenirs.Filter) ([]*models.Souvenir, error) {
	list, err := s.repomanager.Souvenirs(s.db).List(ctx, f)
	if err != nil {
		return nil, err
	}
	imgRepo := s.repomanager.Images(s.db)
	for _, sv := range list {
		imgs, err := imgRepo.ListBySouvenir(ctx, sv.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading images: %w", err)
		}
		sv.Images = imgs
	}
	return list, nil
}

// Update changes title, category and sub_category. A title change re-runs the
// uniqueness check.
func (s *SouvenirService) Update(ctx context.Context, sv *models.Souvenir) (int64, error) {
	if sv.Title == "" || sv.Category == "" {
		return 0, fmt.Errorf("%w: category and title can not be empty", common.ErrValidation)
	}

	repo := s.repomanager.Souvenirs(s.db)

	existing, err := repo.GetByTitle(ctx, sv.Title)
	if err == nil && existing.ID != sv.ID {
		return 0, &common.AlreadyExistsError{Field: "title", Value: sv.Title}
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return 0, fmt.Errorf("error checking title: %w", err)
	}

	return repo.Update(ctx, sv)
}

// Delete removes a souvenir and every image it owns.
//
// Blob deletions run first, serialized, outside any transaction: the
// filesystem cannot participate in a relational rollback, so a blob removed
// here stays removed even if a later step fails. The row deletions, image
// rows plus the souvenir row, then happen in a single database transaction.
//
// When a blob deletion fails, that image's row is kept so the discrepancy
// stays visible, the souvenir row is kept so the cascade can be retried, and
// the rows of images whose blobs are already gone are still deleted so no
// row points at a missing blob. The failed image ids are reported in a
// CascadeError; the per-image delete is idempotent, so retrying is safe.
func (s *SouvenirService) Delete(ctx context.Context, id int64) error {
	souvRepo := s.repomanager.Souvenirs(s.db)

	if _, err := souvRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error loading souvenir: %w", err)
	}

	imgs, err := s.repomanager.Images(s.db).ListBySouvenir(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading images: %w", err)
	}

	var deletable []*models.Image
	var failed []common.CascadeFailure
	for _, img := range imgs {
		if err := s.blobs.Delete(ctx, img.Filepath); err != nil {
			failed = append(failed, common.CascadeFailure{
				ImageID: img.ID,
				Err:     fmt.Errorf("%w: %v", common.ErrBlobDeleteFailed, err),
			})
			continue
		}
		deletable = append(deletable, img)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		imgRepoTx := s.repomanager.Images(tx)
		for _, img := range deletable {
			if _, err := imgRepoTx.Delete(ctx, img.ID); err != nil {
				return err
			}
		}
		if len(failed) == 0 {
			if _, err := s.repomanager.Souvenirs(tx).Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The blobs of deletable images are already gone and cannot be
		// restored; the error names the rows left behind.
		return fmt.Errorf("%w: %v", common.ErrRowDeleteFailed, err)
	}

	if len(failed) > 0 {
		cascadeErr := &common.CascadeError{Failed: failed}
		s.logger.Warn(ctx, "souvenir cascade incomplete, retry after resolving blob failures",
			"souvenir_id", id, "error", cascadeErr.Error())
		return cascadeErr
	}

	return nil
}

// DeleteAll runs the cascading delete for every souvenir in the catalog, so
// no image blob is orphaned the way a bare bulk row delete would. Cascade
// failures are merged across souvenirs into one CascadeError; the count of
// fully deleted souvenirs is returned either way.
func (s *SouvenirService) DeleteAll(ctx context.Context) (int64, error) {
	list, err := s.repomanager.Souvenirs(s.db).List(ctx, souvenirs.Filter{})
	if err != nil {
		return 0, fmt.Errorf("error loading souvenirs: %w", err)
	}

	var deleted int64
	var failed []common.CascadeFailure
	for _, sv := range list {
		err := s.Delete(ctx, sv.ID)
		if err == nil {
			deleted++
			continue
		}
		var cascadeErr *common.CascadeError
		if errors.As(err, &cascadeErr) {
			failed = append(failed, cascadeErr.Failed...)
			continue
		}
		return deleted, err
	}

	if len(failed) > 0 {
		return deleted, &common.CascadeError{Failed: failed}
	}

	return deleted, nil
}

// ListImages returns the images owned by the souvenir.
func (s *SouvenirService) ListImages(ctx context.Context, id int64) ([]*models.Image, error) {
	if _, err := s.repomanager.Souvenirs(s.db).GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repomanager.Images(s.db).ListBySouvenir(ctx, id)
}
