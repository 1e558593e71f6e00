// Package services contains the server-side business logic: the credential
// gateway (UserService), souvenir CRUD with cascading delete
// (SouvenirService), and the dual-store image lifecycle (ImageService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/souvenirshop/backend/internal/common"
	"github.com/souvenirshop/backend/internal/logging"
	"github.com/souvenirshop/backend/internal/server/auth"
	"github.com/souvenirshop/backend/internal/server/config"
	"github.com/souvenirshop/backend/internal/server/models"
	"github.com/souvenirshop/backend/internal/server/repositories/repomanager"
	"github.com/souvenirshop/backend/internal/server/repositories/users"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService handles registration, profile CRUD, and the login flow that
// exchanges credentials for a signed token.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		logger:        logger.With("service", "users"),
	}
}

// Register validates the profile fields, checks the email is not taken, and
// creates the user with a bcrypt-hashed password. The email check is
// check-then-act; the unique index converts a concurrent duplicate into the
// same AlreadyExists outcome.
func (s *UserService) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: firstname, lastname, email and password can not be empty", common.ErrValidation)
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: email is invalid", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, &common.AlreadyExistsError{Field: "email", Value: email}
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
	}
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login looks the account up by email and verifies the password against the
// stored bcrypt hash. A missing account and a wrong password are distinct
// outcomes internally even though the HTTP layer renders them the same.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrAccountNotFound
		}
		return "", nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, user, nil
}

// VerifyToken checks a presented token and returns the bound user id.
func (s *UserService) VerifyToken(tokenString string) (int64, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, f users.Filter) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx, f)
}

// Update changes first name, last name and email. When the email changes, the
// new value must not belong to another user.
func (s *UserService) Update(ctx context.Context, user *models.User) (int64, error) {
	if user.FirstName == "" || user.LastName == "" || user.Email == "" {
		return 0, fmt.Errorf("%w: firstname, lastname and email can not be empty", common.ErrValidation)
	}
	if !emailRe.MatchString(user.Email) {
		return 0, fmt.Errorf("%w: email is invalid", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByEmail(ctx, user.Email)
	if err == nil && existing.ID != user.ID {
		return 0, &common.AlreadyExistsError{Field: "email", Value: user.Email}
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return 0, fmt.Errorf("error checking email: %w", err)
	}

	return repo.Update(ctx, user)
}

// Delete removes the user row. Users own nothing in this catalog, so there is
// no cascade.
func (s *UserService) Delete(ctx context.Context, id int64) (int64, error) {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

// DeleteAll removes every user row and returns how many were deleted.
func (s *UserService) DeleteAll(ctx context.Context) (int64, error) {
	return s.repomanager.Users(s.db).DeleteAll(ctx)
}
