// Package services contains the server-side business logic: account
// registration and login, user settings, the conversation lifecycle, question
// selection, and audio artifact handling.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/cryptox"
	"github.com/deepdrunktalk/backend/internal/server/auth"
	"github.com/deepdrunktalk/backend/internal/server/config"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/deepdrunktalk/backend/internal/server/repositories/repomanager"
)

// Default settings applied to new accounts.
const (
	defaultVolumeLevel      = 50
	defaultRefreshFrequency = 5
)

// UserService handles registration, login, and user settings. A successful
// registration or login yields a signed session token.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Register creates a new user and returns a session token. Validation
// failures surface as the common sentinels: ErrMissingFields, ErrUserExists,
// ErrPasswordMismatch.
func (s *UserService) Register(ctx context.Context, name, email, password, confirmPassword string) (string, error) {
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return "", common.ErrMissingFields
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return "", common.ErrUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return "", fmt.Errorf("checking existing user: %w", err)
	}

	if password != confirmPassword {
		return "", common.ErrPasswordMismatch
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		VolumeLevel:      defaultVolumeLevel,
		RefreshFrequency: defaultRefreshFrequency,
	}
	user, err = repo.Create(ctx, user)
	if err != nil {
		return "", fmt.Errorf("creating user: %w", err)
	}

	return auth.IssueToken(user.ID, user.Name, s.jwtSecret, s.tokenValidity)
}

// Login verifies the credentials and returns a session token. Unknown email
// and wrong password are indistinguishable: both yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", common.ErrMissingFields
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	return auth.IssueToken(user.ID, user.Name, s.jwtSecret, s.tokenValidity)
}

// Settings returns the user's tunable settings.
func (s *UserService) Settings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserSettings{
		VolumeLevel:      user.VolumeLevel,
		RefreshFrequency: user.RefreshFrequency,
	}, nil
}

// UpdateSettings stores new values for the user's tunable settings.
func (s *UserService) UpdateSettings(ctx context.Context, userID int64, volumeLevel, refreshFrequency int) error {
	return s.repomanager.Users(s.db).UpdateSettings(ctx, userID, volumeLevel, refreshFrequency)
}
