package users

import (
	"context"

	"github.com/deepdrunktalk/backend/internal/server/models"
)

// Repository is the single users interface: the superset of operations the
// services need for registration, login, and settings.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateSettings(ctx context.Context, id int64, volumeLevel, refreshFrequency int) error
}
