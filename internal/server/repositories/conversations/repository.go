package conversations

import (
	"context"
	"time"

	"github.com/deepdrunktalk/backend/internal/server/models"
)

// Repository is the single conversations interface with the superset of
// operations the lifecycle, query, and audio services need.
type Repository interface {
	Create(ctx context.Context, c *models.Conversation) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	// GetOpen returns the user's conversation with a NULL end time, or
	// common.ErrNotFound when the user has no open conversation.
	GetOpen(ctx context.Context, userID int64) (*models.Conversation, error)
	// GetLastClosed returns the most recently ended conversation, used to
	// seed question non-repetition. common.ErrNotFound when none exist.
	GetLastClosed(ctx context.Context, userID int64) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error)
	SetEndTime(ctx context.Context, id int64, endTime time.Time) error
	SetAudioPath(ctx context.Context, id int64, audioURL string) error
	// Delete removes the conversation only when it is owned by userID and
	// reports whether a row was deleted.
	Delete(ctx context.Context, id, userID int64) (bool, error)
}
