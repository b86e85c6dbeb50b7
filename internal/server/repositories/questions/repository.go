package questions

import (
	"context"

	"github.com/deepdrunktalk/backend/internal/server/models"
)

// Repository reads the static question/topic catalog. The catalog is
// reference data; nothing here mutates it.
type Repository interface {
	// GetRandom draws one question uniformly at random from the catalog.
	// common.ErrNotFound when the catalog is empty.
	GetRandom(ctx context.Context) (*models.Question, error)
	// GetRandomExcluding draws a random question whose id differs from
	// excludeID. common.ErrNotFound when no such question exists.
	GetRandomExcluding(ctx context.Context, excludeID int64) (*models.Question, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	GetTopic(ctx context.Context, id int64) (*models.Topic, error)
}
