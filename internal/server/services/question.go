package services

import (
	"context"
	"errors"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/deepdrunktalk/backend/internal/server/repositories/questions"
)

// nextQuestion draws a random question from the catalog, avoiding an
// immediate repeat of excludeQuestionID (pass 0 for no exclusion).
//
// The exclusion happens in SQL, so the draw always terminates: when the
// catalog holds only the excluded question, the filtered draw comes back
// empty and we fall back to an unfiltered one, degrading to a repeat rather
// than failing. An empty catalog yields ErrNoQuestions.
func nextQuestion(ctx context.Context, repo questions.Repository, excludeQuestionID int64) (*models.Question, error) {
	if excludeQuestionID > 0 {
		q, err := repo.GetRandomExcluding(ctx, excludeQuestionID)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		// Only the excluded question remains; fall through.
	}

	q, err := repo.GetRandom(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNoQuestions
		}
		return nil, err
	}

	return q, nil
}
