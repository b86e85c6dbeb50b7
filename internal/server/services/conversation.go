package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/dbx"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/deepdrunktalk/backend/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	summaryTimeFormat = "2006-01-02 15:04"

	placeholderTopic    = "Untitled Topic"
	placeholderQuestion = "No question available."
	placeholderAudio    = "No audio available"
)

// uniqueViolation is the PostgreSQL error code raised when the partial
// unique index on open conversations rejects a second insert.
const uniqueViolation = "23505"

// StartResult is returned by Start: the new conversation id and the text of
// the question bound to it.
type StartResult struct {
	ConversationID int64
	Question       string
}

// ConversationService owns the session state machine. A user has at most one
// open conversation; Start runs its check-then-insert inside a transaction
// and the partial unique index backs it against concurrent starts.
type ConversationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewConversationService(db *sql.DB, m repomanager.RepositoryManager) *ConversationService {
	return &ConversationService{db: db, repomanager: m}
}

// Start opens a new conversation for the user and binds a freshly drawn
// question to it. The question avoids repeating the one from the user's most
// recently closed conversation. ErrConversationActive when a session is
// already open.
func (s *ConversationService) Start(ctx context.Context, userID int64) (*StartResult, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var result *StartResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		convRepo := s.repomanager.Conversations(tx)

		if _, err := convRepo.GetOpen(ctx, userID); err == nil {
			return common.ErrConversationActive
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("checking open conversation: %w", err)
		}

		// Seed non-repetition with the immediately preceding closed
		// conversation; deeper history is deliberately ignored.
		var excludeQuestionID int64
		last, err := convRepo.GetLastClosed(ctx, userID)
		if err == nil {
			excludeQuestionID = last.QuestionID
		} else if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("looking up last conversation: %w", err)
		}

		question, err := nextQuestion(ctx, s.repomanager.Questions(tx), excludeQuestionID)
		if err != nil {
			return err
		}

		id, err := convRepo.Create(ctx, &models.Conversation{
			UserID:     userID,
			TopicID:    question.TopicID,
			QuestionID: question.ID,
			StartTime:  time.Now().UTC(),
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return common.ErrConversationActive
			}
			return fmt.Errorf("creating conversation: %w", err)
		}

		result = &StartResult{ConversationID: id, Question: question.Text}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Stop closes the user's open conversation, but only when its id matches
// conversationID. Returns false (not an error) when the user has no open
// conversation or the id points elsewhere.
func (s *ConversationService) Stop(ctx context.Context, userID, conversationID int64) (bool, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return false, err
	}

	convRepo := s.repomanager.Conversations(s.db)

	open, err := convRepo.GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up open conversation: %w", err)
	}

	if open.ID != conversationID {
		return false, nil
	}

	if err := convRepo.SetEndTime(ctx, open.ID, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("closing conversation: %w", err)
	}

	return true, nil
}

// List assembles display-ready summaries for all of the user's
// conversations. Missing catalog rows and missing audio degrade to
// placeholders instead of failing the whole listing.
func (s *ConversationService) List(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	convRepo := s.repomanager.Conversations(s.db)
	questionRepo := s.repomanager.Questions(s.db)

	conversations, err := convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summary := models.ConversationSummary{
			ID:        c.ID,
			Topic:     placeholderTopic,
			Question:  placeholderQuestion,
			StartTime: c.StartTime.Format(summaryTimeFormat),
			Audio:     placeholderAudio,
		}

		if topic, err := questionRepo.GetTopic(ctx, c.TopicID); err == nil {
			summary.Topic = topic.Name
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("loading topic: %w", err)
		}

		if question, err := questionRepo.GetQuestion(ctx, c.QuestionID); err == nil {
			summary.Question = question.Text
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("loading question: %w", err)
		}

		if c.EndTime.Valid {
			summary.EndTime = c.EndTime.Time.Format(summaryTimeFormat)
		}
		if c.AudioFilePath.Valid && c.AudioFilePath.String != "" {
			summary.Audio = c.AudioFilePath.String
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Delete removes the conversation when it belongs to the user. Absent and
// foreign conversations both return false; callers must not be able to tell
// them apart.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID int64) (bool, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return false, err
	}

	deleted, err := s.repomanager.Conversations(s.db).Delete(ctx, conversationID, userID)
	if err != nil {
		return false, fmt.Errorf("deleting conversation: %w", err)
	}

	return deleted, nil
}
