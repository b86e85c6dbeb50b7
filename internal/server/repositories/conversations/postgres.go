package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/dbx"
	"github.com/deepdrunktalk/backend/internal/server/models"
)

const conversationColumns = `id, user_id, topic_id, question_id, start_time, end_time, audio_file_path, analysis`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Conversation) (int64, error) {

	query :=
		`INSERT INTO conversations (user_id, topic_id, question_id, start_time, end_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		c.UserID, c.TopicID, c.QuestionID, c.StartTime, c.EndTime).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetOpen(ctx context.Context, userID int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		 WHERE user_id = $1 AND end_time IS NULL
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) GetLastClosed(ctx context.Context, userID int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		 WHERE user_id = $1 AND end_time IS NOT NULL
		 ORDER BY end_time DESC
		 LIMIT 1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		 WHERE user_id = $1
		 ORDER BY start_time DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		c := &models.Conversation{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.TopicID, &c.QuestionID,
			&c.StartTime, &c.EndTime, &c.AudioFilePath, &c.Analysis); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetEndTime(ctx context.Context, id int64, endTime time.Time) error {
	query :=
		`UPDATE conversations SET end_time = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, endTime)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) SetAudioPath(ctx context.Context, id int64, audioURL string) error {
	query :=
		`UPDATE conversations SET audio_file_path = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, audioURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	// Ownership is part of the predicate, so deleting another user's
	// conversation is indistinguishable from deleting a missing one.
	query := `DELETE FROM conversations WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected > 0, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := row.Scan(&c.ID, &c.UserID, &c.TopicID, &c.QuestionID,
		&c.StartTime, &c.EndTime, &c.AudioFilePath, &c.Analysis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
