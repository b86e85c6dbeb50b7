package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/dbx"
	"github.com/deepdrunktalk/backend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetRandom(ctx context.Context) (*models.Question, error) {
	query :=
		`SELECT id, topic_id, text FROM questions
		 ORDER BY random()
		 LIMIT 1
		 `

	return r.scanQuestion(r.db.QueryRowContext(ctx, query))
}

func (r *PostgresRepository) GetRandomExcluding(ctx context.Context, excludeID int64) (*models.Question, error) {
	query :=
		`SELECT id, topic_id, text FROM questions
		 WHERE id <> $1
		 ORDER BY random()
		 LIMIT 1
		 `

	return r.scanQuestion(r.db.QueryRowContext(ctx, query, excludeID))
}

func (r *PostgresRepository) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	query := `SELECT id, topic_id, text FROM questions WHERE id = $1`

	return r.scanQuestion(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	query := `SELECT id, category_id, name FROM topics WHERE id = $1`

	topic := &models.Topic{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&topic.ID, &topic.CategoryID, &topic.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return topic, nil
}

func (r *PostgresRepository) scanQuestion(row *sql.Row) (*models.Question, error) {
	q := &models.Question{}
	err := row.Scan(&q.ID, &q.TopicID, &q.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return q, nil
}
