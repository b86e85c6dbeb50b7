package repomanager

import (
	"context"
	"database/sql"

	"github.com/deepdrunktalk/backend/internal/dbx"
	"github.com/deepdrunktalk/backend/internal/server/repositories/conversations"
	"github.com/deepdrunktalk/backend/internal/server/repositories/questions"
	"github.com/deepdrunktalk/backend/internal/server/repositories/users"
)

// RepositoryManager vends entity repositories bound to a database handle
// (either *sql.DB or a transaction) and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Conversations(db dbx.DBTX) conversations.Repository
	Questions(db dbx.DBTX) questions.Repository
}
