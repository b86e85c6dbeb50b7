package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/deepdrunktalk/backend/internal/dbx"
	"github.com/deepdrunktalk/backend/internal/server/models"
	convrepo "github.com/deepdrunktalk/backend/internal/server/repositories/conversations"
	questrepo "github.com/deepdrunktalk/backend/internal/server/repositories/questions"
	usersrepo "github.com/deepdrunktalk/backend/internal/server/repositories/users"
)

// Fake repositories: one output/error field pair per call.

type fakeUsersRepo struct {
	createOut *fakeCreateResult
	getOut    *models.User
	getErr    error

	updatedVolume  int
	updatedRefresh int
	updateErr      error
}

type fakeCreateResult struct {
	id  int64
	err error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createOut != nil {
		if f.createOut.err != nil {
			return nil, f.createOut.err
		}
		u.ID = f.createOut.id
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdateSettings(ctx context.Context, id int64, volumeLevel, refreshFrequency int) error {
	f.updatedVolume = volumeLevel
	f.updatedRefresh = refreshFrequency
	return f.updateErr
}

type fakeConversationsRepo struct {
	createID  int64
	createErr error
	created   *models.Conversation

	byIDOut *models.Conversation
	byIDErr error

	openOut *models.Conversation
	openErr error

	lastOut *models.Conversation
	lastErr error

	listOut []*models.Conversation
	listErr error

	endTimeSetFor int64
	setEndErr     error

	audioPathSet string
	setAudioErr  error

	deleteOK  bool
	deleteErr error
}

func (f *fakeConversationsRepo) Create(ctx context.Context, c *models.Conversation) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = c
	return f.createID, nil
}

func (f *fakeConversationsRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeConversationsRepo) GetOpen(ctx context.Context, userID int64) (*models.Conversation, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.openOut, nil
}

func (f *fakeConversationsRepo) GetLastClosed(ctx context.Context, userID int64) (*models.Conversation, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	return f.lastOut, nil
}

func (f *fakeConversationsRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeConversationsRepo) SetEndTime(ctx context.Context, id int64, endTime time.Time) error {
	if f.setEndErr != nil {
		return f.setEndErr
	}
	f.endTimeSetFor = id
	return nil
}

func (f *fakeConversationsRepo) SetAudioPath(ctx context.Context, id int64, audioURL string) error {
	if f.setAudioErr != nil {
		return f.setAudioErr
	}
	f.audioPathSet = audioURL
	return nil
}

func (f *fakeConversationsRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	return f.deleteOK, f.deleteErr
}

type fakeQuestionsRepo struct {
	randomOut *models.Question
	randomErr error

	exclOut    *models.Question
	exclErr    error
	exclCalled int64

	questionOut *models.Question
	questionErr error

	topicOut *models.Topic
	topicErr error
}

func (f *fakeQuestionsRepo) GetRandom(ctx context.Context) (*models.Question, error) {
	if f.randomErr != nil {
		return nil, f.randomErr
	}
	return f.randomOut, nil
}

func (f *fakeQuestionsRepo) GetRandomExcluding(ctx context.Context, excludeID int64) (*models.Question, error) {
	f.exclCalled = excludeID
	if f.exclErr != nil {
		return nil, f.exclErr
	}
	return f.exclOut, nil
}

func (f *fakeQuestionsRepo) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	return f.questionOut, nil
}

func (f *fakeQuestionsRepo) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	if f.topicErr != nil {
		return nil, f.topicErr
	}
	return f.topicOut, nil
}

// fakeRepoManager hands out the same fakes regardless of the db handle, so
// code running inside WithTx sees the same state as code outside it.
type fakeRepoManager struct {
	users         *fakeUsersRepo
	conversations *fakeConversationsRepo
	questions     *fakeQuestionsRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }

func (m *fakeRepoManager) Conversations(db dbx.DBTX) convrepo.Repository { return m.conversations }

func (m *fakeRepoManager) Questions(db dbx.DBTX) questrepo.Repository { return m.questions }
