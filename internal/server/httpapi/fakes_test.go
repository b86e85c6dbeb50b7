package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/deepdrunktalk/backend/internal/logging"
	"github.com/deepdrunktalk/backend/internal/server/auth"
	"github.com/deepdrunktalk/backend/internal/server/config"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/deepdrunktalk/backend/internal/server/services"
)

const testSecret = "test-secret"

type fakeUserService struct {
	registerOut string
	registerErr error

	loginOut string
	loginErr error

	settingsOut    *models.UserSettings
	settingsErr    error
	settingsUserID int64

	updateErr     error
	updatedVolume int
}

func (f *fakeUserService) Register(ctx context.Context, name, email, password, confirmPassword string) (string, error) {
	return f.registerOut, f.registerErr
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUserService) Settings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	f.settingsUserID = userID
	return f.settingsOut, f.settingsErr
}

func (f *fakeUserService) UpdateSettings(ctx context.Context, userID int64, volumeLevel, refreshFrequency int) error {
	f.updatedVolume = volumeLevel
	return f.updateErr
}

type fakeConversationService struct {
	startOut *services.StartResult
	startErr error

	stopOut bool
	stopErr error
	stopID  int64

	listOut []models.ConversationSummary
	listErr error

	deleteOut bool
	deleteErr error
}

func (f *fakeConversationService) Start(ctx context.Context, userID int64) (*services.StartResult, error) {
	return f.startOut, f.startErr
}

func (f *fakeConversationService) Stop(ctx context.Context, userID, conversationID int64) (bool, error) {
	f.stopID = conversationID
	return f.stopOut, f.stopErr
}

func (f *fakeConversationService) List(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	return f.listOut, f.listErr
}

func (f *fakeConversationService) Delete(ctx context.Context, userID, conversationID int64) (bool, error) {
	return f.deleteOut, f.deleteErr
}

type fakeAudioService struct {
	storeOut      string
	storeErr      error
	storedName    string
	storedContent string

	fetchBody        string
	fetchContentType string
	fetchErr         error
}

func (f *fakeAudioService) Store(ctx context.Context, userID, conversationID int64, filename string, size int64, r io.Reader) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.storedName = filename
	f.storedContent = string(data)
	return f.storeOut, nil
}

func (f *fakeAudioService) Fetch(ctx context.Context, userID, conversationID int64) (io.ReadCloser, string, error) {
	if f.fetchErr != nil {
		return nil, "", f.fetchErr
	}
	return io.NopCloser(strings.NewReader(f.fetchBody)), f.fetchContentType, nil
}

type testServices struct {
	users         *fakeUserService
	conversations *fakeConversationService
	audio         *fakeAudioService
}

func newTestServer() (*Server, *testServices) {
	svcs := &testServices{
		users:         &fakeUserService{},
		conversations: &fakeConversationService{},
		audio:         &fakeAudioService{},
	}

	cfg := &config.Config{Addr: ":0", SecretKey: testSecret}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewServer(cfg, log, svcs.users, svcs.conversations, svcs.audio), svcs
}

// validToken issues a token the gate accepts for the given user.
func validToken(userID int64) string {
	token, err := auth.IssueToken(userID, "tester", []byte(testSecret), time.Hour)
	if err != nil {
		panic(err)
	}
	return token
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
