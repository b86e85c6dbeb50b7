package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/server/config"
	"github.com/deepdrunktalk/backend/internal/server/repositories/repomanager"
	"github.com/deepdrunktalk/backend/internal/server/storage"
)

// defaultAudioExt is assumed when the upload carries no usable extension;
// browser recordings arrive as WebM.
const defaultAudioExt = ".webm"

// AudioService stores and serves the audio artifact attached to a
// conversation. One artifact per conversation; a re-upload overwrites.
type AudioService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ArtifactStore
	baseURL     string
}

func NewAudioService(db *sql.DB, m repomanager.RepositoryManager, store storage.ArtifactStore, cfg *config.Config) *AudioService {
	return &AudioService{
		db:          db,
		repomanager: m,
		store:       store,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Store persists the uploaded blob for the conversation and records the
// retrieval URL on the row. Callers acting on conversations they do not own
// get ErrUnauthorized whether or not the conversation exists.
func (s *AudioService) Store(ctx context.Context, userID, conversationID int64, filename string, size int64, r io.Reader) (string, error) {
	if err := s.authorize(ctx, userID, conversationID); err != nil {
		return "", err
	}

	if filename == "" || size == 0 {
		return "", common.ErrInvalidUpload
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = defaultAudioExt
	}

	if _, err := s.store.Save(ctx, conversationID, ext, r); err != nil {
		return "", fmt.Errorf("saving audio: %w", err)
	}

	url := s.audioURL(conversationID)
	if err := s.repomanager.Conversations(s.db).SetAudioPath(ctx, conversationID, url); err != nil {
		return "", fmt.Errorf("recording audio url: %w", err)
	}

	return url, nil
}

// Fetch streams the conversation's audio artifact with its MIME type.
// ErrNotFound is an expected outcome: a conversation may simply lack audio.
func (s *AudioService) Fetch(ctx context.Context, userID, conversationID int64) (io.ReadCloser, string, error) {
	if err := s.authorize(ctx, userID, conversationID); err != nil {
		return nil, "", err
	}

	body, ext, err := s.store.Open(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}

	return body, ContentTypeForExt(ext), nil
}

// authorize resolves the user and checks conversation ownership. A missing
// conversation is reported as ErrUnauthorized, so callers cannot probe for
// other users' conversation ids.
func (s *AudioService) authorize(ctx context.Context, userID, conversationID int64) error {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return err
	}

	conversation, err := s.repomanager.Conversations(s.db).GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return fmt.Errorf("looking up conversation: %w", err)
	}

	if conversation.UserID != userID {
		return common.ErrUnauthorized
	}

	return nil
}

func (s *AudioService) audioURL(conversationID int64) string {
	return s.baseURL + "/api/conversations/" + strconv.FormatInt(conversationID, 10) + "/audio"
}

// ContentTypeForExt maps an audio file extension to its MIME type.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
