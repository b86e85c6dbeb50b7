package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/google/uuid"
)

// LocalStore keeps artifacts in a single uploads directory, one file per
// conversation named "{conversationID}{ext}". The directory is created
// lazily on first save.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Save(ctx context.Context, conversationID int64, ext string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}

	name := strconv.FormatInt(conversationID, 10) + ext
	final := filepath.Join(s.dir, name)

	// Write to a temp file first and rename into place, so an interrupted
	// upload never leaves a partial artifact behind.
	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("committing audio: %w", err)
	}

	// A re-upload with a different extension must still leave exactly one
	// artifact for the conversation.
	s.removeOthers(conversationID, name)

	return name, nil
}

func (s *LocalStore) Open(ctx context.Context, conversationID int64) (io.ReadCloser, string, error) {
	path, err := s.find(conversationID)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", common.ErrNotFound
		}
		return nil, "", fmt.Errorf("opening audio: %w", err)
	}

	return f, filepath.Ext(path), nil
}

// find locates the conversation's artifact by naming convention.
func (s *LocalStore) find(conversationID int64) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, strconv.FormatInt(conversationID, 10)+".*"))
	if err != nil {
		return "", fmt.Errorf("locating audio: %w", err)
	}
	if len(matches) == 0 {
		return "", common.ErrNotFound
	}
	return matches[0], nil
}

func (s *LocalStore) removeOthers(conversationID int64, keep string) {
	matches, err := filepath.Glob(filepath.Join(s.dir, strconv.FormatInt(conversationID, 10)+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if filepath.Base(m) != keep {
			os.Remove(m)
		}
	}
}
