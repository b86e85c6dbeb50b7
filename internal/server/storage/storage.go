// Package storage persists audio artifacts. Exactly one artifact exists per
// conversation, keyed deterministically by conversation id plus the original
// file extension; saving again replaces the previous artifact.
package storage

import (
	"context"
	"io"
)

// ArtifactStore is implemented by the local-filesystem and S3 backends.
type ArtifactStore interface {
	// Save commits the blob under the conversation's key and returns the
	// stored object name ("{conversationID}{ext}"). A partial write must
	// never become visible: either the full blob commits or nothing does.
	Save(ctx context.Context, conversationID int64, ext string, r io.Reader) (string, error)

	// Open returns the stored blob and its file extension, or
	// common.ErrNotFound when the conversation has no artifact.
	Open(ctx context.Context, conversationID int64) (io.ReadCloser, string, error)
}
