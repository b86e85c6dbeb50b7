package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 backs the store with an in-memory object map.
type fakeS3 struct {
	objects map[string]string

	putErr  error
	listErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3.ListObjectsV2Output{}
	prefix := aws.ToString(in.Prefix)
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Save_PutsUnderAudioPrefix(t *testing.T) {
	client := newFakeS3()
	store := &S3Store{client: client, bucket: "audio"}

	name, err := store.Save(context.Background(), 5, ".webm", strings.NewReader("blob"))
	require.NoError(t, err)
	assert.Equal(t, "5.webm", name)
	assert.Equal(t, "blob", client.objects["audio/5.webm"])
}

func TestS3Save_ReplacesOtherExtensions(t *testing.T) {
	client := newFakeS3()
	client.objects["audio/5.webm"] = "old"
	store := &S3Store{client: client, bucket: "audio"}

	_, err := store.Save(context.Background(), 5, ".mp3", strings.NewReader("new"))
	require.NoError(t, err)

	assert.NotContains(t, client.objects, "audio/5.webm")
	assert.Equal(t, "new", client.objects["audio/5.mp3"])
}

func TestS3Open_RoundTrip(t *testing.T) {
	client := newFakeS3()
	client.objects["audio/7.mp3"] = "audio-bytes"
	store := &S3Store{client: client, bucket: "audio"}

	body, ext, err := store.Open(context.Background(), 7)
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, ".mp3", ext)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestS3Open_NoArtifact(t *testing.T) {
	store := &S3Store{client: newFakeS3(), bucket: "audio"}

	_, _, err := store.Open(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3Open_IgnoresOtherConversations(t *testing.T) {
	// Conversation 1's prefix "audio/1." must not match conversation 12.
	client := newFakeS3()
	client.objects["audio/12.webm"] = "other"
	store := &S3Store{client: client, bucket: "audio"}

	_, _, err := store.Open(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
