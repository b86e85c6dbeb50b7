package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/deepdrunktalk/backend/internal/common"
	sc "github.com/deepdrunktalk/backend/internal/server/config"
)

// S3Store keeps artifacts in an S3-compatible bucket under
// "audio/{conversationID}{ext}". Used when the server runs with a MinIO or
// AWS backend instead of a local uploads directory.
type S3Store struct {
	client s3API
	bucket string
}

// s3API is the subset of the S3 client used by the store, a seam for tests.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Store builds an S3-backed store from the server configuration.
func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3Store) key(conversationID int64, ext string) string {
	return "audio/" + strconv.FormatInt(conversationID, 10) + ext
}

func (s *S3Store) prefix(conversationID int64) string {
	return "audio/" + strconv.FormatInt(conversationID, 10) + "."
}

func (s *S3Store) Save(ctx context.Context, conversationID int64, ext string, r io.Reader) (string, error) {
	// S3 needs a seekable body for retries; buffering also means a broken
	// upload stream fails here instead of leaving a truncated object.
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}

	key := s.key(conversationID, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", fmt.Errorf("storing audio: %w", err)
	}

	if err := s.removeOthers(ctx, conversationID, key); err != nil {
		return "", err
	}

	return path.Base(key), nil
}

func (s *S3Store) Open(ctx context.Context, conversationID int64) (io.ReadCloser, string, error) {
	key, err := s.find(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", common.ErrNotFound
		}
		return nil, "", fmt.Errorf("fetching audio: %w", err)
	}

	return out.Body, path.Ext(key), nil
}

func (s *S3Store) find(ctx context.Context, conversationID int64) (string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix(conversationID)),
	})
	if err != nil {
		return "", fmt.Errorf("locating audio: %w", err)
	}
	if len(out.Contents) == 0 {
		return "", common.ErrNotFound
	}
	return aws.ToString(out.Contents[0].Key), nil
}

func (s *S3Store) removeOthers(ctx context.Context, conversationID int64, keep string) error {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix(conversationID)),
	})
	if err != nil {
		return fmt.Errorf("listing audio: %w", err)
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == keep {
			continue
		}
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("removing stale audio: %w", err)
		}
	}

	return nil
}
