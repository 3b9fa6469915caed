package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
)

// ErrRetriesExhausted indicates the upload kept failing past the
// configured retry budget.
var ErrRetriesExhausted = errors.New("storage: retries exhausted")

// ObjectClient is the slice of the MinIO client the uploader needs.
// *minio.Client satisfies it.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, path string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader pushes run artifacts into an object store bucket, creating
// the bucket on first use. Uploads are idempotent at the object key:
// re-running a key overwrites the previous object.
type Uploader struct {
	client     ObjectClient
	logger     *slog.Logger
	maxRetries uint64
	interval   time.Duration
}

// Option adjusts uploader behaviour.
type Option func(*Uploader)

// WithMaxRetries bounds the number of retry attempts per operation.
func WithMaxRetries(n uint64) Option {
	return func(u *Uploader) { u.maxRetries = n }
}

// WithRetryInterval sets the initial backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(u *Uploader) { u.interval = d }
}

// NewUploader constructs an Uploader over the given client.
func NewUploader(client ObjectClient, logger *slog.Logger, opts ...Option) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	u := &Uploader{client: client, logger: logger, maxRetries: 4, interval: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// EnsureBucket creates the bucket when absent. A creation race where
// another writer wins is treated as success.
func (u *Uploader) EnsureBucket(ctx context.Context, bucket string) error {
	op := func() error {
		exists, err := u.client.BucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			if exists, checkErr := u.client.BucketExists(ctx, bucket); checkErr == nil && exists {
				return nil
			}
			return err
		}
		u.logger.Info("bucket created", slog.String("bucket", bucket))
		return nil
	}
	if err := u.retry(ctx, op); err != nil {
		return fmt.Errorf("storage: ensure bucket %s: %w", bucket, err)
	}
	return nil
}

// UploadFile puts the local artifact at path into bucket under key.
// Transient failures are retried with bounded exponential backoff;
// exhaustion surfaces as a fatal error, the put itself is atomic so no
// partial object is left behind.
func (u *Uploader) UploadFile(ctx context.Context, bucket, key, path, contentType string) error {
	op := func() error {
		info, err := u.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			u.logger.Warn("upload attempt failed",
				slog.String("bucket", bucket),
				slog.String("key", key),
				slog.Any("error", err),
			)
			return err
		}
		u.logger.Info("uploaded artifact",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.Int64("bytes", info.Size),
		)
		return nil
	}
	if err := u.retry(ctx, op); err != nil {
		// A caller-initiated abort is not retry exhaustion.
		if ctx.Err() != nil {
			return fmt.Errorf("storage: upload %s to %s/%s: %w", path, bucket, key, err)
		}
		return fmt.Errorf("storage: upload %s to %s/%s: %w: %w", path, bucket, key, ErrRetriesExhausted, err)
	}
	return nil
}

func (u *Uploader) retry(ctx context.Context, op backoff.Operation) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = u.interval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, u.maxRetries), ctx))
}
