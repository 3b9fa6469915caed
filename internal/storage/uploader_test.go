package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	exists      bool
	existsErr   error
	existsCalls int

	makeErr   error
	makeCalls int

	putFailures int
	putCalls    int
	putBucket   string
	putKey      string
	putPath     string
}

func (m *mockClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	m.existsCalls++
	return m.exists, m.existsErr
}

func (m *mockClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	m.makeCalls++
	if m.makeErr != nil {
		return m.makeErr
	}
	m.exists = true
	return nil
}

func (m *mockClient) FPutObject(ctx context.Context, bucket, object, path string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	m.putCalls++
	if m.putCalls <= m.putFailures {
		return minio.UploadInfo{}, errors.New("connection refused")
	}
	m.putBucket, m.putKey, m.putPath = bucket, object, path
	return minio.UploadInfo{Size: 42}, nil
}

func newTestUploader(client ObjectClient) *Uploader {
	return NewUploader(client, nil, WithMaxRetries(3), WithRetryInterval(time.Millisecond))
}

func TestEnsureBucketCreatesWhenAbsent(t *testing.T) {
	client := &mockClient{}
	u := newTestUploader(client)
	require.NoError(t, u.EnsureBucket(context.Background(), "sim-api-data"))
	require.Equal(t, 1, client.makeCalls)
}

func TestEnsureBucketSkipsWhenPresent(t *testing.T) {
	client := &mockClient{exists: true}
	u := newTestUploader(client)
	require.NoError(t, u.EnsureBucket(context.Background(), "sim-api-data"))
	require.Zero(t, client.makeCalls)
}

func TestEnsureBucketToleratesCreationRace(t *testing.T) {
	// MakeBucket loses the race but the follow-up existence check wins.
	client := &racingClient{mockClient: &mockClient{makeErr: errors.New("bucket already owned by you")}}
	u := newTestUploader(client)
	require.NoError(t, u.EnsureBucket(context.Background(), "sim-api-data"))
}

// racingClient reports the bucket as existing from the second existence
// check onward, as if another writer created it mid-flight.
type racingClient struct {
	*mockClient
}

func (r *racingClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	r.existsCalls++
	return r.existsCalls > 1, nil
}

func TestUploadFileRetriesTransientFailures(t *testing.T) {
	client := &mockClient{putFailures: 2}
	u := newTestUploader(client)

	err := u.UploadFile(context.Background(), "sim-api-data", "runs/a/rows.parquet", "/tmp/rows.parquet", "application/octet-stream")
	require.NoError(t, err)
	require.Equal(t, 3, client.putCalls)
	require.Equal(t, "runs/a/rows.parquet", client.putKey)
}

func TestUploadFileExhaustsRetries(t *testing.T) {
	client := &mockClient{putFailures: 100}
	u := newTestUploader(client)

	err := u.UploadFile(context.Background(), "sim-api-data", "k", "/tmp/x", "")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRetriesExhausted)
	// initial attempt plus the bounded retries, nothing more
	require.Equal(t, 4, client.putCalls)
}

func TestUploadFileStopsOnCancelledContext(t *testing.T) {
	client := &mockClient{putFailures: 100}
	u := newTestUploader(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := u.UploadFile(ctx, "sim-api-data", "k", "/tmp/x", "")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrRetriesExhausted)
	require.Less(t, client.putCalls, 4)
}
