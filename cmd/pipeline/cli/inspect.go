package cli

import (
	"context"
	"errors"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStatter is the slice of the object store client inspection needs.
type ObjectStatter interface {
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// InspectCLI exposes helpers to check uploaded run artifacts in place.
type InspectCLI struct {
	client ObjectStatter
}

// NewInspectCLI constructs the helper wired to the provided object store client.
func NewInspectCLI(client ObjectStatter) *InspectCLI {
	return &InspectCLI{client: client}
}

// ObjectReport describes one uploaded artifact.
type ObjectReport struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// StatArtifact reports size and freshness of an uploaded object.
func (c *InspectCLI) StatArtifact(ctx context.Context, bucket, key string) (ObjectReport, error) {
	if c == nil || c.client == nil {
		return ObjectReport{}, errors.New("cli: object store client not configured")
	}
	info, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectReport{}, err
	}
	return ObjectReport{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
	}, nil
}
