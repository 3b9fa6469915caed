package objstore

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config carries the object store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// URLStyle selects bucket addressing: "path" or "virtual".
	URLStyle string
}

// New creates a new MinIO client for the configured endpoint.
func New(cfg Config) (*minio.Client, error) {
	lookup := minio.BucketLookupAuto
	switch cfg.URLStyle {
	case "path":
		lookup = minio.BucketLookupPath
	case "virtual":
		lookup = minio.BucketLookupDNS
	case "":
	default:
		return nil, fmt.Errorf("platform/objstore: unknown url style %q", cfg.URLStyle)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("platform/objstore: new client: %w", err)
	}
	return client, nil
}
