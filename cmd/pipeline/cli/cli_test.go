package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"github.com/atlas-data/atlas-pipeline/internal/dataset"
	"github.com/atlas-data/atlas-pipeline/internal/export"
	"github.com/atlas-data/atlas-pipeline/internal/generator"
)

func writeArtifact(t *testing.T, rows int) string {
	t.Helper()
	gen, err := generator.New(generator.Config{
		Rows:        rows,
		Seed:        42,
		WindowStart: time.Date(2022, 1, 1, 10, 30, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
	}, nil)
	require.NoError(t, err)
	batch, err := gen.Generate(context.Background())
	require.NoError(t, err)
	table, err := dataset.Assemble(batch)
	require.NoError(t, err)
	dataset.Enrich(table)

	path := filepath.Join(t.TempDir(), "rows.parquet")
	require.NoError(t, export.WriteParquet(path, table.Rows))
	return path
}

func TestVerifyParquetReportsRowCount(t *testing.T) {
	path := writeArtifact(t, 40)
	report, err := NewVerifyCLI().VerifyParquet(path)
	require.NoError(t, err)
	require.Equal(t, 40, report.Rows)
	require.Equal(t, 40, report.UniqueKeys)
}

func TestVerifyParquetFailsOnMissingFile(t *testing.T) {
	_, err := NewVerifyCLI().VerifyParquet(filepath.Join(t.TempDir(), "absent.parquet"))
	require.Error(t, err)
}

type statter struct {
	info minio.ObjectInfo
	err  error
}

func (s statter) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return s.info, s.err
}

func TestStatArtifact(t *testing.T) {
	now := time.Now()
	c := NewInspectCLI(statter{info: minio.ObjectInfo{Key: "latest/rows.parquet", Size: 1024, LastModified: now}})
	report, err := c.StatArtifact(context.Background(), "sim-api-data", "latest/rows.parquet")
	require.NoError(t, err)
	require.Equal(t, int64(1024), report.Size)
	require.Equal(t, "latest/rows.parquet", report.Key)
}

func TestStatArtifactPropagatesError(t *testing.T) {
	c := NewInspectCLI(statter{err: errors.New("no such key")})
	_, err := c.StatArtifact(context.Background(), "sim-api-data", "missing")
	require.Error(t, err)
}
