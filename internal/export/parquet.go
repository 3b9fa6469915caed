package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/atlas-data/atlas-pipeline/internal/dataset"
)

// WriteParquet serializes the table rows to a single columnar artifact
// at path. The file is removed again if serialization fails so a broken
// artifact never survives a failed run.
func WriteParquet(path string, rows []dataset.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}

	writer := parquet.NewGenericWriter[dataset.Record](f)
	if _, err := writer.Write(rows); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("export: write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("export: close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}

// ReadParquet reads a previously exported artifact back into rows.
func ReadParquet(path string) ([]dataset.Record, error) {
	rows, err := parquet.ReadFile[dataset.Record](path)
	if err != nil {
		return nil, fmt.Errorf("export: read parquet %s: %w", path, err)
	}
	return rows, nil
}
