package cli

import (
	"errors"
	"fmt"

	"github.com/atlas-data/atlas-pipeline/internal/export"
)

// VerifyCLI offers operational helpers to check exported artifacts.
type VerifyCLI struct{}

// NewVerifyCLI constructs a new helper instance.
func NewVerifyCLI() *VerifyCLI {
	return &VerifyCLI{}
}

// VerifyReport summarizes a read-back of a columnar artifact.
type VerifyReport struct {
	Path       string
	Rows       int
	UniqueKeys int
}

// ErrKeyCollision indicates duplicate transaction identifiers in the artifact.
var ErrKeyCollision = errors.New("cli: artifact contains duplicate transaction identifiers")

// VerifyParquet reads an exported parquet artifact back and reports the
// row count, failing when the primary key does not hold.
func (c *VerifyCLI) VerifyParquet(path string) (VerifyReport, error) {
	rows, err := export.ReadParquet(path)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("cli: verify %s: %w", path, err)
	}

	keys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		keys[r.TransactID] = struct{}{}
	}
	report := VerifyReport{Path: path, Rows: len(rows), UniqueKeys: len(keys)}
	if report.UniqueKeys != report.Rows {
		return report, fmt.Errorf("%w: %d rows, %d keys", ErrKeyCollision, report.Rows, report.UniqueKeys)
	}
	return report, nil
}
