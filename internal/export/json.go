package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atlas-data/atlas-pipeline/internal/dataset"
)

// WriteJSON emits the table rows as one JSON array, timestamps in
// RFC 3339 so downstream readers can auto-detect the column types.
func WriteJSON(w io.Writer, rows []dataset.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("export: write json: %w", err)
	}
	return nil
}
