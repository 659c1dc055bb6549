package orcase

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// LoadBatch reads a materialized batch from a JSON file. The engine never
// performs I/O itself; this loader exists for the CLI surface.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse batch file %q: %w", path, err)
	}

	b.Settings = b.Settings.Normalized()

	log.Debug().
		Int("cases", len(b.Cases)).
		Int("historical", len(b.HistoricalCases)).
		Int("rules", len(b.Rules)).
		Str("path", path).
		Msg("Batch loaded")

	return &b, nil
}
