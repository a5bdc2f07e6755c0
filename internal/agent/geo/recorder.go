package geo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetworks/courier-agent/internal/agent/fileio"
)

// Recorder persists position fixes published by the platform's location
// service to the file FileProvider reads.
type Recorder struct {
	writer *fileio.Writer
	path   string
}

func NewRecorder(path string) *Recorder {
	return &Recorder{
		writer: fileio.NewWriter(),
		path:   path,
	}
}

// Record writes the fix. An unset RecordedAt is stamped with the current
// time so a freshly published fix never reads as stale.
func (r *Recorder) Record(position Position) error {
	if position.RecordedAt.IsZero() {
		position.RecordedAt = time.Now().UTC()
	}
	contents, err := json.Marshal(position)
	if err != nil {
		return fmt.Errorf("encoding position: %w", err)
	}
	if err := r.writer.WriteFile(r.path, contents); err != nil {
		return fmt.Errorf("writing position file: %w", err)
	}
	return nil
}
