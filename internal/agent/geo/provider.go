// Package geo models the device's geolocation service as an asynchronous
// collaborator. Denied is a value, not an error: the common "user declined
// location access" path must not look like a failure. Errors are reserved
// for genuinely unexpected conditions (unreadable or corrupt fix data).
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetworks/courier-agent/internal/agent/fileio"
)

type Outcome int

const (
	Granted Outcome = iota
	Denied
)

// Position is a device fix in WGS84 coordinates.
type Position struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Fix is the outcome of a current-position query.
type Fix struct {
	Outcome  Outcome
	Position Position
}

// Provider supplies the device's current position.
//
//go:generate moq -fmt=goimports -out zz_generated_provider.go . Provider
type Provider interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// FileProvider reads the latest fix from a json file maintained by the
// platform's location service. An absent file means the platform never
// granted location access, which maps to Denied.
type FileProvider struct {
	reader *fileio.Reader
	path   string
	maxAge time.Duration
}

func NewFileProvider(path string, maxAge time.Duration) *FileProvider {
	return &FileProvider{
		reader: fileio.NewReader(),
		path:   path,
		maxAge: maxAge,
	}
}

func (p *FileProvider) CurrentPosition(_ context.Context) (Fix, error) {
	if err := p.reader.CheckPathExists(p.path); err != nil {
		return Fix{Outcome: Denied}, nil
	}

	contents, err := p.reader.ReadFile(p.path)
	if err != nil {
		return Fix{}, fmt.Errorf("reading position file: %w", err)
	}

	var position Position
	if err := json.Unmarshal(contents, &position); err != nil {
		return Fix{}, fmt.Errorf("parsing position file: %w", err)
	}

	if p.maxAge > 0 && !position.RecordedAt.IsZero() && time.Since(position.RecordedAt) > p.maxAge {
		return Fix{Outcome: Denied}, nil
	}

	return Fix{Outcome: Granted, Position: position}, nil
}
