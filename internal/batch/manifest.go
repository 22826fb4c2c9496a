package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Frames    []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one rendered frame.
type ManifestEntry struct {
	Name      string     `json:"name"`
	Image     string     `json:"image,omitempty"`
	Pos       [3]float64 `json:"pos"`
	Yaw       float64    `json:"yaw"`
	Pitch     float64    `json:"pitch"`
	Digest    string     `json:"xxhash,omitempty"`
	DrawCalls int        `json:"draw_calls"`
	Skipped   int        `json:"skipped"`
	Triangles int        `json:"triangles"`
	Error     string     `json:"error,omitempty"`
}

// NewManifest builds the manifest for a finished run. Angles are written
// in radians.
func NewManifest(runID uuid.UUID, cfg Config, results []Result) Manifest {
	m := Manifest{
		RunID:     runID.String(),
		CreatedAt: time.Now().UTC(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Frames:    make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		e := ManifestEntry{
			Name:      r.Shot.Name,
			Pos:       [3]float64(r.Shot.Pos),
			Yaw:       r.Shot.Yaw,
			Pitch:     r.Shot.Pitch,
			DrawCalls: r.Stats.DrawCalls,
			Skipped:   r.Stats.Skipped,
			Triangles: r.Stats.Triangles,
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		} else {
			e.Image = r.Image
			e.Digest = fmt.Sprintf("%016x", r.Digest)
		}
		m.Frames[i] = e
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
