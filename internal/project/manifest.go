package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest mirrors spec.md §6.1's on-disk shape exactly: a flat map of
// project-relative path to content hash, plus the timestamp of the last
// full or incremental sync.
type Manifest struct {
	Files       map[string]string `json:"files"`
	LastIndexed time.Time         `json:"lastIndexed"`
}

// NewManifest returns an empty manifest ready to populate.
func NewManifest() *Manifest {
	return &Manifest{Files: make(map[string]string)}
}

// LoadManifest reads the manifest at path. A missing file is not an error:
// it yields a fresh empty manifest, since the manifest is fully regenerable.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		// A corrupted manifest is healed the same way a corrupted store
		// is: treat it as absent and let the next sync rebuild it.
		return NewManifest(), nil
	}
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	return &m, nil
}

// Save writes the manifest to path as indented JSON, creating its parent
// directory if needed.
func (m *Manifest) Save(path string) error {
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Clear empties the manifest's file map in place, leaving LastIndexed
// untouched — callers that wipe the manifest on a model change set their
// own fresh LastIndexed once the rebuild completes.
func (m *Manifest) Clear() {
	m.Files = make(map[string]string)
}
