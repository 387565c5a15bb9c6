package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const manifestName = "manifest.json"

// Manifest names the live segment for an index directory. It is rewritten
// (atomically) only after the segment it points at has been synced, so the
// manifest always references a complete file.
type Manifest struct {
	Version     uint64    `json:"version"`
	Segment     string    `json:"segment"`
	DocCount    int       `json:"doc_count"`
	TotalTokens int       `json:"total_tokens"`
	BuiltAt     time.Time `json:"built_at"`
}

// ErrNoManifest is returned by LoadManifest when the index directory has no
// manifest yet.
var ErrNoManifest = errors.New("no index manifest")

// LoadManifest reads the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest atomically replaces the manifest in dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	finalPath := filepath.Join(dir, manifestName)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming manifest: %w", err)
	}
	return nil
}

// RemoveStaleSegments deletes every .mkx and .tmp file in dir other than the
// segment the manifest references.
func RemoveStaleSegments(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if name == keep || name == manifestName {
			continue
		}
		if filepath.Ext(name) == ".mkx" || filepath.Ext(name) == ".tmp" {
			os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}
