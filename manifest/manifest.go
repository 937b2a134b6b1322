// Package manifest handles mosaic.toml worldfile configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a mosaic.toml worldfile.
type Manifest struct {
	Project  Project        `toml:"project"`
	World    WorldConfig    `toml:"world"`
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Dir is the directory containing the mosaic.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// WorldConfig configures the world built at startup.
type WorldConfig struct {
	Buffers  []string `toml:"buffers"`
	TickRate int      `toml:"tick-rate"`
}

// SnapshotConfig configures snapshot persistence.
type SnapshotConfig struct {
	Path string `toml:"path"`
	Name string `toml:"name"`
}

// Load parses a mosaic.toml file from the given directory and validates
// it against the worldfile schema.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "mosaic.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.World.Buffers) == 0 {
		m.World.Buffers = []string{"main"}
	}
	if m.World.TickRate == 0 {
		m.World.TickRate = 30
	}
	if m.Snapshot.Name == "" {
		m.Snapshot.Name = m.Project.Name
	}

	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("invalid worldfile %s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a mosaic.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "mosaic.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SnapshotPath returns the absolute snapshot database path, or "" when
// snapshots are not configured.
func (m *Manifest) SnapshotPath() string {
	if m.Snapshot.Path == "" {
		return ""
	}
	if filepath.IsAbs(m.Snapshot.Path) {
		return m.Snapshot.Path
	}
	return filepath.Join(m.Dir, m.Snapshot.Path)
}
