package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	m "repolens.dev/pkg/repolens/internal/model"
)

// PriorityStoreFileName is the default location of the learned-utility
// store, relative to the project root.
const PriorityStoreFileName = ".repolens_learned.yaml"

// priorityStoreFile is the on-disk shape of the store.
type priorityStoreFile struct {
	Version int                     `yaml:"version"`
	Files   map[string]m.StoreEntry `yaml:"files"`
}

// LoadPriorityStore reads the learned-priority store once. The store
// is read-only for the core; absence or unreadability is non-fatal and
// returns a nil map (logged once, then ignored for the run).
func LoadPriorityStore(path m.Path) map[string]m.StoreEntry {
	// #nosec G304 - path is the project-root store location
	data, err := os.ReadFile(string(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("priority store unreadable, continuing without learned priorities", "path", path, "error", err)
		}

		return nil
	}

	var file priorityStoreFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("priority store malformed, continuing without learned priorities", "path", path, "error", err)
		return nil
	}

	return file.Files
}

// ParsePriorityStore decodes store bytes for callers that already hold
// them (the pure Process path).
func ParsePriorityStore(data []byte) (map[string]m.StoreEntry, error) {
	var file priorityStoreFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse priority store: %w", err)
	}

	return file.Files, nil
}
