package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	m "repolens.dev/pkg/repolens/internal/model"
)

// RepoConfigFileName is the default repo-level configuration file
// name, relative to the project root.
const RepoConfigFileName = ".repolens_config.json"

// repoConfigKeys are the recognized top-level keys.
var repoConfigKeys = map[string]bool{
	"ignore_patterns":  true,
	"include_patterns": true,
	"lenses":           true,
}

// lensConfigKeys are the recognized per-lens keys.
var lensConfigKeys = map[string]bool{
	"description":   true,
	"include":       true,
	"exclude":       true,
	"truncate_mode": true,
	"truncate":      true,
	"sort_by":       true,
	"sort_order":    true,
	"groups":        true,
}

// LoadRepoConfig reads and parses the repo configuration. A missing
// file yields an empty config; malformed JSON is a fatal error.
// Unrecognized keys are ignored and reported back as warnings for the
// diagnostic channel.
func LoadRepoConfig(path m.Path) (m.RepoConfig, []string, error) {
	// #nosec G304 - path is the project-root config location
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.RepoConfig{}, nil, nil
		}

		return m.RepoConfig{}, nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseRepoConfig(data)
}

// ParseRepoConfig decodes configuration bytes. Exported for the pure
// Process path, which receives config content without a filesystem.
func ParseRepoConfig(data []byte) (m.RepoConfig, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return m.RepoConfig{}, nil, fmt.Errorf("malformed config JSON: %w", err)
	}

	var config m.RepoConfig
	var warnings []string

	for _, key := range sortedKeys(raw) {
		if !repoConfigKeys[key] {
			warnings = append(warnings, fmt.Sprintf("unknown config key %q ignored", key))
		}
	}

	if msg, ok := raw["ignore_patterns"]; ok {
		if err := json.Unmarshal(msg, &config.IgnorePatterns); err != nil {
			return m.RepoConfig{}, nil, fmt.Errorf("malformed ignore_patterns: %w", err)
		}
	}

	if msg, ok := raw["include_patterns"]; ok {
		if err := json.Unmarshal(msg, &config.IncludePatterns); err != nil {
			return m.RepoConfig{}, nil, fmt.Errorf("malformed include_patterns: %w", err)
		}
	}

	if msg, ok := raw["lenses"]; ok {
		lenses, lensWarnings, err := parseLenses(msg)
		if err != nil {
			return m.RepoConfig{}, nil, err
		}

		config.Lenses = lenses
		warnings = append(warnings, lensWarnings...)
	}

	return config, warnings, nil
}

func parseLenses(msg json.RawMessage) (map[string]m.Lens, []string, error) {
	var rawLenses map[string]map[string]json.RawMessage
	if err := json.Unmarshal(msg, &rawLenses); err != nil {
		return nil, nil, fmt.Errorf("malformed lenses: %w", err)
	}

	lenses := map[string]m.Lens{}

	var warnings []string

	for _, name := range sortedKeys(rawLenses) {
		rawLens := rawLenses[name]

		for _, key := range sortedKeys(rawLens) {
			if !lensConfigKeys[key] {
				warnings = append(warnings, fmt.Sprintf("unknown key %q in lens %q ignored", key, name))
			}
		}

		blob, err := json.Marshal(rawLens)
		if err != nil {
			return nil, nil, fmt.Errorf("lens %q: %w", name, err)
		}

		var lens m.Lens
		if err := json.Unmarshal(blob, &lens); err != nil {
			return nil, nil, fmt.Errorf("malformed lens %q: %w", name, err)
		}

		if lens.TruncateMode != "" && !m.ValidTruncateMode(lens.TruncateMode) {
			return nil, nil, fmt.Errorf("lens %q: invalid truncate_mode %q", name, lens.TruncateMode)
		}

		lens.Name = name
		lenses[name] = lens
	}

	return lenses, warnings, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
