package adapter

import (
	"os"
	"path/filepath"
	"testing"

	m "repolens.dev/pkg/repolens/internal/model"
)

func TestParseRepoConfig(t *testing.T) {
	t.Run("full config parses", func(t *testing.T) {
		data := []byte(`{
			"ignore_patterns": ["*.log", "build/**"],
			"include_patterns": ["src/**"],
			"lenses": {
				"api": {
					"description": "API surface",
					"include": ["api/**"],
					"truncate_mode": "structure",
					"truncate": 500,
					"sort_by": "name",
					"sort_order": "asc",
					"groups": [{"pattern": "api/core/**", "priority": 90}]
				}
			}
		}`)

		config, warnings, err := ParseRepoConfig(data)
		if err != nil {
			t.Fatalf("ParseRepoConfig error: %v", err)
		}

		if len(warnings) != 0 {
			t.Fatalf("unexpected warnings: %v", warnings)
		}

		if len(config.IgnorePatterns) != 2 || len(config.IncludePatterns) != 1 {
			t.Fatalf("patterns wrong: %+v", config)
		}

		lens, ok := config.Lenses["api"]
		if !ok {
			t.Fatal("lens api missing")
		}

		if lens.Name != "api" || lens.TruncateMode != m.TruncateStructure || lens.TruncateLines != 500 {
			t.Fatalf("lens wrong: %+v", lens)
		}

		if len(lens.Groups) != 1 || lens.Groups[0].Priority != 90 {
			t.Fatalf("groups wrong: %+v", lens.Groups)
		}
	})

	t.Run("unknown keys warn but do not fail", func(t *testing.T) {
		data := []byte(`{"ignore_patterns": [], "surprise": true, "lenses": {"x": {"wat": 1}}}`)

		_, warnings, err := ParseRepoConfig(data)
		if err != nil {
			t.Fatalf("ParseRepoConfig error: %v", err)
		}

		if len(warnings) != 2 {
			t.Fatalf("expected two warnings, got %v", warnings)
		}
	})

	t.Run("malformed JSON is fatal", func(t *testing.T) {
		_, _, err := ParseRepoConfig([]byte(`{not json`))
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid truncate mode is fatal", func(t *testing.T) {
		_, _, err := ParseRepoConfig([]byte(`{"lenses": {"x": {"truncate_mode": "chop"}}}`))
		if err == nil {
			t.Fatal("expected error for invalid truncate_mode")
		}
	})
}

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file yields an empty config", func(t *testing.T) {
		config, warnings, err := LoadRepoConfig(m.Path(filepath.Join(t.TempDir(), RepoConfigFileName)))
		if err != nil {
			t.Fatalf("LoadRepoConfig error: %v", err)
		}

		if len(warnings) != 0 || len(config.IgnorePatterns) != 0 {
			t.Fatalf("expected empty config: %+v", config)
		}
	})

	t.Run("reads from disk", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, RepoConfigFileName)

		if err := os.WriteFile(path, []byte(`{"ignore_patterns": ["*.tmp"]}`), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		config, _, err := LoadRepoConfig(m.Path(path))
		if err != nil {
			t.Fatalf("LoadRepoConfig error: %v", err)
		}

		if len(config.IgnorePatterns) != 1 || config.IgnorePatterns[0] != "*.tmp" {
			t.Fatalf("config wrong: %+v", config)
		}
	})
}

func TestLoadPriorityStore(t *testing.T) {
	t.Run("parses a store file", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, PriorityStoreFileName)

		store := `version: 1
files:
  src/app.py:
    utility: 0.8
    tags: [always_include]
    summary: main entry point
  src/util.py:
    utility: 0.3
`

		if err := os.WriteFile(path, []byte(store), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		entries := LoadPriorityStore(m.Path(path))
		if len(entries) != 2 {
			t.Fatalf("entries = %+v", entries)
		}

		app := entries["src/app.py"]
		if app.Utility != 0.8 || !app.HasTag(m.AlwaysIncludeTag) || app.Summary != "main entry point" {
			t.Fatalf("entry wrong: %+v", app)
		}
	})

	t.Run("missing store is non-fatal", func(t *testing.T) {
		entries := LoadPriorityStore(m.Path(filepath.Join(t.TempDir(), PriorityStoreFileName)))
		if entries != nil {
			t.Fatalf("expected nil store, got %+v", entries)
		}
	})

	t.Run("malformed store is non-fatal", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, PriorityStoreFileName)

		if err := os.WriteFile(path, []byte(":\nnot yaml {{"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		if entries := LoadPriorityStore(m.Path(path)); entries != nil {
			t.Fatalf("expected nil store, got %+v", entries)
		}
	})
}

func TestMemorySourceFS(t *testing.T) {
	t.Run("walks in segment order", func(t *testing.T) {
		fs := NewMemorySourceFS([]m.MemoryFile{
			{RelPath: "b/y.txt", Data: []byte("y")},
			{RelPath: "a.txt", Data: []byte("a")},
			{RelPath: "a/x.txt", Data: []byte("x")},
		})

		var visited []string

		err := fs.Walk(".", func(path string, info os.FileInfo, err error) error {
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk error: %v", err)
		}

		// Matches filepath.Walk: the directory "a" sorts before the
		// file "a.txt", so its children come first.
		want := []string{"a/x.txt", "a.txt", "b/y.txt"}
		for i := range want {
			if visited[i] != want[i] {
				t.Fatalf("order = %v, want %v", visited, want)
			}
		}
	})

	t.Run("read text decodes stored bytes", func(t *testing.T) {
		fs := NewMemorySourceFS([]m.MemoryFile{{RelPath: "f.txt", Data: []byte("data\n")}})

		text, err := fs.ReadText("f.txt")
		if err != nil || text != "data\n" {
			t.Fatalf("text = %q, err = %v", text, err)
		}

		if _, err := fs.ReadText("missing.txt"); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
