package domain

import (
	"errors"
	"testing"

	m "repolens.dev/pkg/repolens/internal/model"
)

func TestCompilePattern(t *testing.T) {
	t.Run("rejects empty pattern", func(t *testing.T) {
		_, err := CompilePattern("")
		if !errors.Is(err, m.ErrInvalidPattern) {
			t.Fatalf("expected ErrInvalidPattern, got %v", err)
		}
	})

	t.Run("rejects doubled separator", func(t *testing.T) {
		_, err := CompilePattern("src//main.py")
		if !errors.Is(err, m.ErrInvalidPattern) {
			t.Fatalf("expected ErrInvalidPattern, got %v", err)
		}
	})
}

func TestPatternMatch(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.py", "main.py", true},
		{"*.py", "src/main.py", true}, // bare pattern matches any segment
		{"*.py", "main.pyc", false},
		{"src/*.py", "src/main.py", true},
		{"src/*.py", "src/sub/main.py", false}, // * stays within one segment
		{"src/**", "src/sub/main.py", true},
		{"src/**", "src", true}, // ** matches zero segments
		{"**/*.py", "a/b/c/main.py", true},
		{"**/*.py", "main.py", true},
		{"tests/**", "tests/unit/x.py", true},
		{"tests/**", "src/tests.py", false},
		{".git", "a/.git/config", true}, // bare segment match at depth
		{"README.md", "README.md", true},
		{"README.md", "docs/README.md", true},
		{"**/*auth*", "src/authn/login.py", false}, // last segment must match *auth*
		{"ma?n.py", "main.py", true},
		{"Main.py", "main.py", false}, // case-sensitive
	}

	for _, tc := range cases {
		t.Run(tc.pattern+" vs "+tc.path, func(t *testing.T) {
			p, err := CompilePattern(tc.pattern)
			if err != nil {
				t.Fatalf("CompilePattern(%q) error: %v", tc.pattern, err)
			}

			if got := p.Match(tc.path); got != tc.want {
				t.Fatalf("Match(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
			}
		})
	}
}

func TestPatternSetAdmits(t *testing.T) {
	t.Run("empty include admits everything not excluded", func(t *testing.T) {
		set, err := CompilePatternSet(nil, []string{"*.pyc", "tests/**"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if !set.Admits("src/main.py") {
			t.Error("expected src/main.py admitted")
		}

		if set.Admits("src/main.pyc") {
			t.Error("expected src/main.pyc excluded")
		}

		if set.Admits("tests/unit/test_x.py") {
			t.Error("expected tests/unit/test_x.py excluded")
		}
	})

	t.Run("non-empty include whitelists", func(t *testing.T) {
		set, err := CompilePatternSet([]string{"*.py"}, []string{"tests/**"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if !set.Admits("src/main.py") {
			t.Error("expected src/main.py admitted")
		}

		if set.Admits("src/main.js") {
			t.Error("expected src/main.js rejected by whitelist")
		}

		// Exclude still removes even when included.
		if set.Admits("tests/test_a.py") {
			t.Error("expected tests/test_a.py excluded")
		}
	})
}

func TestPatternSetPrunes(t *testing.T) {
	t.Run("prunes excluded directory with no includes", func(t *testing.T) {
		set, err := CompilePatternSet(nil, []string{".git", "node_modules"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if !set.Prunes(".git") {
			t.Error("expected .git pruned")
		}

		if !set.Prunes("sub/node_modules") {
			t.Error("expected sub/node_modules pruned")
		}

		if set.Prunes("src") {
			t.Error("expected src not pruned")
		}
	})

	t.Run("does not prune when an include could reach inside", func(t *testing.T) {
		set, err := CompilePatternSet([]string{"vendor/keep/**"}, []string{"vendor"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if set.Prunes("vendor") {
			t.Error("expected vendor kept open for vendor/keep/**")
		}
	})

	t.Run("bare include patterns keep every directory open", func(t *testing.T) {
		set, err := CompilePatternSet([]string{"*.py"}, []string{"build"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if set.Prunes("build") {
			t.Error("bare include could match inside build; must not prune")
		}
	})
}
