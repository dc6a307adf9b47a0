package analyzer

import (
	"testing"
)

func TestMarkdownAnalyzer(t *testing.T) {
	a := NewMarkdownAnalyzer()

	t.Run("headers and links", func(t *testing.T) {
		src := "# Title\n" +
			"\n" +
			"Intro text with a [link](docs/guide.md).\n" +
			"\n" +
			"## Section One\n" +
			"\n" +
			"Body here.\n" +
			"\n" +
			"### Deep\n"

		res := a.Analyze(pyLines(src), "README.md")

		if res.Facts.Language != "Markdown" {
			t.Fatalf("language = %s", res.Facts.Language)
		}

		for _, want := range []string{"Title", "Section One", "Deep"} {
			if !containsString(res.Facts.Classes, want) {
				t.Errorf("missing header %q: %v", want, res.Facts.Classes)
			}
		}

		if !containsString(res.Facts.Imports, "docs/guide.md") {
			t.Errorf("links = %v", res.Facts.Imports)
		}

		if !res.Facts.HasDocs {
			t.Error("markdown is documentation")
		}
	})

	t.Run("structure keeps the outline only", func(t *testing.T) {
		src := "# Title\n" +
			"\n" +
			"Paragraph.\n" +
			"\n" +
			"## Section\n" +
			"\n" +
			"More text.\n"

		res := a.Analyze(pyLines(src), "doc.md")

		kept := map[int]bool{}
		for _, r := range res.Structure {
			for i := r.Start; i < r.End; i++ {
				kept[i] = true
			}
		}

		if !kept[0] || !kept[4] {
			t.Errorf("header lines must be kept: %v", res.Structure)
		}

		if kept[2] || kept[6] {
			t.Errorf("paragraph lines must not be kept: %v", res.Structure)
		}
	})

	t.Run("headers inside code fences are ignored", func(t *testing.T) {
		src := "# Real\n" +
			"```\n" +
			"# not a header\n" +
			"```\n"

		res := a.Analyze(pyLines(src), "doc.md")

		if len(res.Facts.Classes) != 1 || res.Facts.Classes[0] != "Real" {
			t.Errorf("fence content leaked into headers: %v", res.Facts.Classes)
		}
	})

	t.Run("no headers means empty structure", func(t *testing.T) {
		src := "just some prose\nwith two lines\n"

		res := a.Analyze(pyLines(src), "notes.md")

		if len(res.Structure) != 0 {
			t.Errorf("expected empty structure for headerless doc: %v", res.Structure)
		}
	})
}

func TestJSONAnalyzer(t *testing.T) {
	a := NewJSONAnalyzer()

	t.Run("top-level keys and depth", func(t *testing.T) {
		src := "{\n" +
			"  \"name\": \"sample\",\n" +
			"  \"scripts\": {\n" +
			"    \"build\": \"make\"\n" +
			"  },\n" +
			"  \"version\": \"1.0.0\"\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "package.json")

		for _, want := range []string{"name", "scripts", "version"} {
			if !containsString(res.Facts.Classes, want) {
				t.Errorf("missing key %q: %v", want, res.Facts.Classes)
			}
		}

		if containsString(res.Facts.Classes, "build") {
			t.Errorf("nested key leaked: %v", res.Facts.Classes)
		}

		if res.Facts.MaxDepth != 2 {
			t.Errorf("max depth = %d, want 2", res.Facts.MaxDepth)
		}
	})

	t.Run("structure keeps key outline and braces", func(t *testing.T) {
		src := "{\n" +
			"  \"a\": 1,\n" +
			"  \"b\": {\n" +
			"    \"c\": 2\n" +
			"  }\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "data.json")

		kept := map[int]bool{}
		for _, r := range res.Structure {
			for i := r.Start; i < r.End; i++ {
				kept[i] = true
			}
		}

		if !kept[0] || !kept[1] || !kept[2] || !kept[5] {
			t.Errorf("outline lines missing: %v", res.Structure)
		}

		if kept[3] {
			t.Errorf("nested key leaked into structure: %v", res.Structure)
		}
	})

	t.Run("braces inside strings do not count", func(t *testing.T) {
		src := "{\n" +
			"  \"text\": \"a { brace\"\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "tricky.json")

		if res.Facts.MaxDepth != 1 {
			t.Errorf("max depth = %d, want 1", res.Facts.MaxDepth)
		}
	})
}

func TestYAMLAnalyzer(t *testing.T) {
	a := NewYAMLAnalyzer()

	t.Run("top-level keys only", func(t *testing.T) {
		src := "# Runtime config.\n" +
			"greeting: Hello\n" +
			"features:\n" +
			"  shout: false\n" +
			"log_level: info\n"

		res := a.Analyze(pyLines(src), "config.yaml")

		for _, want := range []string{"greeting", "features", "log_level"} {
			if !containsString(res.Facts.Classes, want) {
				t.Errorf("missing key %q: %v", want, res.Facts.Classes)
			}
		}

		if containsString(res.Facts.Classes, "shout") {
			t.Errorf("nested key leaked: %v", res.Facts.Classes)
		}

		if !res.Facts.HasDocs {
			t.Error("comments should mark HasDocs")
		}
	})

	t.Run("structure keeps top-level key lines", func(t *testing.T) {
		src := "a: 1\n" +
			"nested:\n" +
			"  b: 2\n"

		res := a.Analyze(pyLines(src), "x.yml")

		kept := map[int]bool{}
		for _, r := range res.Structure {
			for i := r.Start; i < r.End; i++ {
				kept[i] = true
			}
		}

		if !kept[0] || !kept[1] || kept[2] {
			t.Errorf("structure ranges wrong: %v", res.Structure)
		}
	})
}
