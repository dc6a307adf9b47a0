package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	m "repolens.dev/pkg/repolens/internal/model"
)

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLocalSourceFSAdapterWalk(t *testing.T) {
	t.Run("visits files in lexicographic order", func(t *testing.T) {
		a := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "b.txt"), []byte("b\n"))
		writeTestFile(t, filepath.Join(root, "a", "x.txt"), []byte("x\n"))
		writeTestFile(t, filepath.Join(root, "c.txt"), []byte("c\n"))

		var visited []string

		err := a.Walk(m.Path(root), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() {
				rel, _ := filepath.Rel(root, path)
				visited = append(visited, filepath.ToSlash(rel))
			}

			return nil
		})
		if err != nil {
			t.Fatalf("Walk error: %v", err)
		}

		want := []string{"a/x.txt", "b.txt", "c.txt"}
		if len(visited) != len(want) {
			t.Fatalf("visited = %v", visited)
		}

		for i := range want {
			if visited[i] != want[i] {
				t.Fatalf("order wrong: %v, want %v", visited, want)
			}
		}
	})

	t.Run("skip dir prunes the subtree", func(t *testing.T) {
		a := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "skipme", "hidden.txt"), []byte("h\n"))
		writeTestFile(t, filepath.Join(root, "keep.txt"), []byte("k\n"))

		var visited []string

		err := a.Walk(m.Path(root), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() && filepath.Base(path) == "skipme" {
				return filepath.SkipDir
			}

			if !info.IsDir() {
				visited = append(visited, filepath.Base(path))
			}

			return nil
		})
		if err != nil {
			t.Fatalf("Walk error: %v", err)
		}

		if len(visited) != 1 || visited[0] != "keep.txt" {
			t.Fatalf("visited = %v", visited)
		}
	})
}

func TestLocalSourceFSAdapterReadText(t *testing.T) {
	a := NewLocalSourceFSAdapter()

	t.Run("reads utf-8 text", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "x.txt")
		writeTestFile(t, path, []byte("héllo\n"))

		text, err := a.ReadText(m.Path(path))
		if err != nil {
			t.Fatalf("ReadText error: %v", err)
		}

		if text != "héllo\n" {
			t.Fatalf("text = %q", text)
		}
	})

	t.Run("rejects files with a zero byte in the first kilobyte", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "blob.bin")
		writeTestFile(t, path, []byte{0x41, 0x00, 0x42})

		_, err := a.ReadText(m.Path(path))
		if !errors.Is(err, m.ErrBinaryFile) {
			t.Fatalf("expected ErrBinaryFile, got %v", err)
		}
	})

	t.Run("missing file returns the underlying error", func(t *testing.T) {
		_, err := a.ReadText(m.Path(filepath.Join(t.TempDir(), "nope.txt")))
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDecodeText(t *testing.T) {
	t.Run("latin-1 fallback preserves every byte as a code point", func(t *testing.T) {
		// 0xE9 alone is invalid UTF-8 but valid latin-1 ("é").
		text, err := DecodeText([]byte{'c', 'a', 'f', 0xE9})
		if err != nil {
			t.Fatalf("DecodeText error: %v", err)
		}

		if text != "café" {
			t.Fatalf("text = %q", text)
		}
	})

	t.Run("strips a utf-8 bom", func(t *testing.T) {
		text, err := DecodeText([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'})
		if err != nil {
			t.Fatalf("DecodeText error: %v", err)
		}

		if text != "hi" {
			t.Fatalf("text = %q", text)
		}
	})

	t.Run("bom-only file decodes to empty text", func(t *testing.T) {
		text, err := DecodeText([]byte{0xEF, 0xBB, 0xBF})
		if err != nil || text != "" {
			t.Fatalf("text = %q, err = %v", text, err)
		}
	})

	t.Run("zero byte past the first kilobyte is not binary", func(t *testing.T) {
		data := make([]byte, 2048)
		for i := range data {
			data[i] = 'a'
		}

		data[1500] = 0x00

		if _, err := DecodeText(data); err != nil {
			t.Fatalf("sniff must only cover the first kilobyte: %v", err)
		}
	})
}

func TestLocalSourceFSAdapterDescribe(t *testing.T) {
	a := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "sub", "file.txt")
	writeTestFile(t, path, []byte("data\n"))

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	desc, err := a.Describe(m.Path(root), path, info)
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}

	if desc.RelPath != "sub/file.txt" {
		t.Fatalf("RelPath = %q", desc.RelPath)
	}

	if desc.Size != 5 {
		t.Fatalf("Size = %d", desc.Size)
	}

	if desc.ModTime.IsZero() || desc.CreateTime.IsZero() {
		t.Fatalf("times not captured: %+v", desc)
	}
}
