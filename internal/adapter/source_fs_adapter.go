// Package adapter contains filesystem and infrastructure adapters for
// the repolens CLI.
package adapter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	m "repolens.dev/pkg/repolens/internal/model"
)

// binarySniffBytes is how much of a file the binary heuristic reads.
const binarySniffBytes = 1024

// utf8BOM is stripped from decoded content before anything else sees it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceFSAdapter abstracts the filesystem operations the domain layer
// relies on when serializing user projects. It hides direct `os`
// access so the pipeline can be tested without touching the disk.
type SourceFSAdapter interface {
	// Walk traverses root depth-first, enumerating each directory's
	// entries in lexicographic order so runs are deterministic. The
	// callback mirrors filepath.Walk: returning filepath.SkipDir from
	// a directory visit prunes the subtree.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// ReadText loads and decodes a file. It returns
	// model.ErrBinaryFile when the first kilobyte contains a zero
	// byte. Decoding tries UTF-8 first and falls back to an 8-bit
	// pass-through (latin-1); a leading UTF-8 BOM is stripped.
	ReadText(path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// Describe builds the immutable descriptor the walker yields for
	// a candidate file.
	Describe(root m.Path, absPath string, info os.FileInfo) (m.FileDescriptor, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
// It is defined here to avoid leaking the standard-library type
// directly into the domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the disk-backed implementation.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to
// be wired into the emitter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root. filepath.Walk visits entries
// in lexical order, which is the determinism guarantee callers need.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn FilepathWalkFunc) error {
	return filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		return fn(path, info, err)
	})
}

// ReadText loads file contents, rejecting binaries and decoding text.
func (a *LocalSourceFSAdapter) ReadText(path m.Path) (string, error) {
	// #nosec G304 - path comes from the walked project tree
	data, err := os.ReadFile(string(path))
	if err != nil {
		return "", err
	}

	return DecodeText(data)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Describe computes the relative path (forward-slash normalized) and
// captures size and times. Creation time falls back to the
// modification time on filesystems that do not expose birth time.
func (a *LocalSourceFSAdapter) Describe(root m.Path, absPath string, info os.FileInfo) (m.FileDescriptor, error) {
	rel, err := filepath.Rel(string(root), absPath)
	if err != nil {
		return m.FileDescriptor{}, fmt.Errorf("relativize %s: %w", absPath, err)
	}

	return m.FileDescriptor{
		RelPath:    m.Path(filepath.ToSlash(rel)),
		AbsPath:    m.Path(absPath),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		CreateTime: info.ModTime(),
	}, nil
}

// DecodeText applies the binary heuristic and decodes file bytes to
// text. Exported so the pure Process entry point shares the exact
// same classification.
func DecodeText(data []byte) (string, error) {
	sniff := data
	if len(sniff) > binarySniffBytes {
		sniff = sniff[:binarySniffBytes]
	}

	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", m.ErrBinaryFile
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), nil
	}

	// 8-bit pass-through: map each byte to the Unicode code point of
	// the same value, so nothing is lost and output stays valid UTF-8.
	var b strings.Builder
	b.Grow(len(data))

	for _, c := range data {
		b.WriteRune(rune(c))
	}

	return b.String(), nil
}
