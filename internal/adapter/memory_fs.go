package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	m "repolens.dev/pkg/repolens/internal/model"
)

// MemorySourceFS backs the SourceFSAdapter interface with an
// in-memory file set, for the pure Process entry point and for tests.
// Traversal order mirrors the disk walker: lexicographic by path
// segment, directories interleaved with files.
type MemorySourceFS struct {
	files map[string]m.MemoryFile
	order []string
}

// NewMemorySourceFS builds an adapter over the given files. Paths are
// normalized to forward slashes.
func NewMemorySourceFS(files []m.MemoryFile) *MemorySourceFS {
	fs := &MemorySourceFS{files: map[string]m.MemoryFile{}}

	for _, f := range files {
		rel := strings.Trim(filepath.ToSlash(string(f.RelPath)), "/")
		if rel == "" {
			continue
		}

		f.RelPath = m.Path(rel)
		fs.files[rel] = f
		fs.order = append(fs.order, rel)
	}

	sort.Slice(fs.order, func(i, j int) bool {
		return segmentLess(fs.order[i], fs.order[j])
	})

	return fs
}

// segmentLess compares paths one segment at a time, matching the
// order a lexicographic directory walk visits them in.
func segmentLess(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}

	return len(as) < len(bs)
}

// Walk implements SourceFSAdapter. The root is nominal; every stored
// file appears under it.
func (fs *MemorySourceFS) Walk(root m.Path, fn FilepathWalkFunc) error {
	for _, rel := range fs.order {
		f := fs.files[rel]

		err := fn(rel, memFileInfo{name: filepath.Base(rel), size: int64(len(f.Data)), mtime: f.ModTime}, nil)
		if err == filepath.SkipDir {
			continue
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// ReadText implements SourceFSAdapter.
func (fs *MemorySourceFS) ReadText(path m.Path) (string, error) {
	f, ok := fs.files[string(path)]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}

	return DecodeText(f.Data)
}

// FileInfo implements SourceFSAdapter.
func (fs *MemorySourceFS) FileInfo(path m.Path) (os.FileInfo, error) {
	f, ok := fs.files[string(path)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return memFileInfo{name: filepath.Base(string(path)), size: int64(len(f.Data)), mtime: f.ModTime}, nil
}

// Describe implements SourceFSAdapter. Walk already hands out
// root-relative paths, so the relative and absolute paths coincide.
func (fs *MemorySourceFS) Describe(_ m.Path, path string, info os.FileInfo) (m.FileDescriptor, error) {
	return m.FileDescriptor{
		RelPath:    m.Path(path),
		AbsPath:    m.Path(path),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		CreateTime: info.ModTime(),
	}, nil
}

type memFileInfo struct {
	name  string
	size  int64
	mtime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() os.FileMode  { return 0o644 }
func (fi memFileInfo) ModTime() time.Time { return fi.mtime }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
