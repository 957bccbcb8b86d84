// Package storage is the content store the catalog metadata points into.
// It is a thin layer over a billy filesystem so that production uses the
// local disk while tests run against an in-memory filesystem.
package storage

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FileInfo carries the byte size and last-modified time of a stored file.
type FileInfo struct {
	Size    int64
	ModTime time.Time
}

// Store is the capability set the download resolver needs: open a file at a
// logical path, and stat it without opening.
type Store interface {
	Open(logicalPath string) (io.ReadCloser, FileInfo, error)
	Stat(logicalPath string) (FileInfo, error)
}

// FilePath joins the catalog coordinates of a download into its logical
// path in the content store.
func FilePath(project, version string, build int, artifact, file string) string {
	return path.Join(project, version, strconv.Itoa(build), artifact, file)
}

type billyStore struct {
	fs billy.Filesystem
}

// NewOS returns a Store rooted at the given directory on the local disk.
func NewOS(root string) Store {
	return &billyStore{fs: osfs.New(root)}
}

// New wraps an arbitrary billy filesystem. Tests hand in memfs.
func New(fs billy.Filesystem) Store {
	return &billyStore{fs: fs}
}

func (s *billyStore) Open(logicalPath string) (io.ReadCloser, FileInfo, error) {
	info, err := s.Stat(logicalPath)
	if err != nil {
		return nil, FileInfo{}, err
	}
	f, err := s.fs.Open(logicalPath)
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("open %s: %w", logicalPath, err)
	}
	return f, info, nil
}

func (s *billyStore) Stat(logicalPath string) (FileInfo, error) {
	fi, err := s.fs.Stat(logicalPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", logicalPath, err)
	}
	return FileInfo{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
