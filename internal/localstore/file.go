package localstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FileBackend writes one JSON file per key below dir.
type FileBackend struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

func NewFileBackend(fsys afero.Fs, dir string) (*FileBackend, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{fs: fsys, dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	return filepath.Join(f.dir, safe+".json")
}

func (f *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return data, err
}

func (f *FileBackend) Write(_ context.Context, name string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, value, 0o644); err != nil {
		_ = f.fs.Remove(tmp)
		return err
	}
	return f.fs.Rename(tmp, target)
}

func (f *FileBackend) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.fs.Remove(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
