package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

const filePerm = 0644

// FileBackend keeps one JSON file per scope at <base>_<version>_<level>.json.
type FileBackend struct {
	base string
}

// NewFileBackend creates a backend rooted at the given path prefix.
func NewFileBackend(base string) *FileBackend {
	return &FileBackend{base: base}
}

// Path returns the file that holds key's list.
func (b *FileBackend) Path(key scores.ScopeKey) string {
	return key.Name(b.base) + ".json"
}

func (b *FileBackend) Read(_ context.Context, key scores.ScopeKey) ([]byte, error) {
	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}

	return data, err
}

// Write stages data in a temporary file next to the target and renames it
// into place, so readers never see a partial file and a failed write leaves
// the previous file intact.
func (b *FileBackend) Write(_ context.Context, key scores.ScopeKey, data []byte) (err error) {
	path := b.Path(key)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err = tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace record: %w", err)
	}

	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
