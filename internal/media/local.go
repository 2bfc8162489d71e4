package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the path the router serves the upload directory under.
const URLPrefix = "/uploads/"

// LocalStore keeps images in a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// path maps key to a file under dir, refusing keys that escape it.
func (s *LocalStore) path(key string) (string, string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("media: invalid key %q", key)
	}
	return filepath.Join(s.dir, clean), filepath.ToSlash(clean), nil
}

// Save writes r to key atomically and returns its /uploads/ ref.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	const op = "media.LocalStore.Save"

	dst, cleanKey, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return URLPrefix + cleanKey, nil
}

// Delete removes the file behind ref. Missing files and foreign refs are ignored.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, URLPrefix)
	if !ok {
		return nil
	}
	p, _, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("media.LocalStore.Delete: %w", err)
	}
	return nil
}

// List returns every stored file. Temp files from in-flight uploads are skipped.
func (s *LocalStore) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{Ref: URLPrefix + filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("media.LocalStore.List: %w", err)
	}
	return objects, nil
}
