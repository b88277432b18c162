package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"resumeflow/internal/shared/storage/object"
)

// Store keeps artifacts on the local filesystem. It is meant for development
// and single-instance deployments.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// Put streams r into a temporary file and renames it into place, so a
// partially written artifact is never visible under its key.
func (s *Store) Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Object, error) {
	key, _, err := object.NewKey(userID, fileName)
	if err != nil {
		return object.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	dest := s.path(key)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return object.Object{}, fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return object.Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return object.Object{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return object.Object{}, fmt.Errorf("commit %s: %w", key, err)
	}
	return object.Object{Key: key, ContentType: contentType, Size: n}, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, object.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, object.Object{}, err
	}
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, object.Object{}, fmt.Errorf("invalid object key %q", key)
	}

	f, err := os.Open(filepath.Join(s.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, object.Object{}, object.ErrNotFound
	}
	if err != nil {
		return nil, object.Object{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, object.Object{}, err
	}
	if info.IsDir() {
		f.Close()
		return nil, object.Object{}, object.ErrNotFound
	}
	return f, object.Object{
		Key:         filepath.ToSlash(rel),
		ContentType: contentTypeOf(rel),
		Size:        info.Size(),
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var _ object.ObjectStore = (*Store)(nil)
