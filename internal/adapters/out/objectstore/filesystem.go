// Package objectstore provides ObjectStore implementations for uploaded print files.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/pkg/errs"
)

// FileStore keeps each asset as a file under root, named by its ref.
// Refs shaped like "sha256:abc" map to "<root>/sha256/abc".
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errs.NewValueIsRequiredError("assets dir")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("assets dir", err)
	}
	if err = os.MkdirAll(abs, 0o750); err != nil {
		return nil, errs.NewStorageError("create assets dir", err)
	}
	return &FileStore{root: abs}, nil
}

// Put writes data under ref, replacing an existing object.
func (s *FileStore) Put(ctx context.Context, ref kernel.AssetRef, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errs.NewStorageError("put asset", err)
	}
	if err = os.WriteFile(path, data, 0o640); err != nil {
		return errs.NewStorageError("put asset", err)
	}
	return nil
}

// Exists reports whether an object is stored under ref.
func (s *FileStore) Exists(ctx context.Context, ref kernel.AssetRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.path(ref)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errs.NewStorageError("stat asset", err)
	}
}

// Delete removes the object behind ref. A missing object is not an error.
func (s *FileStore) Delete(ctx context.Context, ref kernel.AssetRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.NewStorageError("delete asset", err)
	}
	return nil
}

func (s *FileStore) path(ref kernel.AssetRef) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	rel := filepath.FromSlash(strings.ReplaceAll(ref.String(), ":", "/"))
	path := filepath.Join(s.root, rel)
	if path == s.root || !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", errs.NewValueIsInvalidErrorWithCause("asset ref", fmt.Errorf("%q escapes the assets dir", ref))
	}
	return path, nil
}
