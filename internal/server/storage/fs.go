package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/spf13/afero"
)

// FSStore keeps blobs as files below a root folder.
type FSStore struct {
	fs   afero.Fs
	root string
}

// NewFSStore creates root when missing.
func NewFSStore(fs afero.Fs, root string) (*FSStore, error) {
	if err := fs.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("storage root error: %w", err)
	}
	return &FSStore{fs: fs, root: root}, nil
}

func (s *FSStore) path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}

func (s *FSStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := newRef(time.Now())
	p := s.path(ref)

	if err := s.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("mkdir error: %w", err)
	}

	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("ref %s: %w", ref, common.ErrorConflict)
		}
		return "", fmt.Errorf("open error: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return "", fmt.Errorf("write error: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close error: %w", err)
	}

	return ref, nil
}

func (s *FSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validRef(ref) {
		return nil, common.ErrorNotFound
	}

	data, err := afero.ReadFile(s.fs, s.path(ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read error: %w", err)
	}

	return data, nil
}

func (s *FSStore) PutDerived(ctx context.Context, ref, suffix string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validRef(ref) {
		return "", common.ErrorNotFound
	}

	derived := DerivedRef(ref, suffix)
	p := s.path(derived)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("mkdir error: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o640); err != nil {
		return "", fmt.Errorf("write error: %w", err)
	}

	return derived, nil
}

func (s *FSStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fi, err := s.fs.Stat(s.root)
	if err != nil {
		return fmt.Errorf("storage root error: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}
	return nil
}
