package datastore

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

type (
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) path(key string) (string, error) {
	p := filepath.Join(dds.rootPath, filepath.FromSlash(key))
	if p != dds.rootPath && !strings.HasPrefix(p, filepath.Clean(dds.rootPath)+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes the data store root", key)
	}
	return p, nil
}

func (dds *DiskDataStore) WriteFile(_ context.Context, key string, r io.ReadSeeker, _ string) error {
	p, err := dds.path(key)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("error in os.Create: %w", err)
	}
	defer f.Close()
	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("error in io.Copy: %w", err)
	}
	return f.Sync()
}

func (dds *DiskDataStore) ReadFile(_ context.Context, key string) ([]byte, error) {
	p, err := dds.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}
	return b, nil
}

func (dds *DiskDataStore) Shutdown(context.Context) error {
	return nil
}
