package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes images below a media directory served at baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Dir is the directory images are written to.
func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.WriteFile(filepath.Join(d.dir, filepath.Base(name)), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return d.baseURL + filepath.Base(name), nil
}

func (d *DiskStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, d.baseURL) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, d.baseURL))
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
