package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs under a base directory. Keys are slash-separated
// and must stay inside the base.
type DiskStore struct {
	Base string
}

func NewDiskStore() *DiskStore {
	base := os.Getenv("UPLOAD_DIR")
	if base == "" {
		base = "uploads"
	}
	return &DiskStore{Base: base}
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", os.ErrInvalid
	}
	return filepath.Join(d.Base, clean), nil
}

func (d *DiskStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *DiskStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", err
	}
	return f, contentTypeFor(key), nil
}

func (d *DiskStore) Delete(ctx context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
