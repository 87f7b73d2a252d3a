package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalProvider writes uploads under a directory that the router serves statically.
type LocalProvider struct {
	dir     string
	urlPath string
}

// NewLocalProvider creates a LocalProvider rooted at dir and served under urlPath.
func NewLocalProvider(dir, urlPath string) *LocalProvider {
	return &LocalProvider{dir: dir, urlPath: urlPath}
}

// Save writes body to dir/key.
func (p *LocalProvider) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	target := filepath.Join(p.dir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(target)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(target)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	return joinURL(p.urlPath, cleaned), nil
}
