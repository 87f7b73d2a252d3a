package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for object keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// Provider stores uploaded files and returns the public URL they are served from.
type Provider interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.Contains(trimmed, "..") || strings.ContainsRune(trimmed, '\\') {
		return "", ErrInvalidKey
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleaned == "" {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
