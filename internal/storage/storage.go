// Package storage saves uploaded catalog images and returns their public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// PublicURL is the base every returned URL starts with.
	PublicURL() string
}

// ObjectKey builds "<folder>/<uuid><ext>".
func ObjectKey(folder, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(folder, uuid.NewString()+ext)
}

// KeyFromURL reverses a URL produced by a Storage with the given public base.
func KeyFromURL(base, url string) (string, bool) {
	base = strings.TrimRight(base, "/") + "/"
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	return strings.TrimPrefix(url, base), true
}

func joinURL(base, key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(key, "/"))
}
