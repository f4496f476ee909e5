package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local writes under Root; the router serves Root at PublicPath.
type Local struct {
	Root    string
	BaseURL string
}

func NewLocal(root, appURL string) *Local {
	return &Local{Root: root, BaseURL: joinURL(appURL, PublicPath)}
}

const PublicPath = "/storage"

func (l *Local) PublicURL() string {
	return l.BaseURL
}

func (l *Local) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	dst := filepath.Join(l.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return joinURL(l.BaseURL, key), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.Root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
