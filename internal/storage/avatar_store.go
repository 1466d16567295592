// Package storage keeps avatar images in a directory served by the HTTP server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidAvatarName = errors.New("invalid avatar file name")

// LocalAvatarStore writes avatars under dir and exposes them at urlPrefix.
type LocalAvatarStore struct {
	dir       string
	urlPrefix string
}

// NewLocalAvatarStore creates a store. urlPrefix always ends with a slash.
func NewLocalAvatarStore(dir, urlPrefix string) *LocalAvatarStore {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalAvatarStore{dir: dir, urlPrefix: urlPrefix}
}

// Dir returns the directory served at URLPrefix.
func (s *LocalAvatarStore) Dir() string { return s.dir }

// URLPrefix returns the public path prefix of managed avatars.
func (s *LocalAvatarStore) URLPrefix() string { return s.urlPrefix }

func cleanName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAvatarName, name)
	}
	return name, nil
}

// Save writes content to dir/name and returns its public URL.
func (s *LocalAvatarStore) Save(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return s.urlPrefix + name, nil
}

// IsManaged reports whether publicURL points into this store.
func (s *LocalAvatarStore) IsManaged(publicURL string) bool {
	return strings.HasPrefix(publicURL, s.urlPrefix)
}

// Delete removes a managed avatar. A file that is already gone is not an error.
func (s *LocalAvatarStore) Delete(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.IsManaged(publicURL) {
		return fmt.Errorf("%w: %q is not managed", ErrInvalidAvatarName, publicURL)
	}
	name, err := cleanName(strings.TrimPrefix(publicURL, s.urlPrefix))
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}
