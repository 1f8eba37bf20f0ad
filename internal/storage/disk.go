package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the route the API serves stored blobs under.
const URLPrefix = "/uploads"

var ErrInvalidKey = errors.New("invalid storage key")

// Store keeps uploaded blobs and knows how to address them.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DiskStore writes blobs into a single directory on local disk.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, publicURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(publicURL, "/") + URLPrefix + "/",
	}, nil
}

// NewKey returns a fresh blob key keeping the file extension of filename.
func NewKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// Root is the directory blobs are written to.
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("write blob: %w", err)
	}
	return n, nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *DiskStore) URL(key string) string {
	return s.baseURL + key
}

func (s *DiskStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, key), nil
}
