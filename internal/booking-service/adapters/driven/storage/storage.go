package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which buckets are served read-only.
const PublicPrefix = "/storage/v1/object/public/"

var ErrInvalidPath = errors.New("invalid object path")

// FileStorage keeps objects as files under root/<bucket>/<path>.
type FileStorage struct {
	root      string
	publicURL string
}

func New(root, publicURL string) (*FileStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileStorage{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (fs *FileStorage) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) error {
	target, err := fs.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

func (fs *FileStorage) PublicURL(bucket, objectPath string) string {
	return fs.publicURL + PublicPrefix + path.Join(bucket, objectPath)
}

// Root is the directory served under PublicPrefix.
func (fs *FileStorage) Root() string {
	return fs.root
}

func (fs *FileStorage) resolve(bucket, objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || clean == "/" || objectPath != strings.TrimPrefix(clean, "/") {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidPath, bucket, objectPath)
	}
	return filepath.Join(fs.root, bucket, filepath.FromSlash(objectPath)), nil
}
