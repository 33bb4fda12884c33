package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageBytes is the upload cap for profile images (2 MiB).
const MaxImageBytes = 2 * 1024 * 1024

var (
	ErrNotImage = errors.New("Profile image must be an image file")
	ErrTooLarge = errors.New("Profile image must be 2MB or smaller")
)

// Upload describes an inbound file before it is persisted. Size and
// ContentType come from the multipart part; both are checked before any
// byte is written.
type Upload struct {
	Reader      io.Reader
	Name        string // original filename, only its extension is kept
	Size        int64
	ContentType string
}

// ImageStore persists profile images as flat files under a single managed
// directory. There is no in-memory state; every call goes to disk.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Dir is the managed directory, for serving /uploads statically.
func (s *ImageStore) Dir() string { return s.dir }

// Store validates the upload and writes it under a generated filename that
// is unique within the directory. The name combines the form field tag, a
// millisecond timestamp and a random component, keeping the original
// extension.
func (s *ImageStore) Store(up Upload) (string, error) {
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", ErrNotImage
	}
	if up.Size > MaxImageBytes {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(up.Name)))
	name := fmt.Sprintf("profileImage-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	// The declared size was already gated; the limit here stops a lying
	// client from streaming past it.
	_, err = io.Copy(f, io.LimitReader(up.Reader, MaxImageBytes))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("write image file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error; removal
// is idempotent.
func (s *ImageStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URLFor is the public URL of a stored image, or "" for no image.
func URLFor(name, baseURL string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/uploads/" + name
}
