package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// allowed upload extensions, lower-case
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes uploaded files to a local media directory and maps them
// to URL paths under a base URL. Files are written before the database
// record referencing them is committed; Remove undoes the write when
// the commit fails.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates a media store rooted at dir, served under baseURL
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes an uploaded image under subdir with a random name,
// keeping the original extension, and returns its URL path.
func (s *Store) Save(subdir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImageType
	}

	if err := os.MkdirAll(filepath.Join(s.dir, subdir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.dir, subdir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	return s.baseURL + "/" + path.Join(subdir, name), nil
}

// Remove deletes the file behind a URL previously returned by Save
func (s *Store) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not under media base", url)
	}

	// Reject anything that would escape the media directory.
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid media path %q", rel)
	}

	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}
