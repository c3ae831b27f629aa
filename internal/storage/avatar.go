package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxAvatarSize = 5 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

var (
	ErrTooLarge    = errors.New("file too large")
	ErrInvalidType = errors.New("invalid file type")
)

// AvatarStore writes avatar images to the local filesystem under a single
// directory and serves them by URL path. Filenames are random, so a URL
// never reveals the uploader.
type AvatarStore struct {
	dir string
}

func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar dir: %w", err)
	}
	return &AvatarStore{dir: dir}, nil
}

func (s *AvatarStore) Dir() string {
	return s.dir
}

// Save stores the uploaded content and returns the public URL path.
func (s *AvatarStore) Save(originalName string, size int64, content io.Reader) (string, error) {
	if size > MaxAvatarSize {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrInvalidType
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(content, MaxAvatarSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/uploads/avatars/" + filename, nil
}

// Remove deletes the file behind a previously returned URL. A missing file
// is not an error.
func (s *AvatarStore) Remove(avatarURL string) error {
	filename := filepath.Base(avatarURL)
	if filename == "." || filename == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
