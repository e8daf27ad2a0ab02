// Package imagestore persists uploaded images to a filesystem-backed blob
// store. Images are referenced by path everywhere else in the system.
package imagestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleansweep/litterwatch/internal/errors"
)

type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a store rooted at dir, creating the directory when missing.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload directory", slog.String("dir", dir))
	}
	return &Store{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// DecodeBase64 decodes a base64-encoded image, stripping an optional
// data-URI prefix such as "data:image/jpeg;base64,".
func DecodeBase64(b64 string) ([]byte, error) {
	if _, data, found := strings.Cut(b64, ","); found {
		b64 = data
	}
	img, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 image")
	}
	return img, nil
}

// Save writes the image under a timestamped filename and returns its path.
// Microsecond granularity is the only collision guard.
func (s *Store) Save(prefix string, img []byte) (string, error) {
	now := s.now()
	name := fmt.Sprintf("%s_%s_%06d.jpg", prefix, now.Format("20060102_150405"), now.Nanosecond()/1000)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", errors.Wrap(err, "write image", slog.String("path", path))
	}
	return path, nil
}

// LoadBase64 reads the image at path and returns it as a base64 data URI.
// It returns an empty string when the file cannot be read so listings can
// carry a null image instead of failing.
func (s *Store) LoadBase64(path string) string {
	img, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)
}

// Remove deletes the image at path best-effort. Failures are logged and
// swallowed, they never block the primary response.
func (s *Store) Remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "failed to remove image",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}
