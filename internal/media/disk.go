package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/logging"
)

// DiskStore keeps images below a base directory
type DiskStore struct {
	BasePath  string
	URLPrefix string
	logger    *zap.Logger
}

// NewDiskStore creates a disk store; urlPrefix is where the web layer
// serves BasePath from.
func NewDiskStore(basePath, urlPrefix string) *DiskStore {
	return &DiskStore{
		BasePath:  basePath,
		URLPrefix: urlPrefix,
		logger:    logging.WithComponent("media"),
	}
}

// Save writes the image and returns its key
func (s *DiskStore) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	data, _, key, err := sniff(body)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.BasePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", key, err)
	}
	if _, err := io.Copy(file, reader(data)); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", key, err)
	}

	s.logger.Debug("Image stored",
		zap.String("filename", filename),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}

// URL returns the path the image is served under
func (s *DiskStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(s.URLPrefix, "/") + "/" + key
}
