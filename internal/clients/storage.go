package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportStorage is where generated loan reports end up. Local disk is the
// default backend; S3Storage covers deployments with an object store.
type ReportStorage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	GetURL(ctx context.Context, fileName string) (string, error)
}

// LocalStorage keeps report files in a directory served under PublicPrefix.
// Files are short-lived; a cleanup loop in main prunes old ones.
type LocalStorage struct {
	BaseDir      string
	PublicPrefix string // URL path where files are served, e.g. "/files"
	BaseURL      string // optional scheme+host used to build absolute URLs
}

func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure report dir %q: %w", baseDir, err)
	}

	return &LocalStorage{BaseDir: baseDir, PublicPrefix: publicPrefix, BaseURL: baseURL}, nil
}

// Save writes data under a random-prefixed name (avoids collisions and path
// guessing) and returns the stored filename.
func (s *LocalStorage) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	final := fmt.Sprintf("%s_%s", hex.EncodeToString(randBytes), fileName)

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// GetURL builds the download URL for a stored file: absolute when BaseURL is
// configured, path-relative otherwise.
func (s *LocalStorage) GetURL(ctx context.Context, fileName string) (string, error) {
	prefix := s.PublicPrefix
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	if s.BaseURL != "" {
		return fmt.Sprintf("%s%s/%s", strings.TrimRight(s.BaseURL, "/"), prefix, fileName), nil
	}
	return fmt.Sprintf("%s/%s", prefix, fileName), nil
}

// CleanupOlderThan deletes report files older than d.
func (s *LocalStorage) CleanupOlderThan(d time.Duration) error {
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path) // best-effort
		}
		return nil
	})
}
