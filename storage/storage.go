// Package storage keeps raw fetched HTML snapshots on the filesystem so an
// article can be re-extracted later without refetching the origin.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config contains storage configuration.
type Config struct {
	BasePath string // base directory for all snapshot files
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		BasePath: "./storage",
	}
}

// Storage handles filesystem snapshot operations.
type Storage struct {
	config Config
}

// New creates a Storage instance, creating the base directory if needed.
func New(config Config) (*Storage, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory: %w", err)
	}
	return &Storage{config: config}, nil
}

// SaveSnapshot writes the raw HTML of a fetched page under
// snapshots/YYYY/MM/slug.html and returns the path relative to the base
// directory. Name collisions get a numeric suffix rather than overwriting.
func (s *Storage) SaveSnapshot(body []byte, slug string) (string, error) {
	if slug == "" {
		slug = "page"
	}

	now := time.Now()
	dirPath := filepath.Join(s.config.BasePath, "snapshots",
		fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	filePath := filepath.Join(dirPath, slug+".html")
	counter := 1
	for fileExists(filePath) {
		filePath = filepath.Join(dirPath, fmt.Sprintf("%s-%d.html", slug, counter))
		counter++
	}

	if err := os.WriteFile(filePath, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	relPath, err := filepath.Rel(s.config.BasePath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}
	return relPath, nil
}

// ReadSnapshot reads a stored snapshot by its relative path.
func (s *Storage) ReadSnapshot(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.config.BasePath, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// DeleteSnapshot removes a stored snapshot. Missing files are not an error.
func (s *Storage) DeleteSnapshot(relPath string) error {
	if relPath == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.config.BasePath, relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
