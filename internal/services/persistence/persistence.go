package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloudcomb/ncp/internal/types"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// Service defines state persistence operations
type Service interface {
	Load(result any) error
	Save(state any) error
	SaveWithRetry(state any) error
	GetFilePath() string
	Exists() bool
}

// FileService implements persistence to a local file
type FileService struct {
	filePath string
}

// NewFileService creates a new file-based persistence service
func NewFileService(filePath string) *FileService {
	return &FileService{
		filePath: filePath,
	}
}

// NewDeploymentStore returns the persistence service for an asset directory's
// deployment state file.
func NewDeploymentStore(assetDir string) *FileService {
	return NewFileService(types.StatePath(assetDir))
}

// Load reads state from file
func (s *FileService) Load(result any) error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return nil
}

// GetFilePath returns the file path managed by this service
func (s *FileService) GetFilePath() string {
	return s.filePath
}

// Exists reports whether the state file has been written yet.
func (s *FileService) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Save persists state to file atomically
func (s *FileService) Save(state any) error {
	// Write to temporary file first for atomic operation
	tmpFile := s.filePath + ".tmp"

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename (on most filesystems)
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		os.Remove(tmpFile) // Clean up temp file
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// SaveWithRetry persists state with exponential backoff retry
func (s *FileService) SaveWithRetry(state any) error {
	var err error

	for i := 0; i < maxRetries; i++ {
		err = s.Save(state)
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			backoff := initialBackoff * time.Duration(1<<uint(i))
			slog.Warn("Failed to persist deployment state, retrying...",
				"attempt", i+1,
				"maxRetries", maxRetries,
				"backoff", backoff,
				"error", err,
			)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("failed to persist deployment state after %d retries: %w", maxRetries, err)
}
