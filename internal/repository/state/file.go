package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/panic-button/internal/config"
	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// Repository defines persistence operations for the alert snapshot.
type Repository interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

// ErrNotFound is returned when no snapshot has been persisted yet.
var ErrNotFound = errors.New("state not found")

// errSnapshotRequired is returned when Save is called without a snapshot.
var errSnapshotRequired = errors.New("snapshot is required")

// FileRepository persists the alert snapshot to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var snapshot domain.Snapshot
	if err = json.Unmarshal(contents, &snapshot); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return &snapshot, nil
}

// Save writes the snapshot to disk as JSON.
func (r *FileRepository) Save(_ context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return errSnapshotRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
