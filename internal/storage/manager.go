package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown dataset IDs.
var ErrNotFound = errors.New("dataset not found")

const indexFile = "index.json"

// Store defines the interface for uploaded dataset storage.
type Store interface {
	Save(name string, r io.Reader) (*models.DatasetInfo, error)
	Get(id string) (*models.DatasetInfo, error)
	List(limit int) ([]*models.DatasetInfo, error)
	Delete(id string) error
	GetFilePath(id string) (string, error)
	MarkActive(id string, rows int) (*models.DatasetInfo, error)
	MarkError(id string, reason string) (*models.DatasetInfo, error)
}

// LocalStore implements Store using the local filesystem. Metadata is kept in
// memory and mirrored to index.json so uploads survive a restart.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.DatasetInfo
}

// NewLocalStore creates a new LocalStore, reading an existing index if present.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	s := &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.DatasetInfo),
	}
	if err := s.readIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the upload directory.
func (s *LocalStore) Dir() string {
	return s.uploadDir
}

// Save writes an uploaded CSV to the upload directory.
func (s *LocalStore) Save(name string, r io.Reader) (*models.DatasetInfo, error) {
	id := uuid.New().String()
	path := s.pathFor(id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.DatasetInfo{
		ID:         id,
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
		Status:     models.DatasetStatusUploaded,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return cloneInfo(info), s.writeIndexLocked()
}

// Get retrieves dataset metadata by ID.
func (s *LocalStore) Get(id string) (*models.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneInfo(info), nil
}

// List returns the most recent uploads first. A limit of 0 returns all.
func (s *LocalStore) List(limit int) ([]*models.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.DatasetInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, cloneInfo(info))
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes an upload and its file.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(s.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return s.writeIndexLocked()
}

// GetFilePath returns the path of the stored CSV.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.pathFor(id), nil
}

// MarkActive flags id as the active dataset. The previously active upload
// goes back to uploaded.
func (s *LocalStore) MarkActive(id string, rows int) (*models.DatasetInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	for _, other := range s.files {
		if other.Status == models.DatasetStatusActive {
			other.Status = models.DatasetStatusUploaded
		}
	}
	info.Status = models.DatasetStatusActive
	info.Rows = rows
	info.Error = ""

	return cloneInfo(info), s.writeIndexLocked()
}

// MarkError records why an upload could not be activated.
func (s *LocalStore) MarkError(id string, reason string) (*models.DatasetInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	info.Status = models.DatasetStatusError
	info.Error = reason

	return cloneInfo(info), s.writeIndexLocked()
}

// cloneInfo copies metadata out from under the lock.
func cloneInfo(info *models.DatasetInfo) *models.DatasetInfo {
	c := *info
	return &c
}

func (s *LocalStore) pathFor(id string) string {
	return filepath.Join(s.uploadDir, id+".csv")
}

func (s *LocalStore) readIndex() error {
	data, err := os.ReadFile(filepath.Join(s.uploadDir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	var list []*models.DatasetInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing index: %w", err)
	}
	for _, info := range list {
		if _, err := os.Stat(s.pathFor(info.ID)); err != nil {
			continue
		}
		s.files[info.ID] = info
	}
	return nil
}

func (s *LocalStore) writeIndexLocked() error {
	list := make([]*models.DatasetInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	tmp := filepath.Join(s.uploadDir, indexFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return os.Rename(tmp, filepath.Join(s.uploadDir, indexFile))
}
