// mock_storage.go - Mock dataset storage for testing
package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/storage"
)

// MockStorage implements storage.Store. Files are written to a temp
// directory so the dataset loader can read them back.
type MockStorage struct {
	mu      sync.RWMutex
	dir     string
	files   map[string]*models.DatasetInfo
	counter int
}

// NewMockStorage creates a mock storage writing into dir.
func NewMockStorage(dir string) *MockStorage {
	return &MockStorage{
		dir:   dir,
		files: make(map[string]*models.DatasetInfo),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.DatasetInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.counter++
	id := fmt.Sprintf("test-id-%d", m.counter)
	m.mu.Unlock()

	return m.AddDataset(id, name, data)
}

func (m *MockStorage) Get(id string) (*models.DatasetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *info
	return &c, nil
}

func (m *MockStorage) List(limit int) ([]*models.DatasetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.DatasetInfo, 0, len(m.files))
	for _, info := range m.files {
		c := *info
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return storage.ErrNotFound
	}
	os.Remove(m.pathFor(id))
	delete(m.files, id)
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", storage.ErrNotFound
	}
	return m.pathFor(id), nil
}

func (m *MockStorage) MarkActive(id string, rows int) (*models.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, other := range m.files {
		if other.Status == models.DatasetStatusActive {
			other.Status = models.DatasetStatusUploaded
		}
	}
	info.Status = models.DatasetStatusActive
	info.Rows = rows
	c := *info
	return &c, nil
}

func (m *MockStorage) MarkError(id string, reason string) (*models.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	info.Status = models.DatasetStatusError
	info.Error = reason
	c := *info
	return &c, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddDataset writes data to disk and registers it under id.
func (m *MockStorage) AddDataset(id string, name string, data []byte) (*models.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(m.pathFor(id), data, 0644); err != nil {
		return nil, err
	}

	info := &models.DatasetInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.DatasetStatusUploaded,
	}
	m.files[id] = info
	return info, nil
}

// Count returns the number of stored datasets.
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func (m *MockStorage) pathFor(id string) string {
	return filepath.Join(m.dir, id+".csv")
}
