// Package store answers filtered record queries over the active dataset.
package store

import (
	"context"
	"fmt"

	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/filter"
	"github.com/corpfin/dashboard/internal/models"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
)

// Source provides the active dataset and filtered views of it.
type Source interface {
	// Records returns the rows matching f in file order.
	Records(ctx context.Context, f models.Filter) ([]models.FinancialRecord, error)
	// All returns the whole loaded dataset.
	All(ctx context.Context) (*models.Dataset, error)
	// Version is the load generation of the dataset being served.
	Version() int64
	Close() error
}

// New creates the Source named by backend. dbPath is only used by the DuckDB
// backend; an empty path keeps the database in memory.
func New(backend string, cache *dataset.Cache, dbPath string, opts ...DuckOption) (Source, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemorySource(cache), nil
	case BackendDuckDB:
		return NewDuckSource(cache, dbPath, opts...)
	default:
		return nil, fmt.Errorf("unknown query backend %q", backend)
	}
}

// MemorySource filters the cached records in process.
type MemorySource struct {
	cache *dataset.Cache
}

// NewMemorySource creates a MemorySource over cache.
func NewMemorySource(cache *dataset.Cache) *MemorySource {
	return &MemorySource{cache: cache}
}

func (s *MemorySource) Records(ctx context.Context, f models.Filter) ([]models.FinancialRecord, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(ds.Records, f), nil
}

func (s *MemorySource) All(ctx context.Context) (*models.Dataset, error) {
	return s.cache.Get(ctx)
}

func (s *MemorySource) Version() int64 {
	return s.cache.Version()
}

func (s *MemorySource) Close() error {
	return nil
}
