package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/marcboeker/go-duckdb"
)

const tableName = "financials"

// DuckSource mirrors the cached dataset into a DuckDB table and pushes the
// filter down as a WHERE clause.
type DuckSource struct {
	cache  *dataset.Cache
	db     *sql.DB
	dbPath string

	// mu is held for writing while the table is rebuilt and for reading
	// while it is queried.
	mu       sync.RWMutex
	mirrored int64 // dataset version currently in the table

	// Semaphore to limit concurrent queries
	querySem chan struct{}
}

// DuckOption tunes the DuckDB connection.
type DuckOption func(*duckOptions)

type duckOptions struct {
	threads     int
	memoryLimit string
}

// WithThreads caps the DuckDB worker threads.
func WithThreads(n int) DuckOption {
	return func(o *duckOptions) {
		if n > 0 {
			o.threads = n
		}
	}
}

// WithMemoryLimit sets the DuckDB memory limit, e.g. "512MB".
func WithMemoryLimit(limit string) DuckOption {
	return func(o *duckOptions) {
		if limit != "" {
			o.memoryLimit = limit
		}
	}
}

// NewDuckSource opens a DuckDB database at dbPath ("" for in-memory).
func NewDuckSource(cache *dataset.Cache, dbPath string, opts ...DuckOption) (*DuckSource, error) {
	o := duckOptions{threads: 2, memoryLimit: "512MB"}
	for _, opt := range opts {
		opt(&o)
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", strings.ReplaceAll(o.memoryLimit, "'", "")),
			fmt.Sprintf("PRAGMA threads=%d", o.threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	return &DuckSource{
		cache:    cache,
		db:       sql.OpenDB(connector),
		dbPath:   dbPath,
		querySem: make(chan struct{}, 3),
	}, nil
}

// sqlColumn maps a normalized column name to its table column.
func sqlColumn(col string) string {
	return strings.ToLower(col)
}

func createTableSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE " + tableName + " (\n")
	b.WriteString("\trow_id INTEGER NOT NULL,\n")
	b.WriteString("\tyear INTEGER NOT NULL,\n")
	b.WriteString("\tcompany VARCHAR NOT NULL,\n")
	b.WriteString("\tindustry VARCHAR NOT NULL")
	for _, col := range models.NumericColumns {
		b.WriteString(",\n\t" + sqlColumn(col) + " DOUBLE")
	}
	b.WriteString("\n)")
	return b.String()
}

func selectColumns() string {
	cols := []string{"year", "company", "industry"}
	for _, col := range models.NumericColumns {
		cols = append(cols, sqlColumn(col))
	}
	return strings.Join(cols, ", ")
}

// refresh rebuilds the table when the cached dataset version moved on. A
// caller holding an older dataset never replaces a newer mirror.
func (s *DuckSource) refresh(ctx context.Context) error {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}

	s.mu.RLock()
	current := s.mirrored >= ds.Version
	s.mu.RUnlock()
	if current {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mirrored >= ds.Version {
		return nil
	}

	start := time.Now()
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tableName); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := s.appendRecords(ctx, ds.Records); err != nil {
		return err
	}

	s.mirrored = ds.Version
	slog.Info("duckdb mirror rebuilt",
		"rows", len(ds.Records),
		"version", ds.Version,
		"elapsed", time.Since(start))
	return nil
}

// appendRecords writes rows with the native Appender API
func (s *DuckSource) appendRecords(ctx context.Context, records []models.FinancialRecord) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", tableName)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		row := make([]driver.Value, 4+len(models.NumericColumns))
		for i := range records {
			r := &records[i]
			row[0] = int32(i)
			row[1] = int32(r.Year)
			row[2] = r.Company
			row[3] = r.Industry
			for j, col := range models.NumericColumns {
				row[4+j] = nullable(r.Value(col))
			}
			if err := appender.AppendRow(row...); err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}

// nullable stores NaN as NULL.
func nullable(v float64) driver.Value {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func (s *DuckSource) Records(ctx context.Context, f models.Filter) ([]models.FinancialRecord, error) {
	if len(f.Companies) == 0 || len(f.Industries) == 0 {
		return []models.FinancialRecord{}, nil
	}

	select {
	case s.querySem <- struct{}{}:
		defer func() { <-s.querySem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(f)
	query := "SELECT " + selectColumns() + " FROM " + tableName + " WHERE " + where + " ORDER BY row_id"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func buildWhereClause(f models.Filter) (string, []interface{}) {
	args := make([]interface{}, 0, len(f.Companies)+len(f.Industries)+2)
	clauses := make([]string, 0, 3)

	clauses = append(clauses, "company IN ("+placeholders(len(f.Companies))+")")
	for _, c := range f.Companies {
		args = append(args, c)
	}

	clauses = append(clauses, "year BETWEEN ? AND ?")
	args = append(args, f.YearFrom, f.YearTo)

	clauses = append(clauses, "industry IN ("+placeholders(len(f.Industries))+")")
	for _, i := range f.Industries {
		args = append(args, i)
	}

	return strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanRecords(rows *sql.Rows) ([]models.FinancialRecord, error) {
	out := make([]models.FinancialRecord, 0)
	values := make([]sql.NullFloat64, len(models.NumericColumns))
	dest := make([]interface{}, 3+len(values))
	names := dataset.NewInterner()

	for rows.Next() {
		var r models.FinancialRecord
		dest[0], dest[1], dest[2] = &r.Year, &r.Company, &r.Industry
		for i := range values {
			dest[3+i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		r.Company = names.Intern(r.Company)
		r.Industry = names.Intern(r.Industry)
		for i, col := range models.NumericColumns {
			v := math.NaN()
			if values[i].Valid {
				v = values[i].Float64
			}
			r.SetValue(col, v)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *DuckSource) All(ctx context.Context) (*models.Dataset, error) {
	return s.cache.Get(ctx)
}

// Version returns the dataset version currently mirrored into DuckDB.
func (s *DuckSource) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirrored
}

// Close closes the database and removes an on-disk file.
func (s *DuckSource) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	if s.dbPath != "" {
		os.Remove(s.dbPath)
		os.Remove(s.dbPath + ".wal")
	}
	return nil
}
