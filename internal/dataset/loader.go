// Package dataset loads the financial statements CSV into normalized records
// and caches it for the lifetime of the process.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a required column is absent after normalization.
var ErrMissingColumn = errors.New("missing required column")

// Loader reads financial statement CSV files.
type Loader struct {
	rules *ColumnRules
}

// NewLoader creates a loader. A nil rules value uses DefaultRules.
func NewLoader(rules *ColumnRules) *Loader {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Loader{rules: rules}
}

// Rules returns the column rules in use.
func (l *Loader) Rules() *ColumnRules {
	return l.rules
}

// LoadFile reads and normalizes the CSV at path.
func (l *Loader) LoadFile(path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer file.Close()

	ds, err := l.Load(file)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// Load reads a CSV stream. Every column is read as text and converted here so
// that blank or malformed cells become NaN instead of failing the column.
func (l *Loader) Load(r io.Reader) (*models.Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("reading csv: %w", df.Err)
	}

	// normalized name -> raw header
	raw := make(map[string]string, df.Ncol())
	columns := make([]string, 0, df.Ncol())
	for _, name := range df.Names() {
		norm := l.rules.Normalize(name)
		if _, dup := raw[norm]; dup {
			continue
		}
		raw[norm] = name
		columns = append(columns, norm)
	}

	for _, req := range l.rules.Required {
		if _, ok := raw[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	cells := make(map[string][]string, len(raw))
	for norm, name := range raw {
		cells[norm] = df.Col(name).Records()
	}

	ds := &models.Dataset{
		Columns:  columns,
		Records:  make([]models.FinancialRecord, 0, df.Nrow()),
		Errors:   make([]models.RowError, 0),
		LoadedAt: time.Now(),
	}

	names := NewInterner()
	for i := 0; i < df.Nrow(); i++ {
		line := i + 2 // header is line 1

		year, err := parseYear(cells[models.ColYear][i])
		if err != nil {
			ds.Errors = append(ds.Errors, models.RowError{Line: line, Reason: "invalid year"})
			continue
		}

		rec := models.NewRecord(
			names.Intern(strings.TrimSpace(cells[models.ColCompany][i])),
			names.Intern(strings.TrimSpace(cells[models.ColIndustry][i])),
			year,
		)
		for _, col := range models.NumericColumns {
			values, ok := cells[col]
			if !ok {
				continue
			}
			rec.SetValue(col, ParseNumber(values[i]))
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// ParseNumber converts a cell to float64. Thousands separators are ignored;
// blank and unparseable cells yield NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
