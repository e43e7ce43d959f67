// Package filter selects financial records by company, year range and industry.
package filter

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/corpfin/dashboard/internal/models"
)

// DefaultCompanyCount is how many companies are preselected.
const DefaultCompanyCount = 6

// DefaultStartYear is the preselected lower bound of the year range.
const DefaultStartYear = 2018

// ErrInvalidFilter is returned by FromQuery for malformed parameters.
var ErrInvalidFilter = errors.New("invalid filter")

// Apply keeps rows whose company, year and industry all match f. Row order is
// preserved. Empty Companies or Industries match nothing.
func Apply(records []models.FinancialRecord, f models.Filter) []models.FinancialRecord {
	companies := toSet(f.Companies)
	industries := toSet(f.Industries)

	out := make([]models.FinancialRecord, 0)
	if len(companies) == 0 || len(industries) == 0 {
		return out
	}
	for _, r := range records {
		if _, ok := companies[r.Company]; !ok {
			continue
		}
		if r.Year < f.YearFrom || r.Year > f.YearTo {
			continue
		}
		if _, ok := industries[r.Industry]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options lists the distinct companies and industries (sorted) and the year
// bounds, together with the default selection.
func Options(records []models.FinancialRecord) models.FilterOptions {
	companies := make(map[string]struct{})
	industries := make(map[string]struct{})
	opts := models.FilterOptions{}

	for i, r := range records {
		companies[r.Company] = struct{}{}
		industries[r.Industry] = struct{}{}
		if i == 0 || r.Year < opts.MinYear {
			opts.MinYear = r.Year
		}
		if i == 0 || r.Year > opts.MaxYear {
			opts.MaxYear = r.Year
		}
	}

	opts.Companies = sortedKeys(companies)
	opts.Industries = sortedKeys(industries)
	opts.Defaults = Defaults(opts)
	return opts
}

// Defaults is the initial selection: the first six companies, 2018 through
// the last year, every industry. 2018 is clamped into the available range.
func Defaults(opts models.FilterOptions) models.Filter {
	n := DefaultCompanyCount
	if len(opts.Companies) < n {
		n = len(opts.Companies)
	}

	start := DefaultStartYear
	if start < opts.MinYear {
		start = opts.MinYear
	}
	if start > opts.MaxYear {
		start = opts.MaxYear
	}

	return models.Filter{
		Companies:  append([]string{}, opts.Companies[:n]...),
		YearFrom:   start,
		YearTo:     opts.MaxYear,
		Industries: append([]string{}, opts.Industries...),
	}
}

// Fingerprint is a stable hash of the normalized filter. List order and
// duplicates do not change it.
func Fingerprint(f models.Filter) string {
	h := sha1.New()
	fmt.Fprintf(h, "c=%s\n", strings.Join(normalize(f.Companies), "\x1f"))
	fmt.Fprintf(h, "y=%d-%d\n", f.YearFrom, f.YearTo)
	fmt.Fprintf(h, "i=%s\n", strings.Join(normalize(f.Industries), "\x1f"))
	return hex.EncodeToString(h.Sum(nil))
}

// FromQuery builds a filter from HTTP query parameters. companies and
// industries may be repeated or given once as a comma separated list.
// Repeated values are taken as they are, so names containing commas can be
// selected. An absent parameter keeps the default; a present but empty one
// selects nothing.
func FromQuery(values url.Values, defaults models.Filter) (models.Filter, error) {
	f := models.Filter{
		Companies:  defaults.Companies,
		YearFrom:   defaults.YearFrom,
		YearTo:     defaults.YearTo,
		Industries: defaults.Industries,
	}

	if raw, ok := values["companies"]; ok {
		f.Companies = splitList(raw)
	}
	if raw, ok := values["industries"]; ok {
		f.Industries = splitList(raw)
	}

	var err error
	if f.YearFrom, err = parseYear(values, "year_from", f.YearFrom); err != nil {
		return models.Filter{}, err
	}
	if f.YearTo, err = parseYear(values, "year_to", f.YearTo); err != nil {
		return models.Filter{}, err
	}
	if f.YearFrom > f.YearTo {
		return models.Filter{}, fmt.Errorf("%w: year_from %d is after year_to %d", ErrInvalidFilter, f.YearFrom, f.YearTo)
	}
	return f, nil
}

func parseYear(values url.Values, key string, fallback int) (int, error) {
	s := strings.TrimSpace(values.Get(key))
	if s == "" {
		return fallback, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a year, got %q", ErrInvalidFilter, key, s)
	}
	return y, nil
}

func splitList(raw []string) []string {
	if len(raw) == 1 {
		raw = strings.Split(raw[0], ",")
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalize(list []string) []string {
	return sortedKeys(toSet(list))
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
