package dataset

import (
	"io"
	"os"
	"strings"

	"github.com/corpfin/dashboard/internal/models"
	"gopkg.in/yaml.v3"
)

// ColumnRules controls how raw CSV headers are normalized.
type ColumnRules struct {
	Renames  map[string]string `json:"renames" yaml:"renames"`
	Required []string          `json:"required" yaml:"required"`
}

// DefaultRules returns the renames used by the financial statements export.
func DefaultRules() *ColumnRules {
	return &ColumnRules{
		Renames: map[string]string{
			"Company ":              models.ColCompany,
			"Market Cap(in B USD)":  models.ColMarketCap,
			"Category":              models.ColIndustry,
			"Inflation Rate(in US)": models.ColInflationRate,
		},
		Required: []string{models.ColYear, models.ColCompany, models.ColIndustry},
	}
}

// ParseRules parses a YAML column rules file.
func ParseRules(filePath string) (*ColumnRules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseRulesFromReader(file)
}

// ParseRulesFromReader parses rules from an io.Reader. Missing sections fall
// back to the defaults.
func ParseRulesFromReader(r io.Reader) (*ColumnRules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rules ColumnRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	defaults := DefaultRules()
	if len(rules.Renames) == 0 {
		rules.Renames = defaults.Renames
	}
	if len(rules.Required) == 0 {
		rules.Required = defaults.Required
	}
	return &rules, nil
}

// Normalize maps a raw header to its normalized column name: strip
// surrounding whitespace, apply renames, then replace spaces and slashes
// with underscores.
func (r *ColumnRules) Normalize(header string) string {
	header = strings.TrimPrefix(header, "\ufeff")
	if renamed, ok := r.Renames[header]; ok {
		header = renamed
	}
	header = strings.TrimSpace(header)
	if renamed, ok := r.Renames[header]; ok {
		header = renamed
	}
	header = strings.ReplaceAll(header, " ", "_")
	return strings.ReplaceAll(header, "/", "_")
}
