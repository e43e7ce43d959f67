package models

import "time"

// DatasetStatus is the lifecycle state of an uploaded dataset file.
type DatasetStatus string

const (
	DatasetStatusUploaded DatasetStatus = "uploaded"
	DatasetStatusActive   DatasetStatus = "active"
	DatasetStatusError    DatasetStatus = "error"
)

// DatasetInfo represents metadata about an uploaded dataset CSV.
type DatasetInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Size       int64         `json:"size"`
	UploadedAt time.Time     `json:"uploadedAt"`
	Status     DatasetStatus `json:"status"`
	Rows       int           `json:"rows,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// RowError describes a CSV row that could not be converted to a record.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Dataset is the loaded, normalized financial table.
type Dataset struct {
	Source   string            `json:"source"`
	Columns  []string          `json:"columns"`
	Records  []FinancialRecord `json:"records"`
	Errors   []RowError        `json:"errors,omitempty"`
	Version  int64             `json:"version"`
	LoadedAt time.Time         `json:"loadedAt"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
