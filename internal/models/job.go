package models

import (
	"encoding/json"
	"time"
)

// JobStatus represents the status of a model training job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusTraining JobStatus = "training"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// TrainingJob tracks one run of the EPS classification pipeline on a filtered dataset.
type TrainingJob struct {
	ID             string       `json:"id"`
	Fingerprint    string       `json:"fingerprint"`
	Filter         Filter       `json:"filter"`
	Status         JobStatus    `json:"status"`
	Rows           int          `json:"rows"`
	StartedAt      time.Time    `json:"startedAt"`
	FinishedAt     time.Time    `json:"finishedAt,omitempty"`
	DurationMs     int64        `json:"durationMs,omitempty"`
	Report         *ModelReport `json:"report,omitempty"`
	Error          string       `json:"error,omitempty"`
	DatasetVersion int64        `json:"datasetVersion"`
}

// Done reports whether the job reached a terminal status.
func (j *TrainingJob) Done() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusError
}

// FeatureImportance is the relative predictive weight of one input column.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelReport is the outcome of the EPS performance prediction.
type ModelReport struct {
	Accuracy         float64             `json:"accuracy"`
	EPSThreshold     float64             `json:"epsThreshold"`
	SelectionCutoff  float64             `json:"selectionCutoff"`
	Features         []string            `json:"features"`
	SelectedFeatures []string            `json:"selectedFeatures"`
	Importances      []FeatureImportance `json:"importances"`
	TrainRows        int                 `json:"trainRows"`
	TestRows         int                 `json:"testRows"`
	PositiveRate     float64             `json:"positiveRate"`
}

type featureImportanceJSON struct {
	Feature    string `json:"feature"`
	Importance Float  `json:"importance"`
}

// MarshalJSON writes an undefined importance as null.
func (fi FeatureImportance) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureImportanceJSON{Feature: fi.Feature, Importance: Float(fi.Importance)})
}

type modelReportJSON struct {
	Accuracy         Float               `json:"accuracy"`
	EPSThreshold     Float               `json:"epsThreshold"`
	SelectionCutoff  Float               `json:"selectionCutoff"`
	Features         []string            `json:"features"`
	SelectedFeatures []string            `json:"selectedFeatures"`
	Importances      []FeatureImportance `json:"importances"`
	TrainRows        int                 `json:"trainRows"`
	TestRows         int                 `json:"testRows"`
	PositiveRate     Float               `json:"positiveRate"`
}

// MarshalJSON writes NaN scores as null. The EPS threshold is NaN when no
// record has an EPS value.
func (r ModelReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelReportJSON{
		Accuracy:         Float(r.Accuracy),
		EPSThreshold:     Float(r.EPSThreshold),
		SelectionCutoff:  Float(r.SelectionCutoff),
		Features:         r.Features,
		SelectedFeatures: r.SelectedFeatures,
		Importances:      r.Importances,
		TrainRows:        r.TrainRows,
		TestRows:         r.TestRows,
		PositiveRate:     Float(r.PositiveRate),
	})
}
