package ml

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/stats"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	records := testutil.SampleRecords()

	ds := Prepare(records)

	require.Len(t, ds.X, len(records))
	require.Len(t, ds.Y, len(records))
	assert.Equal(t, stats.Median(stats.Column(records, models.ColEPS)), ds.Threshold)

	for i, r := range records {
		assert.Len(t, ds.X[i], len(FeatureColumns))
		assert.Equal(t, r.EPS > ds.Threshold, ds.Y[i] == 1)
		assert.Equal(t, r.MarketCap, ds.X[i][0])
		if r.Company == "NVDA" && r.Year == testutil.SampleMinYear {
			// missing ROI
			assert.Equal(t, 0.0, ds.X[i][7])
		}
	}
}

func TestRun(t *testing.T) {
	records := testutil.SampleRecords()

	report, err := Run(context.Background(), records, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, FeatureColumns, report.Features)
	assert.Equal(t, 11, report.TestRows)
	assert.Equal(t, 24, report.TrainRows)
	assert.GreaterOrEqual(t, report.Accuracy, 0.0)
	assert.LessOrEqual(t, report.Accuracy, 1.0)
	assert.Greater(t, report.PositiveRate, 0.0)
	assert.Less(t, report.PositiveRate, 1.0)
	assert.Greater(t, report.SelectionCutoff, 0.0)

	require.NotEmpty(t, report.SelectedFeatures)
	require.Len(t, report.Importances, len(report.SelectedFeatures))
	total := 0.0
	for i, fi := range report.Importances {
		assert.Equal(t, report.SelectedFeatures[i], fi.Feature)
		assert.Contains(t, FeatureColumns, fi.Feature)
		total += fi.Importance
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	records := testutil.SampleRecords()
	cfg := DefaultConfig()
	cfg.Trees = 30

	a, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)
	cfg.Workers = 1
	b, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRun_InsufficientData(t *testing.T) {
	records := testutil.SampleRecords()[:MinRows]

	_, err := Run(context.Background(), records, DefaultConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Run(context.Background(), nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRun_JustEnoughData(t *testing.T) {
	records := testutil.SampleRecords()[:MinRows+1]

	report, err := Run(context.Background(), records, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 4, report.TestRows)
	assert.Equal(t, 7, report.TrainRows)
}

func TestRun_MissingEPS(t *testing.T) {
	records := testutil.SampleRecords()
	for i := range records {
		records[i].EPS = math.NaN()
	}

	report, err := Run(context.Background(), records, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(report.EPSThreshold))
	assert.Equal(t, 0.0, report.PositiveRate)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"epsThreshold":null`)
}

func TestModelReport_MarshalNaN(t *testing.T) {
	data, err := json.Marshal(&models.ModelReport{
		Accuracy:     math.NaN(),
		EPSThreshold: 1.5,
		Importances:  []models.FeatureImportance{{Feature: "ROE", Importance: math.NaN()}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"accuracy":null`)
	assert.Contains(t, string(data), `"epsThreshold":1.5`)
	assert.Contains(t, string(data), `{"feature":"ROE","importance":null}`)
}
