package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobBody struct {
	ID             string              `json:"id"`
	Status         models.JobStatus    `json:"status"`
	Rows           int                 `json:"rows"`
	DatasetVersion int64               `json:"datasetVersion"`
	Report         *models.ModelReport `json:"report"`
	Error          string              `json:"error"`
	Chart          json.RawMessage     `json:"chart"`
}

func startJob(t *testing.T, h ModelHandler, target string) jobBody {
	t.Helper()
	c, rec := newContext(http.MethodPost, target)
	require.NoError(t, h.HandleStartTraining(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body jobBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func jobStatus(t *testing.T, h ModelHandler, id, wait string) (jobBody, error) {
	t.Helper()
	target := "/api/model/" + id
	if wait != "" {
		target += "?wait=" + wait
	}
	c, rec := newContext(http.MethodGet, target)
	c.SetParamNames("jobId")
	c.SetParamValues(id)
	if err := h.HandleJobStatus(c); err != nil {
		return jobBody{}, err
	}

	var body jobBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body, nil
}

func TestModelHandler_TrainAndWait(t *testing.T) {
	_, source := newTestSource(t)
	h := NewModelHandler(source, newTestTrainer(t), testRenderer())

	started := startJob(t, h, "/api/model")
	require.NotEmpty(t, started.ID)
	assert.Equal(t, defaultRows, started.Rows)
	assert.Equal(t, int64(1), started.DatasetVersion)

	done, err := jobStatus(t, h, started.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, done.Status)
	require.NotNil(t, done.Report)
	assert.InDelta(t, 0.875, done.Report.Accuracy, 1e-9)
	assert.NotEmpty(t, done.Chart)
	assert.Contains(t, string(done.Chart), "Revenue")
}

func TestModelHandler_ReusesJobForSameFilter(t *testing.T) {
	_, source := newTestSource(t)
	h := NewModelHandler(source, newTestTrainer(t), testRenderer())

	first := startJob(t, h, "/api/model?companies=AAPL,MSFT")
	second := startJob(t, h, "/api/model?companies=MSFT,AAPL")
	other := startJob(t, h, "/api/model?companies=AAPL")

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestModelHandler_ReportsFailure(t *testing.T) {
	_, source := newTestSource(t)
	mgr := training.NewManagerWithRunner(func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error) {
		return nil, assert.AnError
	}, nil)
	t.Cleanup(mgr.Close)
	h := NewModelHandler(source, mgr, testRenderer())

	started := startJob(t, h, "/api/model")
	done, err := jobStatus(t, h, started.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusError, done.Status)
	assert.NotEmpty(t, done.Error)
	assert.Nil(t, done.Report)
	assert.Empty(t, done.Chart)
}

func TestModelHandler_WaitTimesOut(t *testing.T) {
	_, source := newTestSource(t)
	release := make(chan struct{})
	mgr := training.NewManagerWithRunner(func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return fixedReport(), nil
	}, nil)
	t.Cleanup(mgr.Close)
	t.Cleanup(func() { close(release) })
	h := NewModelHandler(source, mgr, testRenderer())

	started := startJob(t, h, "/api/model")

	startedAt := time.Now()
	body, err := jobStatus(t, h, started.ID, "1")
	require.NoError(t, err)
	assert.False(t, body.Status == models.JobStatusComplete)
	assert.GreaterOrEqual(t, time.Since(startedAt), 900*time.Millisecond)
}

func TestModelHandler_JobStatusErrors(t *testing.T) {
	_, source := newTestSource(t)
	h := NewModelHandler(source, newTestTrainer(t), testRenderer())

	_, err := jobStatus(t, h, "does-not-exist", "")
	requireAPIError(t, err, http.StatusNotFound, CodeNotFound)

	started := startJob(t, h, "/api/model")
	_, err = jobStatus(t, h, started.ID, "soon")
	requireAPIError(t, err, http.StatusBadRequest, CodeValidation)

	c, _ := newContext(http.MethodGet, "/api/model/")
	requireAPIError(t, h.HandleJobStatus(c), http.StatusBadRequest, CodeValidation)
}

func TestModelHandler_InvalidFilter(t *testing.T) {
	_, source := newTestSource(t)
	h := NewModelHandler(source, newTestTrainer(t), testRenderer())

	c, _ := newContext(http.MethodPost, "/api/model?year_from=2021&year_to=2018")
	requireAPIError(t, h.HandleStartTraining(c), http.StatusBadRequest, CodeBadRequest)
}

func TestParseWait(t *testing.T) {
	d, err := parseWait("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseWait("3")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	d, err = parseWait("600")
	require.NoError(t, err)
	assert.Equal(t, MaxWait, d)

	_, err = parseWait("-1")
	assert.Error(t, err)
}

func TestModelHandler_MissingEPSReport(t *testing.T) {
	_, source := newTestSource(t)
	mgr := training.NewManagerWithRunner(func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error) {
		report := fixedReport()
		report.EPSThreshold = math.NaN()
		return report, nil
	}, nil)
	t.Cleanup(mgr.Close)
	h := NewModelHandler(source, mgr, testRenderer())

	started := startJob(t, h, "/api/model")

	done, err := jobStatus(t, h, started.ID, "5")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, done.Status)
	require.NotNil(t, done.Report)
	assert.InDelta(t, 0.875, done.Report.Accuracy, 1e-9)
}
