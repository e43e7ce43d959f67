// handlers_model.go - EPS model training handlers
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/filter"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/labstack/echo/v4"
)

// MaxWait caps the wait query parameter of the job status endpoint.
const MaxWait = 30 * time.Second

// ModelHandlerImpl implements the ModelHandler interface
type ModelHandlerImpl struct {
	source   store.Source
	trainer  TrainingManager
	renderer *charts.Renderer
}

// NewModelHandler creates a new model handler
func NewModelHandler(source store.Source, trainer TrainingManager, renderer *charts.Renderer) ModelHandler {
	return &ModelHandlerImpl{
		source:   source,
		trainer:  trainer,
		renderer: renderer,
	}
}

// jobResponse is a training job plus, once complete, the echarts options of
// its feature importance chart.
type jobResponse struct {
	*models.TrainingJob
	Chart json.RawMessage `json:"chart,omitempty"`
}

func (h *ModelHandlerImpl) response(job *models.TrainingJob) jobResponse {
	resp := jobResponse{TrainingJob: job}
	if job.Status != models.JobStatusComplete || job.Report == nil || h.renderer == nil {
		return resp
	}

	opts, err := h.renderer.Options(charts.FeatureImportance(job.Report))
	if err != nil {
		slog.Warn("failed to render feature importance", "job", job.ID[:8], "error", err)
		return resp
	}
	resp.Chart = json.RawMessage(opts)
	return resp
}

// HandleStartTraining starts training on the selection, or returns the job
// already trained on the same filter and dataset version.
func (h *ModelHandlerImpl) HandleStartTraining(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}

	job := h.trainer.Start(sel.Filter, filter.Fingerprint(sel.Filter), sel.Dataset.Version, sel.Records)
	return c.JSON(http.StatusAccepted, h.response(job))
}

// HandleJobStatus returns the job. With wait=N it blocks up to N seconds
// for the job to finish.
func (h *ModelHandlerImpl) HandleJobStatus(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	wait, err := parseWait(c.QueryParam("wait"))
	if err != nil {
		return err
	}

	job, ok := h.trainer.Get(id)
	if !ok {
		return NewNotFoundError("training job", id)
	}

	if wait > 0 && !job.Done() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
		defer cancel()

		finished, err := h.trainer.Wait(ctx, id)
		switch {
		case err == nil:
			job = finished
		case errors.Is(err, context.DeadlineExceeded):
			// Still running, report the latest state
			if latest, ok := h.trainer.Get(id); ok {
				job = latest
			}
		default:
			return mapError(err, "failed to wait for training job")
		}
	}

	return c.JSON(http.StatusOK, h.response(job))
}

func parseWait(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, NewValidationError("wait")
	}
	d := time.Duration(n) * time.Second
	if d > MaxWait {
		d = MaxWait
	}
	return d, nil
}
