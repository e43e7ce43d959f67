// handlers_upload.go - Dataset upload operation handlers
package api

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/storage"
	"github.com/labstack/echo/v4"
)

// RecentDatasetLimit is how many uploads the list endpoint returns.
const RecentDatasetLimit = 50

// DatasetHandlerImpl implements the DatasetHandler interface
type DatasetHandlerImpl struct {
	store     storage.Store
	loader    *dataset.Loader
	activator DatasetActivator
}

// NewDatasetHandler creates a new dataset handler instance
func NewDatasetHandler(store storage.Store, loader *dataset.Loader, activator DatasetActivator) DatasetHandler {
	if loader == nil {
		loader = dataset.NewLoader(nil)
	}
	return &DatasetHandlerImpl{
		store:     store,
		loader:    loader,
		activator: activator,
	}
}

// HandleUploadDataset accepts a CSV file (multipart/form-data, field "file") and saves it to storage
func (h *DatasetHandlerImpl) HandleUploadDataset(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		return NewBadRequestError("only .csv files are accepted", nil)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	slog.Info("dataset uploaded", "id", info.ID, "name", info.Name, "size", info.Size)
	return c.JSON(http.StatusCreated, info)
}

// HandleListDatasets returns the most recent uploads
func (h *DatasetHandlerImpl) HandleListDatasets(c echo.Context) error {
	list, err := h.store.List(RecentDatasetLimit)
	if err != nil {
		return NewInternalError("failed to list datasets", err)
	}
	if list == nil {
		list = []*models.DatasetInfo{}
	}
	return c.JSON(http.StatusOK, list)
}

// HandleActivateDataset validates an upload and serves it as the dashboard dataset
func (h *DatasetHandlerImpl) HandleActivateDataset(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return NewNotFoundError("dataset", id)
	}

	ds, err := h.loader.LoadFile(path)
	if err != nil {
		if _, markErr := h.store.MarkError(id, err.Error()); markErr != nil {
			slog.Warn("failed to record dataset error", "id", id, "error", markErr)
		}
		return NewBadRequestError("dataset is not valid", err)
	}

	info, err := h.store.MarkActive(id, ds.Len())
	if err != nil {
		return mapError(err, "failed to activate dataset")
	}
	if h.activator != nil {
		h.activator.Swap(path)
	}

	slog.Info("dataset activated", "id", info.ID, "rows", info.Rows)
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteDataset deletes an upload. The active dataset cannot be deleted.
func (h *DatasetHandlerImpl) HandleDeleteDataset(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("dataset", id)
	}
	if info.Status == models.DatasetStatusActive {
		return NewConflictError("cannot delete the active dataset")
	}

	if err := h.store.Delete(id); err != nil {
		return mapError(err, "failed to delete dataset")
	}
	return c.NoContent(http.StatusNoContent)
}
