// handlers_upload_test.go - Tests for dataset upload handlers
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingActivator struct {
	paths []string
}

func (a *recordingActivator) Swap(path string) {
	a.paths = append(a.paths, path)
}

func newDatasetHandler(t *testing.T) (DatasetHandler, *testutil.MockStorage, *recordingActivator) {
	t.Helper()
	store := testutil.NewMockStorage(t.TempDir())
	activator := &recordingActivator{}
	return NewDatasetHandler(store, dataset.NewLoader(dataset.DefaultRules()), activator), store, activator
}

func multipartContext(t *testing.T, field, filename, content string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func idContext(method, target, id string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newContext(method, target)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestDatasetHandler_HandleUploadDataset(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		wantStatus int
		wantErr    bool
	}{
		{"valid csv", "file", "statements.csv", http.StatusCreated, false},
		{"uppercase extension", "file", "STATEMENTS.CSV", http.StatusCreated, false},
		{"wrong extension", "file", "statements.xlsx", http.StatusBadRequest, true},
		{"wrong field", "upload", "statements.csv", http.StatusBadRequest, true},
		{"no file", "", "", http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, _ := newDatasetHandler(t)
			c, rec := multipartContext(t, tt.field, tt.filename, testutil.SampleCSV())

			err := h.HandleUploadDataset(c)
			if tt.wantErr {
				requireAPIError(t, err, tt.wantStatus, CodeBadRequest)
				assert.Equal(t, 0, store.Count())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			var info models.DatasetInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
			assert.Equal(t, tt.filename, info.Name)
			assert.Equal(t, models.DatasetStatusUploaded, info.Status)
			assert.Equal(t, 1, store.Count())
		})
	}
}

func TestDatasetHandler_HandleListDatasets(t *testing.T) {
	h, store, _ := newDatasetHandler(t)

	c, rec := newContext(http.MethodGet, "/api/datasets")
	require.NoError(t, h.HandleListDatasets(c))
	assert.JSONEq(t, "[]", rec.Body.String())

	_, err := store.AddDataset("ds-00001", "a.csv", []byte(testutil.SampleCSV()))
	require.NoError(t, err)
	_, err = store.AddDataset("ds-00002", "b.csv", []byte(testutil.SampleCSV()))
	require.NoError(t, err)

	c, rec = newContext(http.MethodGet, "/api/datasets")
	require.NoError(t, h.HandleListDatasets(c))
	var list []models.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestDatasetHandler_HandleActivateDataset(t *testing.T) {
	h, store, activator := newDatasetHandler(t)
	_, err := store.AddDataset("ds-00001", "a.csv", []byte(testutil.SampleCSV()))
	require.NoError(t, err)

	c, rec := idContext(http.MethodPost, "/api/datasets/ds-00001/activate", "ds-00001")
	require.NoError(t, h.HandleActivateDataset(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var info models.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, models.DatasetStatusActive, info.Status)
	assert.Equal(t, len(testutil.SampleRecords()), info.Rows)

	path, err := store.GetFilePath("ds-00001")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, activator.paths)
}

func TestDatasetHandler_ActivateInvalidDataset(t *testing.T) {
	h, store, activator := newDatasetHandler(t)
	_, err := store.AddDataset("ds-00001", "bad.csv", []byte("Year,Company \n2020,AAPL\n"))
	require.NoError(t, err)

	c, _ := idContext(http.MethodPost, "/api/datasets/ds-00001/activate", "ds-00001")
	requireAPIError(t, h.HandleActivateDataset(c), http.StatusBadRequest, CodeBadRequest)

	info, err := store.Get("ds-00001")
	require.NoError(t, err)
	assert.Equal(t, models.DatasetStatusError, info.Status)
	assert.NotEmpty(t, info.Error)
	assert.Empty(t, activator.paths)
}

func TestDatasetHandler_ActivateMissing(t *testing.T) {
	h, _, _ := newDatasetHandler(t)

	c, _ := idContext(http.MethodPost, "/api/datasets/nope/activate", "nope")
	requireAPIError(t, h.HandleActivateDataset(c), http.StatusNotFound, CodeNotFound)

	c, _ = newContext(http.MethodPost, "/api/datasets//activate")
	requireAPIError(t, h.HandleActivateDataset(c), http.StatusBadRequest, CodeValidation)
}

func TestDatasetHandler_HandleDeleteDataset(t *testing.T) {
	h, store, _ := newDatasetHandler(t)
	_, err := store.AddDataset("ds-00001", "a.csv", []byte(testutil.SampleCSV()))
	require.NoError(t, err)
	_, err = store.AddDataset("ds-00002", "b.csv", []byte(testutil.SampleCSV()))
	require.NoError(t, err)
	_, err = store.MarkActive("ds-00001", 35)
	require.NoError(t, err)

	c, _ := idContext(http.MethodDelete, "/api/datasets/ds-00001", "ds-00001")
	requireAPIError(t, h.HandleDeleteDataset(c), http.StatusConflict, CodeConflict)

	c, rec := idContext(http.MethodDelete, "/api/datasets/ds-00002", "ds-00002")
	require.NoError(t, h.HandleDeleteDataset(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, store.Count())

	c, _ = idContext(http.MethodDelete, "/api/datasets/ds-00002", "ds-00002")
	requireAPIError(t, h.HandleDeleteDataset(c), http.StatusNotFound, CodeNotFound)
}
