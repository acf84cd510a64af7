package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"penyusutan/internal/dataprocessing"
	"penyusutan/internal/services"
	"penyusutan/internal/shared/testutil"
	"penyusutan/pkg/contracts/domain"
)

func newRealRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	store := services.NewMemorySessionStore(services.StoreOptions{TTL: time.Minute, Logger: logger})
	t.Cleanup(func() { _ = store.Close() })

	pipeline := services.NewPipeline(services.PipelineConfig{
		MaxBytes:  1 << 20,
		Dashboard: dataprocessing.DefaultDashboardOptions(),
		Logger:    logger,
	})
	return newTestRouter(t, services.NewDashboardService(pipeline, store, time.Minute, nil, logger))
}

func uploadWorkbook(t *testing.T, router http.Handler, wb testutil.Workbook) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, UploadField, "register.xlsx", wb.Bytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	return serve(router, req)
}

func TestDashboardRoutes_EndToEnd(t *testing.T) {
	router := newRealRouter(t)

	rec := uploadWorkbook(t, router, testutil.SampleAssets())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	upload := decodeJSON(t, rec)
	id, ok := upload["session_id"].(string)
	require.True(t, ok)
	stats := upload["stats"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["rows_kept"])

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decodeJSON(t, rec)
	metrics := dashboard["metrics"].([]interface{})
	require.Len(t, metrics, 3)
	assert.Equal(t, "Rp 1,370,000", metrics[0].(map[string]interface{})["formatted"])

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/search?q=KANTOR", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	search := decodeJSON(t, rec)
	assert.Equal(t, float64(2), search["count"])
	assert.Equal(t, "Rp 1,020,000", search["formatted_total"])

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/top?by=Nilai_Buku_Bulan_Ini&top=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	top := decodeJSON(t, rec)
	rows := top["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Bangunan Kantor", rows[0].(map[string]interface{})[domain.ColAssetType])

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "register_bersih.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	sheetRows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, sheetRows, 5)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report?q=kantor", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "<table>"))

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/dashboard", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardRoutes_MissingColumns(t *testing.T) {
	router := newRealRouter(t)

	wb := testutil.SampleAssets()
	wb.Header = wb.Header[:len(wb.Header)-1]
	for i, row := range wb.Rows {
		wb.Rows[i] = row[:len(row)-1]
	}

	rec := uploadWorkbook(t, router, wb)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "/errors/data/missing-columns", body["type"])
	assert.Equal(t, []interface{}{domain.ColBookValue}, body["missing_columns"])
}

func TestDashboardRoutes_NotAWorkbook(t *testing.T) {
	router := newRealRouter(t)

	body, contentType := multipartBody(t, UploadField, "register.xlsx", []byte("PK\x03\x04 but not a zip"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(router, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "/errors/data/unreadable", decodeJSON(t, rec)["type"])
}

func TestDashboardRoutes_WrongExtension(t *testing.T) {
	router := newRealRouter(t)

	body, contentType := multipartBody(t, UploadField, "register.csv", []byte("a,b\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(router, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "/errors/upload/invalid", decodeJSON(t, rec)["type"])
}
