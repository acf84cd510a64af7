package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penyusutan/internal/infrastructure"
	"penyusutan/internal/shared/testutil"
)

type columnsErr struct{ cols []string }

func (e *columnsErr) Error() string            { return fmt.Sprintf("missing required columns: %v", e.cols) }
func (e *columnsErr) MissingColumns() []string { return e.cols }

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "context deadline exceeded",
			err:        fmt.Errorf("clean: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "missing columns",
			err:        fmt.Errorf("load: %w", &columnsErr{cols: []string{"Nilai_Perolehan", "Tahun_Perolehan"}}),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeMissingColumns,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{"Nilai_Perolehan", "Tahun_Perolehan"}, body["missing_columns"])
				assert.Contains(t, body["detail"], "Nilai_Perolehan")
			},
		},
		{
			name:       "api validation error",
			err:        ErrValidation("top", "must be between 1 and 100"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
				assert.NotNil(t, body["details"])
			},
		},
		{
			name:       "session not found api error",
			err:        New(http.StatusNotFound, "SESSION_NOT_FOUND", "session expired"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeSessionNotFound,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("failed to open workbook", errors.New("zip: not a valid zip file")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnreadableData,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "PARSING", body["error_type"])
			},
		},
		{
			name:       "validation app error carries context",
			err:        NewAppValidationError("unsupported extension").WithContext("filename", "data.csv"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidUpload,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "data.csv", body["filename"])
			},
		},
		{
			name:       "config app error hides context",
			err:        NewAppError(ErrorType("CONFIG"), "bad", nil).WithContext("secret", "x"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.NotContains(t, body, "secret")
			},
		},
		{
			name:       "max bytes",
			err:        &http.MaxBytesError{Limit: 1024},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "plain not found",
			err:        errors.New("sheet not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.NotContains(t, body["detail"], "boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/dashboard", nil)
			req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "trace-1", body["trace_id"])
			assert.Equal(t, "/api/sessions/x/dashboard", body["instance"])
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Empty(t, handler.GetRecords())
}

func TestErrorHandler_LogsByStatus(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(httptest.NewRecorder(), req, ErrNotFound)
	h.HandleError(httptest.NewRecorder(), req, errors.New("boom"))

	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	assert.True(t, handler.ContainsAttr("component", "error_handler"))
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("cleaner exploded")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/uploads", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "cleaner exploded", body["panic"])
	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/uploads", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "PATCH")
}

func TestAppError(t *testing.T) {
	cause := errors.New("EOF")
	err := NewParsingError("failed to read sheet", cause)

	assert.Equal(t, "[PARSING] failed to read sheet: EOF", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &appErr)
	assert.Equal(t, ErrTypeParsing, appErr.Type)

	assert.Equal(t, "[NOT_FOUND] session not found", NewAppError(ErrTypeNotFound, "session not found", nil).Error())
}

func TestAppError_LogValue(t *testing.T) {
	err := NewParsingError("failed to read sheet", errors.New("EOF")).
		WithContext("sheet", "Aset").
		WithContext("file", "register.xlsx")

	v := err.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())

	var keys []string
	for _, a := range v.Group() {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"type", "message", "cause", "file", "sheet"}, keys)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("error_code", "VALIDATION_FAILED").
		WithExtension("status", "ignored")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(400), body["status"], "standard members win over extensions")
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	assert.NotContains(t, body, "detail")
}
