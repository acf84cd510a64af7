package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "penyusutan/internal/errors"
	"penyusutan/internal/middleware"
	"penyusutan/internal/services"
	api "penyusutan/pkg/contracts/api/v1"
	"penyusutan/pkg/contracts/domain"
)

// UploadField is the multipart field carrying the workbook.
const UploadField = "file"

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// multipartMemory is kept in memory while parsing an upload; the rest spills
// to temporary files.
const multipartMemory = 8 << 20

// DashboardHandlerOptions configures request limits and query defaults.
type DashboardHandlerOptions struct {
	MaxUploadBytes int64
	DefaultTopN    int
}

// DashboardHandler serves uploads and session queries with RFC 7807 errors.
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	opts         DashboardHandlerOptions
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.Validator,
	errorHandler *apierrors.ErrorHandler, logger *slog.Logger, opts DashboardHandlerOptions) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		opts:         opts,
	}
}

// Routes returns the upload and session routes. Mount it under /api.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(
		middleware.AuditLog(h.logger),
		middleware.ContentTypeValidator("multipart/form-data"),
	).Post("/uploads", h.Upload)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/search", h.Search)
		r.Get("/groups", h.Groups)
		r.Get("/top", h.Top)
		r.Get("/export.{format}", h.Export)
		r.Get("/report", h.Report)
		r.With(middleware.AuditLog(h.logger)).Delete("/", h.Delete)
	})

	return r
}

type sessionParam struct {
	ID string `json:"id" validate:"required,uuid4"`
}

// SessionCtx validates the session id path parameter.
func (h *DashboardHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.validator.ValidateStruct(sessionParam{ID: chi.URLParam(r, "id")}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/uploads
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.errorHandler.HandleError(w, r, err)
		case strings.Contains(err.Error(), "request body too large"):
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		default:
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(UploadField, "an .xlsx file is required"))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer file.Close()

	h.logger.InfoContext(ctx, "upload received",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Upload(ctx, header.Filename, header.Size, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	w.Header().Set("Location", "/api/sessions/"+result.SessionID+"/dashboard")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// GetDashboard handles GET /api/sessions/{id}/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, dashboard)
}

// Search handles GET /api/sessions/{id}/search?q=
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := api.ParseSearchQuery(r.URL.Query())
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Search(r.Context(), chi.URLParam(r, "id"), q.Keyword)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, result)
}

// Groups handles GET /api/sessions/{id}/groups?by=&value=&top=
func (h *DashboardHandler) Groups(w http.ResponseWriter, r *http.Request) {
	q, err := api.ParseGroupsQuery(r.URL.Query(), domain.ColMonthlyDepreciation, h.opts.DefaultTopN)
	if err == nil {
		err = h.validator.ValidateStruct(q)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	chart, err := h.service.Groups(r.Context(), chi.URLParam(r, "id"), q.By, q.Value, q.Top)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, chart)
}

// Top handles GET /api/sessions/{id}/top?by=&top=
func (h *DashboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	q, err := api.ParseTopQuery(r.URL.Query(), h.opts.DefaultTopN)
	if err == nil {
		err = h.validator.ValidateStruct(q)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	table, err := h.service.Top(r.Context(), chi.URLParam(r, "id"), q.By, q.Top)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, table)
}

// Export handles GET /api/sessions/{id}/export.{csv,xlsx}. The file is built
// in memory so a failure still yields a problem response.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	format := services.ExportFormat(chi.URLParam(r, "format"))

	var buf bytes.Buffer
	if err := h.service.Export(ctx, id, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	name, err := h.service.ExportFileName(ctx, id, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "export write failed",
			slog.String("session_id", id),
			slog.String("error", err.Error()))
	}
}

// Report handles GET /api/sessions/{id}/report?q=
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := api.ParseReportQuery(r.URL.Query())
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Report(r.Context(), chi.URLParam(r, "id"), q.Keyword)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Delete handles DELETE /api/sessions/{id}
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mapError translates service errors to API errors. Errors the error handler
// already understands pass through.
func (h *DashboardHandler) mapError(err error) error {
	var queryErr *api.QueryError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.ErrSessionNotFound
	case errors.Is(err, services.ErrStoreClosed):
		return apierrors.ErrShuttingDown
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", "format must be one of: csv, xlsx")
	case errors.As(err, &queryErr):
		return apierrors.ErrValidation(queryErr.Param, queryErr.Error())
	default:
		return err
	}
}
