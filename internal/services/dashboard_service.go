package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"penyusutan/internal/dataprocessing"
	"penyusutan/internal/exporter"
	"penyusutan/internal/infrastructure"
	"penyusutan/pkg/contracts/domain"
)

// ExportFormat selects the download format of a cleaned register.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// UploadResult is returned after a workbook has been analyzed and stored.
type UploadResult struct {
	SessionID string                    `json:"session_id"`
	FileName  string                    `json:"file_name"`
	ExpiresIn float64                   `json:"expires_in_seconds,omitempty"`
	Stats     dataprocessing.CleanStats `json:"stats"`
	Dashboard *domain.Dashboard         `json:"dashboard"`
}

// DashboardService runs uploads through the pipeline and answers queries
// against the stored sessions.
type DashboardService struct {
	pipeline *Pipeline
	store    SessionStore
	ttl      time.Duration
	csv      *exporter.CSVWriter
	xlsx     *exporter.XLSXWriter
	reports  *exporter.ReportBuilder
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewDashboardService creates the service. ttl is only reported to clients.
func NewDashboardService(pipeline *Pipeline, store SessionStore, ttl time.Duration,
	metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		pipeline: pipeline,
		store:    store,
		ttl:      ttl,
		csv:      exporter.NewCSVWriter(logger),
		xlsx:     exporter.NewXLSXWriter(logger),
		reports:  exporter.NewReportBuilder(pipeline.Analyzer().Formatter()),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// SessionEvictionRecorder keeps the active session gauge in step with the
// store and counts removals by reason. Pass it as StoreOptions.OnEvict.
func SessionEvictionRecorder(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) func(id, reason string) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(id, reason string) {
		if metrics != nil {
			ctx := context.Background()
			metrics.ActiveSessions.Add(ctx, -1)
			metrics.SessionsEvicted.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
		}
		logger.Debug("session removed", slog.String("session_id", id), slog.String("reason", reason))
	}
}

// Upload analyzes a workbook and stores it as a new session.
func (s *DashboardService) Upload(ctx context.Context, fileName string, size int64, r io.Reader) (*UploadResult, error) {
	analysis, err := s.pipeline.Process(ctx, fileName, size, r)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		FileName:  analysis.FileName,
		Table:     analysis.Table,
		Stats:     analysis.Stats,
		Dashboard: analysis.Dashboard,
	}
	if err := s.store.Put(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, 1)
	}

	s.logger.InfoContext(ctx, "session created",
		slog.String("session_id", session.ID),
		slog.String("file", session.FileName),
		slog.Int("rows", session.Table.Len()))

	return &UploadResult{
		SessionID: session.ID,
		FileName:  session.FileName,
		ExpiresIn: s.ttl.Seconds(),
		Stats:     session.Stats,
		Dashboard: session.Dashboard,
	}, nil
}

// Session returns a stored session.
func (s *DashboardService) Session(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Get(id)
}

// Dashboard returns the dashboard computed at upload.
func (s *DashboardService) Dashboard(ctx context.Context, id string) (*domain.Dashboard, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Dashboard, nil
}

// Search filters the session's assets by keyword.
func (s *DashboardService) Search(ctx context.Context, id, keyword string) (*domain.SearchResult, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.pipeline.Analyzer().Search(session.Table, keyword)
	if s.metrics != nil {
		s.metrics.SearchesTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("matched", result.Count > 0)))
	}
	s.logger.DebugContext(ctx, "search completed",
		slog.String("session_id", id),
		slog.Int("matches", result.Count))
	return &result, nil
}

// Groups sums valueCol per groupCol over the session's assets.
func (s *DashboardService) Groups(ctx context.Context, id, groupCol, valueCol string, topN int) (*domain.GroupChart, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Analyzer().GroupChart(session.Table, groupCol, valueCol, topN)
}

// Top ranks the session's assets by column.
func (s *DashboardService) Top(ctx context.Context, id, column string, topN int) (*domain.TopTable, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Analyzer().TopTable(session.Table, column, topN)
}

// Export writes the cleaned register to w.
func (s *DashboardService) Export(ctx context.Context, id string, format ExportFormat, w io.Writer) error {
	session, err := s.Session(ctx, id)
	if err != nil {
		return err
	}

	switch format {
	case ExportCSV:
		return s.csv.WriteAssets(w, session.Table)
	case ExportXLSX:
		return s.xlsx.WriteAssets(w, session.Table)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ExportFileName returns the download name of a session export.
func (s *DashboardService) ExportFileName(ctx context.Context, id string, format ExportFormat) (string, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return "", err
	}
	return ExportName(session.FileName, format), nil
}

// ExportName is the download name of a cleaned export of fileName.
func ExportName(fileName string, format ExportFormat) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "penyusutan"
	}
	return base + "_bersih." + string(format)
}

// Report renders the session's dashboard as an HTML page. A non-empty
// keyword adds a search section.
func (s *DashboardService) Report(ctx context.Context, id, keyword string) ([]byte, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	in := exporter.ReportInput{
		Source:      session.FileName,
		GeneratedAt: session.CreatedAt,
		Stats:       session.Stats,
		Dashboard:   session.Dashboard,
	}
	if keyword != "" {
		result := s.pipeline.Analyzer().Search(session.Table, keyword)
		in.Search = &result
	}
	return s.reports.HTML(in)
}

// Delete discards a session.
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "session deleted", slog.String("session_id", id))
	return nil
}
