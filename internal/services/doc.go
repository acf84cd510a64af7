// Package services holds the application services behind the HTTP API and
// the CLI.
//
// Pipeline validates an uploaded workbook and runs it through loading,
// cleaning and analysis. DashboardService keeps each analyzed upload in a
// SessionStore so later requests (search, grouping, exports, reports) work
// on the cleaned table without re-uploading. HealthService reports liveness
// and readiness.
//
// Services receive their *slog.Logger by injection and return sentinel
// errors (ErrSessionNotFound, ErrUnsupportedFormat) wrapped with %w.
package services
