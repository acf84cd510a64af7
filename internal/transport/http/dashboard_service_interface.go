package http

import (
	"context"
	"io"

	"penyusutan/internal/services"
	"penyusutan/pkg/contracts/domain"
)

// DashboardServiceInterface is the part of services.DashboardService the
// HTTP layer uses.
type DashboardServiceInterface interface {
	Upload(ctx context.Context, fileName string, size int64, r io.Reader) (*services.UploadResult, error)
	Dashboard(ctx context.Context, id string) (*domain.Dashboard, error)
	Search(ctx context.Context, id, keyword string) (*domain.SearchResult, error)
	Groups(ctx context.Context, id, groupCol, valueCol string, topN int) (*domain.GroupChart, error)
	Top(ctx context.Context, id, column string, topN int) (*domain.TopTable, error)
	Export(ctx context.Context, id string, format services.ExportFormat, w io.Writer) error
	ExportFileName(ctx context.Context, id string, format services.ExportFormat) (string, error)
	Report(ctx context.Context, id, keyword string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
