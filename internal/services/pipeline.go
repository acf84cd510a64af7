package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"penyusutan/internal/config"
	"penyusutan/internal/dataprocessing"
	"penyusutan/internal/infrastructure"
	"penyusutan/internal/validation"
	"penyusutan/pkg/contracts/domain"
)

// Analysis is the result of running one workbook through the pipeline.
type Analysis struct {
	FileName  string
	Table     *domain.AssetTable
	Stats     dataprocessing.CleanStats
	Dashboard *domain.Dashboard
}

// PipelineConfig wires a Pipeline.
type PipelineConfig struct {
	MaxBytes  int64
	Dashboard dataprocessing.DashboardOptions
	Metrics   *infrastructure.BusinessMetrics
	Tracer    trace.Tracer
	Logger    *slog.Logger
}

// NewPipelineConfig maps the upload and dashboard sections of cfg.
func NewPipelineConfig(cfg *config.Config) PipelineConfig {
	return PipelineConfig{
		MaxBytes: cfg.Upload.MaxBytes,
		Dashboard: dataprocessing.DashboardOptions{
			PreviewRows:   cfg.Dashboard.PreviewRows,
			TopN:          cfg.Dashboard.TopN,
			HistogramBins: cfg.Dashboard.HistogramBins,
			RatioMin:      cfg.Dashboard.RatioMin,
			RatioMax:      cfg.Dashboard.RatioMax,
			Currency:      cfg.Dashboard.Currency,
		},
	}
}

// Pipeline validates, loads, cleans and analyzes workbooks.
type Pipeline struct {
	validator *validation.FileValidator
	parser    *dataprocessing.Parser
	cleaner   *dataprocessing.Cleaner
	analyzer  *dataprocessing.Analyzer
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewPipeline creates a pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &Pipeline{
		validator: validation.NewFileValidator(logger, cfg.MaxBytes),
		parser:    dataprocessing.NewParser(logger),
		cleaner:   dataprocessing.NewCleaner(logger),
		analyzer:  dataprocessing.NewAnalyzer(cfg.Dashboard),
		metrics:   cfg.Metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("component", "pipeline")),
	}
}

// Analyzer returns the analyzer used for dashboards.
func (p *Pipeline) Analyzer() *dataprocessing.Analyzer {
	return p.analyzer
}

// Logger returns the pipeline's logger.
func (p *Pipeline) Logger() *slog.Logger {
	return p.logger
}

// Validator returns the file validator.
func (p *Pipeline) Validator() *validation.FileValidator {
	return p.validator
}

// ProcessFile runs a workbook on disk through the pipeline.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Analysis, error) {
	if err := p.validator.ValidateFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return p.Process(ctx, filepath.Base(path), info.Size(), f)
}

// Process validates and analyzes an uploaded workbook of size bytes.
func (p *Pipeline) Process(ctx context.Context, fileName string, size int64, r io.Reader) (analysis *Analysis, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(
			attribute.String("file.name", fileName),
			attribute.Int64("file.size", size),
		))
	defer span.End()

	start := time.Now()
	var stats dataprocessing.CleanStats
	defer func() {
		infrastructure.RecordUpload(ctx, p.metrics, infrastructure.UploadOutcome{
			RowsRead:       stats.RowsRead,
			SummaryRemoved: stats.SummaryRowsRemoved,
			EmptyRemoved:   stats.EmptyRowsRemoved,
			Duration:       time.Since(start),
			Err:            err,
		})
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	br := bufio.NewReader(r)
	header, _ := br.Peek(validation.HeaderSize)
	if err := p.validator.ValidateUpload(fileName, size, header); err != nil {
		return nil, err
	}

	raw, err := p.parser.ParseReader(ctx, br)
	if err != nil {
		return nil, err
	}

	table, stats, err := p.cleaner.Clean(ctx, raw)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("rows.read", stats.RowsRead),
		attribute.Int("rows.kept", stats.RowsKept),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dashboard, err := p.analyzer.Build(table)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "workbook analyzed",
		slog.String("file", fileName),
		slog.Int("rows", table.Len()),
		slog.Duration("duration", time.Since(start)))

	return &Analysis{
		FileName:  fileName,
		Table:     table,
		Stats:     stats,
		Dashboard: dashboard,
	}, nil
}
