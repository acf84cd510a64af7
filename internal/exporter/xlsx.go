package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"penyusutan/pkg/contracts/domain"
)

// sheetName is the name of the exported worksheet.
const sheetName = "Penyusutan"

// XLSXWriter exports the cleaned register as a workbook.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an xlsx exporter.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteAssets streams table into a single-sheet workbook written to out.
func (w *XLSXWriter) WriteAssets(out io.Writer, table *domain.AssetTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numeric, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, a := range table.Rows {
		row := make([]any, len(table.Columns))
		for i, c := range table.Columns {
			value := cellValue(a, c)
			if c.Kind == domain.KindNumber && c.Name != domain.ColDepreciationRatio && value != nil {
				row[i] = excelize.Cell{StyleID: numeric, Value: value}
				continue
			}
			row[i] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", a.Index, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("workbook exported", slog.Int("rows", table.Len()))
	return nil
}
