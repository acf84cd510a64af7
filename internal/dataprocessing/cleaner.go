package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"penyusutan/pkg/contracts/domain"
)

// Placeholder written into empty text cells.
const MissingText = "-"

// summaryMarker flags subtotal and total rows. "subtotal" contains it too.
const summaryMarker = "total"

// CleanStats reports what cleaning did to a register.
type CleanStats struct {
	RowsRead           int  `json:"rows_read"`
	SummaryRowsRemoved int  `json:"summary_rows_removed"`
	EmptyRowsRemoved   int  `json:"empty_rows_removed"`
	RowsKept           int  `json:"rows_kept"`
	YearsFromDates     int  `json:"years_from_dates"`
	TextCellsFilled    int  `json:"text_cells_filled"`
	NumberCellsFilled  int  `json:"number_cells_filled"`
	YearCellsFilled    int  `json:"year_cells_filled"`
	RatioDerived       bool `json:"ratio_derived"`
	NonFiniteRatios    int  `json:"non_finite_ratios"`
}

// Cleaner turns a loaded register into a clean asset table.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner that logs through logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean validates the header and runs every cleaning step in order:
// summary rows, empty rows, year normalization, fill, reindex, ratio.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.RawTable) (*domain.AssetTable, CleanStats, error) {
	var stats CleanStats
	if err := ValidateColumns(raw); err != nil {
		c.logger.WarnContext(ctx, "register rejected", slog.String("error", err.Error()))
		return nil, stats, err
	}

	start := time.Now()
	stats.RowsRead = len(raw.Rows)

	withoutSummary := RemoveSummaryRows(raw)
	stats.SummaryRowsRemoved = len(raw.Rows) - len(withoutSummary.Rows)

	withoutEmpty := RemoveEmptyRows(withoutSummary)
	stats.EmptyRowsRemoved = len(withoutSummary.Rows) - len(withoutEmpty.Rows)

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	for _, row := range withoutEmpty.Rows {
		if row.AcquisitionYear.Year == nil && row.AcquisitionYear.Date != nil {
			stats.YearsFromDates++
		}
	}
	normalized := NormalizeYear(withoutEmpty)

	stats.TextCellsFilled, stats.NumberCellsFilled, stats.YearCellsFilled = countMissing(normalized)
	table := DeriveRatio(Reindex(FillMissing(normalized)))

	stats.RowsKept = table.Len()
	stats.RatioDerived = table.RatioDerived
	for _, a := range table.Rows {
		if !a.Ratio.IsFinite() {
			stats.NonFiniteRatios++
		}
	}

	c.logger.InfoContext(ctx, "register cleaned",
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("summary_removed", stats.SummaryRowsRemoved),
		slog.Int("empty_removed", stats.EmptyRowsRemoved),
		slog.Int("rows_kept", stats.RowsKept),
		slog.Bool("ratio_derived", stats.RatioDerived),
		slog.Int("non_finite_ratios", stats.NonFiniteRatios),
		slog.Duration("duration", time.Since(start)))

	return table, stats, nil
}

// ValidateColumns checks that the header names every required column.
func ValidateColumns(raw *domain.RawTable) error {
	var missing []string
	for _, col := range domain.RequiredColumns {
		if raw == nil || !raw.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// RemoveSummaryRows drops rows where any text value contains "subtotal" or
// "total", ignoring case.
func RemoveSummaryRows(raw *domain.RawTable) *domain.RawTable {
	return filterRows(raw, func(row domain.RawRow) bool {
		return !isSummaryRow(row)
	})
}

func isSummaryRow(row domain.RawRow) bool {
	for _, text := range row.Texts() {
		if strings.Contains(strings.ToLower(text), summaryMarker) {
			return true
		}
	}
	return false
}

// RemoveEmptyRows drops rows whose cells are all null.
func RemoveEmptyRows(raw *domain.RawTable) *domain.RawTable {
	return filterRows(raw, func(row domain.RawRow) bool {
		return !row.IsEmpty()
	})
}

func filterRows(raw *domain.RawTable, keep func(domain.RawRow) bool) *domain.RawTable {
	out := *raw
	out.Rows = make([]domain.RawRow, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return &out
}

// NormalizeYear replaces date cells of the acquisition year with their
// calendar year. Integer years pass through unchanged.
func NormalizeYear(raw *domain.RawTable) *domain.RawTable {
	out := *raw
	out.Rows = make([]domain.RawRow, len(raw.Rows))
	for i, row := range raw.Rows {
		if row.AcquisitionYear.Year == nil && row.AcquisitionYear.Date != nil {
			year := row.AcquisitionYear.Date.Year()
			row.AcquisitionYear = domain.YearCell{Year: &year}
		}
		out.Rows[i] = row
	}
	return &out
}

// FillMissing converts the register into assets, writing "-" into empty
// text cells and 0 into empty numeric and year cells.
func FillMissing(raw *domain.RawTable) *domain.AssetTable {
	table := &domain.AssetTable{
		Sheet:   raw.Sheet,
		Columns: append([]domain.Column(nil), raw.Columns...),
		Extras:  append([]domain.Column(nil), raw.Extras...),
		Rows:    make([]domain.Asset, len(raw.Rows)),
	}

	for i, row := range raw.Rows {
		asset := domain.Asset{
			Index:                   row.Index,
			SourceRow:               row.SourceRow,
			AssetType:               textOr(row.AssetType),
			DepreciationClass:       textOr(row.DepreciationClass),
			AcquisitionValue:        numberOr(row.AcquisitionValue),
			MonthlyDepreciation:     numberOr(row.MonthlyDepreciation),
			AccumulatedDepreciation: numberOr(row.AccumulatedDepreciation),
			DepreciationToDate:      numberOr(row.DepreciationToDate),
			BookValue:               numberOr(row.BookValue),
		}
		if row.AcquisitionYear.Year != nil {
			asset.AcquisitionYear = *row.AcquisitionYear.Year
		} else if row.AcquisitionYear.Date != nil {
			asset.AcquisitionYear = row.AcquisitionYear.Date.Year()
		}
		if raw.HasRatio {
			asset.Ratio = domain.Ratio(numberOr(row.Ratio))
		}

		if len(raw.Extras) > 0 {
			asset.Extras = make(map[string]any, len(raw.Extras))
			for j, col := range raw.Extras {
				var cell domain.RawCell
				if j < len(row.Extras) {
					cell = row.Extras[j]
				}
				if col.Kind == domain.KindNumber {
					asset.Extras[col.Name] = numberOr(cell.Number)
				} else {
					asset.Extras[col.Name] = textOr(cell.Text)
				}
			}
		}
		table.Rows[i] = asset
	}
	return table
}

func textOr(v *string) string {
	if v == nil {
		return MissingText
	}
	return *v
}

func numberOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// countMissing counts the null cells FillMissing will write, by kind.
func countMissing(raw *domain.RawTable) (text, number, year int) {
	for _, row := range raw.Rows {
		for _, v := range []*string{row.AssetType, row.DepreciationClass} {
			if v == nil {
				text++
			}
		}
		nums := []*float64{row.AcquisitionValue, row.MonthlyDepreciation, row.AccumulatedDepreciation,
			row.DepreciationToDate, row.BookValue}
		if raw.HasRatio {
			nums = append(nums, row.Ratio)
		}
		for _, v := range nums {
			if v == nil {
				number++
			}
		}
		if row.AcquisitionYear.IsNull() {
			year++
		}
		for j, col := range raw.Extras {
			if j < len(row.Extras) && !row.Extras[j].IsNull() {
				continue
			}
			if col.Kind == domain.KindNumber {
				number++
			} else {
				text++
			}
		}
	}
	return text, number, year
}

// Reindex numbers the rows contiguously from 0.
func Reindex(table *domain.AssetTable) *domain.AssetTable {
	out := *table
	out.Rows = make([]domain.Asset, len(table.Rows))
	for i, a := range table.Rows {
		a.Index = i
		out.Rows[i] = a
	}
	return &out
}

// DeriveRatio computes Rasio_Penyusutan as depreciation to date over book
// value when the register does not carry the column. A zero book value
// yields a non-finite ratio.
func DeriveRatio(table *domain.AssetTable) *domain.AssetTable {
	if _, ok := table.ColumnKind(domain.ColDepreciationRatio); ok {
		return table
	}

	out := *table
	out.RatioDerived = true
	out.Columns = append(append([]domain.Column(nil), table.Columns...),
		domain.Column{Name: domain.ColDepreciationRatio, Kind: domain.KindNumber})
	out.Rows = make([]domain.Asset, len(table.Rows))
	for i, a := range table.Rows {
		a.Ratio = domain.Ratio(a.DepreciationToDate / a.BookValue)
		out.Rows[i] = a
	}
	return &out
}
