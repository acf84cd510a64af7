package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "penyusutan/internal/errors"
	"penyusutan/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is looked for.
const headerScanRows = 10

// minYear and maxYear bound numbers read as a plain year rather than an
// Excel serial date.
const (
	minYear = 1000
	maxYear = 9999
)

// dateLayouts are tried in order for text cells of the year column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"2 January 2006",
	"January 2006",
	"Jan 2006",
}

// Parser loads asset registers from xlsx workbooks.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser that logs through logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "parser"))}
}

// ParseFile reads the register from a workbook on disk.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*domain.RawTable, error) {
	f, err := excelize.OpenFile(filePath, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("file", filePath)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f)
}

// ParseReader reads the register from an xlsx stream.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f)
}

func (p *Parser) parseWorkbook(ctx context.Context, f *excelize.File) (*domain.RawTable, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil)
	}

	// Prefer the first sheet that carries every required column; otherwise
	// fall back to the first sheet so the caller reports what is missing.
	var (
		sheet     string
		rows      [][]string
		headerRow = -1
	)
	for _, name := range sheets {
		candidate, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", name)
		}
		idx, complete := findHeaderRow(candidate)
		if sheet == "" {
			sheet, rows, headerRow = name, candidate, idx
		}
		if complete {
			sheet, rows, headerRow = name, candidate, idx
			break
		}
	}

	if headerRow < 0 {
		return nil, apperrors.NewParsingError("sheet has no header row", nil).WithContext("sheet", sheet)
	}

	table := buildSchema(sheet, rows[headerRow])
	data := rows[headerRow+1:]
	positions := extraPositions(table)
	for i, kind := range inferExtraKinds(table, data) {
		table.Extras[i].Kind = kind
		table.Columns[positions[i]].Kind = kind
	}

	layout := columnLayout(table)
	dated := dateFormattedYears(f, sheet, layout, headerRow, len(data))
	table.Rows = make([]domain.RawRow, 0, len(data))
	for i, cells := range data {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		table.Rows = append(table.Rows, layout.parseRow(cells, i, headerRow+i+2, dated[i]))
	}

	p.logger.InfoContext(ctx, "register loaded",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow+1),
		slog.Int("columns", len(table.Columns)),
		slog.Int("extra_columns", len(table.Extras)),
		slog.Int("rows", len(table.Rows)),
		slog.Bool("has_ratio", table.HasRatio))

	return table, nil
}

// findHeaderRow picks the row among the first few non-empty ones that names
// the most required columns. complete is true when it names all of them.
func findHeaderRow(rows [][]string) (idx int, complete bool) {
	idx = -1
	best := -1
	scanned := 0
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if scanned == headerScanRows {
			break
		}
		scanned++

		names := make(map[string]bool, len(row))
		for _, cell := range row {
			names[strings.TrimSpace(cell)] = true
		}
		hits := 0
		for _, col := range domain.RequiredColumns {
			if names[col] {
				hits++
			}
		}
		if hits > best {
			best, idx = hits, i
		}
		if hits == len(domain.RequiredColumns) {
			return i, true
		}
	}
	return idx, false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// buildSchema maps the header row onto register columns. Blank headers are
// named after their column letter and repeated names get a numeric suffix.
func buildSchema(sheet string, header []string) *domain.RawTable {
	table := &domain.RawTable{Sheet: sheet}
	seen := make(map[string]int, len(header))

	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			letter, _ := excelize.ColumnNumberToName(i + 1)
			name = "Unnamed_" + letter
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}

		kind, known := domain.SchemaKind(name)
		col := domain.Column{Name: name, Kind: kind}
		table.Columns = append(table.Columns, col)
		if !known {
			table.Extras = append(table.Extras, col)
		}
		if name == domain.ColDepreciationRatio {
			table.HasRatio = true
		}
	}
	return table
}

func extraPositions(table *domain.RawTable) []int {
	var out []int
	for i, c := range table.Columns {
		if _, known := domain.SchemaKind(c.Name); !known {
			out = append(out, i)
		}
	}
	return out
}

// inferExtraKinds types each extra column: numeric when every non-empty cell
// parses as a number, text otherwise.
func inferExtraKinds(table *domain.RawTable, data [][]string) []domain.ColumnKind {
	positions := extraPositions(table)
	kinds := make([]domain.ColumnKind, len(positions))
	for i, pos := range positions {
		kinds[i] = domain.KindNumber
		for _, row := range data {
			if pos >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[pos])
			if raw == "" {
				continue
			}
			if _, ok := parseNumber(raw); !ok {
				kinds[i] = domain.KindText
				break
			}
		}
	}
	return kinds
}

// layout maps spreadsheet column positions to register fields.
type layout struct {
	positions map[string]int
	extras    []int
	kinds     []domain.ColumnKind
}

func columnLayout(table *domain.RawTable) layout {
	l := layout{positions: make(map[string]int, len(table.Columns))}
	for i, c := range table.Columns {
		if _, known := domain.SchemaKind(c.Name); known {
			l.positions[c.Name] = i
			continue
		}
		l.extras = append(l.extras, i)
		l.kinds = append(l.kinds, c.Kind)
	}
	return l
}

func (l layout) cell(cells []string, column string) (string, bool) {
	pos, ok := l.positions[column]
	if !ok || pos >= len(cells) {
		return "", false
	}
	raw := strings.TrimSpace(cells[pos])
	return raw, raw != ""
}

// parseRow converts one data row. yearIsDate reports that the year cell
// carries a date number format, so a numeric value is an Excel serial.
func (l layout) parseRow(cells []string, index, sourceRow int, yearIsDate bool) domain.RawRow {
	row := domain.RawRow{Index: index, SourceRow: sourceRow}

	text := func(column string) *string {
		if raw, ok := l.cell(cells, column); ok {
			return &raw
		}
		return nil
	}
	number := func(column string) *float64 {
		raw, ok := l.cell(cells, column)
		if !ok {
			return nil
		}
		if v, ok := parseNumber(raw); ok {
			return &v
		}
		row.MarkUnparsed(column, raw)
		return nil
	}

	row.AssetType = text(domain.ColAssetType)
	row.DepreciationClass = text(domain.ColDepreciationClass)
	if raw, ok := l.cell(cells, domain.ColAcquisitionYear); ok {
		cell, parsed := parseYear(raw, yearIsDate)
		if !parsed {
			row.MarkUnparsed(domain.ColAcquisitionYear, raw)
		}
		row.AcquisitionYear = cell
	}
	row.AcquisitionValue = number(domain.ColAcquisitionValue)
	row.MonthlyDepreciation = number(domain.ColMonthlyDepreciation)
	row.AccumulatedDepreciation = number(domain.ColAccumulatedDepreciation)
	row.DepreciationToDate = number(domain.ColDepreciationToDate)
	row.BookValue = number(domain.ColBookValue)
	row.Ratio = number(domain.ColDepreciationRatio)

	if len(l.extras) > 0 {
		row.Extras = make([]domain.RawCell, len(l.extras))
		for i, pos := range l.extras {
			if pos >= len(cells) {
				continue
			}
			raw := strings.TrimSpace(cells[pos])
			if raw == "" {
				continue
			}
			if l.kinds[i] == domain.KindNumber {
				if v, ok := parseNumber(raw); ok {
					row.Extras[i].Number = &v
				}
				continue
			}
			row.Extras[i].Text = &raw
		}
	}
	return row
}

// decimalComma matches numbers such as "12,5" whose comma reads as a decimal
// separator rather than a thousands separator.
var decimalComma = regexp.MustCompile(`^[-+]?\d+,\d{1,2}$`)

// parseNumber reads a cell as a finite float. Commas and spaces are
// thousands separators; a lone comma followed by one or two digits is
// ambiguous and rejected.
func parseNumber(raw string) (float64, bool) {
	if decimalComma.MatchString(raw) {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear reads an acquisition-year cell. Numbers in a date-formatted cell
// are Excel serial dates. Otherwise integers in [1000, 9999] are years and
// other numbers are serials. Text is tried against the known date layouts.
func parseYear(raw string, dateFormatted bool) (domain.YearCell, bool) {
	if v, ok := parseNumber(raw); ok {
		if !dateFormatted && v == float64(int(v)) && v >= minYear && v <= maxYear {
			year := int(v)
			return domain.YearCell{Year: &year}, true
		}
		if v <= 0 {
			return domain.YearCell{}, false
		}
		date, err := excelize.ExcelDateToTime(v, false)
		if err != nil {
			return domain.YearCell{}, false
		}
		return domain.YearCell{Date: &date}, true
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return domain.YearCell{Date: &date}, true
		}
	}
	return domain.YearCell{}, false
}

// dateFormattedYears reports, per data row, whether the acquisition-year cell
// is styled with a date number format. Style lookups that fail count as not
// dated.
func dateFormattedYears(f *excelize.File, sheet string, l layout, headerRow, rows int) map[int]bool {
	col, ok := l.positions[domain.ColAcquisitionYear]
	if !ok {
		return nil
	}
	formats := make(map[int]bool)
	dated := make(map[int]bool)
	for i := 0; i < rows; i++ {
		name, err := excelize.CoordinatesToCellName(col+1, headerRow+i+2)
		if err != nil {
			continue
		}
		styleID, err := f.GetCellStyle(sheet, name)
		if err != nil || styleID == 0 {
			continue
		}
		isDate, seen := formats[styleID]
		if !seen {
			if style, err := f.GetStyle(styleID); err == nil {
				isDate = isDateFormat(style)
			}
			formats[styleID] = isDate
		}
		if isDate {
			dated[i] = true
		}
	}
	return dated
}

// isDateFormat reports whether a cell style renders numbers as dates, either
// through a built-in date format or a custom code with day or year tokens.
func isDateFormat(style *excelize.Style) bool {
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 17,
		style.NumFmt == 22,
		style.NumFmt >= 27 && style.NumFmt <= 36,
		style.NumFmt >= 50 && style.NumFmt <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	code := strings.ToLower(stripLiterals(*style.CustomNumFmt))
	return strings.ContainsAny(code, "yd")
}

// stripLiterals drops quoted text, escaped characters and bracketed sections
// such as colours or locales from a number format code.
func stripLiterals(code string) string {
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '"':
			if end := strings.IndexByte(code[i+1:], '"'); end >= 0 {
				i += end + 1
				continue
			}
			return b.String()
		case '[':
			if end := strings.IndexByte(code[i+1:], ']'); end >= 0 {
				i += end + 1
				continue
			}
			return b.String()
		case '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
