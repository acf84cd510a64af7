package exporter

import (
	"math"
	"strconv"

	"penyusutan/pkg/contracts/domain"
)

// formatNumber formats a value with the shortest exact representation.
// Non-finite values are written as an empty cell.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// AssetHeaders returns the export header: the table's columns in order.
func AssetHeaders(table *domain.AssetTable) []string {
	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Name
	}
	return headers
}

// AssetRecord renders one asset in the order of AssetHeaders.
func AssetRecord(table *domain.AssetTable, a domain.Asset) []string {
	record := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		record[i] = cellString(a, c)
	}
	return record
}

// cellValue returns the typed value of a column for spreadsheet output.
// Non-finite numbers become nil.
func cellValue(a domain.Asset, c domain.Column) any {
	switch c.Kind {
	case domain.KindYear:
		return a.AcquisitionYear
	case domain.KindNumber:
		v, _ := a.Number(c.Name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	default:
		v, _ := a.Text(c.Name)
		return v
	}
}

func cellString(a domain.Asset, c domain.Column) string {
	switch v := cellValue(a, c).(type) {
	case nil:
		return ""
	case int:
		return formatInt(v)
	case float64:
		return formatNumber(v)
	case string:
		return v
	default:
		return ""
	}
}
