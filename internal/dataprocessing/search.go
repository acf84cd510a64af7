package dataprocessing

import (
	"strings"

	"penyusutan/pkg/contracts/domain"
)

// FilterByKeyword returns the assets whose type contains keyword, ignoring
// case. An empty keyword matches every asset. The keyword is a plain
// substring, never a pattern.
func FilterByKeyword(t *domain.AssetTable, keyword string) domain.SearchResult {
	return filterByKeyword(t, keyword, DefaultFormatter())
}

func filterByKeyword(t *domain.AssetTable, keyword string, format *CurrencyFormatter) domain.SearchResult {
	result := domain.SearchResult{Keyword: keyword, Rows: []domain.SearchRow{}}
	needle := strings.ToLower(keyword)

	var values []float64
	for _, a := range tableRows(t) {
		if needle != "" && !strings.Contains(strings.ToLower(a.AssetType), needle) {
			continue
		}
		result.Rows = append(result.Rows, domain.SearchRow{
			AssetType:           a.AssetType,
			AcquisitionValue:    a.AcquisitionValue,
			MonthlyDepreciation: a.MonthlyDepreciation,
		})
		values = append(values, a.AcquisitionValue)
	}

	result.Count = len(result.Rows)
	result.TotalAcquisition = Sum(values)
	result.FormattedTotal = format.Format(result.TotalAcquisition)
	return result
}

func tableRows(t *domain.AssetTable) []domain.Asset {
	if t == nil {
		return nil
	}
	return t.Rows
}
