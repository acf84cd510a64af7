package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"penyusutan/pkg/contracts/domain"
)

func TestFilterByKeyword(t *testing.T) {
	table := assetTable(
		domain.Asset{AssetType: "Bangunan Kantor", AcquisitionValue: 1000000, MonthlyDepreciation: 10000},
		domain.Asset{AssetType: "Meja KANTOR", AcquisitionValue: 20000, MonthlyDepreciation: 1000},
		domain.Asset{AssetType: "Kendaraan", AcquisitionValue: 300000, MonthlyDepreciation: 5000},
		domain.Asset{AssetType: "Rak (besi)", AcquisitionValue: 500, MonthlyDepreciation: 5},
	)

	tests := []struct {
		name      string
		keyword   string
		wantTypes []string
		wantTotal float64
		formatted string
	}{
		{"case insensitive", "kantor", []string{"Bangunan Kantor", "Meja KANTOR"}, 1020000, "Rp 1,020,000"},
		{"empty keyword returns all", "", []string{"Bangunan Kantor", "Meja KANTOR", "Kendaraan", "Rak (besi)"}, 1320500, "Rp 1,320,500"},
		{"no match", "tanah", nil, 0, "Rp 0"},
		{"pattern characters are literal", "(besi)", []string{"Rak (besi)"}, 500, "Rp 500"},
		{"dot is not a wildcard", "k.ntor", nil, 0, "Rp 0"},
		{"whitespace is significant", " kantor", []string{"Bangunan Kantor", "Meja KANTOR"}, 1020000, "Rp 1,020,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByKeyword(table, tt.keyword)
			var types []string
			for _, r := range got.Rows {
				types = append(types, r.AssetType)
			}
			assert.Equal(t, tt.wantTypes, types)
			assert.Equal(t, len(tt.wantTypes), got.Count)
			assert.Equal(t, tt.wantTotal, got.TotalAcquisition)
			assert.Equal(t, tt.formatted, got.FormattedTotal)
			assert.Equal(t, tt.keyword, got.Keyword)
		})
	}
}

func TestFilterByKeyword_Projection(t *testing.T) {
	table := assetTable(domain.Asset{AssetType: "Mobil", AcquisitionValue: 10, MonthlyDepreciation: 2, BookValue: 8})

	got := FilterByKeyword(table, "mob")
	assert.Equal(t, []domain.SearchRow{{AssetType: "Mobil", AcquisitionValue: 10, MonthlyDepreciation: 2}}, got.Rows)
}

func TestFilterByKeyword_NilTable(t *testing.T) {
	got := FilterByKeyword(nil, "x")
	assert.Zero(t, got.Count)
	assert.NotNil(t, got.Rows)
}
