package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penyusutan/pkg/contracts/domain"
)

func assetTable(assets ...domain.Asset) *domain.AssetTable {
	cols := rawColumns()
	cols = append(cols, domain.Column{Name: domain.ColDepreciationRatio, Kind: domain.KindNumber})
	for i := range assets {
		assets[i].Index = i
	}
	return &domain.AssetTable{Sheet: "Sheet1", Columns: cols, RatioDerived: true, Rows: assets}
}

func asset(assetType, class string, monthly float64) domain.Asset {
	return domain.Asset{AssetType: assetType, DepreciationClass: class, MonthlyDepreciation: monthly}
}

func TestGroupAndSum(t *testing.T) {
	table := assetTable(
		asset("Gedung", "Kelompok 1", 100),
		asset("Mobil", "Kelompok 2", 300),
		asset("Gedung", "Kelompok 1", 250),
		asset("-", "Kelompok 2", 50),
		asset("Meja", "-", 300),
		asset("gedung", "Kelompok 1", 1),
	)

	tests := []struct {
		name     string
		groupCol string
		topN     int
		want     []domain.GroupTotal
	}{
		{
			name:     "by type, ties keep first encounter",
			groupCol: domain.ColAssetType,
			topN:     10,
			want: []domain.GroupTotal{
				{Group: "Gedung", Total: 350, Count: 2},
				{Group: "Mobil", Total: 300, Count: 1},
				{Group: "Meja", Total: 300, Count: 1},
				{Group: "-", Total: 50, Count: 1},
				{Group: "gedung", Total: 1, Count: 1},
			},
		},
		{
			name:     "truncated",
			groupCol: domain.ColAssetType,
			topN:     2,
			want: []domain.GroupTotal{
				{Group: "Gedung", Total: 350, Count: 2},
				{Group: "Mobil", Total: 300, Count: 1},
			},
		},
		{
			name:     "by class",
			groupCol: domain.ColDepreciationClass,
			topN:     0,
			want: []domain.GroupTotal{
				{Group: "Kelompok 1", Total: 351, Count: 3},
				{Group: "Kelompok 2", Total: 350, Count: 2},
				{Group: "-", Total: 300, Count: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GroupAndSum(table, tt.groupCol, domain.ColMonthlyDepreciation, tt.topN)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupAndSum_Invariants(t *testing.T) {
	var assets []domain.Asset
	var column []float64
	for i := 0; i < 15; i++ {
		class := fmt.Sprintf("Kelompok %d", i+1)
		for j := 0; j <= i%3; j++ {
			v := float64((i*37)%101) + 0.25*float64(j)
			assets = append(assets, asset("Aset", class, v))
			column = append(column, v)
		}
	}
	table := assetTable(assets...)

	tests := []struct {
		name    string
		topN    int
		wantLen int
	}{
		{"top ten of fifteen classes", 10, 10},
		{"all classes keep the column total", 0, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GroupAndSum(table, domain.ColDepreciationClass, domain.ColMonthlyDepreciation, tt.topN)
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)

			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].Total, got[i].Total, "group %d out of order", i)
			}
			if tt.topN > 0 {
				return
			}

			totals := make([]float64, len(got))
			count := 0
			for i, g := range got {
				totals[i] = g.Total
				count += g.Count
			}
			assert.InDelta(t, Sum(column), Sum(totals), 1e-9)
			assert.Equal(t, len(assets), count)
		})
	}
}

func TestGroupAndSum_ExactDecimalSum(t *testing.T) {
	table := assetTable(asset("A", "-", 0.1), asset("A", "-", 0.2))

	got, err := GroupAndSum(table, domain.ColAssetType, domain.ColMonthlyDepreciation, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got[0].Total)
}

func TestGroupAndSum_NonFiniteSortsLast(t *testing.T) {
	table := assetTable(
		domain.Asset{AssetType: "A", Ratio: domain.Ratio(math.NaN())},
		domain.Asset{AssetType: "B", Ratio: 2},
		domain.Asset{AssetType: "C", Ratio: domain.Ratio(math.Inf(1))},
	)

	got, err := GroupAndSum(table, domain.ColAssetType, domain.ColDepreciationRatio, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Group)
	assert.Equal(t, "B", got[1].Group)
	assert.Equal(t, "A", got[2].Group)
	assert.True(t, math.IsNaN(got[2].Total))
}

func TestGroupAndSum_EmptyTable(t *testing.T) {
	got, err := GroupAndSum(assetTable(), domain.ColAssetType, domain.ColMonthlyDepreciation, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGroupAndSum_ColumnErrors(t *testing.T) {
	table := assetTable(asset("A", "B", 1))

	tests := []struct {
		name     string
		groupCol string
		valueCol string
		wantKind bool
	}{
		{"unknown group", "Lokasi", domain.ColMonthlyDepreciation, false},
		{"unknown value", domain.ColAssetType, "Harga", false},
		{"numeric group", domain.ColAcquisitionValue, domain.ColMonthlyDepreciation, true},
		{"text value", domain.ColAssetType, domain.ColDepreciationClass, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GroupAndSum(table, tt.groupCol, tt.valueCol, 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingColumn)
			assert.Equal(t, tt.wantKind, errors.Is(err, ErrColumnKind))
		})
	}
}

func TestTopByValue(t *testing.T) {
	table := assetTable(
		domain.Asset{AssetType: "A", AcquisitionValue: 10},
		domain.Asset{AssetType: "B", AcquisitionValue: 30},
		domain.Asset{AssetType: "C", AcquisitionValue: 20},
		domain.Asset{AssetType: "D", AcquisitionValue: 30},
		domain.Asset{AssetType: "E", AcquisitionValue: 5},
	)

	got, err := TopByValue(table, domain.ColAcquisitionValue, 3)
	require.NoError(t, err)
	types := make([]string, len(got))
	for i, a := range got {
		types[i] = a.AssetType
	}
	assert.Equal(t, []string{"B", "D", "C"}, types)
	assert.Equal(t, "A", table.Rows[0].AssetType, "input order must be preserved")

	all, err := TopByValue(table, domain.ColAcquisitionYear, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = TopByValue(table, domain.ColAssetType, 3)
	assert.ErrorIs(t, err, ErrColumnKind)
}

func TestTopByValue_ExtraColumn(t *testing.T) {
	table := assetTable(
		domain.Asset{AssetType: "A", Extras: map[string]any{"Umur": 4.0}},
		domain.Asset{AssetType: "B", Extras: map[string]any{"Umur": 8.0}},
	)
	table.Columns = append(table.Columns, domain.Column{Name: "Umur", Kind: domain.KindNumber})

	got, err := TopByValue(table, "Umur", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].AssetType)
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.0, Sum(nil))
	assert.Equal(t, 0.6, Sum([]float64{0.1, 0.2, 0.3}))
	assert.True(t, math.IsInf(Sum([]float64{1, math.Inf(1)}), 1))
	assert.True(t, math.IsNaN(Sum([]float64{math.NaN(), 1})))
}
