package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "penyusutan/internal/errors"
	"penyusutan/internal/shared/testutil"
	"penyusutan/pkg/contracts/domain"
)

func TestParseFile(t *testing.T) {
	path := testutil.SampleAssets().Save(t, "register.xlsx")

	table, err := NewParser(nil).ParseFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", table.Sheet)
	assert.False(t, table.HasRatio)
	assert.Empty(t, table.Extras)
	require.Len(t, table.Rows, 6)

	first := table.Rows[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 2, first.SourceRow)
	require.NotNil(t, first.AssetType)
	assert.Equal(t, "Bangunan Kantor", *first.AssetType)
	require.NotNil(t, first.AcquisitionYear.Year)
	assert.Equal(t, 2019, *first.AcquisitionYear.Year)
	require.NotNil(t, first.AcquisitionValue)
	assert.Equal(t, 1000000.0, *first.AcquisitionValue)

	assert.True(t, table.Rows[3].IsEmpty())

	computer := table.Rows[4]
	assert.Nil(t, computer.DepreciationClass)
	assert.Nil(t, computer.MonthlyDepreciation)
	require.NotNil(t, computer.AcquisitionYear.Date)
	assert.Equal(t, 2021, computer.AcquisitionYear.Date.Year())
}

func TestParseReader(t *testing.T) {
	wb := testutil.Workbook{
		Header: append(append([]string{}, testutil.AssetHeader...), "Lokasi", "", "Lokasi", "Umur"),
		Rows: [][]any{
			{"Gedung", "Bangunan", "2,015", "1,500,000", "abc", 10, 20, 30, "Jakarta", "x", "A", 5},
			{"Mobil", "Kelompok 2", 43831, 200, 2, 3, 4, 5, nil, nil, nil, nil},
			{"Laptop", "Kelompok 1", "bukan tahun", 100, 1, 2, 3, 4, "Bandung", nil, "B", 3},
		},
	}

	table, err := NewParser(nil).ParseReader(context.Background(), bytes.NewReader(wb.Bytes(t)))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	names := make([]string, len(table.Extras))
	for i, c := range table.Extras {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Lokasi", "Unnamed_J", "Lokasi.1", "Umur"}, names)
	assert.Equal(t, domain.KindText, table.Extras[0].Kind)
	assert.Equal(t, domain.KindText, table.Extras[1].Kind)
	assert.Equal(t, domain.KindNumber, table.Extras[3].Kind)

	gedung := table.Rows[0]
	require.NotNil(t, gedung.AcquisitionYear.Year)
	assert.Equal(t, 2015, *gedung.AcquisitionYear.Year)
	require.NotNil(t, gedung.AcquisitionValue)
	assert.Equal(t, 1500000.0, *gedung.AcquisitionValue)
	assert.Nil(t, gedung.MonthlyDepreciation)
	assert.Equal(t, "abc", gedung.Unparsed[domain.ColMonthlyDepreciation])
	require.NotNil(t, gedung.Extras[3].Number)
	assert.Equal(t, 5.0, *gedung.Extras[3].Number)

	mobil := table.Rows[1]
	require.NotNil(t, mobil.AcquisitionYear.Date)
	assert.Equal(t, 2020, mobil.AcquisitionYear.Date.Year())
	assert.True(t, mobil.Extras[0].IsNull())

	laptop := table.Rows[2]
	assert.True(t, laptop.AcquisitionYear.IsNull())
	assert.Equal(t, "bukan tahun", laptop.Unparsed[domain.ColAcquisitionYear])
}

func TestParseReader_SelectsSheetWithRegister(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Catatan"}))
	_, err := f.NewSheet("Aset")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Aset", "A1", &[]any{"Laporan Penyusutan"}))
	header := make([]any, len(testutil.AssetHeader))
	for i, h := range testutil.AssetHeader {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow("Aset", "A3", &header))
	require.NoError(t, f.SetSheetRow("Aset", "A4", &[]any{"Gedung", "Bangunan", 2010, 1, 2, 3, 4, 5}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := NewParser(nil).ParseReader(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "Aset", table.Sheet)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 4, table.Rows[0].SourceRow)
	assert.NoError(t, ValidateColumns(table))
}

func TestParseReader_FallsBackToFirstSheet(t *testing.T) {
	wb := testutil.Workbook{
		Header: []string{"Jenis_Aktiva_Tetap", "Nilai_Perolehan"},
		Rows:   [][]any{{"Gedung", 100}},
	}

	table, err := NewParser(nil).ParseReader(context.Background(), bytes.NewReader(wb.Bytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", table.Sheet)

	err = ValidateColumns(table)
	require.ErrorIs(t, err, ErrMissingColumn)
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Columns, domain.ColDepreciationClass)
	assert.NotContains(t, missing.Columns, domain.ColAssetType)
}

func TestParseReader_Errors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := NewParser(nil).ParseReader(context.Background(), strings.NewReader("not a zip"))
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("empty sheet", func(t *testing.T) {
		wb := testutil.Workbook{}
		_, err := NewParser(nil).ParseReader(context.Background(), bytes.NewReader(wb.Bytes(t)))
		require.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		data := testutil.SampleAssets().Bytes(t)
		_, err := NewParser(nil).ParseReader(ctx, bytes.NewReader(data))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1000", 1000, true},
		{"1,234,567", 1234567, true},
		{"12.5", 12.5, true},
		{"-3", -3, true},
		{"1 000", 1000, true},
		{"2,015", 2015, true},
		{"12,5", 0, false},
		{"-7,25", 0, false},
		{"NaN", 0, false},
		{"Infinity", 0, false},
		{"-Inf", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in       string
		dated    bool
		wantYear int
		isDate   bool
		ok       bool
	}{
		{"2019", false, 2019, false, true},
		{"2019-07-01", false, 2019, true, true},
		{"15/08/2017", false, 2017, true, true},
		{"44197", false, 2021, true, true},
		{"1500", true, 1904, true, true},
		{"44197", true, 2021, true, true},
		{"0", false, 0, false, false},
		{"NaN", false, 0, false, false},
		{"kemarin", false, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/dated=%t", tt.in, tt.dated), func(t *testing.T) {
			cell, ok := parseYear(tt.in, tt.dated)
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.True(t, cell.IsNull())
				return
			}
			if tt.isDate {
				require.NotNil(t, cell.Date)
				assert.Equal(t, tt.wantYear, cell.Date.Year())
				return
			}
			require.NotNil(t, cell.Year)
			assert.Equal(t, tt.wantYear, *cell.Year)
		})
	}
}

func TestParseReader_DateFormattedYear(t *testing.T) {
	wb := testutil.Workbook{
		Header: testutil.AssetHeader,
		Rows: [][]any{
			{"Gedung", "Kelompok 1", 1500, 1, 1, 1, 1, 1},
			{"Mobil", "Kelompok 2", 2019, 1, 1, 1, 1, 1},
			{"Meja", "Kelompok 1", 43831, 1, 1, 1, 1, 1},
			{"Kursi", "Kelompok 1", 2018, 1, 1, 1, 1, 1},
		},
	}
	f := wb.Build(t)
	defer f.Close()

	builtinDate, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	customDate := "dd/mm/yyyy"
	customDateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customDate})
	require.NoError(t, err)
	thousands := "#,##0"
	thousandsStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &thousands})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", builtinDate))
	require.NoError(t, f.SetCellStyle("Sheet1", "C4", "C4", customDateStyle))
	require.NoError(t, f.SetCellStyle("Sheet1", "C5", "C5", thousandsStyle))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := NewParser(nil).ParseReader(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)

	tests := []struct {
		name     string
		row      int
		wantYear int
		isDate   bool
	}{
		{"built-in date format with small serial", 0, 1904, true},
		{"unstyled year", 1, 2019, false},
		{"custom date format", 2, 2020, true},
		{"custom number format", 3, 2018, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := table.Rows[tt.row].AcquisitionYear
			if tt.isDate {
				require.NotNil(t, cell.Date)
				assert.Nil(t, cell.Year)
				assert.Equal(t, tt.wantYear, cell.Date.Year())
				return
			}
			require.NotNil(t, cell.Year)
			assert.Equal(t, tt.wantYear, *cell.Year)
		})
	}
}

func TestIsDateFormat(t *testing.T) {
	custom := func(code string) *string { return &code }
	tests := []struct {
		name  string
		style excelize.Style
		want  bool
	}{
		{"general", excelize.Style{}, false},
		{"built-in short date", excelize.Style{NumFmt: 14}, true},
		{"built-in date time", excelize.Style{NumFmt: 22}, true},
		{"built-in time only", excelize.Style{NumFmt: 21}, false},
		{"built-in thousands", excelize.Style{NumFmt: 3}, false},
		{"custom date", excelize.Style{CustomNumFmt: custom("[$-421]d mmmm yyyy")}, true},
		{"custom year", excelize.Style{CustomNumFmt: custom("yyyy")}, true},
		{"custom currency", excelize.Style{CustomNumFmt: custom(`"Rp"\ #,##0`)}, false},
		{"quoted day word", excelize.Style{CustomNumFmt: custom(`0 "days"`)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormat(&tt.style))
		})
	}
}
