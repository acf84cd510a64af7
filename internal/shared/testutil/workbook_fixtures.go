package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// AssetHeader is the column layout of a complete asset register.
var AssetHeader = []string{
	"Jenis_Aktiva_Tetap",
	"Golongan_Penyusutan",
	"Tahun_Perolehan",
	"Nilai_Perolehan",
	"Biaya_Penyusutan_Bulan",
	"Akumulasi_Penyusutan",
	"Biaya_Penyusutan_Sampai_Bulan",
	"Nilai_Buku_Bulan_Ini",
}

// Workbook describes a single-sheet test workbook. Nil cells stay blank.
type Workbook struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// Build renders the workbook in memory.
func (w Workbook) Build(t *testing.T) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheet := w.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	} else {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	for col, name := range w.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}

	for r, row := range w.Rows {
		for col, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	return f
}

// Bytes returns the workbook encoded as xlsx.
func (w Workbook) Bytes(t *testing.T) []byte {
	t.Helper()

	f := w.Build(t)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// Save writes the workbook into a temp directory and returns its path.
func (w Workbook) Save(t *testing.T, name string) string {
	t.Helper()

	f := w.Build(t)
	defer f.Close()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// SampleAssets is a small register with one subtotal row, one blank row and
// gaps that the cleaner must fill.
func SampleAssets() Workbook {
	return Workbook{
		Header: AssetHeader,
		Rows: [][]any{
			{"Bangunan Kantor", "Kelompok 1", 2019, 1000000, 10000, 100000, 100000, 900000},
			{"Kendaraan", "Kelompok 2", 2020, 300000, 5000, 50000, 50000, 250000},
			{"Subtotal", nil, nil, 1300000, 15000, 150000, 150000, 1150000},
			{nil, nil, nil, nil, nil, nil, nil, nil},
			{"Komputer", nil, "2021-03-15", 50000, nil, 10000, 10000, 0},
			{"Meja Kantor", "Kelompok 1", 2018, 20000, 1000, 8000, 8000, 12000},
		},
	}
}
