package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column names of an asset register, as they appear in the spreadsheet header.
const (
	ColAssetType               = "Jenis_Aktiva_Tetap"
	ColDepreciationClass       = "Golongan_Penyusutan"
	ColAcquisitionYear         = "Tahun_Perolehan"
	ColAcquisitionValue        = "Nilai_Perolehan"
	ColMonthlyDepreciation     = "Biaya_Penyusutan_Bulan"
	ColAccumulatedDepreciation = "Akumulasi_Penyusutan"
	ColDepreciationToDate      = "Biaya_Penyusutan_Sampai_Bulan"
	ColBookValue               = "Nilai_Buku_Bulan_Ini"
	ColDepreciationRatio       = "Rasio_Penyusutan"
)

// RequiredColumns must all be present in an uploaded register.
var RequiredColumns = []string{
	ColAssetType,
	ColDepreciationClass,
	ColAcquisitionYear,
	ColAcquisitionValue,
	ColMonthlyDepreciation,
	ColAccumulatedDepreciation,
	ColDepreciationToDate,
	ColBookValue,
}

// ColumnKind is the value type of a column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindYear
	KindNumber
)

func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindYear:
		return "year"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// SchemaKind reports the kind of a known register column.
func SchemaKind(column string) (ColumnKind, bool) {
	switch column {
	case ColAssetType, ColDepreciationClass:
		return KindText, true
	case ColAcquisitionYear:
		return KindYear, true
	case ColAcquisitionValue, ColMonthlyDepreciation, ColAccumulatedDepreciation,
		ColDepreciationToDate, ColBookValue, ColDepreciationRatio:
		return KindNumber, true
	default:
		return 0, false
	}
}

// Column describes one column of a table.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"-"`
}

// MarshalJSON emits the kind by name
func (c Column) MarshalJSON() ([]byte, error) {
	return []byte(`{"name":` + strconv.Quote(c.Name) + `,"kind":"` + c.Kind.String() + `"}`), nil
}

// Ratio is a depreciation ratio. It is non-finite when derived from a zero
// book value and encodes as JSON null in that case.
type Ratio float64

// IsFinite reports whether the ratio is a real number.
func (r Ratio) IsFinite() bool {
	f := float64(r)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.IsFinite() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(r), 'g', -1, 64), nil
}

// UnmarshalJSON maps null back to NaN
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ratio(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid ratio %s: %w", data, err)
	}
	*r = Ratio(f)
	return nil
}

// YearCell is a raw acquisition-year cell: either an integer year, a
// calendar date, or null.
type YearCell struct {
	Year *int
	Date *time.Time
}

// IsNull reports whether the cell holds neither a year nor a date.
func (y YearCell) IsNull() bool {
	return y.Year == nil && y.Date == nil
}

// RawCell is a nullable value of an extra column.
type RawCell struct {
	Text   *string
	Number *float64
}

// IsNull reports whether the cell is empty
func (c RawCell) IsNull() bool {
	return c.Text == nil && c.Number == nil
}

// RawRow is one spreadsheet row before cleaning. Every cell may be null.
type RawRow struct {
	// Index is the position of the row among the sheet's data rows.
	Index     int
	SourceRow int

	AssetType         *string
	DepreciationClass *string
	AcquisitionYear   YearCell

	AcquisitionValue        *float64
	MonthlyDepreciation     *float64
	AccumulatedDepreciation *float64
	DepreciationToDate      *float64
	BookValue               *float64
	Ratio                   *float64

	// Extras is parallel to RawTable.Extras.
	Extras []RawCell

	// Unparsed keeps the original text of numeric or year cells that could
	// not be converted, keyed by column name.
	Unparsed map[string]string
}

// MarkUnparsed records the text of a cell that failed conversion.
func (r *RawRow) MarkUnparsed(column, text string) {
	if r.Unparsed == nil {
		r.Unparsed = make(map[string]string)
	}
	r.Unparsed[column] = text
}

// Texts returns every textual value of the row: text columns, text extras
// and unparsed cells.
func (r RawRow) Texts() []string {
	var out []string
	if r.AssetType != nil {
		out = append(out, *r.AssetType)
	}
	if r.DepreciationClass != nil {
		out = append(out, *r.DepreciationClass)
	}
	for _, c := range r.Extras {
		if c.Text != nil {
			out = append(out, *c.Text)
		}
	}
	for _, v := range r.Unparsed {
		out = append(out, v)
	}
	return out
}

// IsEmpty reports whether every cell of the row is null.
func (r RawRow) IsEmpty() bool {
	if r.AssetType != nil || r.DepreciationClass != nil || !r.AcquisitionYear.IsNull() || len(r.Unparsed) > 0 {
		return false
	}
	for _, v := range []*float64{r.AcquisitionValue, r.MonthlyDepreciation, r.AccumulatedDepreciation,
		r.DepreciationToDate, r.BookValue, r.Ratio} {
		if v != nil {
			return false
		}
	}
	for _, c := range r.Extras {
		if !c.IsNull() {
			return false
		}
	}
	return true
}

// RawTable is a loaded but uncleaned register.
type RawTable struct {
	Sheet string
	// Columns lists the header in spreadsheet order.
	Columns []Column
	// Extras lists the non-register columns in header order.
	Extras []Column
	// HasRatio is true when the sheet carries its own ratio column.
	HasRatio bool
	Rows     []RawRow
}

// HasColumn reports whether the header contains name
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Asset is one cleaned register row. No field is null.
type Asset struct {
	Index     int `json:"index"`
	SourceRow int `json:"source_row"`

	AssetType         string `json:"Jenis_Aktiva_Tetap"`
	DepreciationClass string `json:"Golongan_Penyusutan"`
	AcquisitionYear   int    `json:"Tahun_Perolehan"`

	AcquisitionValue        float64 `json:"Nilai_Perolehan"`
	MonthlyDepreciation     float64 `json:"Biaya_Penyusutan_Bulan"`
	AccumulatedDepreciation float64 `json:"Akumulasi_Penyusutan"`
	DepreciationToDate      float64 `json:"Biaya_Penyusutan_Sampai_Bulan"`
	BookValue               float64 `json:"Nilai_Buku_Bulan_Ini"`
	Ratio                   Ratio   `json:"Rasio_Penyusutan"`

	// Extras holds extra columns by name: string for text, float64 for numbers.
	Extras map[string]any `json:"extras,omitempty"`
}

// Text returns the value of a text column.
func (a Asset) Text(column string) (string, bool) {
	switch column {
	case ColAssetType:
		return a.AssetType, true
	case ColDepreciationClass:
		return a.DepreciationClass, true
	}
	v, ok := a.Extras[column].(string)
	return v, ok
}

// Number returns the value of a numeric or year column.
func (a Asset) Number(column string) (float64, bool) {
	switch column {
	case ColAcquisitionYear:
		return float64(a.AcquisitionYear), true
	case ColAcquisitionValue:
		return a.AcquisitionValue, true
	case ColMonthlyDepreciation:
		return a.MonthlyDepreciation, true
	case ColAccumulatedDepreciation:
		return a.AccumulatedDepreciation, true
	case ColDepreciationToDate:
		return a.DepreciationToDate, true
	case ColBookValue:
		return a.BookValue, true
	case ColDepreciationRatio:
		return float64(a.Ratio), true
	}
	v, ok := a.Extras[column].(float64)
	return v, ok
}

// AssetTable is a cleaned register.
type AssetTable struct {
	Sheet   string   `json:"sheet"`
	Columns []Column `json:"columns"`
	Extras  []Column `json:"-"`
	// RatioDerived is true when Rasio_Penyusutan was computed rather than read.
	RatioDerived bool    `json:"ratio_derived"`
	Rows         []Asset `json:"rows"`
}

// Len returns the number of rows
func (t *AssetTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnKind looks up a column of the cleaned table.
func (t *AssetTable) ColumnKind(name string) (ColumnKind, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return 0, false
}
