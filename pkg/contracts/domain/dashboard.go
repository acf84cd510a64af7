package domain

// Metric is a headline total shown on the dashboard.
type Metric struct {
	Column    string  `json:"column"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// GroupTotal is one bar of a grouped bar chart.
type GroupTotal struct {
	Group string  `json:"group"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// HistogramBin is a half-open bin [Lower, Upper); the last bin is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the distribution of the depreciation ratio.
type Histogram struct {
	Column   string         `json:"column"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	Samples  int            `json:"samples"`
	Excluded int            `json:"excluded"`
	Bins     []HistogramBin `json:"bins"`
}

// RankedAsset is a top-table row projected to the asset type and one value.
type RankedAsset struct {
	Rank      int     `json:"rank"`
	AssetType string  `json:"Jenis_Aktiva_Tetap"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// TopTable is a ranked table of assets by one column.
type TopTable struct {
	Column string        `json:"column"`
	Rows   []RankedAsset `json:"rows"`
}

// GroupChart is a ranked bar chart of group totals.
type GroupChart struct {
	GroupColumn string       `json:"group_column"`
	ValueColumn string       `json:"value_column"`
	Groups      []GroupTotal `json:"groups"`
}

// SearchRow is an asset projected for keyword search results.
type SearchRow struct {
	AssetType           string  `json:"Jenis_Aktiva_Tetap"`
	AcquisitionValue    float64 `json:"Nilai_Perolehan"`
	MonthlyDepreciation float64 `json:"Biaya_Penyusutan_Bulan"`
}

// SearchResult is the outcome of a keyword search.
type SearchResult struct {
	Keyword          string      `json:"keyword"`
	Count            int         `json:"count"`
	TotalAcquisition float64     `json:"total_acquisition"`
	FormattedTotal   string      `json:"formatted_total"`
	Rows             []SearchRow `json:"rows"`
}

// Dashboard bundles every panel computed from a cleaned register.
type Dashboard struct {
	RowCount       int        `json:"row_count"`
	Preview        []Asset    `json:"preview"`
	Metrics        []Metric   `json:"metrics"`
	ByAssetType    GroupChart `json:"by_asset_type"`
	ByClass        GroupChart `json:"by_depreciation_class"`
	RatioHistogram Histogram  `json:"ratio_histogram"`
	TopAcquisition TopTable   `json:"top_acquisition"`
	TopBookValue   TopTable   `json:"top_book_value"`
}
