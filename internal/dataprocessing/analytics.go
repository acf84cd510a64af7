package dataprocessing

import (
	"math"

	"penyusutan/pkg/contracts/domain"
)

// Dashboard defaults.
const (
	DefaultPreviewRows   = 5
	DefaultTopN          = 10
	DefaultHistogramBins = 30
	DefaultRatioMin      = 0.0
	DefaultRatioMax      = 20.0
)

// metricColumns are the headline totals, in display order.
var metricColumns = []struct {
	column string
	label  string
}{
	{domain.ColAcquisitionValue, "Total Nilai Perolehan"},
	{domain.ColMonthlyDepreciation, "Total Biaya Penyusutan Bulan"},
	{domain.ColAccumulatedDepreciation, "Total Akumulasi Penyusutan"},
}

// DashboardOptions tunes the panels of a dashboard. Zero values select the
// defaults.
type DashboardOptions struct {
	PreviewRows   int
	TopN          int
	HistogramBins int
	RatioMin      float64
	RatioMax      float64
	Currency      string
}

// DefaultDashboardOptions returns the standard panel settings.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		PreviewRows:   DefaultPreviewRows,
		TopN:          DefaultTopN,
		HistogramBins: DefaultHistogramBins,
		RatioMin:      DefaultRatioMin,
		RatioMax:      DefaultRatioMax,
		Currency:      DefaultCurrency,
	}
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	def := DefaultDashboardOptions()
	if o.PreviewRows <= 0 {
		o.PreviewRows = def.PreviewRows
	}
	if o.TopN <= 0 {
		o.TopN = def.TopN
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = def.HistogramBins
	}
	if o.RatioMin == 0 && o.RatioMax == 0 {
		o.RatioMin, o.RatioMax = def.RatioMin, def.RatioMax
	}
	if o.Currency == "" {
		o.Currency = def.Currency
	}
	return o
}

// Analyzer computes dashboard panels from a cleaned register.
type Analyzer struct {
	opts   DashboardOptions
	format *CurrencyFormatter
}

// NewAnalyzer creates an analyzer with opts.
func NewAnalyzer(opts DashboardOptions) *Analyzer {
	opts = opts.withDefaults()
	return &Analyzer{opts: opts, format: NewCurrencyFormatter(opts.Currency)}
}

// Options returns the effective settings.
func (a *Analyzer) Options() DashboardOptions {
	return a.opts
}

// Formatter returns the currency formatter.
func (a *Analyzer) Formatter() *CurrencyFormatter {
	return a.format
}

// Build computes every dashboard panel.
func (a *Analyzer) Build(t *domain.AssetTable) (*domain.Dashboard, error) {
	byType, err := a.GroupChart(t, domain.ColAssetType, domain.ColMonthlyDepreciation, a.opts.TopN)
	if err != nil {
		return nil, err
	}
	byClass, err := a.GroupChart(t, domain.ColDepreciationClass, domain.ColMonthlyDepreciation, a.opts.TopN)
	if err != nil {
		return nil, err
	}
	topAcquisition, err := a.TopTable(t, domain.ColAcquisitionValue, a.opts.TopN)
	if err != nil {
		return nil, err
	}
	topBookValue, err := a.TopTable(t, domain.ColBookValue, a.opts.TopN)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		RowCount:       t.Len(),
		Preview:        Preview(t, a.opts.PreviewRows),
		Metrics:        a.Metrics(t),
		ByAssetType:    *byType,
		ByClass:        *byClass,
		RatioHistogram: a.RatioHistogram(t),
		TopAcquisition: *topAcquisition,
		TopBookValue:   *topBookValue,
	}, nil
}

// Preview returns the first n rows.
func Preview(t *domain.AssetTable, n int) []domain.Asset {
	rows := tableRows(t)
	return append([]domain.Asset{}, truncate(rows, n)...)
}

// Metrics returns the headline totals.
func (a *Analyzer) Metrics(t *domain.AssetTable) []domain.Metric {
	metrics := make([]domain.Metric, 0, len(metricColumns))
	for _, m := range metricColumns {
		values := make([]float64, 0, t.Len())
		for _, asset := range tableRows(t) {
			v, _ := asset.Number(m.column)
			values = append(values, v)
		}
		total := Sum(values)
		metrics = append(metrics, domain.Metric{
			Column:    m.column,
			Label:     m.label,
			Value:     total,
			Formatted: a.format.Format(total),
		})
	}
	return metrics
}

// GroupChart sums valueCol per groupCol for a bar chart.
func (a *Analyzer) GroupChart(t *domain.AssetTable, groupCol, valueCol string, topN int) (*domain.GroupChart, error) {
	groups, err := GroupAndSum(t, groupCol, valueCol, topN)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []domain.GroupTotal{}
	}
	return &domain.GroupChart{GroupColumn: groupCol, ValueColumn: valueCol, Groups: groups}, nil
}

// TopTable ranks assets by column and projects them to type and value.
func (a *Analyzer) TopTable(t *domain.AssetTable, column string, topN int) (*domain.TopTable, error) {
	assets, err := TopByValue(t, column, topN)
	if err != nil {
		return nil, err
	}
	table := &domain.TopTable{Column: column, Rows: make([]domain.RankedAsset, len(assets))}
	for i, asset := range assets {
		v, _ := asset.Number(column)
		table.Rows[i] = domain.RankedAsset{
			Rank:      i + 1,
			AssetType: asset.AssetType,
			Value:     v,
			Formatted: a.format.Format(v),
		}
	}
	return table, nil
}

// Search filters by keyword and formats the total with the configured
// currency.
func (a *Analyzer) Search(t *domain.AssetTable, keyword string) domain.SearchResult {
	return filterByKeyword(t, keyword, a.format)
}

// RatioHistogram bins the ratios strictly inside the configured bounds.
// Non-finite ratios never fall inside.
func (a *Analyzer) RatioHistogram(t *domain.AssetTable) domain.Histogram {
	var samples []float64
	for _, asset := range tableRows(t) {
		r := float64(asset.Ratio)
		if r > a.opts.RatioMin && r < a.opts.RatioMax {
			samples = append(samples, r)
		}
	}

	h := NewHistogram(samples, a.opts.HistogramBins)
	h.Column = domain.ColDepreciationRatio
	h.Excluded = t.Len() - len(samples)
	return h
}

// NewHistogram splits [min, max] of values into bins equal-width bins. The
// last bin includes its upper edge. Equal values are centered in a range of
// width one; no values give empty bins over [0, 1].
func NewHistogram(values []float64, bins int) domain.Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
	}

	edges := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi

	h := domain.Histogram{Min: lo, Max: hi, Samples: len(values), Bins: make([]domain.HistogramBin, bins)}
	for i := range h.Bins {
		h.Bins[i] = domain.HistogramBin{Lower: edges[i], Upper: edges[i+1]}
	}

	norm := float64(bins) / (hi - lo)
	for _, v := range values {
		idx := int((v - lo) * norm)
		if idx >= bins {
			idx = bins - 1
		}
		// Float rounding can land a value one bin off its edges.
		if idx > 0 && v < edges[idx] {
			idx--
		}
		if idx < bins-1 && v >= edges[idx+1] {
			idx++
		}
		h.Bins[idx].Count++
	}
	return h
}
