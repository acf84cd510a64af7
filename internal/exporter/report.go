package exporter

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"penyusutan/internal/dataprocessing"
	"penyusutan/pkg/contracts/domain"
)

// ReportTitle heads every report.
const ReportTitle = "Dashboard Analisis Biaya Penyusutan Aset"

// ReportInput is everything a report shows.
type ReportInput struct {
	Source      string
	GeneratedAt time.Time
	Stats       dataprocessing.CleanStats
	Dashboard   *domain.Dashboard
	// Search is optional.
	Search *domain.SearchResult
}

// ReportBuilder renders dashboards as Markdown and HTML.
type ReportBuilder struct {
	format   *dataprocessing.CurrencyFormatter
	markdown goldmark.Markdown
}

// NewReportBuilder creates a builder that formats amounts with format.
func NewReportBuilder(format *dataprocessing.CurrencyFormatter) *ReportBuilder {
	if format == nil {
		format = dataprocessing.DefaultFormatter()
	}
	return &ReportBuilder{
		format:   format,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Markdown renders the report as GitHub-flavored Markdown.
func (b *ReportBuilder) Markdown(in ReportInput) string {
	var sb strings.Builder
	dash := in.Dashboard
	if dash == nil {
		dash = &domain.Dashboard{}
	}

	fmt.Fprintf(&sb, "# %s\n\n", ReportTitle)
	if in.Source != "" {
		fmt.Fprintf(&sb, "Sumber: **%s**", escapeCell(in.Source))
		if !in.GeneratedAt.IsZero() {
			fmt.Fprintf(&sb, " (%s)", in.GeneratedAt.Format("2006-01-02 15:04"))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Pembersihan Data\n\n")
	sb.WriteString("| Keterangan | Jumlah |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Baris dibaca | %d |\n", in.Stats.RowsRead)
	fmt.Fprintf(&sb, "| Baris subtotal/total dihapus | %d |\n", in.Stats.SummaryRowsRemoved)
	fmt.Fprintf(&sb, "| Baris kosong dihapus | %d |\n", in.Stats.EmptyRowsRemoved)
	fmt.Fprintf(&sb, "| Baris dianalisis | %d |\n", in.Stats.RowsKept)
	if in.Stats.RatioDerived {
		fmt.Fprintf(&sb, "| Rasio tidak terdefinisi | %d |\n", in.Stats.NonFiniteRatios)
	}
	sb.WriteString("\n")

	sb.WriteString("## Ringkasan Total\n\n")
	sb.WriteString("| Metrik | Nilai |\n|---|---:|\n")
	for _, m := range dash.Metrics {
		fmt.Fprintf(&sb, "| %s | %s |\n", m.Label, m.Formatted)
	}
	sb.WriteString("\n")

	b.groupSection(&sb, "Top Jenis Aktiva Penyumbang Biaya Penyusutan (per bulan)", dash.ByAssetType)
	b.groupSection(&sb, "Top Golongan Penyusutan", dash.ByClass)

	sb.WriteString("## Distribusi Rasio Penyusutan\n\n")
	h := dash.RatioHistogram
	fmt.Fprintf(&sb, "%d aset dalam rentang, %d dikecualikan.\n\n", h.Samples, h.Excluded)
	if h.Samples > 0 {
		sb.WriteString("| Rentang | Jumlah |\n|---|---:|\n")
		for _, bin := range h.Bins {
			if bin.Count == 0 {
				continue
			}
			fmt.Fprintf(&sb, "| %.3f – %.3f | %d |\n", bin.Lower, bin.Upper, bin.Count)
		}
		sb.WriteString("\n")
	}

	topSection(&sb, "Top Aset Berdasarkan Nilai Perolehan", dash.TopAcquisition)
	topSection(&sb, "Top Aset Berdasarkan Nilai Buku Bulan Ini", dash.TopBookValue)

	if in.Search != nil {
		b.searchSection(&sb, *in.Search)
	}

	return sb.String()
}

// TopMarkdown renders a single ranked table.
func (b *ReportBuilder) TopMarkdown(title string, table domain.TopTable) string {
	var sb strings.Builder
	topSection(&sb, title, table)
	return sb.String()
}

// SearchMarkdown renders a single search result.
func (b *ReportBuilder) SearchMarkdown(result domain.SearchResult) string {
	var sb strings.Builder
	b.searchSection(&sb, result)
	return sb.String()
}

func (b *ReportBuilder) searchSection(sb *strings.Builder, result domain.SearchResult) {
	fmt.Fprintf(sb, "## Pencarian: \"%s\"\n\n", escapeCell(result.Keyword))
	fmt.Fprintf(sb, "Jumlah aset ditemukan: %d, total nilai perolehan: %s\n\n",
		result.Count, result.FormattedTotal)
	if len(result.Rows) == 0 {
		return
	}
	sb.WriteString("| Jenis Aktiva Tetap | Nilai Perolehan | Biaya Penyusutan Bulan |\n|---|---:|---:|\n")
	for _, r := range result.Rows {
		fmt.Fprintf(sb, "| %s | %s | %s |\n", escapeCell(r.AssetType),
			b.format.Format(r.AcquisitionValue), b.format.Format(r.MonthlyDepreciation))
	}
	sb.WriteString("\n")
}

func (b *ReportBuilder) groupSection(sb *strings.Builder, title string, chart domain.GroupChart) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(chart.Groups) == 0 {
		sb.WriteString("Tidak ada data.\n\n")
		return
	}
	fmt.Fprintf(sb, "| %s | Jumlah Aset | %s |\n|---|---:|---:|\n", chart.GroupColumn, chart.ValueColumn)
	for _, g := range chart.Groups {
		fmt.Fprintf(sb, "| %s | %d | %s |\n", escapeCell(g.Group), g.Count, b.format.Format(g.Total))
	}
	sb.WriteString("\n")
}

func topSection(sb *strings.Builder, title string, table domain.TopTable) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(table.Rows) == 0 {
		sb.WriteString("Tidak ada data.\n\n")
		return
	}
	fmt.Fprintf(sb, "| # | %s | %s |\n|---:|---|---:|\n", domain.ColAssetType, table.Column)
	for _, r := range table.Rows {
		fmt.Fprintf(sb, "| %d | %s | %s |\n", r.Rank, escapeCell(r.AssetType), r.Formatted)
	}
	sb.WriteString("\n")
}

// escapeCell keeps user text from breaking Markdown tables or markup.
func escapeCell(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune("\\`*_{}[]()#+-.!|<>~", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// HTML renders the report as a standalone HTML page.
func (b *ReportBuilder) HTML(in ReportInput) ([]byte, error) {
	var body bytes.Buffer
	if err := b.markdown.Convert([]byte(b.Markdown(in)), &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, htmlPage, html.EscapeString(ReportTitle), body.String())
	return page.Bytes(), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
th { background: #f3f3f3; }
</style>
</head>
<body>
%s</body>
</html>
`
