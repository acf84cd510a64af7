package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"penyusutan/internal/exporter"
	"penyusutan/internal/files"
	"penyusutan/internal/services"
	"penyusutan/pkg/contracts"
	"penyusutan/pkg/contracts/domain"
)

type summaryCmd struct {
	*cli
	asJSON bool
	latest bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print cleaning statistics and totals" }
func (*summaryCmd) Usage() string {
	return `summary [-json] [-latest] <register.xlsx | directory>

  Cleans the register and prints what was removed and filled, followed by
  the total acquisition value, monthly depreciation and book value. Given a
  directory, every .xlsx register in it is summarized, oldest first.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the summary as JSON")
	f.BoolVar(&c.latest, "latest", false, "only summarize the most recently modified register")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := c.fileArg(f, "summary [-json] [-latest] <register.xlsx | directory>")
	if !ok {
		return subcommands.ExitUsageError
	}

	books, err := files.NewDiscovery("").Expand(path)
	if err != nil {
		return c.fail(err)
	}
	if c.latest {
		latest, _ := files.GetLatestFile(books)
		books = []files.FileInfo{latest}
	}

	for _, book := range books {
		s, err := c.analyze(ctx, book.Path)
		if err != nil {
			return c.fail(err)
		}
		if err := c.printSummary(s.analysis); err != nil {
			return c.fail(err)
		}
	}
	return subcommands.ExitSuccess
}

func (c *summaryCmd) printSummary(a *services.Analysis) error {
	if c.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"file":      a.FileName,
			"row_count": a.Dashboard.RowCount,
			"stats":     a.Stats,
			"metrics":   a.Dashboard.Metrics,
		})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", a.FileName)
	fmt.Fprintf(&sb, "%d baris dibaca, %d subtotal/total dihapus, %d kosong dihapus, %d dianalisis.\n\n",
		a.Stats.RowsRead, a.Stats.SummaryRowsRemoved, a.Stats.EmptyRowsRemoved, a.Stats.RowsKept)
	sb.WriteString("| Metrik | Nilai |\n|---|---:|\n")
	for _, m := range a.Dashboard.Metrics {
		fmt.Fprintf(&sb, "| %s | %s |\n", m.Label, m.Formatted)
	}
	sb.WriteString("\n")
	return c.printMarkdown(sb.String())
}

type topCmd struct {
	*cli
	by string
	n  int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "rank assets by a numeric column" }
func (*topCmd) Usage() string {
	return `top [-by <column>] [-n <count>] <register.xlsx>

  Lists the assets with the largest values in a numeric column.
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.by, "by", domain.ColAcquisitionValue, "numeric column to rank by")
	f.IntVar(&c.n, "n", 0, "number of assets to list (defaults to the configured top n)")
}

func (c *topCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := c.fileArg(f, "top [-by <column>] [-n <count>] <register.xlsx>")
	if !ok {
		return subcommands.ExitUsageError
	}
	if c.n < 0 {
		fmt.Fprintln(c.stderr, "Error: -n must not be negative")
		return subcommands.ExitUsageError
	}
	s, err := c.analyze(ctx, path)
	if err != nil {
		return c.fail(err)
	}

	n := c.n
	if n == 0 {
		n = s.cfg.Dashboard.TopN
	}
	table, err := s.pipeline.Analyzer().TopTable(s.analysis.Table, c.by, n)
	if err != nil {
		return c.fail(err)
	}
	if err := c.printMarkdown(s.reports.TopMarkdown("Top Aset Berdasarkan "+c.by, *table)); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type searchCmd struct {
	*cli
	keyword string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "find assets whose type contains a keyword" }
func (*searchCmd) Usage() string {
	return `search -q <keyword> <register.xlsx>

  Case-insensitive substring search over the asset type column. Prints the
  matches and their total acquisition value.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "q", "", "keyword to look for")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := c.fileArg(f, "search -q <keyword> <register.xlsx>")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, err := c.analyze(ctx, path)
	if err != nil {
		return c.fail(err)
	}

	result := s.pipeline.Analyzer().Search(s.analysis.Table, c.keyword)
	if err := c.printMarkdown(s.reports.SearchMarkdown(result)); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type reportCmd struct {
	*cli
	keyword  string
	htmlPath string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the full dashboard report" }
func (*reportCmd) Usage() string {
	return `report [-q <keyword>] [-html <out.html>] <register.xlsx>

  Prints every dashboard panel as a report. With -html the report is written
  as a standalone HTML page instead.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "q", "", "add a search section for this keyword")
	f.StringVar(&c.htmlPath, "html", "", "write an HTML report to this file")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := c.fileArg(f, "report [-q <keyword>] [-html <out.html>] <register.xlsx>")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, err := c.analyze(ctx, path)
	if err != nil {
		return c.fail(err)
	}

	in := exporter.ReportInput{
		Source:    s.analysis.FileName,
		Stats:     s.analysis.Stats,
		Dashboard: s.analysis.Dashboard,
	}
	if c.keyword != "" {
		result := s.pipeline.Analyzer().Search(s.analysis.Table, c.keyword)
		in.Search = &result
	}

	if c.htmlPath != "" {
		page, err := s.reports.HTML(in)
		if err != nil {
			return c.fail(err)
		}
		if err := os.WriteFile(c.htmlPath, page, 0o644); err != nil {
			return c.fail(fmt.Errorf("failed to write report: %w", err))
		}
		fmt.Fprintf(c.stdout, "Report written to %s\n", c.htmlPath)
		return subcommands.ExitSuccess
	}

	if err := c.printMarkdown(s.reports.Markdown(in)); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	*cli
	format string
	out    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the cleaned register to xlsx or csv" }
func (*exportCmd) Usage() string {
	return `export [-format xlsx|csv] [-o <path>] <register.xlsx>

  Writes the cleaned register. The default output sits next to the input
  as <name>_bersih.<format>.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", string(services.ExportXLSX), "output format: xlsx or csv")
	f.StringVar(&c.out, "o", "", "output path")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, ok := c.fileArg(f, "export [-format xlsx|csv] [-o <path>] <register.xlsx>")
	if !ok {
		return subcommands.ExitUsageError
	}

	format := services.ExportFormat(strings.ToLower(c.format))
	if format != services.ExportXLSX && format != services.ExportCSV {
		fmt.Fprintf(c.stderr, "Error: unsupported format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	s, err := c.analyze(ctx, path)
	if err != nil {
		return c.fail(err)
	}

	out := c.out
	if out == "" {
		out = filepath.Join(filepath.Dir(path), services.ExportName(path, format))
	}
	if err := writeExport(s, format, out); err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.stdout, "%d rows written to %s\n", s.analysis.Table.Len(), out)
	return subcommands.ExitSuccess
}

func writeExport(s *session, format services.ExportFormat, out string) (err error) {
	if err := s.pipeline.Validator().ValidateOutputDirectory(filepath.Dir(out)); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	logger := s.pipeline.Logger()
	switch format {
	case services.ExportCSV:
		return exporter.NewCSVWriter(logger).WriteAssets(f, s.analysis.Table)
	default:
		return exporter.NewXLSXWriter(logger).WriteAssets(f, s.analysis.Table)
	}
}

type versionCmd struct {
	*cli
	asJSON bool
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print build information" }
func (*versionCmd) Usage() string    { return "version [-json]\n" }

func (c *versionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the build information as JSON")
}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.asJSON {
		fmt.Fprintln(c.stdout, contracts.GetFullVersionString())
		return subcommands.ExitSuccess
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contracts.GetVersionInfo()); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}
