package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"penyusutan/internal/config"
	"penyusutan/internal/exporter"
	"penyusutan/internal/infrastructure"
	"penyusutan/internal/services"
)

// wordWrap is the terminal width styled Markdown is wrapped at.
const wordWrap = 120

// cli holds the global flags and output streams shared by every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	verbose bool
	plain   bool
}

func newCommander(c *cli, fs *flag.FlagSet, name string) *subcommands.Commander {
	fs.BoolVar(&c.verbose, "v", false, "log pipeline progress to stderr")
	fs.BoolVar(&c.plain, "plain", false, "print raw Markdown instead of styled terminal output")

	commander := subcommands.NewCommander(fs, name)
	commander.Output = c.stdout
	commander.Error = c.stderr

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&versionCmd{cli: c}, "")

	commander.Register(&summaryCmd{cli: c}, "analysis")
	commander.Register(&topCmd{cli: c}, "analysis")
	commander.Register(&searchCmd{cli: c}, "analysis")
	commander.Register(&reportCmd{cli: c}, "output")
	commander.Register(&exportCmd{cli: c}, "output")
	return commander
}

// session is one workbook run through the pipeline.
type session struct {
	cfg      *config.Config
	pipeline *services.Pipeline
	analysis *services.Analysis
	reports  *exporter.ReportBuilder
}

// analyze loads the configuration and runs the workbook at path through
// the cleaning pipeline.
func (c *cli) analyze(ctx context.Context, path string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if c.verbose {
		level = "info"
	}

	pc := services.NewPipelineConfig(cfg)
	pc.Logger = infrastructure.NewTextLogger(c.stderr, level)
	pipeline := services.NewPipeline(pc)

	analysis, err := pipeline.ProcessFile(infrastructure.EnsureTraceID(ctx), path)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		pipeline: pipeline,
		analysis: analysis,
		reports:  exporter.NewReportBuilder(pipeline.Analyzer().Formatter()),
	}, nil
}

// printMarkdown writes md to stdout, styled for the terminal unless -plain
// was given.
func (c *cli) printMarkdown(md string) error {
	if c.plain {
		_, err := io.WriteString(c.stdout, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(c.stdout, out)
	return err
}

func (c *cli) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// fileArg returns the single positional workbook argument.
func (c *cli) fileArg(f *flag.FlagSet, usage string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Usage: %s\n", usage)
		return "", false
	}
	return f.Arg(0), true
}
