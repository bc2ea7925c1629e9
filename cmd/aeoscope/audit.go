package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aeoscope/aeoscope/internal/fetch"
	"github.com/aeoscope/aeoscope/pkg/config"
	"github.com/aeoscope/aeoscope/pkg/evidence"
	"github.com/aeoscope/aeoscope/pkg/scoring"
	"github.com/aeoscope/aeoscope/pkg/surface"
)

func newAuditCmd() *cobra.Command {
	var (
		staticOnly bool
		timeout    int
		outputFmt  string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit one page for AI answer engine visibility",
		Long:  `Fetches the page, probes robots.txt, sitemap, and AI crawler access, runs the check registry, and renders the scored report.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), auditOpts{
				url:        args[0],
				staticOnly: staticOnly,
				timeout:    timeout,
				outputFmt:  outputFmt,
				configPath: configPath,
				verbose:    verbose,
			})
		},
	}

	cmd.Flags().BoolVar(&staticOnly, "static-only", false, "Skip headless rendering even for JavaScript-heavy pages")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Fetch timeout in seconds (overrides config)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json, or markdown")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: walk up for .aeoscope/config.yaml)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log acquisition progress to stderr")

	return cmd
}

type auditOpts struct {
	url        string
	staticOnly bool
	timeout    int
	outputFmt  string
	configPath string
	verbose    bool
}

func runAudit(ctx context.Context, opts auditOpts) error {
	cfgPath := opts.configPath
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			cfgPath = config.FindConfigFile(wd)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if opts.staticOnly {
		cfg.Fetch.RenderingEnabled = false
	}
	if opts.timeout > 0 {
		cfg.Fetch.TimeoutSeconds = opts.timeout
	}

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	engineCfg := scoring.Defaults()
	engineCfg.Tier2Threshold = cfg.Scoring.Tier2Threshold
	registry, err := scoring.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("building check registry: %w", err)
	}
	engine, err := scoring.NewEngine(registry, engineCfg)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Fetching %s...\n", opts.url)
	fetcher := fetch.New(cfg.Fetch, logger)
	fetched, err := fetcher.Fetch(ctx, opts.url)
	if err != nil {
		return err
	}
	if fetched.RenderedHTML != "" {
		fmt.Fprintf(os.Stderr, "Rendered JavaScript content (%d bytes)\n", len(fetched.RenderedHTML))
	}

	ev := evidence.Build(fetched.EvidenceInput())
	result, err := engine.Evaluate(ev)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	result.URL = fetched.URL

	var renderer surface.Renderer
	switch opts.outputFmt {
	case "json":
		renderer = &surface.JSONRenderer{}
	case "markdown":
		renderer = &surface.MarkdownRenderer{}
	case "text":
		renderer = &surface.TerminalRenderer{}
	default:
		return fmt.Errorf("unknown output format %q", opts.outputFmt)
	}

	if err := renderer.Render(os.Stdout, result); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
