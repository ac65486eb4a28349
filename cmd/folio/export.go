package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jordan/portfolio-studio/internal/export"
	"github.com/jordan/portfolio-studio/internal/observability"
)

var (
	exportSlug    string
	exportBaseURL string
	exportOut     string
	exportSettle  time.Duration
	exportTimeout time.Duration
	exportVerbose bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a published portfolio as a PDF",
	Long:  `Render a published portfolio page in a headless browser and write it out as a single-page PDF sized to the page content.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSlug, "slug", "", "Slug of the published portfolio (required)")
	exportCmd.Flags().StringVar(&exportBaseURL, "base-url", "http://localhost:8080", "Base URL of the running server")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output path (default <slug>.pdf)")
	exportCmd.Flags().DurationVar(&exportSettle, "settle", 0, "Settle delay after load before capture")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 0, "Overall export timeout")
	exportCmd.Flags().BoolVar(&exportVerbose, "verbose", false, "Log export progress")
	_ = exportCmd.MarkFlagRequired("slug")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	base, err := url.Parse(exportBaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	target := base.JoinPath("u", exportSlug)
	target.RawQuery = "pdf=true"

	out := exportOut
	if out == "" {
		out = exportSlug + ".pdf"
	}

	printer := observability.NewPrinter(os.Stdout)
	if exportVerbose {
		printer.PrintExportPlan(target.String(), out)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	pdf, err := export.PDF(ctx, export.Options{
		URL:         target.String(),
		SettleDelay: exportSettle,
		Timeout:     exportTimeout,
		Verbose:     exportVerbose,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	if exportVerbose {
		printer.PrintExportResult(out, len(pdf), time.Since(start))
	} else {
		log.Printf("[FOLIO] Wrote %s (%d bytes)", out, len(pdf))
	}
	return nil
}
