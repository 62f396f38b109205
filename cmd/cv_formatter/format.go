package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/jonathan/cv-formatter/internal/observability"
	"github.com/jonathan/cv-formatter/internal/pipeline"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format a résumé file into branded markup",
	Long: "Extract the text of a PDF, DOCX or text résumé, recover its structure and write " +
		"the formatted markup. With --pdf the markup is also printed to an A4 PDF.",
	RunE: runFormat,
}

var (
	formatInput    string
	formatHints    []string
	formatOutput   string
	formatPDF      string
	formatTemplate string
)

func init() {
	formatCmd.Flags().StringVarP(&formatInput, "in", "i", "", "Path to résumé file (pdf, docx or txt)")
	formatCmd.Flags().StringSliceVar(&formatHints, "hint", nil, "Large-text hint, e.g. the name as printed (repeatable)")
	formatCmd.Flags().StringVarP(&formatOutput, "out", "o", "", "Path to write markup (default stdout)")
	formatCmd.Flags().StringVar(&formatPDF, "pdf", "", "Path to write the A4 PDF (requires Chrome)")
	formatCmd.Flags().StringVarP(&formatTemplate, "template", "t", "", "Path to a custom template (overrides config)")

	_ = formatCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("template") {
		cfg.TemplatePath = formatTemplate
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RenderTimeout)
	defer cancel()

	var onProgress pipeline.ProgressCallback
	if verbose {
		onProgress = progressPrinter(os.Stderr)
	}
	orch, err := buildOrchestrator(ctx, cfg, logger, onProgress)
	if err != nil {
		return err
	}

	doc, _, err := ingestion.IngestFromFile(formatInput, ingestion.Options{LargeFontPoints: cfg.LargeFontPoints})
	if err != nil {
		return err
	}
	doc.LargeTextHints = append(doc.LargeTextHints, formatHints...)

	formatted, err := orch.Format(ctx, *doc)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", formatInput, err)
	}

	if verbose {
		observability.NewPrinter(os.Stderr).PrintFormatted(formatted)
	}

	if err := writeOutput(formatOutput, []byte(formatted.Markup)); err != nil {
		return err
	}

	if formatPDF != "" {
		pdf, err := newRenderer(cfg, logger).RenderPDF(ctx, formatted.Markup)
		if err != nil {
			return err
		}
		if err := writeOutput(formatPDF, pdf); err != nil {
			return err
		}
		logger.Info("wrote PDF", "path", formatPDF, "bytes", len(pdf))
	}

	return nil
}
