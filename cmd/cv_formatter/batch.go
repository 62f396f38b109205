package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/jonathan/cv-formatter/internal/observability"
	"github.com/jonathan/cv-formatter/internal/pipeline"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Format every résumé in a directory",
	Long:  "Format every PDF, DOCX and text file in a directory concurrently and write <name>.html for each success.",
	RunE:  runBatch,
}

var (
	batchDir         string
	batchOutDir      string
	batchConcurrency int
)

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory of résumé files")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "formatted", "Directory for formatted markup")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Documents formatted at once (overrides config)")

	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.BatchConcurrency = batchConcurrency
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	orch, err := buildOrchestrator(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	paths, err := listDocuments(batchDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no résumé files found in %s", batchDir)
	}

	// Files that fail extraction are reported alongside formatting failures
	var rows []observability.BatchRow
	var docs []types.RawDocument
	for _, path := range paths {
		doc, _, err := ingestion.IngestFromFile(path, ingestion.Options{LargeFontPoints: cfg.LargeFontPoints})
		if err != nil {
			rows = append(rows, observability.BatchRow{Source: filepath.Base(path), Err: err})
			continue
		}
		docs = append(docs, *doc)
	}

	results, err := pipeline.FormatBatch(ctx, orch, docs, cfg.BatchConcurrency)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, observability.BatchRow{Source: r.Source, Err: r.Err})
			continue
		}
		out := filepath.Join(batchOutDir, ingestion.BaseName(r.Source)+".html")
		if err := os.WriteFile(out, []byte(r.Formatted.Markup), 0644); err != nil {
			rows = append(rows, observability.BatchRow{Source: r.Source, Err: err})
			continue
		}
		rows = append(rows, observability.BatchRow{Source: r.Source, Strategy: r.Formatted.Strategy})
	}
	for _, row := range rows {
		if row.Err != nil {
			failed++
		}
	}

	observability.NewPrinter(os.Stdout).PrintBatchSummary(rows)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(rows))
	}
	return nil
}

// listDocuments returns the visible regular files of dir in name order
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
