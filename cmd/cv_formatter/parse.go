package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/jonathan/cv-formatter/internal/observability"
	"github.com/jonathan/cv-formatter/internal/schemas"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Recover résumé structure as JSON",
	Long:  "Recover the structure of a résumé file and write it as JSON that validates against the recovered_resume schema.",
	RunE:  runParse,
}

var (
	parseInput  string
	parseOutput string
)

func init() {
	parseCmd.Flags().StringVarP(&parseInput, "in", "i", "", "Path to résumé file (pdf, docx or txt)")
	parseCmd.Flags().StringVarP(&parseOutput, "out", "o", "", "Path to write JSON (default stdout)")

	_ = parseCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	orch, err := buildOrchestrator(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	doc, _, err := ingestion.IngestFromFile(parseInput, ingestion.Options{LargeFontPoints: cfg.LargeFontPoints})
	if err != nil {
		return err
	}

	resume, err := orch.Recover(ctx, *doc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", parseInput, err)
	}

	data, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal résumé: %w", err)
	}
	if err := schemas.ValidateRecoveredResume(data); err != nil {
		return fmt.Errorf("recovered résumé failed schema validation: %w", err)
	}

	if verbose {
		p := observability.NewPrinter(os.Stderr)
		p.PrintRecoveredResume(resume)
		p.PrintEntries(resume)
		p.PrintSkills(resume.Skills)
	}

	return writeOutput(parseOutput, append(data, '\n'))
}
