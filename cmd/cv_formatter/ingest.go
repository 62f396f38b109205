package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-formatter/internal/ingestion"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract clean text and metadata from a résumé file",
	Long:  "Extract the text of a PDF, DOCX or text résumé and write <name>.extracted.txt and <name>.meta.json.",
	RunE:  runIngest,
}

var (
	ingestInput  string
	ingestOutDir string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestInput, "in", "i", "", "Path to résumé file (pdf, docx or txt)")
	ingestCmd.Flags().StringVar(&ingestOutDir, "out-dir", ".", "Directory for the extracted text and metadata")

	_ = ingestCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	doc, meta, err := ingestion.IngestFromFile(ingestInput, ingestion.Options{LargeFontPoints: cfg.LargeFontPoints})
	if err != nil {
		return err
	}

	base := ingestion.BaseName(ingestInput)
	if err := ingestion.WriteOutput(ingestOutDir, base, doc.Text, meta); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Extracted %d characters from %s (%s)\n", meta.Characters, ingestInput, meta.Format)
	return nil
}
