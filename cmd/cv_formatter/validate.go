package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-formatter/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long:  "Validate a JSON file against a JSON schema file, or against a built-in schema with --kind.",
	RunE:  runValidate,
}

var (
	validateSchema string
	validateKind   string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to JSON schema file")
	validateCmd.Flags().StringVar(&validateKind, "kind", "", "Built-in schema: recovered or formatted")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to JSON file")

	_ = validateCmd.MarkFlagRequired("json")
	validateCmd.MarkFlagsMutuallyExclusive("schema", "kind")
	validateCmd.MarkFlagsOneRequired("schema", "kind")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	var err error
	switch {
	case validateSchema != "":
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	default:
		var data []byte
		data, err = os.ReadFile(validateJSON)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", validateJSON, err)
		}
		switch validateKind {
		case "recovered":
			err = schemas.ValidateRecoveredResume(data)
		case "formatted":
			err = schemas.ValidateFormattedResume(data)
		default:
			return fmt.Errorf("unknown schema kind %q (want recovered or formatted)", validateKind)
		}
	}

	if err != nil {
		return fmt.Errorf("Validation failed: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Validation passed: %s\n", validateJSON)
	return nil
}
