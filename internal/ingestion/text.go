package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	spaceRunRe  = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText unifies line endings, squeezes runs of spaces inside lines and
// keeps at most one blank line between paragraphs. Line order and content are
// otherwise untouched; structural repair is the normalizer's job.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ToValidUTF8(content, "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}

	result := blankRunsRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// WriteOutput writes the extracted text and its metadata next to each other
// as <base>.extracted.txt and <base>.meta.json
func WriteOutput(outDir, base, text string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	textPath := filepath.Join(outDir, base+".extracted.txt")
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write extracted text file: %w", err)
	}

	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return err
	}
	metaPath := filepath.Join(outDir, base+".meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// BaseName returns the file name of path without its extension
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
