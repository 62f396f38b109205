// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-formatter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintRecoveredResume outputs the identity, contact and section layout
// recovered from a document.
func (p *Printer) PrintRecoveredResume(resume *types.RecoveredResume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	name := "(unresolved)"
	if resume.Name != nil {
		name = fmt.Sprintf("%s  [%s, line %d, score %.2f]", resume.Name.Text, resume.Name.Source, resume.Name.OriginLine, resume.Name.Score)
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(resume.Contact.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orDash(resume.Contact.Phone)))
	sb.WriteString(fmt.Sprintf("Location: %s\n", orDash(resume.Contact.Location)))

	if len(resume.Sections) > 0 {
		sb.WriteString("\nSections:\n")
		for _, s := range resume.Sections {
			if s.IsEmpty() {
				sb.WriteString(fmt.Sprintf("  • %s (empty)\n", s.Kind))
				continue
			}
			sb.WriteString(fmt.Sprintf("  • %s lines %d-%d\n", s.Kind, s.StartLine, s.EndLine))
		}
	} else {
		sb.WriteString("\nSections: none detected\n")
	}

	p.printBox("RECOVERED RÉSUMÉ", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEntries outputs the first experience and education entries.
func (p *Printer) PrintEntries(resume *types.RecoveredResume) {
	if resume == nil || (len(resume.Experience) == 0 && len(resume.Education) == 0) {
		return
	}

	var sb strings.Builder
	if len(resume.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(resume.Experience)))
		count := min(len(resume.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := resume.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s\n", joinParts(e.Title, e.Organization, e.DateRange)))
			if len(e.Details) > 0 {
				sb.WriteString(fmt.Sprintf("    %d detail lines\n", len(e.Details)))
			}
		}
		if len(resume.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resume.Experience)-maxItemsToShow))
		}
	}

	if len(resume.Education) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Education (%d):\n", len(resume.Education)))
		count := min(len(resume.Education), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := resume.Education[i]
			sb.WriteString(fmt.Sprintf("  • %s\n", joinParts(e.Degree, e.Institution, e.DateRange)))
		}
		if len(resume.Education) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resume.Education)-maxItemsToShow))
		}
	}

	p.printBox("ENTRIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs the token lists.
func (p *Printer) PrintSkills(skills types.SkillSet) {
	if len(skills.TechnicalSkills)+len(skills.Languages)+len(skills.Extracurricular) == 0 {
		return
	}

	var sb strings.Builder
	for _, list := range []struct {
		label  string
		tokens []string
	}{
		{"Skills", skills.TechnicalSkills},
		{"Languages", skills.Languages},
		{"Interests", skills.Extracurricular},
	} {
		if len(list.tokens) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-10s %s\n", list.label+":", strings.Join(list.tokens, ", ")))
	}

	p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFormatted outputs which strategy produced the result and what it contains.
func (p *Printer) PrintFormatted(formatted *types.FormattedResume) {
	if formatted == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy:  %s\n", orDash(formatted.Strategy)))
	sections := make([]string, 0, len(formatted.SectionsFound))
	for _, k := range formatted.SectionsFound {
		sections = append(sections, string(k))
	}
	sb.WriteString(fmt.Sprintf("Sections:  %s\n", orDash(strings.Join(sections, ", "))))
	sb.WriteString(fmt.Sprintf("Text:      %d characters\n", utf8.RuneCountInString(formatted.PlainText)))
	sb.WriteString(fmt.Sprintf("Markup:    %d bytes", len(formatted.Markup)))

	p.printBox("FORMATTED RÉSUMÉ", sb.String())
}

// BatchRow is one line of a batch summary
type BatchRow struct {
	Source   string
	Strategy string
	Err      error
}

// PrintBatchSummary outputs per-document outcomes of a batch run.
func (p *Printer) PrintBatchSummary(rows []BatchRow) {
	if len(rows) == 0 {
		return
	}

	failed := 0
	var sb strings.Builder
	for _, r := range rows {
		if r.Err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("✗ %s: %v\n", r.Source, r.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %s (%s)\n", r.Source, r.Strategy))
	}
	sb.WriteString(fmt.Sprintf("\n%d formatted, %d failed", len(rows)-failed, failed))

	p.printBox("BATCH SUMMARY", sb.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinParts(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " | ")
}
