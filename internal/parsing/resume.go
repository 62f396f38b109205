// Package parsing recovers a structured résumé from normalized text by running
// the name, contact, section, entry and skill stages in order.
package parsing

import (
	"strings"

	"github.com/jonathan/cv-formatter/internal/entries"
	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/identity"
	"github.com/jonathan/cv-formatter/internal/sections"
	"github.com/jonathan/cv-formatter/internal/skills"
	"github.com/jonathan/cv-formatter/internal/types"
)

// minSummaryWords is the shortest preamble line taken as a summary when the
// document has no summary section.
const minSummaryWords = 12

// Options tune a Parser for one formatting strategy
type Options struct {
	EntryMode      entries.Mode
	FallbackScan   bool
	MaxSkillTokens int
}

// DefaultOptions returns the options used by the primary strategy
func DefaultOptions() Options {
	return Options{
		EntryMode:      entries.ModeStrict,
		FallbackScan:   true,
		MaxSkillTokens: skills.DefaultMaxTokens,
	}
}

// Parser composes the recovery stages. It holds no per-document state and is
// safe for concurrent use.
type Parser struct {
	tables    *heuristics.Tables
	opts      Options
	segmenter *sections.Segmenter
	names     *identity.NameResolver
	contacts  *identity.ContactExtractor
	skills    *skills.Parser
}

// New creates a Parser over the given tables
func New(tables *heuristics.Tables, opts Options) *Parser {
	return &Parser{
		tables:    tables,
		opts:      opts,
		segmenter: sections.NewSegmenter(tables),
		names:     identity.NewNameResolver(tables),
		contacts:  identity.NewContactExtractor(tables),
		skills:    skills.NewParser(tables, opts.MaxSkillTokens),
	}
}

// Parse recovers the résumé structure. Missing parts are left empty; only a
// document without any text is an error.
func (p *Parser) Parse(text types.NormalizedText, hints []string) (*types.RecoveredResume, error) {
	if text.IsEmpty() {
		return nil, &ParseError{Message: "document has no text"}
	}
	lines := text.Lines

	found := p.segmenter.Segment(lines)
	preamble := lines[:preambleEnd(found, len(lines))]
	regions := collectRegions(found, lines)

	resume := &types.RecoveredResume{
		Contact:  p.contacts.Extract(lines),
		Summary:  p.summary(regions[types.SectionSummary], preamble),
		Sections: found,
	}
	if name, ok := p.names.Resolve(lines, hints); ok {
		resume.Name = name
	}

	resume.Experience = p.experience(lines, found, preamble, regions[types.SectionExperience])
	resume.Education = p.education(lines, found, preamble, regions[types.SectionEducation])
	resume.Skills = p.skills.Build(regions)

	return resume, nil
}

func (p *Parser) experience(lines []string, found []types.Section, preamble, region []string) []types.ExperienceEntry {
	inSection := entries.ParseExperience(region, p.tables, p.opts.EntryMode)
	if !p.opts.FallbackScan {
		return entries.MergeExperience(nil, inSection)
	}

	pre := entries.ScanExperience(preamble, p.tables)
	if len(inSection) == 0 {
		for _, run := range outsideOtherSections(lines, found, types.SectionExperience) {
			inSection = append(inSection, entries.ScanExperience(run, p.tables)...)
		}
	}
	return entries.MergeExperience(pre, inSection)
}

func (p *Parser) education(lines []string, found []types.Section, preamble, region []string) []types.EducationEntry {
	inSection := entries.ParseEducation(region, p.tables, p.opts.EntryMode)
	if !p.opts.FallbackScan {
		return entries.MergeEducation(nil, inSection)
	}

	pre := entries.ScanEducation(preamble, p.tables)
	if len(inSection) == 0 {
		for _, run := range outsideOtherSections(lines, found, types.SectionEducation) {
			inSection = append(inSection, entries.ScanEducation(run, p.tables)...)
		}
	}
	return entries.MergeEducation(pre, inSection)
}

// summary joins the summary section, or falls back to the first long
// sentence in the preamble.
func (p *Parser) summary(region, preamble []string) string {
	if len(region) > 0 {
		return strings.Join(region, " ")
	}
	for _, line := range preamble {
		if len(strings.Fields(line)) >= minSummaryWords && !strings.Contains(line, "@") {
			return line
		}
	}
	return ""
}

// preambleEnd returns the index of the first header line
func preambleEnd(found []types.Section, n int) int {
	if len(found) == 0 {
		return n
	}
	return found[0].StartLine - 1
}

// collectRegions concatenates the content lines of every section of each kind
func collectRegions(found []types.Section, lines []string) map[types.SectionKind][]string {
	regions := make(map[types.SectionKind][]string)
	for _, s := range found {
		regions[s.Kind] = append(regions[s.Kind], s.Lines(lines)...)
	}
	return regions
}

// outsideOtherSections returns the runs of lines that belong neither to a
// header nor to a section of another kind.
func outsideOtherSections(lines []string, found []types.Section, kind types.SectionKind) [][]string {
	masked := make([]bool, len(lines))
	for _, s := range found {
		masked[s.StartLine-1] = true
		if s.Kind == kind {
			continue
		}
		for i := s.StartLine; i <= s.EndLine && i < len(lines); i++ {
			masked[i] = true
		}
	}

	var runs [][]string
	start := -1
	for i := 0; i <= len(lines); i++ {
		if i < len(lines) && !masked[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, lines[start:i])
			start = -1
		}
	}
	return runs
}
