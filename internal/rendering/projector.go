package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"github.com/jonathan/cv-formatter/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Built-in template names
const (
	TemplateClassic = "classic.html.tmpl"
	TemplatePlain   = "plain.md.tmpl"
)

const (
	// DefaultMinVisibleChars is the least visible text a usable résumé has
	DefaultMinVisibleChars = 200

	// DefaultBrandText is the text brand mark shown when no logo is available
	DefaultBrandText = "Curriculum Vitae"
)

// markdownShell wraps converted Markdown into a standalone A4 page
const markdownShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=794">
<style>@page { size: A4; margin: 16mm; } body { font-family: Helvetica, Arial, sans-serif; font-size: 10.5pt; max-width: 178mm; margin: 0 auto; }</style>
</head>
<body>
%s</body>
</html>
`

// ProjectorOptions configure a Projector
type ProjectorOptions struct {
	// Template is a built-in template name; ignored when TemplatePath is set
	Template string
	// TemplatePath loads a template from disk; a ".md.tmpl" suffix selects Markdown
	TemplatePath    string
	Assets          *Assets
	BrandText       string
	MinVisibleChars int
}

// Projector fills a template from a recovered résumé
type Projector struct {
	tmpl       *template.Template
	markdown   bool
	assets     *Assets
	brandText  string
	minVisible int
}

// TemplateData is the view passed to templates. Values are raw; templates
// escape them with the escape function.
type TemplateData struct {
	Name            string
	Contact         []string
	Summary         string
	Experience      []EntryView
	Education       []EntryView
	TechnicalSkills []string
	Languages       []string
	Extracurricular []string
	LogoURI         string
	BrandText       string
}

// EntryView is one experience or education entry prepared for display
type EntryView struct {
	Heading    string
	Subheading string
	DateRange  string
	Details    []string
}

// NewProjector parses the configured template once
func NewProjector(opts ProjectorOptions) (*Projector, error) {
	name := opts.Template
	if name == "" {
		name = TemplateClassic
	}

	var content []byte
	var err error
	if opts.TemplatePath != "" {
		name = opts.TemplatePath
		content, err = os.ReadFile(opts.TemplatePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", opts.TemplatePath), Cause: err}
			}
			return nil, &TemplateError{Message: fmt.Sprintf("failed to read template file: %s", opts.TemplatePath), Cause: err}
		}
	} else {
		content, err = templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, &TemplateError{Message: fmt.Sprintf("unknown template: %s", name), Cause: err}
		}
	}

	markdown := strings.HasSuffix(name, ".md.tmpl")
	tmpl, err := parseTemplate(name, string(content), markdown)
	if err != nil {
		return nil, err
	}

	p := &Projector{
		tmpl:       tmpl,
		markdown:   markdown,
		assets:     opts.Assets,
		brandText:  opts.BrandText,
		minVisible: opts.MinVisibleChars,
	}
	if p.assets == nil {
		p.assets = &Assets{}
	}
	if p.brandText == "" {
		p.brandText = DefaultBrandText
	}
	if p.minVisible <= 0 {
		p.minVisible = DefaultMinVisibleChars
	}
	return p, nil
}

// parseTemplate parses a template with the escape function matching its output format
func parseTemplate(name, content string, markdown bool) (*template.Template, error) {
	escape := EscapeHTML
	if markdown {
		escape = EscapeMarkdown
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Funcs(template.FuncMap{
		"escape": escape,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
}

// Project renders resume. It fails with InsufficientContentError when the
// result has fewer visible characters than the configured minimum.
func (p *Projector) Project(resume *types.RecoveredResume) (*types.FormattedResume, error) {
	if resume == nil {
		resume = &types.RecoveredResume{}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, p.buildTemplateData(resume)); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}

	markup := buf.String()
	if p.markdown {
		var html bytes.Buffer
		if err := goldmark.Convert(buf.Bytes(), &html); err != nil {
			return nil, &RenderError{Message: "failed to convert markdown", Cause: err}
		}
		markup = fmt.Sprintf(markdownShell, html.String())
	}

	plain, err := PlainText(markup)
	if err != nil {
		return nil, err
	}
	if visible := countVisible(plain); visible < p.minVisible {
		return nil, &InsufficientContentError{Visible: visible, Required: p.minVisible}
	}

	return &types.FormattedResume{
		Markup:        markup,
		PlainText:     plain,
		SectionsFound: resume.SectionsFound(),
	}, nil
}

func (p *Projector) buildTemplateData(resume *types.RecoveredResume) *TemplateData {
	data := &TemplateData{
		Name:            resume.NameText(),
		Summary:         resume.Summary,
		TechnicalSkills: resume.Skills.TechnicalSkills,
		Languages:       resume.Skills.Languages,
		Extracurricular: resume.Skills.Extracurricular,
		LogoURI:         p.assets.LogoURI,
		BrandText:       p.brandText,
	}

	for _, c := range []string{resume.Contact.Location, resume.Contact.Phone, resume.Contact.Email} {
		if c != "" {
			data.Contact = append(data.Contact, c)
		}
	}

	for _, e := range resume.Experience {
		data.Experience = append(data.Experience, EntryView{
			Heading:    firstNonEmpty(e.Title, e.Organization),
			Subheading: joinNonEmpty(", ", subheadingOrg(e.Title, e.Organization), e.Location),
			DateRange:  e.DateRange,
			Details:    e.Details,
		})
	}
	for _, e := range resume.Education {
		data.Education = append(data.Education, EntryView{
			Heading:    firstNonEmpty(e.Degree, e.Institution),
			Subheading: joinNonEmpty(", ", subheadingOrg(e.Degree, e.Institution), e.Location),
			DateRange:  e.DateRange,
			Details:    e.Details,
		})
	}
	return data
}

// PlainText returns the visible text of markup with whitespace collapsed
func PlainText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", &RenderError{Message: "failed to parse rendered markup", Cause: err}
	}
	body := doc.Find("body")
	body.Find("script, style").Remove()

	var parts []string
	collectText(body, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

// collectText appends text nodes in document order so adjacent elements
// stay separate words
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			*parts = append(*parts, c.Text())
			return
		}
		collectText(c, parts)
	})
}

func countVisible(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// subheadingOrg returns the organization unless it was promoted to the heading
func subheadingOrg(primary, org string) string {
	if primary == "" {
		return ""
	}
	return org
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
