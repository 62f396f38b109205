package pipeline

import (
	"github.com/jonathan/cv-formatter/internal/entries"
	"github.com/jonathan/cv-formatter/internal/heuristics"
	"github.com/jonathan/cv-formatter/internal/normalize"
	"github.com/jonathan/cv-formatter/internal/parsing"
	"github.com/jonathan/cv-formatter/internal/rendering"
	"github.com/jonathan/cv-formatter/internal/types"
)

// Normalizer turns raw extracted text into logical lines
type Normalizer interface {
	Normalize(raw string) types.NormalizedText
}

// Parser recovers résumé structure from normalized lines
type Parser interface {
	Parse(text types.NormalizedText, hints []string) (*types.RecoveredResume, error)
}

// Projector renders a recovered résumé
type Projector interface {
	Project(resume *types.RecoveredResume) (*types.FormattedResume, error)
}

// Strategy is one complete normalize, parse and render configuration
type Strategy struct {
	Name       string
	Normalizer Normalizer
	Parser     Parser
	Projector  Projector
}

// Strategy names
const (
	StrategyStructured = "structured"
	StrategyPermissive = "permissive"
	StrategyPlain      = "plain"
)

// StrategyDefinition describes how a named strategy is assembled
type StrategyDefinition struct {
	Name      string
	Normalize normalize.Options
	Parse     parsing.Options
	// Template is a built-in template name; a configured template path
	// overrides it for HTML strategies
	Template string
}

// StrategyRegistry holds the built-in strategy definitions
var StrategyRegistry = map[string]StrategyDefinition{
	StrategyStructured: {
		Name:      StrategyStructured,
		Normalize: normalize.DefaultOptions(),
		Parse:     parsing.DefaultOptions(),
		Template:  rendering.TemplateClassic,
	},
	StrategyPermissive: {
		Name: StrategyPermissive,
		Normalize: normalize.Options{
			BreakPatterns:     true,
			SplitBoundaries:   true,
			FixConcatenations: true,
		},
		Parse: parsing.Options{
			EntryMode:    entries.ModeAnyDate,
			FallbackScan: true,
		},
		Template: rendering.TemplateClassic,
	},
	StrategyPlain: {
		Name:      StrategyPlain,
		Normalize: normalize.ConservativeOptions(),
		Parse:     parsing.DefaultOptions(),
		Template:  rendering.TemplatePlain,
	},
}

// DefaultStrategyOrder is the order strategies are attempted in
var DefaultStrategyOrder = []string{StrategyStructured, StrategyPermissive, StrategyPlain}

// StrategyOptions carry the shared settings applied to every strategy
type StrategyOptions struct {
	Tables          *heuristics.Tables
	Assets          *rendering.Assets
	TemplatePath    string
	BrandText       string
	MinVisibleChars int
	MaxSkillTokens  int
}

// BuildStrategies assembles the named strategies in order. An empty names
// list selects DefaultStrategyOrder.
func BuildStrategies(names []string, opts StrategyOptions) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultStrategyOrder
	}
	if opts.Tables == nil {
		opts.Tables = heuristics.Default()
	}

	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		def, ok := StrategyRegistry[name]
		if !ok {
			return nil, &StrategyError{Name: name, Message: "unknown strategy"}
		}
		s, err := buildStrategy(def, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DefaultStrategies assembles structured, permissive and plain
func DefaultStrategies(opts StrategyOptions) ([]Strategy, error) {
	return BuildStrategies(DefaultStrategyOrder, opts)
}

func buildStrategy(def StrategyDefinition, opts StrategyOptions) (Strategy, error) {
	parseOpts := def.Parse
	if opts.MaxSkillTokens > 0 {
		parseOpts.MaxSkillTokens = opts.MaxSkillTokens
	}

	projOpts := rendering.ProjectorOptions{
		Template:        def.Template,
		Assets:          opts.Assets,
		BrandText:       opts.BrandText,
		MinVisibleChars: opts.MinVisibleChars,
	}
	if def.Template != rendering.TemplatePlain {
		projOpts.TemplatePath = opts.TemplatePath
	}
	projector, err := rendering.NewProjector(projOpts)
	if err != nil {
		return Strategy{}, &StrategyError{Name: def.Name, Message: "failed to build projector", Cause: err}
	}

	return Strategy{
		Name:       def.Name,
		Normalizer: normalize.New(opts.Tables, def.Normalize),
		Parser:     parsing.New(opts.Tables, parseOpts),
		Projector:  projector,
	}, nil
}
