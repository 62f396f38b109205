package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/cv-formatter/internal/parsing"
	"github.com/jonathan/cv-formatter/internal/rendering"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `H
O
PE GILBERT
12 Some Street, London
hope.gilbert@example.com | +44 7700 900123
PROFILE
Analyst with five years of experience in risk.
WORK EXPERIENCE
Analyst, Example Partners, London, 2019 – 2021
• Built pricing models
• Led a team of three
Junior Analyst | Example Capital LLP | 2017 - 2019
• Supported the desk
EDUCATION
BSc Economics, University of Leeds, 2014 - 2017
SKILLS
Excel, VBA, python
Languages: English, French
INTERESTS
Chess, Running`

type lineNormalizer struct{}

func (lineNormalizer) Normalize(raw string) types.NormalizedText {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return types.NormalizedText{Lines: lines}
}

type stubParser struct {
	err error
}

func (p stubParser) Parse(text types.NormalizedText, _ []string) (*types.RecoveredResume, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &types.RecoveredResume{Summary: strings.Join(text.Lines, " ")}, nil
}

type stubProjector struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *stubProjector) Project(resume *types.RecoveredResume) (*types.FormattedResume, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &types.FormattedResume{Markup: "<p>" + resume.Summary + "</p>", PlainText: resume.Summary, SectionsFound: []types.SectionKind{}}, nil
}

func stubStrategy(name string, projector *stubProjector) Strategy {
	return Strategy{Name: name, Normalizer: lineNormalizer{}, Parser: stubParser{}, Projector: projector}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := NewOrchestrator(nil, Options{})
	var strategyErr *StrategyError
	require.ErrorAs(t, err, &strategyErr)

	_, err = NewOrchestrator([]Strategy{{Name: "broken"}}, Options{})
	require.ErrorAs(t, err, &strategyErr)
	assert.Equal(t, "broken", strategyErr.Name)
}

func TestOrchestrator_FirstSuccessWins(t *testing.T) {
	first := &stubProjector{}
	second := &stubProjector{}
	orch, err := NewOrchestrator([]Strategy{stubStrategy("a", first), stubStrategy("b", second)}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	got, err := orch.Format(context.Background(), types.RawDocument{Text: "Jane Doe\nAnalyst"})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Strategy)
	assert.Equal(t, "Jane Doe Analyst", got.PlainText)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestOrchestrator_FallsBackOnInsufficientContent(t *testing.T) {
	failing := &stubProjector{err: &rendering.InsufficientContentError{Visible: 10, Required: 200}}
	succeeding := &stubProjector{}

	var events []ProgressEvent
	orch, err := NewOrchestrator(
		[]Strategy{stubStrategy("structured", failing), stubStrategy("plain", succeeding)},
		Options{Logger: quietLogger(), OnProgress: func(e ProgressEvent) { events = append(events, e) }},
	)
	require.NoError(t, err)

	got, err := orch.Format(context.Background(), types.RawDocument{Text: "Jane Doe", Source: "cv.txt"})
	require.NoError(t, err)
	assert.Equal(t, "plain", got.Strategy)

	require.Len(t, events, 3)
	assert.Equal(t, ProgressEvent{Step: "structured", Category: CategoryAttempt, Message: "Attempt 1/2 with structured strategy", RunID: "cv.txt"}, events[0])
	assert.Equal(t, "plain", events[1].Step)
	assert.Equal(t, CategoryResult, events[2].Category)
}

func TestOrchestrator_OtherErrorsAreFailedAttempts(t *testing.T) {
	broken := Strategy{Name: "broken", Normalizer: lineNormalizer{}, Parser: stubParser{err: errors.New("boom")}, Projector: &stubProjector{}}
	templateFailure := stubStrategy("template", &stubProjector{err: &rendering.TemplateError{Message: "failed to execute template"}})
	ok := stubStrategy("ok", &stubProjector{})

	orch, err := NewOrchestrator([]Strategy{broken, templateFailure, ok}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	got, err := orch.Format(context.Background(), types.RawDocument{Text: "text"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Strategy)
}

func TestOrchestrator_Exhausted(t *testing.T) {
	insufficient := &rendering.InsufficientContentError{Visible: 15, Required: 200}
	orch, err := NewOrchestrator([]Strategy{
		stubStrategy("a", &stubProjector{err: insufficient}),
		stubStrategy("b", &stubProjector{err: insufficient}),
	}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, err = orch.Format(context.Background(), types.RawDocument{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientContent)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Attempts, 2)
	assert.Equal(t, "a", exhausted.Attempts[0].Strategy)

	var contentErr *rendering.InsufficientContentError
	require.ErrorAs(t, err, &contentErr)
	assert.Equal(t, 200, contentErr.Required)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	projector := &stubProjector{}
	orch, err := NewOrchestrator([]Strategy{stubStrategy("a", projector)}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = orch.Format(ctx, types.RawDocument{Text: "text"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, projector.calls)
}

func TestDefaultStrategies_FormatSample(t *testing.T) {
	strategies, err := DefaultStrategies(StrategyOptions{})
	require.NoError(t, err)

	orch, err := NewOrchestrator(strategies, Options{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []string{StrategyStructured, StrategyPermissive, StrategyPlain}, orch.Strategies())

	got, err := orch.Format(context.Background(), types.RawDocument{Text: sampleText, Source: "sample.txt"})
	require.NoError(t, err)

	assert.Equal(t, StrategyStructured, got.Strategy)
	assert.Contains(t, got.PlainText, "HOPE GILBERT")
	assert.Contains(t, got.PlainText, "Example Partners")
	assert.Contains(t, got.PlainText, "Built pricing models")
	assert.Contains(t, got.SectionsFound, types.SectionExperience)
	assert.Contains(t, got.SectionsFound, types.SectionEducation)
}

func TestDefaultStrategies_EmptyInput(t *testing.T) {
	strategies, err := DefaultStrategies(StrategyOptions{})
	require.NoError(t, err)
	orch, err := NewOrchestrator(strategies, Options{Logger: quietLogger()})
	require.NoError(t, err)

	for _, text := range []string{"", "   \n\t  "} {
		_, err := orch.Format(context.Background(), types.RawDocument{Text: text})
		require.ErrorIs(t, err, ErrInsufficientContent)

		var exhausted *ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Len(t, exhausted.Attempts, 3)

		var parseErr *parsing.ParseError
		assert.ErrorAs(t, err, &parseErr)
	}
}

func TestOrchestrator_Recover(t *testing.T) {
	strategies, err := DefaultStrategies(StrategyOptions{})
	require.NoError(t, err)
	orch, err := NewOrchestrator(strategies, Options{Logger: quietLogger()})
	require.NoError(t, err)

	got, err := orch.Recover(context.Background(), types.RawDocument{Text: sampleText})
	require.NoError(t, err)
	assert.Equal(t, "HOPE GILBERT", got.NameText())
	assert.Equal(t, "hope.gilbert@example.com", got.Contact.Email)
}

func TestBuildStrategies(t *testing.T) {
	t.Run("subset in given order", func(t *testing.T) {
		got, err := BuildStrategies([]string{StrategyPlain, StrategyStructured}, StrategyOptions{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, StrategyPlain, got[0].Name)
		assert.Equal(t, StrategyStructured, got[1].Name)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := BuildStrategies([]string{"fancy"}, StrategyOptions{})
		var strategyErr *StrategyError
		require.ErrorAs(t, err, &strategyErr)
		assert.Equal(t, "fancy", strategyErr.Name)
	})

	t.Run("missing template file", func(t *testing.T) {
		_, err := BuildStrategies(nil, StrategyOptions{TemplatePath: "/nonexistent/cv.html.tmpl"})
		var templateErr *rendering.TemplateError
		require.ErrorAs(t, err, &templateErr)
	})
}
