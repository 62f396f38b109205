// Package pipeline runs formatting strategies in order until one produces a
// usable résumé.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/cv-formatter/internal/types"
)

// Progress event categories
const (
	CategoryAttempt = "attempt"
	CategoryResult  = "result"
)

// ProgressEvent represents a progress update during formatting
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when formatting progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configure an Orchestrator
type Options struct {
	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// Orchestrator tries each strategy in turn. Strategies hold only read-only
// state, so one Orchestrator serves concurrent requests.
type Orchestrator struct {
	strategies []Strategy
	logger     *slog.Logger
	onProgress ProgressCallback
}

// NewOrchestrator creates an Orchestrator over at least one strategy
func NewOrchestrator(strategies []Strategy, opts Options) (*Orchestrator, error) {
	if len(strategies) == 0 {
		return nil, &StrategyError{Message: "at least one strategy is required"}
	}
	for _, s := range strategies {
		if s.Normalizer == nil || s.Parser == nil || s.Projector == nil {
			return nil, &StrategyError{Name: s.Name, Message: "normalizer, parser and projector are required"}
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		strategies: strategies,
		logger:     logger,
		onProgress: opts.OnProgress,
	}, nil
}

// Strategies returns the strategy names in attempt order
func (o *Orchestrator) Strategies() []string {
	names := make([]string, 0, len(o.strategies))
	for _, s := range o.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Format runs the strategies in order and returns the first success. When
// every strategy fails the error is an *ExhaustedError matching
// ErrInsufficientContent.
func (o *Orchestrator) Format(ctx context.Context, raw types.RawDocument) (*types.FormattedResume, error) {
	var attempts []Attempt
	for i, s := range o.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("formatting cancelled: %w", err)
		}

		start := time.Now()
		o.emit(raw.Source, s.Name, CategoryAttempt, fmt.Sprintf("Attempt %d/%d with %s strategy", i+1, len(o.strategies), s.Name), nil)

		formatted, err := o.attempt(s, raw)
		if err == nil {
			formatted.Strategy = s.Name
			o.logger.Info("formatted résumé",
				"source", raw.Source,
				"strategy", s.Name,
				"attempt", i+1,
				"sections", len(formatted.SectionsFound),
				"duration", time.Since(start))
			o.emit(raw.Source, s.Name, CategoryResult, fmt.Sprintf("Formatted with %s strategy", s.Name), formatted.SectionsFound)
			return formatted, nil
		}

		attempts = append(attempts, Attempt{Strategy: s.Name, Err: err})
		o.logger.Debug("strategy failed",
			"source", raw.Source,
			"strategy", s.Name,
			"attempt", i+1,
			"error", err)
	}

	exhausted := &ExhaustedError{Attempts: attempts}
	o.logger.Warn("all strategies failed", "source", raw.Source, "attempts", len(attempts))
	o.emit(raw.Source, "", CategoryResult, exhausted.Error(), nil)
	return nil, exhausted
}

// Recover runs the first strategy's normalizer and parser and returns the
// recovered structure without rendering it.
func (o *Orchestrator) Recover(ctx context.Context, raw types.RawDocument) (*types.RecoveredResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parsing cancelled: %w", err)
	}
	s := o.strategies[0]
	return s.Parser.Parse(s.Normalizer.Normalize(raw.Text), raw.LargeTextHints)
}

func (o *Orchestrator) attempt(s Strategy, raw types.RawDocument) (*types.FormattedResume, error) {
	resume, err := s.Parser.Parse(s.Normalizer.Normalize(raw.Text), raw.LargeTextHints)
	if err != nil {
		return nil, err
	}
	formatted, err := s.Projector.Project(resume)
	if err != nil {
		return nil, err
	}
	if formatted == nil {
		return nil, errors.New("projector returned no output")
	}
	return formatted, nil
}

func (o *Orchestrator) emit(runID, step, category, message string, content any) {
	if o.onProgress != nil {
		o.onProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}
