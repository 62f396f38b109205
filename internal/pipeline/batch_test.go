package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonathan/cv-formatter/internal/rendering"
	"github.com/jonathan/cv-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thresholdProjector struct {
	min int
}

func (p thresholdProjector) Project(resume *types.RecoveredResume) (*types.FormattedResume, error) {
	if len(resume.Summary) < p.min {
		return nil, &rendering.InsufficientContentError{Visible: len(resume.Summary), Required: p.min}
	}
	return &types.FormattedResume{PlainText: resume.Summary}, nil
}

func TestFormatBatch(t *testing.T) {
	orch, err := NewOrchestrator([]Strategy{{
		Name:       "only",
		Normalizer: lineNormalizer{},
		Parser:     stubParser{},
		Projector:  thresholdProjector{min: 5},
	}}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	var docs []types.RawDocument
	for i := range 20 {
		text := fmt.Sprintf("document number %d", i)
		if i%5 == 0 {
			text = "abc"
		}
		docs = append(docs, types.RawDocument{Text: text, Source: fmt.Sprintf("cv-%02d.txt", i)})
	}

	results, err := FormatBatch(context.Background(), orch, docs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(docs))

	for i, r := range results {
		assert.Equal(t, docs[i].Source, r.Source)
		if i%5 == 0 {
			assert.ErrorIs(t, r.Err, ErrInsufficientContent)
			assert.Nil(t, r.Formatted)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("document number %d", i), r.Formatted.PlainText)
	}
}

func TestFormatBatch_Empty(t *testing.T) {
	orch, err := NewOrchestrator([]Strategy{stubStrategy("a", &stubProjector{})}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	results, err := FormatBatch(context.Background(), orch, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFormatBatch_CancelledContext(t *testing.T) {
	orch, err := NewOrchestrator([]Strategy{stubStrategy("a", &stubProjector{})}, Options{Logger: quietLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := FormatBatch(ctx, orch, []types.RawDocument{{Text: "a"}, {Text: "b"}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
