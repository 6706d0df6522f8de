package inference_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
)

// scriptedGateway returns a canned answer per model name.
type scriptedGateway struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (g *scriptedGateway) Complete(ctx context.Context, model, prompt string) (string, error) {
	g.calls = append(g.calls, model)
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.responses[model], nil
}

func newLadder(gateway inference.Gateway) *inference.Ladder {
	return &inference.Ladder{
		Gateway:   gateway,
		Primary:   "primary",
		Secondary: "secondary",
		Logger:    log.GetLogger(),
	}
}

func TestLadderComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("primary answers first", func(t *testing.T) {
		gateway := &scriptedGateway{responses: map[string]string{"primary": "answer"}}
		resp, model, err := newLadder(gateway).Complete(ctx, "prompt")

		assert.NoError(t, err)
		assert.Equal(t, "answer", resp)
		assert.Equal(t, "primary", model)
		assert.Equal(t, []string{"primary"}, gateway.calls)
	})

	t.Run("secondary answers when primary fails", func(t *testing.T) {
		gateway := &scriptedGateway{
			responses: map[string]string{"secondary": "backup answer"},
			errs:      map[string]error{"primary": inference.ErrUnavailable},
		}
		resp, model, err := newLadder(gateway).Complete(ctx, "prompt")

		assert.NoError(t, err)
		assert.Equal(t, "backup answer", resp)
		assert.Equal(t, "secondary", model)
		assert.Equal(t, []string{"primary", "secondary"}, gateway.calls)
	})

	t.Run("both tiers failing exhausts the ladder", func(t *testing.T) {
		gateway := &scriptedGateway{errs: map[string]error{
			"primary":   inference.ErrTimeout,
			"secondary": inference.ErrUnavailable,
		}}
		_, _, err := newLadder(gateway).Complete(ctx, "prompt")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, inference.ErrTiersExhausted))
	})
}

func TestCompleteOr(t *testing.T) {
	ctx := context.Background()

	t.Run("converts the completion", func(t *testing.T) {
		gateway := &scriptedGateway{responses: map[string]string{"primary": "ok"}}
		got := inference.CompleteOr(ctx, newLadder(gateway), "prompt",
			func(s string) int { return len(s) },
			func() int { return -1 },
		)
		assert.Equal(t, 2, got)
	})

	t.Run("falls back when exhausted", func(t *testing.T) {
		gateway := &scriptedGateway{errs: map[string]error{
			"primary":   inference.ErrUnavailable,
			"secondary": inference.ErrUnavailable,
		}}
		got := inference.CompleteOr(ctx, newLadder(gateway), "prompt",
			func(s string) int { return len(s) },
			func() int { return -1 },
		)
		assert.Equal(t, -1, got)
	})
}
