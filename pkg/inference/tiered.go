package inference

import (
	"context"

	"github.com/pkg/errors"
)

// Logger defines the logging interface for inference callers.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Ladder is the tiered invocation pattern used everywhere the pipeline
// talks to a model: primary model, then secondary model, then a
// deterministic fallback supplied by the caller. Both the mapping engine
// and the narrative generator run the same ladder.
type Ladder struct {
	Gateway   Gateway
	Primary   string
	Secondary string
	Logger    Logger
}

// Complete returns the first successful completion from the model tiers,
// together with the model that produced it. When both tiers fail the
// returned error wraps ErrTiersExhausted.
func (l *Ladder) Complete(ctx context.Context, prompt string) (string, string, error) {
	resp, err := l.Gateway.Complete(ctx, l.Primary, prompt)
	if err == nil {
		return resp, l.Primary, nil
	}
	l.Logger.Infof("Primary model %s failed, trying fallback %s: %v", l.Primary, l.Secondary, err)

	resp, err = l.Gateway.Complete(ctx, l.Secondary, prompt)
	if err == nil {
		return resp, l.Secondary, nil
	}
	l.Logger.Errorf("Fallback model %s failed: %v", l.Secondary, err)
	return "", "", errors.Wrapf(ErrTiersExhausted, "last tier %s: %v", l.Secondary, err)
}

// CompleteOr runs the ladder and converts the raw completion with onText,
// or applies the deterministic fallback when every model tier failed.
// onText must absorb malformed output itself; the ladder only decides
// which tier answers.
func CompleteOr[T any](ctx context.Context, l *Ladder, prompt string, onText func(string) T, fallback func() T) T {
	resp, _, err := l.Complete(ctx, prompt)
	if err != nil {
		return fallback()
	}
	return onText(resp)
}
