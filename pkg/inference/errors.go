package inference

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel failures a model call can surface. Callers match with
// errors.Is to decide whether falling to the next tier makes sense.
var (
	ErrUnavailable  = errors.New("inference provider unavailable")
	ErrTimeout      = errors.New("inference call timed out")
	ErrUnauthorized = errors.New("inference provider rejected credentials")
	ErrRateLimited  = errors.New("inference provider rate limit exceeded")
	ErrModelMissing = errors.New("model not found")

	// ErrTiersExhausted marks that every model tier failed and only a
	// deterministic fallback remains.
	ErrTiersExhausted = errors.New("all model tiers exhausted")
)

// TranslateError maps transport errors from the model client onto the
// sentinel taxonomy, keyed off the message since the underlying client
// returns untyped errors.
func TranslateError(model string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(ErrTimeout, "model %s: %v", model, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key") || strings.Contains(msg, "authentication"):
		return errors.Wrapf(ErrUnauthorized, "model %s: %v", model, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return errors.Wrapf(ErrRateLimited, "model %s: %v", model, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return errors.Wrapf(ErrTimeout, "model %s: %v", model, err)
	case strings.Contains(msg, "not found"):
		return errors.Wrapf(ErrModelMissing, "model %s: %v", model, err)
	default:
		return errors.Wrapf(ErrUnavailable, "model %s: %v", model, err)
	}
}
