package inference_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"deadline exceeded", context.DeadlineExceeded, inference.ErrTimeout},
		{"unauthorized message", errors.New("401 Unauthorized"), inference.ErrUnauthorized},
		{"api key message", errors.New("invalid api key supplied"), inference.ErrUnauthorized},
		{"rate limit message", errors.New("429 Too Many Requests"), inference.ErrRateLimited},
		{"timeout message", errors.New("request timeout after 120s"), inference.ErrTimeout},
		{"model not found", errors.New("model 'llama2' not found, try pulling it first"), inference.ErrModelMissing},
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), inference.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inference.TranslateError("llama2", tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v, want %v", got, tt.want)
			assert.Contains(t, got.Error(), "llama2")
		})
	}
}
