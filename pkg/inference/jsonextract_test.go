package inference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
)

func TestExtractObject(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		got, ok := inference.ExtractObject(`{"a": 1}`)
		assert.True(t, ok)
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		got, ok := inference.ExtractObject("Sure, here is the JSON:\n```json\n{\"a\": 1}\n```\nLet me know!")
		assert.True(t, ok)
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("nested objects kept intact", func(t *testing.T) {
		got, ok := inference.ExtractObject(`prefix {"outer": {"inner": 2}} suffix`)
		assert.True(t, ok)
		assert.Equal(t, `{"outer": {"inner": 2}}`, got)
	})

	t.Run("no braces", func(t *testing.T) {
		_, ok := inference.ExtractObject("plain text answer")
		assert.False(t, ok)
	})

	t.Run("invalid json between braces", func(t *testing.T) {
		_, ok := inference.ExtractObject(`{"a": unquoted}`)
		assert.False(t, ok)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := inference.ExtractObject("")
		assert.False(t, ok)
	})
}
