package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	ctx := context.Background()

	t.Run("tabular payload with numeric summary", func(t *testing.T) {
		name := writeFile(t, dir, "energy.csv",
			"site,energy_kwh,fuel\nplant-a,1200,diesel\nplant-b,800,gas\n")

		payload, err := svc.Extract(ctx, name, "csv")
		assert.NoError(t, err)
		assert.Equal(t, "tabular", payload["data_type"])
		assert.Equal(t, []string{"site", "energy_kwh", "fuel"}, payload["columns"])
		assert.Equal(t, 2, payload["row_count"])

		rows := payload["rows"].([]map[string]interface{})
		assert.Len(t, rows, 2)
		assert.Equal(t, "plant-a", rows[0]["site"])
		assert.Equal(t, 1200.0, rows[0]["energy_kwh"])

		summary := payload["summary"].(map[string]float64)
		assert.Equal(t, 2000.0, summary["energy_kwh"])
		assert.NotContains(t, summary, "site")
	})

	t.Run("header-only file", func(t *testing.T) {
		name := writeFile(t, dir, "empty.csv", "site,energy_kwh\n")

		payload, err := svc.Extract(ctx, name, "csv")
		assert.NoError(t, err)
		assert.Equal(t, 0, payload["row_count"])
		assert.Empty(t, payload["rows"])
	})

	t.Run("row sample is capped", func(t *testing.T) {
		content := "value\n"
		for i := 0; i < 150; i++ {
			content += "1\n"
		}
		name := writeFile(t, dir, "big.csv", content)

		payload, err := svc.Extract(ctx, name, "csv")
		assert.NoError(t, err)
		assert.Equal(t, 150, payload["row_count"])
		assert.Len(t, payload["rows"], 100)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.Extract(ctx, "nope.csv", "csv")
		assert.Error(t, err)
	})
}

func TestExtractJSON(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	ctx := context.Background()

	t.Run("structured payload with keys", func(t *testing.T) {
		name := writeFile(t, dir, "metrics.json",
			`{"energy_consumption": 1000, "co2_emissions": 500}`)

		payload, err := svc.Extract(ctx, name, "json")
		assert.NoError(t, err)
		assert.Equal(t, "structured", payload["data_type"])
		assert.ElementsMatch(t, []string{"energy_consumption", "co2_emissions"}, payload["keys"])

		data := payload["data"].(map[string]interface{})
		assert.Equal(t, 1000.0, data["energy_consumption"])
	})

	t.Run("top-level array has no keys", func(t *testing.T) {
		name := writeFile(t, dir, "list.json", `[1, 2, 3]`)

		payload, err := svc.Extract(ctx, name, "json")
		assert.NoError(t, err)
		assert.Empty(t, payload["keys"])
	})

	t.Run("malformed json", func(t *testing.T) {
		name := writeFile(t, dir, "bad.json", `{"unterminated`)

		_, err := svc.Extract(ctx, name, "json")
		assert.Error(t, err)
	})
}

func TestExtractUnsupported(t *testing.T) {
	svc := NewService(t.TempDir())

	_, err := svc.Extract(context.Background(), "report.docx", "docx")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source type")
}

func TestExtractCancelledContext(t *testing.T) {
	svc := NewService(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Extract(ctx, "any.csv", "csv")
	assert.ErrorIs(t, err, context.Canceled)
}
