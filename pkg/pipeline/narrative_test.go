package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/pipeline"
)

func newGenerator(gateway *fakeGateway) *pipeline.Generator {
	return pipeline.NewGenerator(gateway, "primary", "secondary", log.GetLogger())
}

func TestGeneratorDraft(t *testing.T) {
	ctx := context.Background()
	mapping := &models.CoverageMapping{
		MappedStandards: []string{"E1", "S1"},
		DataQuality:     models.HighQuality,
		Confidence:      0.85,
	}
	report := &models.GapReport{GapCount: 3, ExpiringCount: 1}

	t.Run("uses the model response when available", func(t *testing.T) {
		gateway := &fakeGateway{response: "  The organization shows strong E1 coverage.\n"}
		narrative := newGenerator(gateway).Draft(ctx, mapping, report)

		assert.Equal(t, "The organization shows strong E1 coverage.", narrative)
	})

	t.Run("renders the template when every tier fails", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		narrative := newGenerator(gateway).Draft(ctx, mapping, report)

		assert.Contains(t, narrative, "ESG Performance Summary")
		assert.Contains(t, narrative, "2 ESRS standards identified")
		assert.Contains(t, narrative, "Mapped Standards: E1, S1")
		assert.Contains(t, narrative, "Data Quality: high")
		assert.Contains(t, narrative, "3 data gaps identified")
		assert.Contains(t, narrative, "1 expiring data artifacts")
		assert.Contains(t, narrative, "Confidence Score: 85.0%")
		assert.Equal(t, 2, gateway.calls)
	})

	t.Run("template handles empty coverage", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		narrative := newGenerator(gateway).Draft(ctx,
			&models.CoverageMapping{MappedStandards: []string{}},
			&models.GapReport{GapCount: 10})

		assert.Contains(t, narrative, "Mapped Standards: None detected")
		assert.Contains(t, narrative, "10 data gaps identified")
	})

	t.Run("template handles nil inputs", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		narrative := newGenerator(gateway).Draft(ctx, nil, nil)

		assert.Contains(t, narrative, "ESG Performance Summary")
		assert.Contains(t, narrative, "0 ESRS standards identified")
	})

	t.Run("truncates oversized completions", func(t *testing.T) {
		gateway := &fakeGateway{response: strings.Repeat("a", 5000)}
		narrative := newGenerator(gateway).Draft(ctx, mapping, report)

		assert.Len(t, narrative, 4000)
	})
}
