package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/pipeline"
)

func newMapper(gateway *fakeGateway) *pipeline.Mapper {
	return pipeline.NewMapper(gateway, "primary", "secondary", log.GetLogger())
}

func TestMapperMap(t *testing.T) {
	ctx := context.Background()

	t.Run("structured model response", func(t *testing.T) {
		gateway := &fakeGateway{response: "Here is my analysis:\n" + `{
			"mapped_standards": ["E1", "S1"],
			"metrics": [{"name": "Scope 1 emissions", "confidence": 0.85, "value": 1200, "unit": "tCO2e"}],
			"data_quality": "HIGH",
			"missing_info": ["Scope 3 emissions"],
			"confidence": 0.85
		}`}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{"data_type": "tabular"})

		assert.Equal(t, models.LLMAnalysisMethod, mapping.MappingMethod)
		assert.Equal(t, []string{"E1", "S1"}, mapping.MappedStandards)
		assert.Equal(t, models.HighQuality, mapping.DataQuality)
		assert.Equal(t, 0.85, mapping.Confidence)
		assert.Len(t, mapping.Metrics, 1)
		assert.Equal(t, "Scope 1 emissions", mapping.Metrics[0].Name)
	})

	t.Run("confidence clamped to unit interval", func(t *testing.T) {
		gateway := &fakeGateway{response: `{
			"mapped_standards": ["E1"],
			"metrics": [],
			"data_quality": "medium",
			"missing_info": [],
			"confidence": 3.5
		}`}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{})

		assert.Equal(t, 1.0, mapping.Confidence)
	})

	t.Run("unknown quality defaults to medium", func(t *testing.T) {
		gateway := &fakeGateway{response: `{
			"mapped_standards": [],
			"metrics": [],
			"data_quality": "excellent",
			"missing_info": [],
			"confidence": 0.5
		}`}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{})

		assert.Equal(t, models.MediumQuality, mapping.DataQuality)
	})

	t.Run("prose response falls back to heuristic parsing", func(t *testing.T) {
		gateway := &fakeGateway{response: "The evidence covers E1 and S1, and mentions E1 again."}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{"data_type": "document"})

		assert.Equal(t, models.HeuristicParseMethod, mapping.MappingMethod)
		assert.Equal(t, []string{"E1", "S1"}, mapping.MappedStandards)
		assert.Equal(t, []string{"Heuristic parsing used"}, mapping.MissingInfo)
		assert.InDelta(t, float64(len(gateway.response))/1000, mapping.Confidence, 0.001)
	})

	t.Run("heuristic confidence capped at 0.8", func(t *testing.T) {
		long := make([]byte, 2000)
		for i := range long {
			long[i] = 'x'
		}
		gateway := &fakeGateway{response: "E2 " + string(long)}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{})

		assert.Equal(t, models.HeuristicParseMethod, mapping.MappingMethod)
		assert.Equal(t, 0.8, mapping.Confidence)
	})

	t.Run("unparseable object yields degraded mapping", func(t *testing.T) {
		gateway := &fakeGateway{response: `{"mapped_standards": "not-a-list", "confidence": 0.9}`}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{})

		assert.Equal(t, models.ParseErrorMethod, mapping.MappingMethod)
		assert.Empty(t, mapping.MappedStandards)
		assert.Equal(t, models.LowQuality, mapping.DataQuality)
		assert.Zero(t, mapping.Confidence)
		assert.NotEmpty(t, mapping.MissingInfo)
	})

	t.Run("keyword rules when every tier fails", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{
			"energy_consumption": 1000.0,
			"co2_emissions":      500.0,
		})

		assert.Equal(t, models.RuleBasedFallbackMethod, mapping.MappingMethod)
		assert.Equal(t, []string{"E1"}, mapping.MappedStandards)
		assert.Len(t, mapping.Metrics, 1)
		assert.Equal(t, "Energy consumption", mapping.Metrics[0].Name)
		assert.Equal(t, 0.7, mapping.Metrics[0].Confidence)
		assert.Equal(t, 0.6, mapping.Confidence)
		assert.Equal(t, models.MediumQuality, mapping.DataQuality)
		assert.Equal(t, []string{"LLM analysis unavailable - using rule-based mapping"}, mapping.MissingInfo)
		// both model tiers were attempted before the rules ran
		assert.Equal(t, 2, gateway.calls)
	})

	t.Run("keyword rules match multiple domains", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{
			"water_usage":    300.0,
			"employee_count": 42.0,
		})

		assert.Equal(t, []string{"E3", "S1"}, mapping.MappedStandards)
	})

	t.Run("keyword rules with no match claim nothing", func(t *testing.T) {
		gateway := &fakeGateway{err: assert.AnError}
		mapping := newMapper(gateway).Map(ctx, models.JSONMap{"quarterly_revenue": 9.5})

		assert.Equal(t, models.RuleBasedFallbackMethod, mapping.MappingMethod)
		assert.Empty(t, mapping.MappedStandards)
		assert.Empty(t, mapping.Metrics)
	})
}
