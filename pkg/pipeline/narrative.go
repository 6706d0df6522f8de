package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// narrativeLengthLimit caps the drafted summary.
const narrativeLengthLimit = 4000

// Generator drafts an executive summary from the mapping and gap results.
// It runs the same tiered ladder as the mapping engine, with a fixed
// template renderer as the deterministic final tier.
type Generator struct {
	ladder *inference.Ladder
	logger Logger
}

func NewGenerator(gateway inference.Gateway, primary, secondary string, logger Logger) *Generator {
	return &Generator{
		ladder: &inference.Ladder{
			Gateway:   gateway,
			Primary:   primary,
			Secondary: secondary,
			Logger:    logger,
		},
		logger: logger,
	}
}

// Draft produces the narrative text. It never fails; when every model
// tier is unavailable the template renderer answers.
func (g *Generator) Draft(ctx context.Context, mapping *models.CoverageMapping, report *models.GapReport) string {
	prompt := g.buildPrompt(mapping, report)
	narrative := inference.CompleteOr(ctx, g.ladder, prompt,
		strings.TrimSpace,
		func() string { return templateNarrative(mapping, report) },
	)
	if len(narrative) > narrativeLengthLimit {
		narrative = narrative[:narrativeLengthLimit]
	}
	return narrative
}

func (g *Generator) buildPrompt(mapping *models.CoverageMapping, report *models.GapReport) string {
	mappingJSON, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		mappingJSON = []byte("{}")
	}
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		reportJSON = []byte("{}")
	}

	return fmt.Sprintf(`Generate a concise executive summary of ESG performance based on the following data:

Current Metrics: %s
Identified Gaps: %s

The summary should:
1. Highlight key ESG achievements
2. Identify critical gaps and risks
3. Provide actionable recommendations
4. Be suitable for executive reporting

Keep it under 500 words and use professional language.`, mappingJSON, reportJSON)
}

// templateNarrative renders the fixed-format summary used when no model
// tier is available.
func templateNarrative(mapping *models.CoverageMapping, report *models.GapReport) string {
	standards := []string{}
	quality := models.DataQuality("unknown")
	confidence := 0.0
	if mapping != nil {
		standards = mapping.MappedStandards
		quality = mapping.DataQuality
		confidence = mapping.Confidence
	}
	gapCount := 0
	expiringCount := 0
	if report != nil {
		gapCount = report.GapCount
		expiringCount = report.ExpiringCount
	}

	mapped := "None detected"
	if len(standards) > 0 {
		mapped = strings.Join(standards, ", ")
	}

	return strings.TrimSpace(fmt.Sprintf(`ESG Performance Summary

Current Status:
- Standards Coverage: %d ESRS standards identified
- Mapped Standards: %s
- Data Quality: %s

Key Findings:
- %d data gaps identified
- %d expiring data artifacts
- Confidence Score: %.1f%%

Recommendations:
1. Address high-priority gaps in environmental standards
2. Update expiring data sources within 30 days
3. Implement systematic data collection for missing metrics
4. Enhance data quality validation processes

Next Steps:
- Prioritize E1 (Climate) data collection if missing
- Establish quarterly ESG data review process
- Consider automated data validation tools`,
		len(standards), mapped, quality, gapCount, expiringCount, confidence*100))
}
