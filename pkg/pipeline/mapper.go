package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/joshuahsieh24/enviroGovernment/pkg/inference"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// promptPayloadLimit bounds the serialized evidence embedded in a mapping
// prompt so it fits the model's context window.
const promptPayloadLimit = 2000

// standardCodePattern matches standard codes like E1 or S3 in free text.
var standardCodePattern = regexp.MustCompile(`[ES]\d+`)

// Mapper converts extracted evidence content into standard-coverage
// claims. It always returns a well-formed mapping: model failures degrade
// through heuristic parsing down to a keyword-rule fallback, never an
// error.
type Mapper struct {
	ladder *inference.Ladder
	logger Logger
}

func NewMapper(gateway inference.Gateway, primary, secondary string, logger Logger) *Mapper {
	return &Mapper{
		ladder: &inference.Ladder{
			Gateway:   gateway,
			Primary:   primary,
			Secondary: secondary,
			Logger:    logger,
		},
		logger: logger,
	}
}

// Map analyzes the extracted payload and claims standard coverage.
func (m *Mapper) Map(ctx context.Context, extracted models.JSONMap) models.CoverageMapping {
	prompt := m.buildPrompt(extracted)
	return inference.CompleteOr(ctx, m.ladder, prompt,
		m.parseResponse,
		func() models.CoverageMapping { return m.ruleBasedFallback(extracted) },
	)
}

func (m *Mapper) buildPrompt(extracted models.JSONMap) string {
	dataType, _ := extracted["data_type"].(string)
	if dataType == "" {
		dataType = "unknown"
	}
	summary, err := json.MarshalIndent(extracted, "", "  ")
	if err != nil {
		summary = []byte("{}")
	}
	payload := string(summary)
	if len(payload) > promptPayloadLimit {
		payload = payload[:promptPayloadLimit] + "..."
	}

	return fmt.Sprintf(`You are an ESG expert analyzing sustainability data for CSRD/ESRS compliance.

Analyze the following data and map it to relevant ESRS metrics:

Data Type: %s
Data Summary: %s

Please identify:
1. Relevant ESRS standards (E1-E5, S1-S4, G1)
2. Specific metrics that can be derived
3. Data quality assessment
4. Missing information needed for complete compliance

Respond in JSON format:
{
    "mapped_standards": [],
    "metrics": [],
    "data_quality": "high/medium/low",
    "missing_info": [],
    "confidence": 0.0-1.0
}`, dataType, payload)
}

// llmMapping mirrors the JSON shape the model is instructed to return.
type llmMapping struct {
	MappedStandards []string        `json:"mapped_standards"`
	Metrics         []models.Metric `json:"metrics"`
	DataQuality     string          `json:"data_quality"`
	MissingInfo     []string        `json:"missing_info"`
	Confidence      float64         `json:"confidence"`
}

// parseResponse turns a raw completion into a mapping. Structured parse
// first; on a response with no JSON object, heuristic parsing; on an
// object that will not unmarshal, a degraded parse_error mapping.
func (m *Mapper) parseResponse(response string) models.CoverageMapping {
	candidate, ok := inference.ExtractObject(response)
	if !ok {
		return m.heuristicParse(response)
	}

	var parsed llmMapping
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		m.logger.Errorf("Failed to parse mapping response: %v", err)
		return models.CoverageMapping{
			MappedStandards: []string{},
			Metrics:         []models.Metric{},
			DataQuality:     models.LowQuality,
			MissingInfo:     []string{fmt.Sprintf("Parse error: %v", err)},
			Confidence:      0.0,
			MappingMethod:   models.ParseErrorMethod,
		}
	}

	return models.CoverageMapping{
		MappedStandards: nonNil(parsed.MappedStandards),
		Metrics:         nonNilMetrics(parsed.Metrics),
		DataQuality:     normalizeQuality(parsed.DataQuality),
		MissingInfo:     nonNil(parsed.MissingInfo),
		Confidence:      clamp01(parsed.Confidence),
		MappingMethod:   models.LLMAnalysisMethod,
	}
}

// heuristicParse salvages a non-JSON completion: standard codes by
// regexp, confidence from response length, quality from keyword scan.
func (m *Mapper) heuristicParse(response string) models.CoverageMapping {
	standards := dedupe(standardCodePattern.FindAllString(response, -1))

	confidence := float64(len(response)) / 1000
	if confidence > 0.8 {
		confidence = 0.8
	}

	quality := models.MediumQuality
	lower := strings.ToLower(response)
	if strings.Contains(lower, "high") {
		quality = models.HighQuality
	} else if strings.Contains(lower, "low") {
		quality = models.LowQuality
	}

	return models.CoverageMapping{
		MappedStandards: standards,
		Metrics:         []models.Metric{{Name: "Extracted from text", Confidence: confidence}},
		DataQuality:     quality,
		MissingInfo:     []string{"Heuristic parsing used"},
		Confidence:      confidence,
		MappingMethod:   models.HeuristicParseMethod,
	}
}

// keyword rules applied when no model tier answered at all. Matching runs
// over the lower-cased serialized payload.
var fallbackRules = []struct {
	standard   string
	metric     string
	confidence float64
	keywords   []string
}{
	{"E1", "Energy consumption", 0.7, []string{"energy", "carbon", "emission", "ghg", "co2", "electricity", "gas"}},
	{"E2", "Pollution indicators", 0.6, []string{"pollution", "waste", "chemical", "toxic"}},
	{"E3", "Water consumption", 0.6, []string{"water", "marine", "ocean", "river"}},
	{"S1", "Workforce metrics", 0.5, []string{"employee", "worker", "staff", "safety", "training"}},
}

func (m *Mapper) ruleBasedFallback(extracted models.JSONMap) models.CoverageMapping {
	serialized, err := json.Marshal(extracted)
	if err != nil {
		serialized = []byte(fmt.Sprint(extracted))
	}
	content := strings.ToLower(string(serialized))

	standards := []string{}
	metrics := []models.Metric{}
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(content, kw) {
				standards = append(standards, rule.standard)
				metrics = append(metrics, models.Metric{Name: rule.metric, Confidence: rule.confidence})
				break
			}
		}
	}

	m.logger.Infof("Rule-based fallback mapped %d standards", len(standards))
	return models.CoverageMapping{
		MappedStandards: standards,
		Metrics:         metrics,
		DataQuality:     models.MediumQuality,
		MissingInfo:     []string{"LLM analysis unavailable - using rule-based mapping"},
		Confidence:      0.6,
		MappingMethod:   models.RuleBasedFallbackMethod,
	}
}

func normalizeQuality(q string) models.DataQuality {
	switch models.DataQuality(strings.ToLower(q)) {
	case models.HighQuality:
		return models.HighQuality
	case models.LowQuality:
		return models.LowQuality
	default:
		return models.MediumQuality
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// dedupe keeps the first occurrence of each code so output order follows
// the response text.
func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := []string{}
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMetrics(s []models.Metric) []models.Metric {
	if s == nil {
		return []models.Metric{}
	}
	return s
}
