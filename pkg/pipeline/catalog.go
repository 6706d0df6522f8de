package pipeline

import (
	"strings"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// CatalogEntry names one required reporting standard and the metrics a
// complete disclosure must cover for it.
type CatalogEntry struct {
	Standard        string
	RequiredMetrics []string
}

// Catalog is the required-standards catalog the gap analyzer diffs
// observed coverage against. Order is stable so gap reports are
// deterministic.
type Catalog []CatalogEntry

// DefaultCatalog covers the ten ESRS topical standards.
func DefaultCatalog() Catalog {
	return Catalog{
		{Standard: "E1", RequiredMetrics: []string{"GHG emissions", "Energy consumption", "Energy mix"}},
		{Standard: "E2", RequiredMetrics: []string{"Water consumption", "Water recycling"}},
		{Standard: "E3", RequiredMetrics: []string{"Waste generation", "Circular economy"}},
		{Standard: "E4", RequiredMetrics: []string{"Biodiversity impact"}},
		{Standard: "E5", RequiredMetrics: []string{"Resource use", "Circular economy"}},
		{Standard: "S1", RequiredMetrics: []string{"Own workforce", "Working conditions"}},
		{Standard: "S2", RequiredMetrics: []string{"Workers in value chain"}},
		{Standard: "S3", RequiredMetrics: []string{"Affected communities"}},
		{Standard: "S4", RequiredMetrics: []string{"Consumers and end-users"}},
		{Standard: "G1", RequiredMetrics: []string{"Business conduct", "Risk management"}},
	}
}

// Priority returns high for environmental standards, medium otherwise.
func Priority(standard string) models.GapPriority {
	if strings.HasPrefix(standard, "E") {
		return models.HighPriority
	}
	return models.MediumPriority
}
