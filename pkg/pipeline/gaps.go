package pipeline

import (
	"time"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// StalenessWindow is how long a captured metric stays current. Metrics
// last updated before the window are flagged as expiring artifacts.
const StalenessWindow = 365 * 24 * time.Hour

// Analyzer diffs observed coverage against the required-standards
// catalog. It is deterministic and does no I/O: evaluation time is an
// explicit argument.
type Analyzer struct {
	catalog Catalog
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{catalog: DefaultCatalog()}
}

func NewAnalyzerWithCatalog(catalog Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Analyze flags catalog standards with no coverage claim and metrics
// whose last capture predates the staleness window from now.
func (a *Analyzer) Analyze(mapping *models.CoverageMapping, now time.Time) models.GapReport {
	gaps := []models.GapEntry{}
	expiring := []models.ExpiringEntry{}

	for _, entry := range a.catalog {
		if mapping != nil && mapping.Covers(entry.Standard) {
			continue
		}
		gaps = append(gaps, models.GapEntry{
			Type:            models.MissingStandardGap,
			Standard:        entry.Standard,
			RequiredMetrics: entry.RequiredMetrics,
			Priority:        Priority(entry.Standard),
		})
	}

	if mapping != nil {
		cutoff := now.Add(-StalenessWindow)
		for _, metric := range mapping.Metrics {
			if metric.LastUpdated == nil || !metric.LastUpdated.Before(cutoff) {
				continue
			}
			expiring = append(expiring, models.ExpiringEntry{
				Metric:      metric.Name,
				LastUpdated: *metric.LastUpdated,
				DaysOverdue: int(now.Sub(*metric.LastUpdated).Hours() / 24),
			})
		}
	}

	return models.GapReport{
		Gaps:              gaps,
		ExpiringArtifacts: expiring,
		GapCount:          len(gaps),
		ExpiringCount:     len(expiring),
	}
}
