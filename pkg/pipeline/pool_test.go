package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/pipeline"
)

func TestWorkerPool(t *testing.T) {
	t.Run("processes submitted evidence concurrently", func(t *testing.T) {
		gateway := &fakeGateway{response: fullCoverageResponse}
		extractor := &fakeExtractor{payload: models.JSONMap{"data_type": "tabular"}}
		controller, _ := newController(gateway, extractor, &fakeNotifier{})

		pool := pipeline.NewWorkerPool(context.Background(), controller, log.GetLogger())
		pool.Start(4)

		const runs = 10
		for i := 0; i < runs; i++ {
			err := pool.Submit(pipeline.RunInput{
				EvidenceID: fmt.Sprintf("ev-%d", i),
				FilePath:   "report.csv",
				SourceType: "csv",
			})
			assert.NoError(t, err)
		}
		pool.Stop()

		seen := map[string]bool{}
		for result := range pool.Results() {
			assert.Equal(t, models.CompletedStatus, result.Status)
			seen[result.EvidenceID] = true
		}
		assert.Len(t, seen, runs)
	})

	t.Run("submit after stop fails", func(t *testing.T) {
		gateway := &fakeGateway{response: fullCoverageResponse}
		extractor := &fakeExtractor{payload: models.JSONMap{}}
		controller, _ := newController(gateway, extractor, &fakeNotifier{})

		pool := pipeline.NewWorkerPool(context.Background(), controller, log.GetLogger())
		pool.Start(1)
		pool.Stop()

		err := pool.Submit(pipeline.RunInput{EvidenceID: "ev-late"})
		assert.Error(t, err)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		gateway := &fakeGateway{response: fullCoverageResponse}
		extractor := &fakeExtractor{payload: models.JSONMap{}}
		controller, _ := newController(gateway, extractor, &fakeNotifier{})

		pool := pipeline.NewWorkerPool(context.Background(), controller, log.GetLogger())
		pool.Start(1)
		pool.Stop()
		pool.Stop()
	})
}
