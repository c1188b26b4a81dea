package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/distquery/parallelizer/internal/parallelizer"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// The global TracerProvider defaults to an otel no-op implementation when
// nothing else has called otel.SetTracerProvider, so these tests exercise
// SpanObserver's call sequencing without needing a real exporter.

func TestSpanObserver_ImplementsObserver(t *testing.T) {
	var _ parallelizer.Observer = (*SpanObserver)(nil)
}

func TestSpanObserver_HooksDoNotPanic(t *testing.T) {
	obs := NewSpanObserver(context.Background())

	assert.NotPanics(t, func() {
		obs.PlanParallelStart()
		obs.PlanParallelized(planmodel.NewPlanningSet())
		obs.PlanAssignmentTime(12)
		obs.PlanGenerationTime(34)
		obs.PlansDistributionComplete(planmodel.WorkUnit{{}})
		obs.End(nil)
	})
}

func TestSpanObserver_EndRecordsError(t *testing.T) {
	obs := NewSpanObserver(context.Background())
	assert.NotPanics(t, func() {
		obs.End(errors.New("boom"))
	})
}
