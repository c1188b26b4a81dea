// Package telemetry adapts the parallelizer.Observer capability onto
// OpenTelemetry spans and events, riding on whatever global
// TracerProvider the host process has configured (otel.SetTracerProvider).
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/distquery/parallelizer/internal/planmodel"
)

const tracerName = "github.com/distquery/parallelizer/internal/parallelizer"

// SpanObserver emits planParallelStart/planParallelized/planAssignmentTime/
// planGenerationTime/plansDistributionComplete (spec 6, 9) as a single
// "parallelize" span carrying events and attributes, rather than a span
// per hook, since the hooks fire in a tight sequence within one call.
type SpanObserver struct {
	mu   sync.Mutex
	ctx  context.Context
	span trace.Span
}

// NewSpanObserver starts the root "parallelize" span under ctx. Call
// End when the parallelization call returns (success or error).
func NewSpanObserver(ctx context.Context) *SpanObserver {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, "parallelize")
	return &SpanObserver{ctx: spanCtx, span: span}
}

// End closes the underlying span, recording err if non-nil.
func (o *SpanObserver) End(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.span.RecordError(err)
	}
	o.span.End()
}

// PlanParallelStart implements parallelizer.Observer.
func (o *SpanObserver) PlanParallelStart() {
	o.span.AddEvent("planParallelStart")
}

// PlanParallelized implements parallelizer.Observer.
func (o *SpanObserver) PlanParallelized(set *planmodel.PlanningSet) {
	o.span.AddEvent("planParallelized", trace.WithAttributes(
		attribute.Int("fragment.count", set.Len()),
	))
}

// PlanAssignmentTime implements parallelizer.Observer.
func (o *SpanObserver) PlanAssignmentTime(ms int64) {
	o.span.SetAttributes(attribute.Int64("plan.assignment_time_ms", ms))
}

// PlanGenerationTime implements parallelizer.Observer.
func (o *SpanObserver) PlanGenerationTime(ms int64) {
	o.span.SetAttributes(attribute.Int64("plan.generation_time_ms", ms))
}

// PlansDistributionComplete implements parallelizer.Observer.
func (o *SpanObserver) PlansDistributionComplete(units planmodel.WorkUnit) {
	o.span.AddEvent("plansDistributionComplete", trace.WithAttributes(
		attribute.Int("work_unit.fragment_count", len(units)),
	))
}
