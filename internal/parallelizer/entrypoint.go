package parallelizer

import (
	"github.com/distquery/parallelizer/internal/depgraph"
	"github.com/distquery/parallelizer/internal/emit"
	"github.com/distquery/parallelizer/internal/ingest"
	"github.com/distquery/parallelizer/internal/planmodel"
	"github.com/distquery/parallelizer/internal/queryplan"
	"github.com/distquery/parallelizer/internal/stats"
	"github.com/distquery/parallelizer/pkg/utils"
)

const (
	phaseAssignment = "assignment"
	phaseGeneration = "generation"
)

// Request bundles getFragments' conceptual parameter list (spec 6). The
// out-of-scope collaborators named there (PlanSerializer, SessionIdentity,
// QueryContextInfo, FunctionLookup) are referenced only by the narrow
// slice of state this subsystem actually consumes from them: the options
// blob, credentials, and a priority, all supplied verbatim by the caller.
//
// The active endpoint set is deliberately not part of Request: it is
// fixed once, at Parallelizer construction (New), and every stage of
// GetFragments reads it back from pz.NodeMap() so stats collection and
// width/assignment can never see two different active sets for the same
// call (spec 4.6).
type Request struct {
	OptionsBytes []byte
	Foreman      planmodel.Endpoint
	QueryID      [16]byte
	RootFragment *planmodel.Fragment
	Credentials  []byte
	Priority     int32
}

// GetFragments is the parallelizer's sole entry point (spec 6): it runs
// the full five-stage pipeline (ingest, dependency graph, stats
// collection, width/assignment, work-unit emission) over req and returns
// the complete, ordered WorkUnit. No partial result is ever returned —
// any stage failing aborts the whole call (spec 7).
func (pz *Parallelizer) GetFragments(req Request) (planmodel.WorkUnit, error) {
	queryLogger := pz.logger.WithQuery(queryplan.String(req.QueryID))
	timer := utils.NewPlanningTimer(queryLogger)
	generation := timer.Start(phaseGeneration)

	set, err := ingest.BuildPlanningSet(req.RootFragment)
	if err != nil {
		return nil, err
	}

	nodeMap := pz.NodeMap()
	for _, w := range set.Wrappers() {
		w.Stats = stats.Collect(w.Fragment, nodeMap)
		w.State = planmodel.StateStatsCollected
	}

	if _, err := depgraph.Build(set); err != nil {
		return nil, err
	}

	assignment := timer.StartChild(phaseGeneration, phaseAssignment)
	if err := pz.Run(set); err != nil {
		return nil, err
	}
	pz.observer.PlanAssignmentTime(assignment.Stop().Milliseconds())

	units, err := emit.Run(set, emit.Params{
		QueryID:      req.QueryID,
		Foreman:      req.Foreman,
		Credentials:  req.Credentials,
		Codec:        pz.params.FragmentCodec,
		Priority:     req.Priority,
		OptionsBytes: req.OptionsBytes,
	})
	if err != nil {
		return nil, err
	}

	pz.observer.PlanGenerationTime(generation.Stop().Milliseconds())
	pz.observer.PlansDistributionComplete(units)
	queryLogger.Info("emitted %d plan fragments", len(units))

	return units, nil
}
