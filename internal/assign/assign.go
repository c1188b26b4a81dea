// Package assign implements the two interchangeable endpoint-assignment
// creators described in spec 4.4.2: legacy round-robin-with-affinity, and
// balanced affinity-weighted-target. Both are variants of the common
// capability spec 9 describes: (width, affinity, endpoints, params) ->
// []Endpoint.
package assign

import (
	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// Params bundles the parallelization parameters relevant to endpoint
// assignment (spec 6).
type Params struct {
	MaxWidthPerNode                int
	AffinityFactor                 float64
	UseNewAssignmentCreator        bool
	AssignmentCreatorBalanceFactor float64
}

// Creator is the common assignment-policy capability (spec 9).
type Creator interface {
	Assign(width int, stats *planmodel.FragmentStats, active []planmodel.Endpoint, params Params) ([]planmodel.Endpoint, error)
}

// For selects the legacy or balanced creator per useNewAssignmentCreator
// (spec 4.4.2).
func For(useNewAssignmentCreator bool) Creator {
	if useNewAssignmentCreator {
		return BalancedCreator{}
	}
	return LegacyCreator{}
}

// eligibleEndpoints narrows active down to the HARD-pinned endpoint set
// when distribution is HARD, failing if any pinned endpoint is not active
// (spec 4.4.2, scenario 6). When no exchange-level pin was declared, HARD
// falls back to the scan-affinity endpoints (already filtered to the
// active set by the stats collector, spec 4.3), so no failure is possible
// in that fallback path.
func eligibleEndpoints(stats *planmodel.FragmentStats, active []planmodel.Endpoint) ([]planmodel.Endpoint, error) {
	if stats.Distribution != planmodel.AffinityHard {
		return active, nil
	}

	if len(stats.PinnedEndpoints) == 0 {
		var fromAffinity []planmodel.Endpoint
		for _, e := range active {
			if w, ok := stats.Affinity[e]; ok && w.IsPositive() {
				fromAffinity = append(fromAffinity, e)
			}
		}
		if len(fromAffinity) == 0 {
			return active, nil
		}
		return fromAffinity, nil
	}

	activeSet := make(map[planmodel.Endpoint]bool, len(active))
	for _, e := range active {
		activeSet[e] = true
	}

	seen := make(map[planmodel.Endpoint]bool, len(stats.PinnedEndpoints))
	var pinned []planmodel.Endpoint
	for _, e := range stats.PinnedEndpoints {
		if !activeSet[e] {
			return nil, perrors.NewPlanSetupError(
				perrors.CodeUnavailablePinnedEndpoint,
				"HARD-affinity endpoint "+e.String()+" is not active")
		}
		if !seen[e] {
			seen[e] = true
			pinned = append(pinned, e)
		}
	}
	return pinned, nil
}
