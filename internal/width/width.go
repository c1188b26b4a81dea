// Package width implements the fragment width decision (spec 4.4.1): the
// degree of parallelism chosen for a major fragment under cost, hard
// min/max, per-node, global, and affinity constraints.
package width

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/distquery/parallelizer/internal/endpointmap"
	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// Params bundles the parallelization parameters relevant to width
// decisions (spec 6).
type Params struct {
	SliceTarget    int
	MaxWidthPerNode int
	MaxGlobalWidth int
}

// Decide computes w.Fragment's width following the ordered rules of spec
// 4.4.1, given the stats already collected for w, the node map, the
// parameters, and the width already spent by fragments sized earlier
// (for the global-ceiling check, spec I5).
func Decide(w *planmodel.Wrapper, nodeMap *endpointmap.ExecutionNodeMap, params Params, widthSpentSoFar int) (int, error) {
	if w.IsRoot() {
		return 1, nil // rule 1 / I1
	}

	stats := w.Stats
	sliceTarget := params.SliceTarget
	if sliceTarget < 1 {
		sliceTarget = 1
	}

	// rule 2: cost-driven width = ceil(cost / sliceTarget)
	costDriven := ceilDiv(stats.Cost, decimal.NewFromInt(int64(sliceTarget)))
	lo, hi := costDriven, costDriven

	// rule 3: clamp to [minWidth, maxWidth]
	if stats.MinWidth > 0 {
		lo = max(lo, stats.MinWidth)
		hi = max(hi, stats.MinWidth)
	}
	if stats.MaxWidthSet {
		hi = min(hi, stats.MaxWidth)
	}
	if lo > hi {
		lo = hi
	}
	widthVal := clampToRange(costDriven, lo, hi)

	// rule 4: clamp to <= maxWidthPerNode * |activeEndpoints|
	if params.MaxWidthPerNode > 0 && nodeMap.Len() > 0 {
		perNodeCap := params.MaxWidthPerNode * nodeMap.Len()
		widthVal = min(widthVal, perNodeCap)
	}

	// rule 5: clamp to <= maxGlobalWidth
	if params.MaxGlobalWidth > 0 {
		remaining := params.MaxGlobalWidth - widthSpentSoFar
		if remaining < 1 {
			return 0, perrors.NewPlanSetupErrorForFragment(
				perrors.CodeWidthUnsatisfiable,
				"no width remains under the global width ceiling", w.Fragment.MajorID)
		}
		widthVal = min(widthVal, remaining)
	}

	// rule 6: HARD affinity clamps to the count of eligible endpoints —
	// the exchange-pinned target set if one was declared, else the count
	// of non-zero-affinity scan endpoints.
	if stats.Distribution == planmodel.AffinityHard {
		eligible := len(stats.PinnedEndpoints)
		if eligible == 0 {
			eligible = countNonZero(stats.Affinity)
		}
		if eligible > 0 {
			widthVal = min(widthVal, eligible)
		}
	}

	// rule 7: width must be >= 1
	if widthVal < 1 {
		widthVal = 1
	}

	// Unsatisfiable: minWidth exceeds what clamping allows.
	if stats.MinWidth > 0 && widthVal < stats.MinWidth {
		return 0, perrors.NewPlanSetupErrorForFragment(
			perrors.CodeWidthUnsatisfiable,
			"clamped width interval is empty", w.Fragment.MajorID)
	}

	return widthVal, nil
}

func ceilDiv(cost decimal.Decimal, target decimal.Decimal) int {
	if target.IsZero() {
		target = decimal.NewFromInt(1)
	}
	quotient := cost.Div(target)
	ceiled := quotient.Ceil()
	v := ceiled.IntPart()
	if v < 1 {
		v = 1
	}
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	return int(v)
}

func clampToRange(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func countNonZero(affinity map[planmodel.Endpoint]decimal.Decimal) int {
	n := 0
	for _, weight := range affinity {
		if weight.IsPositive() {
			n++
		}
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
