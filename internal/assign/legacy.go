package assign

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// LegacyCreator assigns minor fragments by cycling through endpoints
// sorted by descending affinity weight (ties broken by stable active-
// endpoint order), skipping any endpoint already at its per-node cap
// (spec 4.4.2 "Legacy").
type LegacyCreator struct{}

// Assign implements Creator.
func (LegacyCreator) Assign(width int, stats *planmodel.FragmentStats, active []planmodel.Endpoint, params Params) ([]planmodel.Endpoint, error) {
	eligible, err := eligibleEndpoints(stats, active)
	if err != nil {
		return nil, err
	}

	order := planmodel.NewEndpointList(active)
	sorted := make([]planmodel.Endpoint, len(eligible))
	copy(sorted, eligible)

	sort.SliceStable(sorted, func(i, j int) bool {
		wi := affinityOf(stats, sorted[i])
		wj := affinityOf(stats, sorted[j])
		if !wi.Equal(wj) {
			return wi.GreaterThan(wj)
		}
		return order.IndexOf(sorted[i]) < order.IndexOf(sorted[j])
	})

	perNodeCap := params.MaxWidthPerNode
	counts := make(map[planmodel.Endpoint]int, len(sorted))

	out := make([]planmodel.Endpoint, 0, width)
	cursor := 0
	for len(out) < width {
		skippedInCycle := 0
		for skippedInCycle < len(sorted) && len(out) < width {
			e := sorted[cursor%len(sorted)]
			cursor++
			if perNodeCap > 0 && counts[e] >= perNodeCap {
				skippedInCycle++
				continue
			}
			counts[e]++
			out = append(out, e)
			skippedInCycle = 0
		}
		if skippedInCycle >= len(sorted) {
			// Per-node cap exhausted for every eligible endpoint; width
			// clamping in the width package is expected to have made this
			// unreachable, but fall back to uncapped round-robin rather
			// than loop forever.
			for len(out) < width {
				out = append(out, sorted[cursor%len(sorted)])
				cursor++
			}
		}
	}

	return out, nil
}

func affinityOf(stats *planmodel.FragmentStats, e planmodel.Endpoint) decimal.Decimal {
	if w, ok := stats.Affinity[e]; ok {
		return w
	}
	return decimal.Zero
}
