package assign

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// BalancedCreator computes an affinity-weighted target count per endpoint,
// reconciles rounding so targets sum exactly to width, caps any endpoint
// above a balance-factor multiple of the mean, and redistributes the
// excess to the least-loaded endpoint (spec 4.4.2 "Balanced").
type BalancedCreator struct{}

// Assign implements Creator.
func (BalancedCreator) Assign(width int, stats *planmodel.FragmentStats, active []planmodel.Endpoint, params Params) ([]planmodel.Endpoint, error) {
	eligible, err := eligibleEndpoints(stats, active)
	if err != nil {
		return nil, err
	}
	order := planmodel.NewEndpointList(active)
	n := len(eligible)

	totalAffinity := decimal.Zero
	for _, e := range eligible {
		totalAffinity = totalAffinity.Add(affinityOf(stats, e))
	}

	affinityFactor := decimal.NewFromFloat(clamp01(params.AffinityFactor))
	uniformShare := decimal.NewFromFloat(1).Div(decimal.NewFromInt(int64(n)))

	type target struct {
		endpoint  planmodel.Endpoint
		exact     decimal.Decimal
		floor     int
		remainder decimal.Decimal
	}

	targets := make([]target, n)
	floorSum := 0
	for i, e := range eligible {
		share := uniformShare
		if totalAffinity.IsPositive() {
			affinityShare := affinityOf(stats, e).Div(totalAffinity)
			share = affinityFactor.Mul(affinityShare).Add(decimal.NewFromFloat(1).Sub(affinityFactor).Mul(uniformShare))
		}
		exact := share.Mul(decimal.NewFromInt(int64(width)))
		floorVal := int(exact.Floor().IntPart())
		targets[i] = target{endpoint: e, exact: exact, floor: floorVal, remainder: exact.Sub(exact.Floor())}
		floorSum += floorVal
	}

	counts := make(map[planmodel.Endpoint]int, n)
	for _, t := range targets {
		counts[t.endpoint] = t.floor
	}

	// Reconcile rounding: distribute (width - floorSum) extra units to the
	// endpoints with the largest fractional remainder (or remove from the
	// smallest if floorSum overshoots, which cannot happen with Floor but
	// is handled defensively).
	deficit := width - floorSum
	byRemainderDesc := append([]target(nil), targets...)
	sort.SliceStable(byRemainderDesc, func(i, j int) bool {
		if !byRemainderDesc[i].remainder.Equal(byRemainderDesc[j].remainder) {
			return byRemainderDesc[i].remainder.GreaterThan(byRemainderDesc[j].remainder)
		}
		return order.IndexOf(byRemainderDesc[i].endpoint) < order.IndexOf(byRemainderDesc[j].endpoint)
	})
	for i := 0; i < deficit; i++ {
		counts[byRemainderDesc[i%n].endpoint]++
	}
	for i := 0; i < -deficit; i++ {
		e := byRemainderDesc[n-1-(i%n)].endpoint
		if counts[e] > 0 {
			counts[e]--
		}
	}

	enforceBalanceFactor(counts, eligible, order, width, params.AssignmentCreatorBalanceFactor)
	enforcePerNodeCap(counts, eligible, order, width, params.MaxWidthPerNode)

	return expand(counts, eligible, order), nil
}

// enforceBalanceFactor caps any endpoint above ceil(mean * balanceFactor)
// and moves the excess to the least-loaded eligible endpoint.
func enforceBalanceFactor(counts map[planmodel.Endpoint]int, eligible []planmodel.Endpoint, order *planmodel.EndpointList, width int, balanceFactor float64) {
	if balanceFactor < 1 {
		balanceFactor = 1
	}
	n := len(eligible)
	if n == 0 {
		return
	}
	mean := float64(width) / float64(n)
	maxPerEndpoint := int(math.Ceil(mean * balanceFactor))
	if maxPerEndpoint < 1 {
		maxPerEndpoint = 1
	}

	for {
		over := -1
		for i, e := range eligible {
			if counts[e] > maxPerEndpoint {
				over = i
				break
			}
		}
		if over < 0 {
			break
		}
		least := leastLoaded(counts, eligible, order)
		if least == eligible[over] {
			break
		}
		counts[eligible[over]]--
		counts[least]++
	}
}

// enforcePerNodeCap caps any endpoint above maxWidthPerNode, moving the
// excess to the least-loaded eligible endpoint (spec 4.4.2).
func enforcePerNodeCap(counts map[planmodel.Endpoint]int, eligible []planmodel.Endpoint, order *planmodel.EndpointList, width, maxWidthPerNode int) {
	if maxWidthPerNode <= 0 {
		return
	}
	for {
		over := -1
		for i, e := range eligible {
			if counts[e] > maxWidthPerNode {
				over = i
				break
			}
		}
		if over < 0 {
			return
		}
		least := leastLoaded(counts, eligible, order)
		if least == eligible[over] {
			return
		}
		counts[eligible[over]]--
		counts[least]++
	}
}

func leastLoaded(counts map[planmodel.Endpoint]int, eligible []planmodel.Endpoint, order *planmodel.EndpointList) planmodel.Endpoint {
	best := eligible[0]
	for _, e := range eligible[1:] {
		if counts[e] < counts[best] || (counts[e] == counts[best] && order.IndexOf(e) < order.IndexOf(best)) {
			best = e
		}
	}
	return best
}

// expand turns a per-endpoint count map into a minor-fragment-indexed
// endpoint sequence, endpoints visited in stable active-endpoint order.
func expand(counts map[planmodel.Endpoint]int, eligible []planmodel.Endpoint, order *planmodel.EndpointList) []planmodel.Endpoint {
	sorted := make([]planmodel.Endpoint, len(eligible))
	copy(sorted, eligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order.IndexOf(sorted[i]) < order.IndexOf(sorted[j])
	})

	var out []planmodel.Endpoint
	for _, e := range sorted {
		for i := 0; i < counts[e]; i++ {
			out = append(out, e)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
