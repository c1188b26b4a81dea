package planmodel

import "github.com/shopspring/decimal"

// FragmentStats is the result of walking a fragment's operator subtree once
// (spec 4.3). Cost and affinity weights use decimal.Decimal rather than
// float64 so that width and assignment arithmetic reproduces bit-for-bit
// across platforms, which the determinism property (P6) requires.
type FragmentStats struct {
	// Cost is the summed leaf-operator cost, used to derive a cost-driven
	// width proportional to cost / sliceTarget.
	Cost decimal.Decimal
	// MaxWidth is the minimum across operators of their declared max
	// parallel width; MaxWidthSet reports whether any operator declared one.
	MaxWidth    int
	MaxWidthSet bool
	// MinWidth is the maximum across operators of their declared min
	// parallel width.
	MinWidth int
	// Affinity maps an active endpoint to its summed locality weight.
	Affinity map[Endpoint]decimal.Decimal
	// Distribution is the strongest distribution-affinity tag across the
	// subtree's operators (spec 4.3).
	Distribution DistributionAffinity
	// FixedWidthFromSender, if set, pins the width to SenderMajorID's
	// assigned width (spec scenario 4).
	FixedWidthFromSender bool
	SenderMajorID        int32
	// PinnedEndpoints is the raw, unfiltered HARD-affinity target
	// endpoint set declared by this fragment's exchanges (spec 3, 4.4.2).
	// Unlike Affinity, entries here are not dropped when inactive —
	// assignment must fail loudly instead (scenario 6).
	PinnedEndpoints []Endpoint
}

// NewFragmentStats returns a zero-valued FragmentStats ready for
// accumulation.
func NewFragmentStats() *FragmentStats {
	return &FragmentStats{
		Cost:     decimal.Zero,
		Affinity: make(map[Endpoint]decimal.Decimal),
	}
}

// AddCost accumulates a leaf operator's cost contribution.
func (s *FragmentStats) AddCost(cost decimal.Decimal) {
	s.Cost = s.Cost.Add(cost)
}

// ObserveMaxWidth folds in an operator's declared max-width hint, keeping
// the minimum across all operators that declare one.
func (s *FragmentStats) ObserveMaxWidth(w int) {
	if !s.MaxWidthSet || w < s.MaxWidth {
		s.MaxWidth = w
		s.MaxWidthSet = true
	}
}

// ObserveMinWidth folds in an operator's declared min-width, keeping the
// maximum across all operators.
func (s *FragmentStats) ObserveMinWidth(w int) {
	if w > s.MinWidth {
		s.MinWidth = w
	}
}

// AddAffinity accumulates a locality weight for an endpoint.
func (s *FragmentStats) AddAffinity(e Endpoint, weight decimal.Decimal) {
	s.Affinity[e] = s.Affinity[e].Add(weight)
}

// ObserveDistribution folds in an operator's distribution-affinity tag,
// keeping the strongest seen so far.
func (s *FragmentStats) ObserveDistribution(d DistributionAffinity) {
	s.Distribution = Strongest(s.Distribution, d)
}
