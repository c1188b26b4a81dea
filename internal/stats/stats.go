// Package stats walks a fragment's operator subtree once to populate its
// FragmentStats: total cost, width hints, per-endpoint affinity, and the
// strongest distribution-affinity tag (spec 4.3).
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/distquery/parallelizer/internal/endpointmap"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// Collect walks fragment's operator tree and returns its FragmentStats,
// projecting any catalog-sourced affinity through nodeMap so endpoints
// absent from the active set are dropped (spec 4.3).
func Collect(fragment *planmodel.Fragment, nodeMap *endpointmap.ExecutionNodeMap) *planmodel.FragmentStats {
	s := planmodel.NewFragmentStats()
	walk(fragment.Root, s, nodeMap)

	if fragment.SendingExchange != nil && fragment.SendingExchange.Receiver != nil {
		rx := fragment.SendingExchange.Receiver
		if rx.FixedWidthFromSender {
			s.FixedWidthFromSender = true
			s.SenderMajorID = rx.OppositeMajorID
		}
	}

	collectExchangeDistribution(fragment.SendingExchange, s)
	for _, rx := range fragment.ReceivingExchanges {
		collectExchangeDistribution(rx, s)
	}

	return s
}

// collectExchangeDistribution folds an exchange's own distribution-
// affinity tag and pinned endpoint list into the fragment's stats,
// independent of any scan operator's tag (spec 3, 4.4.2).
func collectExchangeDistribution(ex *planmodel.ExchangePair, s *planmodel.FragmentStats) {
	if ex == nil {
		return
	}
	s.ObserveDistribution(ex.Distribution)
	if ex.Distribution == planmodel.AffinityHard {
		s.PinnedEndpoints = append(s.PinnedEndpoints, ex.TargetEndpoints...)
	}
}

// walk recurses over the operator tree, dispatching on Kind the way the
// spec's visitor-style walk idiom prescribes (spec 9).
func walk(op *planmodel.Operator, s *planmodel.FragmentStats, nodeMap *endpointmap.ExecutionNodeMap) {
	if op == nil {
		return
	}

	switch op.Kind {
	case planmodel.OperatorScan:
		collectScan(op.Scan, s, nodeMap)
	case planmodel.OperatorReceiver:
		if op.Receiver != nil && op.Receiver.FixedWidthFromSender {
			s.FixedWidthFromSender = true
			s.SenderMajorID = op.Receiver.OppositeMajorID
		}
	}

	for _, child := range op.Children {
		walk(child, s, nodeMap)
	}
}

// collectScan folds a scan operator's cost, width bounds, affinity, and
// distribution tag into the accumulating FragmentStats.
func collectScan(scan *planmodel.ScanSpec, s *planmodel.FragmentStats, nodeMap *endpointmap.ExecutionNodeMap) {
	if scan == nil {
		return
	}

	s.AddCost(decimal.NewFromFloat(scan.Cost))

	if scan.SplitCount > 0 {
		s.ObserveMaxWidth(scan.SplitCount)
	}
	if scan.MinWidth > 0 {
		s.ObserveMinWidth(scan.MinWidth)
	}
	s.ObserveDistribution(scan.Distribution)

	for ep, weight := range scan.Affinity {
		if nodeMap != nil && !nodeMap.IsActive(ep) {
			continue
		}
		s.AddAffinity(ep, decimal.NewFromFloat(weight))
	}
}
