// Package testutil provides shared plan fixture builders for tests.
package testutil

import "github.com/distquery/parallelizer/internal/planmodel"

// ScanLeafPlan builds a two-fragment plan: a FragmentRoot with a receiver,
// fed by a single leaf fragment whose sender wraps a scan. This is the
// minimal shape the parallelizer tests size and assign against; its leaf
// is rooted in a Sender rather than a FragmentRoot, so it does not pass
// emit.Run (FullPipelinePlan covers that).
func ScanLeafPlan(cost float64, affinity map[planmodel.Endpoint]float64) *planmodel.Fragment {
	leaf := &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind:   planmodel.OperatorSender,
			Sender: &planmodel.SenderSpec{OppositeMajorID: 0},
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: cost, Affinity: affinity}},
			},
		},
	}
	root := &planmodel.Fragment{
		MajorID: 0,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 1}},
			},
		},
		ReceivingExchanges: []*planmodel.ExchangePair{
			{Neighbor: leaf, Dependency: planmodel.DependencyReceiverDependsOnSender},
		},
	}
	leaf.SendingExchange = &planmodel.ExchangePair{Neighbor: root, Dependency: planmodel.DependencyReceiverDependsOnSender}
	return root
}

// ThreeHopChainPlan builds root <- mid <- leaf, with mid's receiver marked
// FixedWidthFromSender so it copies leaf's width once leaf has been sized
// (spec scenario 4: fixed-width-from-sender propagation).
func ThreeHopChainPlan(leafCost float64) (root, mid, leaf *planmodel.Fragment) {
	leaf = &planmodel.Fragment{
		MajorID: 2,
		Root: &planmodel.Operator{
			Kind:   planmodel.OperatorSender,
			Sender: &planmodel.SenderSpec{OppositeMajorID: 1},
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: leafCost}},
			},
		},
	}
	mid = &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorGeneric,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 2, FixedWidthFromSender: true}},
			},
		},
		ReceivingExchanges: []*planmodel.ExchangePair{{Neighbor: leaf, Dependency: planmodel.DependencyReceiverDependsOnSender}},
	}
	root = &planmodel.Fragment{
		MajorID: 0,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 1}},
			},
		},
		ReceivingExchanges: []*planmodel.ExchangePair{{Neighbor: mid, Dependency: planmodel.DependencyReceiverDependsOnSender}},
	}
	// leaf is the sender side of the leaf/mid exchange: mid (the receiver)
	// must be sized after leaf so mid's fixed-width-from-sender override
	// has a non-zero width to copy.
	leaf.SendingExchange = &planmodel.ExchangePair{Neighbor: mid, Dependency: planmodel.DependencyReceiverDependsOnSender}
	mid.SendingExchange = &planmodel.ExchangePair{Neighbor: root, Dependency: planmodel.DependencyReceiverDependsOnSender}
	return root, mid, leaf
}

// FullPipelinePlan builds a two-fragment plan shaped for the full five-
// stage pipeline (ingest through emit): unlike ScanLeafPlan, both
// fragments' operator trees are rooted in a FragmentRoot operator, which
// the work-unit emitter requires of every materialized fragment, not
// just the query root.
func FullPipelinePlan(cost float64, affinity map[planmodel.Endpoint]float64) (root, leaf *planmodel.Fragment) {
	leaf = &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorSender, Sender: &planmodel.SenderSpec{OppositeMajorID: 0}},
				{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: cost, Affinity: affinity}},
			},
		},
	}
	root = &planmodel.Fragment{
		MajorID: 0,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 1}},
			},
		},
		ReceivingExchanges: []*planmodel.ExchangePair{
			{Neighbor: leaf, Dependency: planmodel.DependencyReceiverDependsOnSender},
		},
	}
	leaf.SendingExchange = &planmodel.ExchangePair{Neighbor: root, Dependency: planmodel.DependencyReceiverDependsOnSender}
	return root, leaf
}

// Endpoints builds n distinct endpoints on host "h0".."hN-1", port 1000+i.
func Endpoints(n int) []planmodel.Endpoint {
	out := make([]planmodel.Endpoint, n)
	for i := 0; i < n; i++ {
		out[i] = planmodel.Endpoint{Host: "h" + string(rune('0'+i)), Port: int32(1000 + i)}
	}
	return out
}
