package emit

import "github.com/distquery/parallelizer/internal/planmodel"

// extractCollectors walks the materialized tree producing one Collector
// per Receiver operator (I8), resolving each receiver's incoming minor
// fragments from the opposite (sender) major fragment's frozen
// assignment. minorID/receiverWidth identify which minor instance of the
// receiving fragment this is: for a Partitioned receiver (spec 4.5 step
// 2's "receivers select sender-subset"), only sender minors that hash to
// minorID are included; otherwise every sender minor is (the broadcast
// default, matching a non-partitioned exchange).
func extractCollectors(op *planmodel.Operator, minorID, receiverWidth int, senderAssignments map[int32][]planmodel.Endpoint) []planmodel.Collector {
	var out []planmodel.Collector
	walkCollectors(op, minorID, receiverWidth, senderAssignments, &out)
	return out
}

func walkCollectors(op *planmodel.Operator, minorID, receiverWidth int, senderAssignments map[int32][]planmodel.Endpoint, out *[]planmodel.Collector) {
	if op == nil {
		return
	}

	if op.Kind == planmodel.OperatorReceiver && op.Receiver != nil {
		rx := op.Receiver
		assigned := senderAssignments[rx.OppositeMajorID]
		incoming := make([]planmodel.IncomingMinorFragment, 0, len(assigned))
		for senderMinorID, ep := range assigned {
			if rx.Partitioned && receiverWidth > 0 && senderMinorID%receiverWidth != minorID {
				continue
			}
			incoming = append(incoming, planmodel.IncomingMinorFragment{Endpoint: ep, MinorID: int32(senderMinorID)})
		}
		*out = append(*out, planmodel.Collector{
			OppositeMajorID:        rx.OppositeMajorID,
			Spooling:               rx.Spooling,
			SupportsOutOfOrder:     rx.SupportsOutOfOrder,
			IncomingMinorFragments: incoming,
		})
	}

	for _, child := range op.Children {
		walkCollectors(child, minorID, receiverWidth, senderAssignments, out)
	}
}
