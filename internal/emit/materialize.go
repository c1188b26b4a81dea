package emit

import "github.com/distquery/parallelizer/internal/planmodel"

// materialize produces a tree-to-tree rewrite of op for minor fragment m,
// substituting split into every scan operator's AssignedSplit and, for a
// partitioned Sender, stamping the receiver-minor subset this instance
// routes to (spec 4.5 step 2, spec 9's tagged-variant walk idiom).
// receiverWidths maps a major fragment id to its decided width, needed to
// compute a Sender's partitioned target subset; it may be nil when no
// Sender in the tree is partitioned. Receiver operators carry no
// per-minor shape change of their own — their sender-subset is resolved
// separately, during collector extraction, from m and their own
// fragment's width.
func materialize(op *planmodel.Operator, m int, receiverWidths map[int32]int, split planmodel.SplitSet) *planmodel.Operator {
	if op == nil {
		return nil
	}

	out := &planmodel.Operator{Kind: op.Kind}

	switch op.Kind {
	case planmodel.OperatorScan:
		scan := *op.Scan
		scan.AssignedSplit = split
		out.Scan = &scan
	case planmodel.OperatorReceiver:
		rx := *op.Receiver
		out.Receiver = &rx
	case planmodel.OperatorSender:
		tx := *op.Sender
		if tx.Partitioned {
			tx.TargetMinorFragments = partitionTargets(m, receiverWidths[tx.OppositeMajorID])
		}
		out.Sender = &tx
	}

	if len(op.Children) > 0 {
		out.Children = make([]*planmodel.Operator, len(op.Children))
		for i, child := range op.Children {
			out.Children[i] = materialize(child, m, receiverWidths, split)
		}
	}

	return out
}

// partitionTargets computes the receiver-minor subset sender minor m
// routes to under a simple hash-mod partition, matching the mirrored
// mod-based filter collectors.go applies on the receiving side. A
// non-positive receiverWidth (opposite fragment not yet sized, or not
// present in the map) yields no targets.
func partitionTargets(m, receiverWidth int) []int32 {
	if receiverWidth <= 0 {
		return nil
	}
	return []int32{int32(m % receiverWidth)}
}
