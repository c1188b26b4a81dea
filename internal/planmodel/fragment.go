package planmodel

// ParallelizationDependency tags the ordering constraint an exchange places
// on its two endpoints (spec 4.2).
type ParallelizationDependency int

const (
	// DependencyNone means the exchange imposes no sizing order.
	DependencyNone ParallelizationDependency = iota
	// DependencyReceiverDependsOnSender means the sender must be sized
	// before the receiver.
	DependencyReceiverDependsOnSender
	// DependencySenderDependsOnReceiver means the receiver must be sized
	// before the sender.
	DependencySenderDependsOnReceiver
)

// String returns the human-readable dependency tag name.
func (d ParallelizationDependency) String() string {
	switch d {
	case DependencyReceiverDependsOnSender:
		return "RECEIVER_DEPENDS_ON_SENDER"
	case DependencySenderDependsOnReceiver:
		return "SENDER_DEPENDS_ON_RECEIVER"
	default:
		return "NONE"
	}
}

// DistributionAffinity is the strength of an endpoint placement preference
// (spec 4.3, GLOSSARY). Ordered NONE < SOFT < HARD so the strongest tag
// across a fragment's operators can be picked with a simple max.
type DistributionAffinity int

const (
	AffinityNone DistributionAffinity = iota
	AffinitySoft
	AffinityHard
)

// String returns the human-readable affinity tag name.
func (a DistributionAffinity) String() string {
	switch a {
	case AffinitySoft:
		return "SOFT"
	case AffinityHard:
		return "HARD"
	default:
		return "NONE"
	}
}

// Strongest returns the stronger of two affinity tags under the NONE <
// SOFT < HARD order (spec 4.3).
func Strongest(a, b DistributionAffinity) DistributionAffinity {
	if a > b {
		return a
	}
	return b
}

// Operator is a single node of a fragment's physical operator tree. Real
// operator kinds (scan, receiver, sender, project, ...) are modeled as
// tagged variants dispatched on Kind, following the visitor-style walk
// called out in spec 4.3/4.5/9.
type Operator struct {
	Kind     OperatorKind
	Children []*Operator

	// Receiver-specific fields, populated when Kind == OperatorReceiver.
	Receiver *ReceiverSpec

	// Sender-specific fields, populated when Kind == OperatorSender.
	Sender *SenderSpec

	// Scan-specific fields, populated when Kind == OperatorScan.
	Scan *ScanSpec
}

// OperatorKind discriminates the tagged-variant Operator.
type OperatorKind int

const (
	OperatorGeneric OperatorKind = iota
	OperatorFragmentRoot
	OperatorReceiver
	OperatorSender
	OperatorScan
)

// ReceiverSpec carries the per-receiver metadata the stats collector and
// the work-unit emitter need (spec 4.3, 4.5, I8).
type ReceiverSpec struct {
	// OppositeMajorID is the major fragment id of the sender side.
	OppositeMajorID int32
	Spooling        bool
	SupportsOutOfOrder bool
	// FixedWidthFromSender, if true, pins this receiver's fragment width
	// to the sender fragment's width (spec scenario 4).
	FixedWidthFromSender bool
	// Partitioned marks a hash-partitioned exchange: each receiver minor
	// collects from only the sender minors it hashes to (spec 4.5 step
	// 2's "receivers select sender-subset"), instead of the broadcast
	// default where every receiver minor collects from every sender
	// minor.
	Partitioned bool
}

// SenderSpec carries the per-sender metadata needed to materialize a
// minor fragment's outgoing receiver subset.
type SenderSpec struct {
	OppositeMajorID int32
	// Partitioned marks a hash-partitioned exchange: each sender minor
	// targets only the receiver minors it hashes to (spec 4.5 step 2's
	// "senders select receiver-subset"), instead of targeting every
	// receiver minor.
	Partitioned bool
	// TargetMinorFragments is populated only on a materialized copy of
	// this sender (spec 4.5 step 2): the receiver-side minor ids this
	// minor instance routes to. Empty/nil when Partitioned is false,
	// meaning "every receiver minor".
	TargetMinorFragments []int32 `json:",omitempty"`
}

// ScanSpec carries scan-driven width bounds and the opaque split
// assignments consumed during materialization.
type ScanSpec struct {
	// SplitCount bounds the max parallel width this scan can support.
	SplitCount int
	// MinWidth is the hard minimum width this scan can run at.
	MinWidth int
	// Affinity maps candidate endpoints to a locality weight; endpoints
	// absent from the active set are dropped during stats collection.
	Affinity map[Endpoint]float64
	// Distribution is the strength of this scan's placement preference.
	Distribution DistributionAffinity
	// Cost is this scan's contribution to the fragment's total cost.
	Cost float64
	// AssignedSplit is populated only on a materialized copy of this scan
	// (spec 4.5 step 2): the opaque split-set this minor fragment reads.
	AssignedSplit SplitSet `json:",omitempty"`
}

// ExchangePair is a directed edge (exchange, neighbor fragment) attached
// to a Fragment (spec 3).
type ExchangePair struct {
	// Neighbor is the fragment on the other side of the exchange.
	Neighbor *Fragment
	// Dependency is the parallelization dependency tag of this exchange.
	Dependency ParallelizationDependency
	// TargetEndpoints, when non-empty, pins this exchange's receiver side
	// to a fixed endpoint set (used together with HARD affinity). Unlike
	// scan affinity, this list is authoritative and unfiltered: it is
	// checked directly against the active endpoint set, and a HARD pin
	// naming an inactive endpoint is an error rather than a silent drop
	// (spec 4.4.2, scenario 6).
	TargetEndpoints []Endpoint
	// Distribution is this exchange's own distribution-affinity strength,
	// independent of any individual scan operator's tag.
	Distribution DistributionAffinity
	// Receiver mirrors the receiver operator's metadata for this edge,
	// used to build Collector records without re-walking the tree.
	Receiver *ReceiverSpec
}

// Fragment is a node of the input distributed physical plan tree (spec 3).
type Fragment struct {
	// MajorID is the stable plan-level identity of this fragment.
	MajorID int32
	// Root is the root physical operator of this fragment's subtree.
	Root *Operator
	// SendingExchange is nil iff this fragment is the query root.
	SendingExchange *ExchangePair
	// ReceivingExchanges is empty iff this fragment is a leaf (I7).
	ReceivingExchanges []*ExchangePair
}

// IsRoot reports whether this fragment has no sending exchange, i.e. it is
// the query root (spec 3).
func (f *Fragment) IsRoot() bool {
	return f.SendingExchange == nil
}

// IsLeaf reports whether this fragment has no receiving exchanges (I7).
func (f *Fragment) IsLeaf() bool {
	return len(f.ReceivingExchanges) == 0
}
