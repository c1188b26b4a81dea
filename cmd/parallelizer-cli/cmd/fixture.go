package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// planFixture is the on-disk JSON shape of a demo plan: a flat list of
// fragments referencing each other by majorId, which loadPlanFixture
// resolves into the pointer-linked planmodel.Fragment tree the
// parallelizer actually consumes.
type planFixture struct {
	RootMajorID int32             `json:"rootMajorId"`
	Fragments   []fragmentFixture `json:"fragments"`
}

type fragmentFixture struct {
	MajorID            int32               `json:"majorId"`
	Root               operatorFixture     `json:"root"`
	SendingExchange    *exchangeFixture    `json:"sendingExchange,omitempty"`
	ReceivingExchanges []exchangeFixture   `json:"receivingExchanges,omitempty"`
}

type exchangeFixture struct {
	NeighborMajorID int32              `json:"neighborMajorId"`
	Dependency      string             `json:"dependency"` // NONE, RECEIVER_DEPENDS_ON_SENDER, SENDER_DEPENDS_ON_RECEIVER
	TargetEndpoints []endpointFixture  `json:"targetEndpoints,omitempty"`
	Distribution    string             `json:"distribution,omitempty"` // NONE, SOFT, HARD
	Receiver        *receiverFixture   `json:"receiver,omitempty"`
}

type operatorFixture struct {
	Kind     string             `json:"kind"` // GENERIC, FRAGMENT_ROOT, RECEIVER, SENDER, SCAN
	Children []operatorFixture  `json:"children,omitempty"`
	Receiver *receiverFixture   `json:"receiver,omitempty"`
	Sender   *senderFixture     `json:"sender,omitempty"`
	Scan     *scanFixture       `json:"scan,omitempty"`
}

type receiverFixture struct {
	OppositeMajorID      int32 `json:"oppositeMajorId"`
	Spooling             bool  `json:"spooling"`
	SupportsOutOfOrder   bool  `json:"supportsOutOfOrder"`
	FixedWidthFromSender bool  `json:"fixedWidthFromSender"`
	Partitioned          bool  `json:"partitioned"`
}

type senderFixture struct {
	OppositeMajorID int32 `json:"oppositeMajorId"`
	Partitioned     bool  `json:"partitioned"`
}

type scanFixture struct {
	SplitCount   int                `json:"splitCount"`
	MinWidth     int                `json:"minWidth"`
	Affinity     map[string]float64 `json:"affinity,omitempty"` // "host:port" -> weight
	Distribution string             `json:"distribution,omitempty"`
	Cost         float64            `json:"cost"`
}

type endpointFixture struct {
	Host      string `json:"host"`
	Port      int32  `json:"port"`
	FabricTag string `json:"fabricTag,omitempty"`
}

func (e endpointFixture) toEndpoint() planmodel.Endpoint {
	return planmodel.Endpoint{Host: e.Host, Port: e.Port, FabricTag: e.FabricTag}
}

func parseDependency(s string) planmodel.ParallelizationDependency {
	switch s {
	case "RECEIVER_DEPENDS_ON_SENDER":
		return planmodel.DependencyReceiverDependsOnSender
	case "SENDER_DEPENDS_ON_RECEIVER":
		return planmodel.DependencySenderDependsOnReceiver
	default:
		return planmodel.DependencyNone
	}
}

func parseAffinity(s string) planmodel.DistributionAffinity {
	switch s {
	case "SOFT":
		return planmodel.AffinitySoft
	case "HARD":
		return planmodel.AffinityHard
	default:
		return planmodel.AffinityNone
	}
}

func parseOperatorKind(s string) planmodel.OperatorKind {
	switch s {
	case "FRAGMENT_ROOT":
		return planmodel.OperatorFragmentRoot
	case "RECEIVER":
		return planmodel.OperatorReceiver
	case "SENDER":
		return planmodel.OperatorSender
	case "SCAN":
		return planmodel.OperatorScan
	default:
		return planmodel.OperatorGeneric
	}
}

func toReceiverSpec(r *receiverFixture) *planmodel.ReceiverSpec {
	if r == nil {
		return nil
	}
	return &planmodel.ReceiverSpec{
		OppositeMajorID:      r.OppositeMajorID,
		Spooling:             r.Spooling,
		SupportsOutOfOrder:   r.SupportsOutOfOrder,
		FixedWidthFromSender: r.FixedWidthFromSender,
		Partitioned:          r.Partitioned,
	}
}

func toSenderSpec(s *senderFixture) *planmodel.SenderSpec {
	if s == nil {
		return nil
	}
	return &planmodel.SenderSpec{OppositeMajorID: s.OppositeMajorID, Partitioned: s.Partitioned}
}

func toScanSpec(s *scanFixture) *planmodel.ScanSpec {
	if s == nil {
		return nil
	}
	affinity := make(map[planmodel.Endpoint]float64, len(s.Affinity))
	for key, weight := range s.Affinity {
		var ep planmodel.Endpoint
		if err := ep.UnmarshalText([]byte(key)); err != nil {
			continue
		}
		affinity[ep] = weight
	}
	return &planmodel.ScanSpec{
		SplitCount:   s.SplitCount,
		MinWidth:     s.MinWidth,
		Affinity:     affinity,
		Distribution: parseAffinity(s.Distribution),
		Cost:         s.Cost,
	}
}

func toOperator(o operatorFixture) *planmodel.Operator {
	op := &planmodel.Operator{
		Kind:     parseOperatorKind(o.Kind),
		Receiver: toReceiverSpec(o.Receiver),
		Sender:   toSenderSpec(o.Sender),
		Scan:     toScanSpec(o.Scan),
	}
	for _, child := range o.Children {
		op.Children = append(op.Children, toOperator(child))
	}
	return op
}

// loadPlanFixture reads and parses a JSON fixture plan from path, into the
// pointer-linked planmodel.Fragment tree rooted at rootMajorId.
func loadPlanFixture(path string) (*planmodel.Fragment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture plan: %w", err)
	}

	var fx planFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture plan: %w", err)
	}

	fragments := make(map[int32]*planmodel.Fragment, len(fx.Fragments))
	for _, ff := range fx.Fragments {
		fragments[ff.MajorID] = &planmodel.Fragment{
			MajorID: ff.MajorID,
			Root:    toOperator(ff.Root),
		}
	}

	for _, ff := range fx.Fragments {
		frag := fragments[ff.MajorID]
		if ff.SendingExchange != nil {
			frag.SendingExchange = toExchangePair(*ff.SendingExchange, fragments)
		}
		for _, rx := range ff.ReceivingExchanges {
			frag.ReceivingExchanges = append(frag.ReceivingExchanges, toExchangePair(rx, fragments))
		}
	}

	root, ok := fragments[fx.RootMajorID]
	if !ok {
		return nil, fmt.Errorf("fixture plan has no fragment with majorId %d", fx.RootMajorID)
	}
	return root, nil
}

func toExchangePair(ex exchangeFixture, fragments map[int32]*planmodel.Fragment) *planmodel.ExchangePair {
	targets := make([]planmodel.Endpoint, len(ex.TargetEndpoints))
	for i, e := range ex.TargetEndpoints {
		targets[i] = e.toEndpoint()
	}
	return &planmodel.ExchangePair{
		Neighbor:        fragments[ex.NeighborMajorID],
		Dependency:      parseDependency(ex.Dependency),
		TargetEndpoints: targets,
		Distribution:    parseAffinity(ex.Distribution),
		Receiver:        toReceiverSpec(ex.Receiver),
	}
}
