package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/distquery/parallelizer/internal/endpointmap"
	"github.com/distquery/parallelizer/internal/planmodel"
)

func TestCollect_SumsScanCostAndWidthBounds(t *testing.T) {
	scanA := &planmodel.Operator{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: 10, SplitCount: 8, MinWidth: 2}}
	scanB := &planmodel.Operator{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: 5, SplitCount: 4, MinWidth: 3}}
	root := &planmodel.Operator{Kind: planmodel.OperatorGeneric, Children: []*planmodel.Operator{scanA, scanB}}
	fragment := &planmodel.Fragment{MajorID: 0, Root: root}

	nodeMap := endpointmap.New(nil)
	s := Collect(fragment, nodeMap)

	assert.True(t, s.Cost.Equal(decimal.NewFromInt(15)))
	assert.True(t, s.MaxWidthSet)
	assert.Equal(t, 4, s.MaxWidth) // min across operators
	assert.Equal(t, 3, s.MinWidth) // max across operators
}

func TestCollect_AffinityFilteredByActiveSet(t *testing.T) {
	active := planmodel.Endpoint{Host: "active", Port: 1}
	inactive := planmodel.Endpoint{Host: "inactive", Port: 2}

	scan := &planmodel.Operator{
		Kind: planmodel.OperatorScan,
		Scan: &planmodel.ScanSpec{
			Cost: 1,
			Affinity: map[planmodel.Endpoint]float64{
				active:   2.0,
				inactive: 5.0,
			},
		},
	}
	fragment := &planmodel.Fragment{MajorID: 0, Root: scan}

	nodeMap := endpointmap.New([]planmodel.Endpoint{active})
	s := Collect(fragment, nodeMap)

	assert.Len(t, s.Affinity, 1)
	assert.True(t, s.Affinity[active].Equal(decimal.NewFromFloat(2.0)))
}

func TestCollect_FixedWidthFromSender_FromReceiverOperator(t *testing.T) {
	receiver := &planmodel.Operator{
		Kind: planmodel.OperatorReceiver,
		Receiver: &planmodel.ReceiverSpec{
			OppositeMajorID:      7,
			FixedWidthFromSender: true,
		},
	}
	root := &planmodel.Operator{Kind: planmodel.OperatorFragmentRoot, Children: []*planmodel.Operator{receiver}}
	fragment := &planmodel.Fragment{MajorID: 0, Root: root}

	s := Collect(fragment, endpointmap.New(nil))

	assert.True(t, s.FixedWidthFromSender)
	assert.Equal(t, int32(7), s.SenderMajorID)
}

func TestCollect_DistributionFromSendingExchange(t *testing.T) {
	fragment := &planmodel.Fragment{
		MajorID: 1,
		Root:    &planmodel.Operator{Kind: planmodel.OperatorGeneric},
		SendingExchange: &planmodel.ExchangePair{
			Distribution:    planmodel.AffinityHard,
			TargetEndpoints: []planmodel.Endpoint{{Host: "pinned", Port: 1}},
		},
	}

	s := Collect(fragment, endpointmap.New(nil))

	assert.Equal(t, planmodel.AffinityHard, s.Distribution)
	assert.Equal(t, []planmodel.Endpoint{{Host: "pinned", Port: 1}}, s.PinnedEndpoints)
}

func TestCollect_NilScanAndNilOperatorsSkipped(t *testing.T) {
	fragment := &planmodel.Fragment{MajorID: 0, Root: nil}
	s := Collect(fragment, endpointmap.New(nil))
	assert.True(t, s.Cost.IsZero())
}
