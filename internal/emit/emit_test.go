package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

func assignedWrapper(fragment *planmodel.Fragment, width int, endpoints []planmodel.Endpoint) *planmodel.Wrapper {
	w := planmodel.NewWrapper(0, fragment)
	w.Width = width
	w.AssignedEndpoints = endpoints
	w.State = planmodel.StateAssigned
	return w
}

func TestRun_EmitsOneFragmentPerMinorID(t *testing.T) {
	leaf := &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: 1}},
			},
		},
		// A sending exchange keeps this width-2 leaf from being the query root.
		SendingExchange: &planmodel.ExchangePair{},
	}
	e1 := planmodel.Endpoint{Host: "a", Port: 1}
	e2 := planmodel.Endpoint{Host: "b", Port: 2}

	set := planmodel.NewPlanningSet()
	w := set.GetOrCreate(leaf)
	w.Width = 2
	w.AssignedEndpoints = []planmodel.Endpoint{e1, e2}
	w.State = planmodel.StateAssigned

	units, err := Run(set, Params{Codec: planmodel.CodecNone})
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, int32(0), units[0].Handle.MinorID)
	assert.Equal(t, e1, units[0].AssignedEndpoint)
	assert.Equal(t, int32(1), units[1].Handle.MinorID)
	assert.Equal(t, e2, units[1].AssignedEndpoint)
	assert.True(t, units[0].Leaf)
}

func TestRun_ScanAffinityMapMarshalsWithoutError(t *testing.T) {
	e1 := planmodel.Endpoint{Host: "a", Port: 1}
	leaf := &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{
					Cost:     1,
					Affinity: map[planmodel.Endpoint]float64{e1: 0.75},
				}},
			},
		},
	}

	set := planmodel.NewPlanningSet()
	w := set.GetOrCreate(leaf)
	w.Width = 1
	w.AssignedEndpoints = []planmodel.Endpoint{e1}
	w.State = planmodel.StateAssigned

	units, err := Run(set, Params{Codec: planmodel.CodecNone})
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestRun_RootWidthNotOne_FailsWithForemanSetupError(t *testing.T) {
	root := &planmodel.Fragment{MajorID: 0, Root: &planmodel.Operator{Kind: planmodel.OperatorFragmentRoot}}
	set := planmodel.NewPlanningSet()
	w := set.GetOrCreate(root)
	w.Width = 2
	w.AssignedEndpoints = []planmodel.Endpoint{{}, {}}
	w.State = planmodel.StateAssigned

	_, err := Run(set, Params{})
	require.Error(t, err)

	var fse *perrors.ForemanSetupError
	require.ErrorAs(t, err, &fse)
	assert.Equal(t, perrors.CodeRootWidth, fse.Code)
}

func TestRun_MaterializedRootKindMismatch_FailsWithRootTypeMismatch(t *testing.T) {
	leaf := &planmodel.Fragment{MajorID: 1, Root: &planmodel.Operator{Kind: planmodel.OperatorGeneric}}
	set := planmodel.NewPlanningSet()
	w := set.GetOrCreate(leaf)
	w.Width = 1
	w.AssignedEndpoints = []planmodel.Endpoint{{Host: "a", Port: 1}}
	w.State = planmodel.StateAssigned

	_, err := Run(set, Params{})
	require.Error(t, err)

	code, ok := perrors.GetPlanSetupCode(err)
	require.True(t, ok)
	assert.Equal(t, perrors.CodeRootTypeMismatch, code)
}

func TestRun_CollectorsMirrorReceivers(t *testing.T) {
	sender := &planmodel.Fragment{
		MajorID: 2,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorSender, Sender: &planmodel.SenderSpec{OppositeMajorID: 1}},
			},
		},
	}
	receiverFragment := &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 2, Spooling: true}},
			},
		},
	}

	set := planmodel.NewPlanningSet()
	senderEndpoints := []planmodel.Endpoint{{Host: "s1", Port: 1}, {Host: "s2", Port: 2}}
	senderWrapper := set.GetOrCreate(sender)
	senderWrapper.Width = 2
	senderWrapper.AssignedEndpoints = senderEndpoints
	senderWrapper.State = planmodel.StateAssigned

	receiverWrapper := set.GetOrCreate(receiverFragment)
	receiverWrapper.Width = 1
	receiverWrapper.AssignedEndpoints = []planmodel.Endpoint{{Host: "r1", Port: 9}}
	receiverWrapper.State = planmodel.StateAssigned

	units, err := Run(set, Params{})
	require.NoError(t, err)

	var receiverUnit *planmodel.PlanFragment
	for i := range units {
		if units[i].Handle.MajorID == 1 {
			receiverUnit = &units[i]
		}
	}
	require.NotNil(t, receiverUnit)
	require.Len(t, receiverUnit.Collectors, 1)
	collector := receiverUnit.Collectors[0]
	assert.Equal(t, int32(2), collector.OppositeMajorID)
	assert.True(t, collector.Spooling)
	require.Len(t, collector.IncomingMinorFragments, 2)
	assert.Equal(t, senderEndpoints[0], collector.IncomingMinorFragments[0].Endpoint)
	assert.Equal(t, senderEndpoints[1], collector.IncomingMinorFragments[1].Endpoint)
}

func TestRun_PartitionedReceiver_FiltersIncomingBySenderMinorModWidth(t *testing.T) {
	sender := &planmodel.Fragment{
		MajorID: 2,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorSender, Sender: &planmodel.SenderSpec{OppositeMajorID: 1, Partitioned: true}},
			},
		},
		// Neither fragment is the query root, so both carry a sending exchange.
		SendingExchange: &planmodel.ExchangePair{},
	}
	receiverFragment := &planmodel.Fragment{
		MajorID: 1,
		Root: &planmodel.Operator{
			Kind: planmodel.OperatorFragmentRoot,
			Children: []*planmodel.Operator{
				{Kind: planmodel.OperatorReceiver, Receiver: &planmodel.ReceiverSpec{OppositeMajorID: 2, Partitioned: true}},
			},
		},
		SendingExchange: &planmodel.ExchangePair{},
	}

	set := planmodel.NewPlanningSet()
	senderEndpoints := []planmodel.Endpoint{{Host: "s0", Port: 1}, {Host: "s1", Port: 2}, {Host: "s2", Port: 3}, {Host: "s3", Port: 4}}
	senderWrapper := set.GetOrCreate(sender)
	senderWrapper.Width = 4
	senderWrapper.AssignedEndpoints = senderEndpoints
	senderWrapper.State = planmodel.StateAssigned

	receiverWrapper := set.GetOrCreate(receiverFragment)
	receiverWrapper.Width = 2
	receiverWrapper.AssignedEndpoints = []planmodel.Endpoint{{Host: "r0", Port: 9}, {Host: "r1", Port: 10}}
	receiverWrapper.State = planmodel.StateAssigned

	units, err := Run(set, Params{})
	require.NoError(t, err)

	byMinor := map[int32]planmodel.PlanFragment{}
	for _, u := range units {
		if u.Handle.MajorID == 1 {
			byMinor[u.Handle.MinorID] = u
		}
	}
	require.Len(t, byMinor, 2)

	// receiver minor 0 collects from sender minors 0 and 2 (0 % 2 == 0, 2 % 2 == 0)
	minor0 := byMinor[0].Collectors[0].IncomingMinorFragments
	require.Len(t, minor0, 2)
	assert.Equal(t, int32(0), minor0[0].MinorID)
	assert.Equal(t, int32(2), minor0[1].MinorID)

	// receiver minor 1 collects from sender minors 1 and 3 (1 % 2 == 1, 3 % 2 == 1)
	minor1 := byMinor[1].Collectors[0].IncomingMinorFragments
	require.Len(t, minor1, 2)
	assert.Equal(t, int32(1), minor1[0].MinorID)
	assert.Equal(t, int32(3), minor1[1].MinorID)
}

func TestMaterialize_StampsAssignedSplitOnEveryScan(t *testing.T) {
	op := &planmodel.Operator{
		Kind: planmodel.OperatorFragmentRoot,
		Children: []*planmodel.Operator{
			{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: 1}},
			{Kind: planmodel.OperatorScan, Scan: &planmodel.ScanSpec{Cost: 2}},
		},
	}
	split := planmodel.SplitSet{"file": "a.parquet"}

	out := materialize(op, 0, nil, split)

	for _, child := range out.Children {
		assert.Equal(t, split, child.Scan.AssignedSplit)
	}
	// original tree must be untouched by the rewrite
	for _, child := range op.Children {
		assert.Nil(t, child.Scan.AssignedSplit)
	}
}

func TestMaterialize_PartitionedSender_StampsTargetMinorFragmentsByModWidth(t *testing.T) {
	op := &planmodel.Operator{
		Kind: planmodel.OperatorFragmentRoot,
		Children: []*planmodel.Operator{
			{Kind: planmodel.OperatorSender, Sender: &planmodel.SenderSpec{OppositeMajorID: 7, Partitioned: true}},
		},
	}

	out := materialize(op, 5, map[int32]int{7: 3}, nil)

	require.Len(t, out.Children, 1)
	assert.Equal(t, []int32{2}, out.Children[0].Sender.TargetMinorFragments)
	// original tree must be untouched by the rewrite
	assert.Nil(t, op.Children[0].Sender.TargetMinorFragments)
}

func TestMaterialize_NonPartitionedSender_LeavesTargetMinorFragmentsNil(t *testing.T) {
	op := &planmodel.Operator{
		Kind: planmodel.OperatorFragmentRoot,
		Children: []*planmodel.Operator{
			{Kind: planmodel.OperatorSender, Sender: &planmodel.SenderSpec{OppositeMajorID: 7}},
		},
	}

	out := materialize(op, 5, map[int32]int{7: 3}, nil)

	assert.Nil(t, out.Children[0].Sender.TargetMinorFragments)
}
