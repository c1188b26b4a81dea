package parallelizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquery/parallelizer/internal/depgraph"
	"github.com/distquery/parallelizer/internal/endpointmap"
	"github.com/distquery/parallelizer/internal/ingest"
	"github.com/distquery/parallelizer/internal/planmodel"
	"github.com/distquery/parallelizer/internal/stats"
	"github.com/distquery/parallelizer/internal/testutil"
)

func preparedSet(t *testing.T, root *planmodel.Fragment, active []planmodel.Endpoint) *planmodel.PlanningSet {
	t.Helper()
	set, err := ingest.BuildPlanningSet(root)
	require.NoError(t, err)

	nodeMap := endpointmap.New(active)
	for _, w := range set.Wrappers() {
		w.Stats = stats.Collect(w.Fragment, nodeMap)
		w.State = planmodel.StateStatsCollected
	}

	_, err = depgraph.Build(set)
	require.NoError(t, err)
	return set
}

func TestParallelizer_Run_RootWidthAlwaysOne(t *testing.T) {
	active := []planmodel.Endpoint{{Host: "a", Port: 1}, {Host: "b", Port: 2}}
	root := testutil.ScanLeafPlan(100, map[planmodel.Endpoint]float64{active[0]: 1})
	set := preparedSet(t, root, active)

	pz := New(active, Params{SliceTarget: 25, MaxGlobalWidth: 1000}, nil, nil)
	require.NoError(t, pz.Run(set))

	rootWrapper := set.Root()
	require.NotNil(t, rootWrapper)
	assert.Equal(t, 1, rootWrapper.Width)
	assert.Equal(t, planmodel.StateAssigned, rootWrapper.State)
}

func TestParallelizer_Run_LeafWidthFromCost(t *testing.T) {
	active := []planmodel.Endpoint{{Host: "a", Port: 1}, {Host: "b", Port: 2}}
	root := testutil.ScanLeafPlan(100, nil)
	set := preparedSet(t, root, active)

	pz := New(active, Params{SliceTarget: 25, MaxGlobalWidth: 1000}, nil, nil)
	require.NoError(t, pz.Run(set))

	leafWrapper, ok := set.Lookup(findFragment(set, 1))
	require.True(t, ok)
	assert.Equal(t, 4, leafWrapper.Width)
	assert.Len(t, leafWrapper.AssignedEndpoints, 4)
}

func TestParallelizer_Run_FixedWidthFromSenderOverride(t *testing.T) {
	active := []planmodel.Endpoint{{Host: "a", Port: 1}, {Host: "b", Port: 2}}
	root, mid, leaf := testutil.ThreeHopChainPlan(100)

	set := preparedSet(t, root, active)
	pz := New(active, Params{SliceTarget: 25, MaxGlobalWidth: 1000}, nil, nil)
	require.NoError(t, pz.Run(set))

	leafWrapper, _ := set.Lookup(leaf)
	midWrapper, _ := set.Lookup(mid)
	assert.Equal(t, leafWrapper.Width, midWrapper.Width)
}

func TestParallelizer_Run_ObserverHooksFire(t *testing.T) {
	active := []planmodel.Endpoint{{Host: "a", Port: 1}}
	root := testutil.ScanLeafPlan(10, nil)
	set := preparedSet(t, root, active)

	obs := &recordingObserver{}
	pz := New(active, Params{SliceTarget: 10, MaxGlobalWidth: 1000}, nil, obs)
	require.NoError(t, pz.Run(set))

	assert.True(t, obs.started)
	assert.True(t, obs.parallelized)
}

type recordingObserver struct {
	started      bool
	parallelized bool
}

func (o *recordingObserver) PlanParallelStart()                          { o.started = true }
func (o *recordingObserver) PlanParallelized(*planmodel.PlanningSet)      { o.parallelized = true }
func (o *recordingObserver) PlanAssignmentTime(int64)                    {}
func (o *recordingObserver) PlanGenerationTime(int64)                    {}
func (o *recordingObserver) PlansDistributionComplete(planmodel.WorkUnit) {}

func findFragment(set *planmodel.PlanningSet, majorID int32) *planmodel.Fragment {
	for _, w := range set.Wrappers() {
		if w.Fragment.MajorID == majorID {
			return w.Fragment
		}
	}
	return nil
}
