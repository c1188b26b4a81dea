package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

func buildSet(root, leaf *planmodel.Fragment) *planmodel.PlanningSet {
	set := planmodel.NewPlanningSet()
	set.GetOrCreate(root)
	set.GetOrCreate(leaf)
	return set
}

func TestBuild_ReceiverDependsOnSender(t *testing.T) {
	root := &planmodel.Fragment{MajorID: 0}
	leaf := &planmodel.Fragment{MajorID: 1}
	leaf.SendingExchange = &planmodel.ExchangePair{
		Neighbor:   root,
		Dependency: planmodel.DependencyReceiverDependsOnSender,
	}

	set := buildSet(root, leaf)
	roots, err := Build(set)
	require.NoError(t, err)

	rootWrapper, _ := set.Lookup(root)
	leafWrapper, _ := set.Lookup(leaf)

	assert.Contains(t, rootWrapper.Dependencies, leafWrapper.ID)
	assert.Equal(t, []int{rootWrapper.ID}, roots)
}

func TestBuild_SenderDependsOnReceiver(t *testing.T) {
	root := &planmodel.Fragment{MajorID: 0}
	leaf := &planmodel.Fragment{MajorID: 1}
	leaf.SendingExchange = &planmodel.ExchangePair{
		Neighbor:   root,
		Dependency: planmodel.DependencySenderDependsOnReceiver,
	}

	set := buildSet(root, leaf)
	_, err := Build(set)
	require.NoError(t, err)

	rootWrapper, _ := set.Lookup(root)
	leafWrapper, _ := set.Lookup(leaf)

	assert.Contains(t, leafWrapper.Dependencies, rootWrapper.ID)
}

func TestBuild_NoDependencyIgnored(t *testing.T) {
	root := &planmodel.Fragment{MajorID: 0}
	leaf := &planmodel.Fragment{MajorID: 1}
	leaf.SendingExchange = &planmodel.ExchangePair{Neighbor: root, Dependency: planmodel.DependencyNone}

	set := buildSet(root, leaf)
	roots, err := Build(set)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestBuild_CycleDetected(t *testing.T) {
	a := &planmodel.Fragment{MajorID: 0}
	b := &planmodel.Fragment{MajorID: 1}
	a.SendingExchange = &planmodel.ExchangePair{Neighbor: b, Dependency: planmodel.DependencyReceiverDependsOnSender}
	b.SendingExchange = &planmodel.ExchangePair{Neighbor: a, Dependency: planmodel.DependencyReceiverDependsOnSender}

	set := buildSet(a, b)
	_, err := Build(set)
	require.Error(t, err)

	code, ok := perrors.GetPlanSetupCode(err)
	assert.True(t, ok)
	assert.Equal(t, perrors.CodeCycle, code)
}

func TestBuild_UnknownNeighborIgnored(t *testing.T) {
	root := &planmodel.Fragment{MajorID: 0}
	stray := &planmodel.Fragment{MajorID: 99}
	root.SendingExchange = &planmodel.ExchangePair{Neighbor: stray, Dependency: planmodel.DependencyReceiverDependsOnSender}

	set := planmodel.NewPlanningSet()
	set.GetOrCreate(root)

	roots, err := Build(set)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}
