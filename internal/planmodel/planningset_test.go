package planmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanningSet_GetOrCreate_StableIDAndOrder(t *testing.T) {
	set := NewPlanningSet()
	root := &Fragment{MajorID: 0}
	leaf := &Fragment{MajorID: 1}

	w1 := set.GetOrCreate(root)
	w2 := set.GetOrCreate(leaf)
	w1again := set.GetOrCreate(root)

	assert.Same(t, w1, w1again)
	assert.Equal(t, 0, w1.ID)
	assert.Equal(t, 1, w2.ID)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []*Wrapper{w1, w2}, set.Wrappers())
}

func TestPlanningSet_Root(t *testing.T) {
	set := NewPlanningSet()
	leaf := &Fragment{MajorID: 1, SendingExchange: &ExchangePair{}}
	root := &Fragment{MajorID: 0}

	set.GetOrCreate(leaf)
	rootWrapper := set.GetOrCreate(root)

	require.NotNil(t, set.Root())
	assert.Same(t, rootWrapper, set.Root())
}

func TestPlanningSet_Lookup_Miss(t *testing.T) {
	set := NewPlanningSet()
	_, ok := set.Lookup(&Fragment{MajorID: 0})
	assert.False(t, ok)
}

func TestFragment_IsRootIsLeaf(t *testing.T) {
	root := &Fragment{MajorID: 0}
	assert.True(t, root.IsRoot())
	assert.True(t, root.IsLeaf())

	withReceiver := &Fragment{
		MajorID:            0,
		ReceivingExchanges: []*ExchangePair{{}},
	}
	assert.False(t, withReceiver.IsLeaf())

	nonRoot := &Fragment{MajorID: 1, SendingExchange: &ExchangePair{}}
	assert.False(t, nonRoot.IsRoot())
}
