package planmodel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFragmentStats_AddCostAccumulates(t *testing.T) {
	s := NewFragmentStats()
	s.AddCost(decimal.NewFromInt(10))
	s.AddCost(decimal.NewFromInt(5))

	assert.True(t, s.Cost.Equal(decimal.NewFromInt(15)))
}

func TestFragmentStats_ObserveMaxWidth_KeepsMinimum(t *testing.T) {
	s := NewFragmentStats()
	s.ObserveMaxWidth(10)
	s.ObserveMaxWidth(4)
	s.ObserveMaxWidth(7)

	assert.True(t, s.MaxWidthSet)
	assert.Equal(t, 4, s.MaxWidth)
}

func TestFragmentStats_ObserveMinWidth_KeepsMaximum(t *testing.T) {
	s := NewFragmentStats()
	s.ObserveMinWidth(2)
	s.ObserveMinWidth(5)
	s.ObserveMinWidth(3)

	assert.Equal(t, 5, s.MinWidth)
}

func TestFragmentStats_AddAffinity_Accumulates(t *testing.T) {
	s := NewFragmentStats()
	e := Endpoint{Host: "a", Port: 1}
	s.AddAffinity(e, decimal.NewFromFloat(1.5))
	s.AddAffinity(e, decimal.NewFromFloat(2.5))

	assert.True(t, s.Affinity[e].Equal(decimal.NewFromFloat(4)))
}

func TestFragmentStats_ObserveDistribution_KeepsStrongest(t *testing.T) {
	s := NewFragmentStats()
	s.ObserveDistribution(AffinitySoft)
	s.ObserveDistribution(AffinityNone)
	assert.Equal(t, AffinitySoft, s.Distribution)

	s.ObserveDistribution(AffinityHard)
	assert.Equal(t, AffinityHard, s.Distribution)
}

func TestStrongest(t *testing.T) {
	assert.Equal(t, AffinityHard, Strongest(AffinityHard, AffinityNone))
	assert.Equal(t, AffinitySoft, Strongest(AffinityNone, AffinitySoft))
	assert.Equal(t, AffinityNone, Strongest(AffinityNone, AffinityNone))
}
