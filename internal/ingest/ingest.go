// Package ingest walks a distributed physical plan tree and populates a
// PlanningSet, one Wrapper per reachable Fragment (spec 4.1).
package ingest

import (
	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// visitState tracks a fragment's position in the current traversal so a
// fragment reached again while its own walk is still in progress (a
// cycle through receiving exchanges) can be rejected (spec 4.1).
type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// BuildPlanningSet walks root depth-first through its receiving exchange
// pairs (toward the sending fragments), creating one Wrapper per Fragment
// on first encounter.
// Iteration order of the returned PlanningSet is the order of first
// encounter, as required by spec 4.1.
func BuildPlanningSet(root *planmodel.Fragment) (*planmodel.PlanningSet, error) {
	set := planmodel.NewPlanningSet()
	state := make(map[*planmodel.Fragment]visitState)

	var walk func(f *planmodel.Fragment) error
	walk = func(f *planmodel.Fragment) error {
		switch state[f] {
		case inProgress:
			return perrors.NewPlanSetupErrorForFragment(
				perrors.CodeCycle, "fragment revisited while still in progress", f.MajorID)
		case done:
			return nil
		}
		state[f] = inProgress
		set.GetOrCreate(f)

		for _, rx := range f.ReceivingExchanges {
			if rx.Neighbor == nil {
				continue
			}
			if err := walk(rx.Neighbor); err != nil {
				return err
			}
		}
		state[f] = done
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return set, nil
}
