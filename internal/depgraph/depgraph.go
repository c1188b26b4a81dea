// Package depgraph converts exchange-level parallelization dependency tags
// into a Wrapper-level partial order (spec 4.2).
package depgraph

import (
	"github.com/distquery/parallelizer/internal/perrors"
	"github.com/distquery/parallelizer/internal/planmodel"
)

// Build inspects every wrapper's sending exchange and records a directed
// dependency edge between the two wrappers it connects, then detects
// cycles in the resulting graph. Returns the set of root wrapper ids (those
// that appear in nobody's dependency list).
func Build(set *planmodel.PlanningSet) ([]int, error) {
	for _, w := range set.Wrappers() {
		sx := w.Fragment.SendingExchange
		if sx == nil || sx.Neighbor == nil || sx.Dependency == planmodel.DependencyNone {
			continue
		}
		receiver, ok := set.Lookup(sx.Neighbor)
		if !ok {
			continue
		}
		switch sx.Dependency {
		case planmodel.DependencyReceiverDependsOnSender:
			// C -> R.dependencies: receiver depends on sender.
			addDependency(receiver, w)
		case planmodel.DependencySenderDependsOnReceiver:
			// R -> C.dependencies: sender depends on receiver.
			addDependency(w, receiver)
		}
	}

	if err := detectCycles(set); err != nil {
		return nil, err
	}

	return roots(set), nil
}

// addDependency records that dependency must be sized before w, without
// introducing duplicate entries.
func addDependency(w *planmodel.Wrapper, dependency *planmodel.Wrapper) {
	if w.ID == dependency.ID {
		return
	}
	for _, id := range w.Dependencies {
		if id == dependency.ID {
			return
		}
	}
	w.Dependencies = append(w.Dependencies, dependency.ID)
}

// color marks a wrapper's state during the three-color DFS cycle check.
type color int

const (
	white color = iota
	gray
	black
)

// detectCycles runs a DFS over the dependency edges looking for a back
// edge, which indicates a cycle (spec 4.2).
func detectCycles(set *planmodel.PlanningSet) error {
	colors := make([]color, set.Len())

	var visit func(id int) error
	visit = func(id int) error {
		colors[id] = gray
		w := set.Wrapper(id)
		for _, depID := range w.Dependencies {
			if depID == id {
				return perrors.NewPlanSetupErrorForFragment(
					perrors.CodeCycle, "self-dependency", w.Fragment.MajorID)
			}
			switch colors[depID] {
			case gray:
				return perrors.NewPlanSetupErrorForFragment(
					perrors.CodeCycle, "cycle in fragment dependency graph", w.Fragment.MajorID)
			case white:
				if err := visit(depID); err != nil {
					return err
				}
			}
		}
		colors[id] = black
		return nil
	}

	for _, w := range set.Wrappers() {
		if colors[w.ID] == white {
			if err := visit(w.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// roots returns the ids of wrappers that no other wrapper depends on.
func roots(set *planmodel.PlanningSet) []int {
	depended := make(map[int]bool, set.Len())
	for _, w := range set.Wrappers() {
		for _, depID := range w.Dependencies {
			depended[depID] = true
		}
	}
	var out []int
	for _, w := range set.Wrappers() {
		if !depended[w.ID] {
			out = append(out, w.ID)
		}
	}
	return out
}
