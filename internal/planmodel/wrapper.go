package planmodel

// WrapperState tracks how far a Wrapper has progressed through the
// planning pipeline (spec 3).
type WrapperState int

const (
	StateNew WrapperState = iota
	StateStatsCollected
	StateSized
	StateAssigned
)

// String returns the human-readable state name.
func (s WrapperState) String() string {
	switch s {
	case StateStatsCollected:
		return "STATS_COLLECTED"
	case StateSized:
		return "SIZED"
	case StateAssigned:
		return "ASSIGNED"
	default:
		return "NEW"
	}
}

// MemoryAllocation bounds a fragment's memory reservation.
type MemoryAllocation struct {
	Initial int64
	Max     int64
}

// Wrapper is the planner's mutable per-fragment state (spec 3). Wrappers
// are held in a PlanningSet and referenced from one another's Dependencies
// slice by id rather than by pointer cycle, per the arena/slab idiom in
// spec 9 — PlanningSet owns the slice of Wrappers and Dependencies holds
// indices into it.
type Wrapper struct {
	// ID is this wrapper's index in its owning PlanningSet.
	ID int
	// Fragment is the underlying plan fragment. Its lifetime is bounded by
	// the planning operation that built the PlanningSet.
	Fragment *Fragment

	// Dependencies holds the ids (in PlanningSet) of other wrappers that
	// must be sized before this one (spec 4.2).
	Dependencies []int

	Stats *FragmentStats

	Width int

	// AssignedEndpoints is indexed by minor-fragment id once Width is
	// frozen (I3).
	AssignedEndpoints []Endpoint

	// SplitSets is an opaque per-fragment bundle of scan-assignments, one
	// entry per minor fragment, read during materialization.
	SplitSets []SplitSet

	Initial int64
	Max     int64

	State WrapperState
}

// SplitSet is the opaque per-minor-fragment scan-assignment bundle
// referenced by spec 3; concrete scan-split selection is outside this
// subsystem's scope (spec 1), so it is modeled as an open bag of values
// keyed by scan operator identity.
type SplitSet map[string]interface{}

// NewWrapper creates a fresh, unsized Wrapper for fragment at the given id.
func NewWrapper(id int, fragment *Fragment) *Wrapper {
	return &Wrapper{
		ID:       id,
		Fragment: fragment,
		State:    StateNew,
	}
}

// IsRoot reports whether the wrapped fragment is the query root.
func (w *Wrapper) IsRoot() bool {
	return w.Fragment.IsRoot()
}

// ResetAllocation clears the memory accumulators ahead of re-materializing
// a minor fragment (spec 4.5 step 1).
func (w *Wrapper) ResetAllocation() {
	w.Initial = 0
	w.Max = 0
}
