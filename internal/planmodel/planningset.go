package planmodel

// PlanningSet is the mapping Fragment -> Wrapper, iterable in insertion
// order (spec 3, 4.1). Entries are created lazily on first lookup via
// GetOrCreate; Wrapper identity within the set is the slice index, so
// dependency edges can be stored as ids rather than pointers (spec 9).
type PlanningSet struct {
	byFragment map[*Fragment]int
	wrappers   []*Wrapper
	root       *Wrapper
}

// NewPlanningSet returns an empty PlanningSet.
func NewPlanningSet() *PlanningSet {
	return &PlanningSet{
		byFragment: make(map[*Fragment]int),
	}
}

// GetOrCreate returns the Wrapper for fragment, creating one (and
// recording the order of first encounter) if this is the first lookup.
func (p *PlanningSet) GetOrCreate(fragment *Fragment) *Wrapper {
	if id, ok := p.byFragment[fragment]; ok {
		return p.wrappers[id]
	}
	id := len(p.wrappers)
	w := NewWrapper(id, fragment)
	p.byFragment[fragment] = id
	p.wrappers = append(p.wrappers, w)
	if fragment.IsRoot() {
		p.root = w
	}
	return w
}

// Lookup returns the Wrapper already created for fragment, if any.
func (p *PlanningSet) Lookup(fragment *Fragment) (*Wrapper, bool) {
	id, ok := p.byFragment[fragment]
	if !ok {
		return nil, false
	}
	return p.wrappers[id], true
}

// Wrapper returns the wrapper with the given PlanningSet-local id.
func (p *PlanningSet) Wrapper(id int) *Wrapper {
	return p.wrappers[id]
}

// Root returns the wrapper for the query root fragment, or nil if the set
// has not yet encountered it.
func (p *PlanningSet) Root() *Wrapper {
	return p.root
}

// Wrappers returns all wrappers in insertion order. The returned slice must
// not be mutated by callers.
func (p *PlanningSet) Wrappers() []*Wrapper {
	return p.wrappers
}

// Len returns the number of distinct fragments seen so far.
func (p *PlanningSet) Len() int {
	return len(p.wrappers)
}
