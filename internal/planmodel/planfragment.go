package planmodel

// Handle identifies a single minor fragment instance (spec 3).
type Handle struct {
	QueryID [16]byte
	MajorID int32
	MinorID int32
}

// IncomingMinorFragment names one (endpoint, minorId) pair a Collector
// expects data from (spec 4.5 step 4).
type IncomingMinorFragment struct {
	Endpoint Endpoint
	MinorID  int32
}

// Collector is a per-receiver descriptor carried on an emitted minor
// fragment (spec 3, I8).
type Collector struct {
	OppositeMajorID    int32
	Spooling           bool
	SupportsOutOfOrder bool
	IncomingMinorFragments []IncomingMinorFragment
}

// Codec identifies the wire compression applied to fragment/option bytes
// (spec 6).
type Codec int

const (
	CodecNone Codec = iota
	CodecSnappy
)

// String returns the wire-level codec tag name.
func (c Codec) String() string {
	if c == CodecSnappy {
		return "SNAPPY"
	}
	return "NONE"
}

// PlanFragment is the emitted output record for one minor fragment
// instance (spec 3, 4.5).
type PlanFragment struct {
	Handle           Handle
	Foreman          Endpoint
	AssignedEndpoint Endpoint
	MemInitial       int64
	MemMax           int64
	FragmentBytes    []byte
	OptionsBytes     []byte
	Credentials      []byte
	Collectors       []Collector
	Leaf             bool
	Priority         int32
	Codec            Codec
}

// WorkUnit is the full, ordered set of PlanFragment records emitted for a
// single query, the payload of the plansDistributionComplete observer hook
// (spec 6, 9).
type WorkUnit []PlanFragment
