// Package planmodel defines the core data structures shared by every stage
// of the distributed query parallelizer: endpoints, fragments, exchanges,
// wrappers, the planning set, and the emitted plan fragments.
package planmodel

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint is an opaque network identity (host + port + optional fabric
// tag). Endpoints are handed to the parallelizer in an ordered collection;
// that order is observable and must be preserved for deterministic
// round-robin assignment (spec P6).
type Endpoint struct {
	Host      string
	Port      int32
	FabricTag string
}

// String renders the endpoint the way logs and error messages reference it.
func (e Endpoint) String() string {
	if e.FabricTag != "" {
		return fmt.Sprintf("%s:%d[%s]", e.Host, e.Port, e.FabricTag)
	}
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Key returns a value suitable for use as a map key; Endpoint itself is
// already comparable, but Key documents the identity contract explicitly
// for callers that build endpoint-keyed maps.
func (e Endpoint) Key() Endpoint { return e }

// MarshalText renders e the same way String does, satisfying
// encoding.TextMarshaler so Endpoint can be used as a JSON map key (e.g.
// ScanSpec.Affinity) and as a plain JSON string field.
func (e Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses the "host:port" or "host:port[fabricTag]" form
// produced by MarshalText/String.
func (e *Endpoint) UnmarshalText(text []byte) error {
	s := string(text)

	fabric := ""
	if idx := strings.IndexByte(s, '['); idx >= 0 && strings.HasSuffix(s, "]") {
		fabric = s[idx+1 : len(s)-1]
		s = s[:idx]
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid endpoint port %q: %w", s, err)
	}

	e.Host = host
	e.Port = int32(port)
	e.FabricTag = fabric
	return nil
}

// EndpointList is an ordered, duplicate-free collection of endpoints. Its
// iteration order is the active-endpoint order referenced throughout the
// spec (round-robin assignment, tie-breaking, determinism).
type EndpointList struct {
	items []Endpoint
	index map[Endpoint]int
}

// NewEndpointList builds an EndpointList preserving the input order and
// dropping later duplicates.
func NewEndpointList(endpoints []Endpoint) *EndpointList {
	l := &EndpointList{
		items: make([]Endpoint, 0, len(endpoints)),
		index: make(map[Endpoint]int, len(endpoints)),
	}
	for _, e := range endpoints {
		if _, ok := l.index[e]; ok {
			continue
		}
		l.index[e] = len(l.items)
		l.items = append(l.items, e)
	}
	return l
}

// Len returns the number of distinct endpoints.
func (l *EndpointList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns the endpoints in stable iteration order. The returned slice
// must not be mutated by callers.
func (l *EndpointList) Items() []Endpoint {
	if l == nil {
		return nil
	}
	return l.items
}

// Contains reports whether e is a member of the active set.
func (l *EndpointList) Contains(e Endpoint) bool {
	if l == nil {
		return false
	}
	_, ok := l.index[e]
	return ok
}

// IndexOf returns e's position in the stable iteration order, or -1 if e is
// not active. Used to break ties deterministically (spec 4.4.2).
func (l *EndpointList) IndexOf(e Endpoint) int {
	if l == nil {
		return -1
	}
	if i, ok := l.index[e]; ok {
		return i
	}
	return -1
}
