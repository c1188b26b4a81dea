// Package endpointmap provides ExecutionNodeMap, the lookup structure
// built once per query from the active endpoint collection (spec 4.6).
package endpointmap

import (
	"github.com/shopspring/decimal"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// ExecutionNodeMap answers whether an endpoint is currently active and
// projects raw affinity maps (which may reference endpoints absent from
// the active set, e.g. stale catalog metadata) onto it.
type ExecutionNodeMap struct {
	active *planmodel.EndpointList
}

// New builds an ExecutionNodeMap from the active endpoint collection,
// preserving its iteration order (spec 4.6; stable ordering is what P6's
// determinism relies on).
func New(active []planmodel.Endpoint) *ExecutionNodeMap {
	return &ExecutionNodeMap{active: planmodel.NewEndpointList(active)}
}

// IsActive reports whether e is a member of the active set.
func (m *ExecutionNodeMap) IsActive(e planmodel.Endpoint) bool {
	if m == nil {
		return false
	}
	return m.active.Contains(e)
}

// Active returns the active endpoints in stable iteration order.
func (m *ExecutionNodeMap) Active() []planmodel.Endpoint {
	if m == nil {
		return nil
	}
	return m.active.Items()
}

// Len returns the number of active endpoints.
func (m *ExecutionNodeMap) Len() int {
	if m == nil {
		return 0
	}
	return m.active.Len()
}

// Project maps a raw affinity map onto the active set, dropping any
// endpoint not currently active (spec 4.6).
func (m *ExecutionNodeMap) Project(raw map[planmodel.Endpoint]decimal.Decimal) map[planmodel.Endpoint]decimal.Decimal {
	out := make(map[planmodel.Endpoint]decimal.Decimal, len(raw))
	for ep, weight := range raw {
		if m.IsActive(ep) {
			out[ep] = weight
		}
	}
	return out
}
