// Package rpcstub is a minimal, standalone gRPC-shaped seam toward a real
// cluster; no other package in this module calls it. RPC transport, session, and credential
// plumbing are out of scope for this subsystem (spec 1) and are supplied
// by the surrounding server, referenced here only by interface. The
// health-check client is the one piece of that transport this package
// actually dials, used to confirm a catalog-reported endpoint answers
// before it is trusted as "active".
package rpcstub

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// Prober confirms whether an endpoint is reachable before the caller
// includes it in the active endpoint set handed to the parallelizer.
type Prober interface {
	Probe(ctx context.Context, e planmodel.Endpoint) (bool, error)
}

// HealthProber probes an endpoint's standard gRPC health-checking service.
type HealthProber struct {
	DialTimeout time.Duration
}

// NewHealthProber creates a HealthProber with the given per-dial timeout.
// A non-positive timeout defaults to 2 seconds.
func NewHealthProber(dialTimeout time.Duration) *HealthProber {
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	return &HealthProber{DialTimeout: dialTimeout}
}

// Probe dials e and issues a single grpc.health.v1.Health/Check RPC,
// reporting true only if the server reports SERVING.
func (p *HealthProber) Probe(ctx context.Context, e planmodel.Endpoint) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.DialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		fmt.Sprintf("%s:%d", e.Host, e.Port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return false, fmt.Errorf("rpcstub: failed to dial %s: %w", e.String(), err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return false, fmt.Errorf("rpcstub: health check failed for %s: %w", e.String(), err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// StaticProber reports a fixed reachability for a known set of endpoints,
// used in tests in place of a real network probe.
type StaticProber struct {
	Reachable map[planmodel.Endpoint]bool
}

// Probe implements Prober.
func (p *StaticProber) Probe(_ context.Context, e planmodel.Endpoint) (bool, error) {
	return p.Reachable[e], nil
}
