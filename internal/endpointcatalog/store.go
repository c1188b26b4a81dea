package endpointcatalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// Store is the catalog's read/write interface, used to load the active
// endpoint set and per-entity affinity weights ahead of a parallelization
// call, and to seed them in tests.
type Store interface {
	ActiveEndpoints(ctx context.Context) (*planmodel.EndpointList, error)
	AffinityFor(ctx context.Context, entityKey string) (map[planmodel.Endpoint]float64, error)
	UpsertEndpoint(ctx context.Context, e planmodel.Endpoint, active bool) error
	SetAffinity(ctx context.Context, entityKey string, e planmodel.Endpoint, weight float64) error
}

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ActiveEndpoints returns every endpoint currently flagged active, in
// ascending (host, port, fabric_tag) order — a stable order the caller
// must still pass through its own chosen active-endpoint iteration order
// before invoking the parallelizer (spec 1, 4.6: order is observable).
func (s *GormStore) ActiveEndpoints(ctx context.Context) (*planmodel.EndpointList, error) {
	var rows []EndpointRecord
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("host, port, fabric_tag").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("endpointcatalog: failed to query active endpoints: %w", err)
	}

	endpoints := make([]planmodel.Endpoint, len(rows))
	for i, r := range rows {
		endpoints[i] = r.ToEndpoint()
	}
	return planmodel.NewEndpointList(endpoints), nil
}

// AffinityFor returns the raw (possibly stale, possibly referencing
// inactive endpoints) affinity weights for entityKey, for the stats
// collector to project through an ExecutionNodeMap (spec 4.3, 4.6).
func (s *GormStore) AffinityFor(ctx context.Context, entityKey string) (map[planmodel.Endpoint]float64, error) {
	var rows []AffinityRecord
	err := s.db.WithContext(ctx).Where("entity_key = ?", entityKey).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("endpointcatalog: failed to query affinity for %q: %w", entityKey, err)
	}

	out := make(map[planmodel.Endpoint]float64, len(rows))
	for _, r := range rows {
		out[r.ToEndpoint()] += r.Weight
	}
	return out, nil
}

// UpsertEndpoint inserts or updates an endpoint's active flag.
func (s *GormStore) UpsertEndpoint(ctx context.Context, e planmodel.Endpoint, active bool) error {
	rec := EndpointRecord{Host: e.Host, Port: e.Port, FabricTag: e.FabricTag, Active: active}
	err := s.db.WithContext(ctx).
		Where("host = ? AND port = ? AND fabric_tag = ?", e.Host, e.Port, e.FabricTag).
		Assign(map[string]interface{}{"active": active}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("endpointcatalog: failed to upsert endpoint %s: %w", e.String(), err)
	}
	return nil
}

// SetAffinity records a single entity/endpoint affinity weight, replacing
// any prior weight for the same (entityKey, endpoint) pair.
func (s *GormStore) SetAffinity(ctx context.Context, entityKey string, e planmodel.Endpoint, weight float64) error {
	err := s.db.WithContext(ctx).
		Where("entity_key = ? AND host = ? AND port = ? AND fabric_tag = ?", entityKey, e.Host, e.Port, e.FabricTag).
		Delete(&AffinityRecord{}).Error
	if err != nil {
		return fmt.Errorf("endpointcatalog: failed to clear affinity for %q/%s: %w", entityKey, e.String(), err)
	}

	rec := AffinityRecord{EntityKey: entityKey, Host: e.Host, Port: e.Port, FabricTag: e.FabricTag, Weight: weight}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("endpointcatalog: failed to set affinity for %q/%s: %w", entityKey, e.String(), err)
	}
	return nil
}
