// Package endpointcatalog is a gorm-backed snapshot store of the
// host/affinity metadata the stats collector folds into a fragment's
// ScanSpec.Affinity map (spec 4.3): cluster membership and per-entity
// locality weights loaded ahead of a parallelization call, adapted from
// the teacher's GORM task repository.
package endpointcatalog

import (
	"time"

	"github.com/distquery/parallelizer/internal/planmodel"
)

// EndpointRecord is the catalog row for one known execution endpoint.
type EndpointRecord struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Host       string    `gorm:"column:host;type:varchar(255);uniqueIndex:idx_endpoint"`
	Port       int32     `gorm:"column:port;uniqueIndex:idx_endpoint"`
	FabricTag  string    `gorm:"column:fabric_tag;type:varchar(64);uniqueIndex:idx_endpoint"`
	Active     bool      `gorm:"column:active"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName returns the table name for EndpointRecord.
func (EndpointRecord) TableName() string {
	return "catalog_endpoint"
}

// ToEndpoint converts an EndpointRecord to the planner's Endpoint value.
func (r EndpointRecord) ToEndpoint() planmodel.Endpoint {
	return planmodel.Endpoint{Host: r.Host, Port: r.Port, FabricTag: r.FabricTag}
}

// AffinityRecord is the catalog row for one (entity, endpoint) affinity
// weight, e.g. the locality score of a data split on a given host.
type AffinityRecord struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	EntityKey  string  `gorm:"column:entity_key;type:varchar(255);index:idx_entity"`
	Host       string  `gorm:"column:host;type:varchar(255)"`
	Port       int32   `gorm:"column:port"`
	FabricTag  string  `gorm:"column:fabric_tag;type:varchar(64)"`
	Weight     float64 `gorm:"column:weight"`
}

// TableName returns the table name for AffinityRecord.
func (AffinityRecord) TableName() string {
	return "catalog_affinity"
}

// ToEndpoint converts an AffinityRecord to the planner's Endpoint value.
func (r AffinityRecord) ToEndpoint() planmodel.Endpoint {
	return planmodel.Endpoint{Host: r.Host, Port: r.Port, FabricTag: r.FabricTag}
}
