// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package db

import "github.com/go-gorp/gorp/v3"

// ResourceProviderRow contains a record from the `resource_providers` table.
type ResourceProviderRow struct {
	ID         int64  `db:"id"`
	UUID       string `db:"uuid"`
	Name       string `db:"name"`
	Generation int64  `db:"generation"`
}

// InventoryRow contains a record from the `inventories` table: one
// (provider, resource_class) tile as described in spec §3.
type InventoryRow struct {
	ProviderID      int64   `db:"provider_id"`
	ResourceClass   string  `db:"resource_class"`
	Total           uint64  `db:"total"`
	Reserved        uint64  `db:"reserved"`
	MinUnit         uint64  `db:"min_unit"`
	MaxUnit         uint64  `db:"max_unit"`
	StepSize        uint64  `db:"step_size"`
	AllocationRatio float64 `db:"allocation_ratio"`
}

// AllocationRow contains a record from the `allocations` table.
type AllocationRow struct {
	ID            int64  `db:"id"`
	ConsumerUUID  string `db:"consumer_uuid"`
	ProviderID    int64  `db:"provider_id"`
	ResourceClass string `db:"resource_class"`
	Used          uint64 `db:"used"`
}

// ProviderTraitRow contains a record from the `provider_traits` table,
// linking a provider to a trait name it holds.
type ProviderTraitRow struct {
	ProviderID int64  `db:"provider_id"`
	TraitName  string `db:"trait_name"`
}

// ProviderAggregateRow contains a record from the `provider_aggregates`
// table, linking a provider to an aggregate UUID it belongs to.
type ProviderAggregateRow struct {
	ProviderID    int64  `db:"provider_id"`
	AggregateUUID string `db:"aggregate_uuid"`
}

// initPlacementGorp is used by InitORM() to set up the ORM part of the
// database connection for the placement engine's own tables, following the
// same AddTableWithName/SetKeys pattern as initGorp() in the teacher.
func initPlacementGorp(db *gorp.DbMap) {
	db.AddTableWithName(ResourceProviderRow{}, "resource_providers").SetKeys(true, "id")
	db.AddTableWithName(InventoryRow{}, "inventories").SetKeys(false, "provider_id", "resource_class")
	db.AddTableWithName(AllocationRow{}, "allocations").SetKeys(true, "id")
	db.AddTableWithName(ProviderTraitRow{}, "provider_traits").SetKeys(false, "provider_id", "trait_name")
	db.AddTableWithName(ProviderAggregateRow{}, "provider_aggregates").SetKeys(false, "provider_id", "aggregate_uuid")
}
