// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

// Package placementtest provides an in-memory db.Store fixture for testing
// the placement engine without a real Postgres connection, in the same
// spirit as internal/test's NewPlugin fixtures in the teacher repo: a
// builder that assembles a small, literal world and hands it to the code
// under test.
package placementtest

import (
	"context"
	"fmt"

	"github.com/sapcc/placement/internal/db"
)

// Store is an in-memory, builder-populated implementation of db.Store.
type Store struct {
	providers  []db.ResourceProviderRow
	inventory  []db.InventoryRow
	allocation []db.AllocationRow
	traits     []db.ProviderTraitRow
	aggregates []db.ProviderAggregateRow
}

// New returns an empty fixture store; use the Provider, Inventory,
// Allocation, Trait and Aggregate methods to populate it.
func New() *Store {
	return &Store{}
}

// Provider registers a provider and returns its assigned ID, starting at 1
// and incrementing per call, mirroring a serial primary key.
func (s *Store) Provider(name, uuid string) int64 {
	id := int64(len(s.providers) + 1)
	s.providers = append(s.providers, db.ResourceProviderRow{ID: id, UUID: uuid, Name: name, Generation: 1})
	return id
}

// Inventory adds a tile for (providerID, class). Zero-valued fields are
// left for core.DefaultedInventoryTile to default at index-build time.
func (s *Store) Inventory(providerID int64, class string, total uint64, opts ...InventoryOption) {
	row := db.InventoryRow{ProviderID: providerID, ResourceClass: class, Total: total}
	for _, opt := range opts {
		opt(&row)
	}
	s.inventory = append(s.inventory, row)
}

// InventoryOption customizes a tile beyond its total, for tests that exercise
// min_unit/max_unit/step_size/allocation_ratio explicitly.
type InventoryOption func(*db.InventoryRow)

func WithReserved(v uint64) InventoryOption        { return func(r *db.InventoryRow) { r.Reserved = v } }
func WithMinUnit(v uint64) InventoryOption         { return func(r *db.InventoryRow) { r.MinUnit = v } }
func WithMaxUnit(v uint64) InventoryOption         { return func(r *db.InventoryRow) { r.MaxUnit = v } }
func WithStepSize(v uint64) InventoryOption        { return func(r *db.InventoryRow) { r.StepSize = v } }
func WithAllocationRatio(v float64) InventoryOption { return func(r *db.InventoryRow) { r.AllocationRatio = v } }

// Allocation records usage of `used` units of `class` on providerID, held by
// an arbitrary consumer UUID (tests may pass the same UUID for every call;
// the store only ever sums Used per (provider, class)).
func (s *Store) Allocation(consumerUUID string, providerID int64, class string, used uint64) {
	s.allocation = append(s.allocation, db.AllocationRow{
		ID: int64(len(s.allocation) + 1), ConsumerUUID: consumerUUID,
		ProviderID: providerID, ResourceClass: class, Used: used,
	})
}

// Trait grants providerID the named trait.
func (s *Store) Trait(providerID int64, traitName string) {
	s.traits = append(s.traits, db.ProviderTraitRow{ProviderID: providerID, TraitName: traitName})
}

// Aggregate places providerID in the named aggregate.
func (s *Store) Aggregate(providerID int64, aggregateUUID string) {
	s.aggregates = append(s.aggregates, db.ProviderAggregateRow{ProviderID: providerID, AggregateUUID: aggregateUUID})
}

func (s *Store) ListProviders(ctx context.Context) ([]db.ResourceProviderRow, error) {
	return s.providers, nil
}

func (s *Store) ListInventory(ctx context.Context, providerIDs []int64, classNames []string) ([]db.InventoryRow, error) {
	providerSet := toSet(providerIDs)
	classSet := toStringSet(classNames)
	var result []db.InventoryRow
	for _, row := range s.inventory {
		if !matchesInt(providerSet, row.ProviderID) || !matchesString(classSet, row.ResourceClass) {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *Store) ListUsage(ctx context.Context, providerIDs []int64, classNames []string) (map[db.ProviderClassKey]uint64, error) {
	providerSet := toSet(providerIDs)
	classSet := toStringSet(classNames)
	result := make(map[db.ProviderClassKey]uint64)
	for _, row := range s.allocation {
		if !matchesInt(providerSet, row.ProviderID) || !matchesString(classSet, row.ResourceClass) {
			continue
		}
		key := db.ProviderClassKey{ProviderID: row.ProviderID, ClassName: row.ResourceClass}
		result[key] += row.Used
	}
	return result, nil
}

func (s *Store) ListTraitsOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error) {
	providerSet := toSet(providerIDs)
	result := make(map[int64][]string)
	for _, row := range s.traits {
		if !matchesInt(providerSet, row.ProviderID) {
			continue
		}
		result[row.ProviderID] = append(result[row.ProviderID], row.TraitName)
	}
	return result, nil
}

func (s *Store) ListAggregatesOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error) {
	providerSet := toSet(providerIDs)
	result := make(map[int64][]string)
	for _, row := range s.aggregates {
		if !matchesInt(providerSet, row.ProviderID) {
			continue
		}
		result[row.ProviderID] = append(result[row.ProviderID], row.AggregateUUID)
	}
	return result, nil
}

func (s *Store) ProvidersWithTrait(ctx context.Context, traitName string) ([]int64, error) {
	var result []int64
	for _, row := range s.traits {
		if row.TraitName == traitName {
			result = append(result, row.ProviderID)
		}
	}
	return result, nil
}

func toSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func toStringSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func matchesInt(set map[int64]bool, v int64) bool {
	return set == nil || set[v]
}

func matchesString(set map[string]bool, v string) bool {
	return set == nil || set[v]
}

// String helps debugging failed test fixtures.
func (s *Store) String() string {
	return fmt.Sprintf("placementtest.Store{providers:%d inventory:%d allocation:%d traits:%d aggregates:%d}",
		len(s.providers), len(s.inventory), len(s.allocation), len(s.traits), len(s.aggregates))
}
