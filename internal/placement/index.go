// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/db"
)

// ProviderIndex is a private, read-only snapshot of the provider universe
// needed for one candidate computation (spec §3: "the core holds read-only
// snapshots for the duration of one candidate computation"; §5: "the
// provider-index snapshot is private to the computation and released when
// the response leaves the engine"). It is built once per GetCandidates
// call and never mutated afterwards.
type ProviderIndex struct {
	catalog *core.Catalog

	providers map[core.ProviderID]core.ResourceProvider
	// tiles[providerID][classID] -> tile
	tiles map[core.ProviderID]map[core.ResourceClassID]core.InventoryTile
	// usage[providerID][classID] -> current aggregate usage
	usage map[core.ProviderID]map[core.ResourceClassID]uint64
	// traits[providerID] -> set of trait IDs held
	traits map[core.ProviderID]map[core.TraitID]bool
	// aggregates[providerID] -> set of aggregate UUIDs
	aggregates map[core.ProviderID]map[uuid.UUID]bool
}

// BuildProviderIndex loads a full snapshot of every known provider, its
// inventory, usage, traits and aggregate memberships. Resource class names
// absent from the catalog are registered as custom classes on the fly
// (spec §3: custom classes are "dynamically created, assigned ids at
// creation"); this is the only place the catalog is mutated, and only for
// the CUSTOM_ namespace.
func BuildProviderIndex(ctx context.Context, store db.Store, catalog *core.Catalog) (*ProviderIndex, error) {
	providerRows, err := store.ListProviders(ctx)
	if err != nil {
		return nil, storeErrorf(err, "while listing resource providers")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, cancelledError(ctxErr)
	}

	idx := &ProviderIndex{
		catalog:    catalog,
		providers:  make(map[core.ProviderID]core.ResourceProvider, len(providerRows)),
		tiles:      make(map[core.ProviderID]map[core.ResourceClassID]core.InventoryTile, len(providerRows)),
		usage:      make(map[core.ProviderID]map[core.ResourceClassID]uint64, len(providerRows)),
		traits:     make(map[core.ProviderID]map[core.TraitID]bool, len(providerRows)),
		aggregates: make(map[core.ProviderID]map[uuid.UUID]bool, len(providerRows)),
	}

	providerIDs := make([]int64, len(providerRows))
	for i, row := range providerRows {
		parsedUUID, err := uuid.FromString(row.UUID)
		if err != nil {
			return nil, storeErrorf(err, "resource provider %d has malformed uuid %q", row.ID, row.UUID)
		}
		pid := core.ProviderID(row.ID)
		idx.providers[pid] = core.ResourceProvider{
			ID:         pid,
			UUID:       parsedUUID,
			Name:       row.Name,
			Generation: row.Generation,
		}
		providerIDs[i] = row.ID
	}

	inventoryRows, err := store.ListInventory(ctx, providerIDs, nil)
	if err != nil {
		return nil, storeErrorf(err, "while listing inventory")
	}
	for _, row := range inventoryRows {
		rc, regErr := idx.resolveOrRegisterClass(row.ResourceClass)
		if regErr != nil {
			return nil, storeErrorf(regErr, "while indexing inventory for provider %d", row.ProviderID)
		}
		pid := core.ProviderID(row.ProviderID)
		if idx.tiles[pid] == nil {
			idx.tiles[pid] = make(map[core.ResourceClassID]core.InventoryTile)
		}
		idx.tiles[pid][rc.ID] = core.DefaultedInventoryTile(core.InventoryTile{
			ProviderID:      pid,
			ClassID:         rc.ID,
			Total:           row.Total,
			Reserved:        row.Reserved,
			MinUnit:         row.MinUnit,
			MaxUnit:         row.MaxUnit,
			StepSize:        row.StepSize,
			AllocationRatio: row.AllocationRatio,
		})
	}

	usageByKey, err := store.ListUsage(ctx, providerIDs, nil)
	if err != nil {
		return nil, storeErrorf(err, "while listing usage")
	}
	for key, used := range usageByKey {
		rc, ok := catalog.ClassByName(key.ClassName)
		if !ok {
			// usage for a class nobody has inventory for is not actionable; skip
			continue
		}
		pid := core.ProviderID(key.ProviderID)
		if idx.usage[pid] == nil {
			idx.usage[pid] = make(map[core.ResourceClassID]uint64)
		}
		idx.usage[pid][rc.ID] = used
	}

	traitsByProvider, err := store.ListTraitsOf(ctx, providerIDs)
	if err != nil {
		return nil, storeErrorf(err, "while listing provider traits")
	}
	for providerID, names := range traitsByProvider {
		pid := core.ProviderID(providerID)
		set := make(map[core.TraitID]bool, len(names))
		for _, name := range names {
			t, regErr := idx.resolveOrRegisterTrait(name)
			if regErr != nil {
				return nil, storeErrorf(regErr, "while indexing traits for provider %d", providerID)
			}
			set[t.ID] = true
		}
		idx.traits[pid] = set
	}

	aggregatesByProvider, err := store.ListAggregatesOf(ctx, providerIDs)
	if err != nil {
		return nil, storeErrorf(err, "while listing provider aggregates")
	}
	for providerID, uuids := range aggregatesByProvider {
		pid := core.ProviderID(providerID)
		set := make(map[uuid.UUID]bool, len(uuids))
		for _, u := range uuids {
			parsed, parseErr := uuid.FromString(u)
			if parseErr != nil {
				return nil, storeErrorf(parseErr, "provider %d has malformed aggregate uuid %q", providerID, u)
			}
			set[parsed] = true
		}
		idx.aggregates[pid] = set
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, cancelledError(ctxErr)
	}
	return idx, nil
}

func (idx *ProviderIndex) resolveOrRegisterClass(name string) (core.ResourceClass, error) {
	if rc, ok := idx.catalog.ClassByName(name); ok {
		return rc, nil
	}
	return idx.catalog.RegisterCustomClass(name)
}

func (idx *ProviderIndex) resolveOrRegisterTrait(name string) (core.Trait, error) {
	if t, ok := idx.catalog.TraitByName(name); ok {
		return t, nil
	}
	return idx.catalog.RegisterCustomTrait(name)
}

// AllProviderIDs returns every provider ID in the snapshot, in no
// particular order (spec §4.3: "the method imposes no ordering on
// returned ids").
func (idx *ProviderIndex) AllProviderIDs() []core.ProviderID {
	ids := make([]core.ProviderID, 0, len(idx.providers))
	for id := range idx.providers {
		ids = append(ids, id)
	}
	return ids
}

// Provider returns the ResourceProvider record for an ID known to the
// snapshot.
func (idx *ProviderIndex) Provider(id core.ProviderID) (core.ResourceProvider, bool) {
	p, ok := idx.providers[id]
	return p, ok
}

// Tile returns the inventory tile a provider holds for a class, if any.
func (idx *ProviderIndex) Tile(providerID core.ProviderID, classID core.ResourceClassID) (core.InventoryTile, bool) {
	byClass, ok := idx.tiles[providerID]
	if !ok {
		return core.InventoryTile{}, false
	}
	t, ok := byClass[classID]
	return t, ok
}

// Usage returns the current aggregate usage a provider has for a class
// (zero if there is none).
func (idx *ProviderIndex) Usage(providerID core.ProviderID, classID core.ResourceClassID) uint64 {
	return idx.usage[providerID][classID]
}

// TraitsOf returns the set of trait IDs a provider holds.
func (idx *ProviderIndex) TraitsOf(providerID core.ProviderID) map[core.TraitID]bool {
	return idx.traits[providerID]
}

// HasAllTraits reports whether the given provider's trait set is a
// superset of `required`.
func (idx *ProviderIndex) HasAllTraits(providerID core.ProviderID, required map[core.TraitID]bool) bool {
	held := idx.traits[providerID]
	for t := range required {
		if !held[t] {
			return false
		}
	}
	return true
}

// AggregatesOf returns the set of aggregate UUIDs a provider belongs to.
func (idx *ProviderIndex) AggregatesOf(providerID core.ProviderID) map[uuid.UUID]bool {
	return idx.aggregates[providerID]
}

// AggregateLinked reports whether two providers share at least one
// aggregate (spec §4.4: "L may draw resources from S iff aggregates_of(L)
// ∩ aggregates_of(S) ≠ ∅").
func (idx *ProviderIndex) AggregateLinked(a, b core.ProviderID) bool {
	aggA := idx.aggregates[a]
	aggB := idx.aggregates[b]
	if len(aggA) == 0 || len(aggB) == 0 {
		return false
	}
	small, big := aggA, aggB
	if len(aggB) < len(aggA) {
		small, big = aggB, aggA
	}
	for u := range small {
		if big[u] {
			return true
		}
	}
	return false
}

// IsSharing reports whether a provider bears the MISC_SHARES_VIA_AGGREGATE
// marker trait (spec §4.4, §9: "sharing is a capability, not a subclass").
func (idx *ProviderIndex) IsSharing(providerID core.ProviderID) bool {
	marker, ok := idx.catalog.TraitByName(core.MarkerTraitSharesViaAggregate)
	if !ok {
		return false
	}
	return idx.traits[providerID][marker.ID]
}

// Catalog returns the catalog backing this snapshot.
func (idx *ProviderIndex) Catalog() *core.Catalog {
	return idx.catalog
}

// Describe renders a provider's name for error messages.
func (idx *ProviderIndex) Describe(providerID core.ProviderID) string {
	if p, ok := idx.providers[providerID]; ok {
		return fmt.Sprintf("%s (%s)", p.Name, p.UUID)
	}
	return fmt.Sprintf("provider#%d", providerID)
}
