// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package core

import "github.com/gofrs/uuid"

// ResourceClassID is an ID into the process-wide resource class catalog.
// Standard classes get a dense index assigned at catalog build time; custom
// classes (prefix CUSTOM_) get one assigned at creation. This typedef
// distinguishes it from other int64-keyed identifiers.
type ResourceClassID int64

// TraitID is an ID into the process-wide trait catalog, standard or custom.
type TraitID int64

// ProviderID is the internal integer identity of a ResourceProvider, as
// used for all intra-engine bookkeeping. The provider's UUID is its
// external identity; the two are related 1:1 for the lifetime of a
// snapshot.
type ProviderID int64

// ResourceClassKind distinguishes the two disjoint resource class
// namespaces described in spec §3.
type ResourceClassKind int

const (
	// StandardClass is a resource class known at compile time (VCPU,
	// MEMORY_MB, DISK_GB, ...).
	StandardClass ResourceClassKind = iota
	// CustomClass is a resource class created dynamically, always named
	// with the CUSTOM_ prefix.
	CustomClass
)

// CustomClassPrefix is the mandatory prefix for dynamically created
// resource classes.
const CustomClassPrefix = "CUSTOM_"

// CustomTraitPrefix is the mandatory prefix for dynamically created
// traits.
const CustomTraitPrefix = "CUSTOM_"

// MarkerTraitSharesViaAggregate is the standard trait that marks a
// provider as a sharing provider (spec §4.4).
const MarkerTraitSharesViaAggregate = "MISC_SHARES_VIA_AGGREGATE"

// ResourceClass is a stable, string-named unit of accounting.
type ResourceClass struct {
	ID   ResourceClassID
	Name string
	Kind ResourceClassKind
}

// Trait is a string-named qualitative capability a provider may hold.
type Trait struct {
	ID   TraitID
	Name string
}

// ResourceProvider identifies an entity that owns inventory tiles.
// "Sharing" is a capability (ProviderIndex.IsSharing, derived from the
// marker trait in the snapshot), never a subclass — see spec §9.
type ResourceProvider struct {
	ID         ProviderID
	UUID       uuid.UUID
	Name       string
	Generation int64
}

// InventoryTile is the tuple (provider, resource_class) -> capacity
// parameters described in spec §3. Zero values are not valid; use
// DefaultedInventoryTile to apply the documented defaults.
type InventoryTile struct {
	ProviderID      ProviderID
	ClassID         ResourceClassID
	Total           uint64
	Reserved        uint64
	MinUnit         uint64
	MaxUnit         uint64
	StepSize        uint64
	AllocationRatio float64
}

// DefaultedInventoryTile applies the defaults from spec §3
// (reserved=0, min_unit=1, max_unit=total, step_size=1, allocation_ratio=1.0)
// to any zero-valued field. Total and ProviderID/ClassID are never defaulted.
func DefaultedInventoryTile(t InventoryTile) InventoryTile {
	if t.MinUnit == 0 {
		t.MinUnit = 1
	}
	if t.MaxUnit == 0 {
		t.MaxUnit = t.Total
	}
	if t.StepSize == 0 {
		t.StepSize = 1
	}
	if t.AllocationRatio == 0 {
		t.AllocationRatio = 1.0
	}
	return t
}

// AllocationRecord is a single (consumer, provider, class, used) tuple as
// held by the store. The core never mutates these; it only sums them to
// derive current usage.
type AllocationRecord struct {
	ConsumerUUID uuid.UUID
	ProviderID   ProviderID
	ClassID      ResourceClassID
	Used         uint64
}

// RequestGroup is one group of resource amounts and required traits, as
// described in spec §3 and consumed by the Candidate Enumerator (C6).
type RequestGroup struct {
	Resources        map[string]uint64
	RequiredTraits   []string
	UseSameProvider  bool
	MemberOfAny      []uuid.UUID // supplemented: restrict to providers in any of these aggregates; empty = unrestricted
}

// ResourceAmount is one resolved (class, amount) pair inside a candidate.
type ResourceAmount struct {
	ClassID ResourceClassID
	Amount  uint64
}

// AllocationRequest is a complete assignment of every requested class to
// exactly one provider (spec §3, §4.5). A candidate in engine parlance.
type AllocationRequest struct {
	Allocations []AllocationTuple
}

// AllocationTuple is one (provider, class, amount) entry of an
// AllocationRequest.
type AllocationTuple struct {
	ProviderID ProviderID
	ClassID    ResourceClassID
	Amount     uint64
}

// ProviderResourceSummary is one entry of ProviderSummary.Resources.
type ProviderResourceSummary struct {
	ClassID  ResourceClassID
	Capacity uint64
	Used     uint64
}

// ProviderSummary is the post-selection view of a single provider's
// capacity, current usage and traits (spec §4.6).
type ProviderSummary struct {
	ProviderID ProviderID
	Resources  []ProviderResourceSummary
	TraitIDs   []TraitID
}
