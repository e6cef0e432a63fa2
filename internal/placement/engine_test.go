// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"context"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/placementtest"
)

func TestGetCandidatesRejectsEmptyGroupList(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	_, err := GetCandidates(context.Background(), store, catalog, nil)
	assertKind(t, err, InvalidArgument)
}

func TestGetCandidatesRejectsUseSameProviderOnFirstGroup(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	groups := []core.RequestGroup{{Resources: map[string]uint64{"VCPU": 1}, UseSameProvider: true}}
	_, err := GetCandidates(context.Background(), store, catalog, groups)
	assertKind(t, err, InvalidArgument)
}

func TestGetCandidatesS7EmptyResourcesOnFirstGroup(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	groups := []core.RequestGroup{{Resources: map[string]uint64{}}}
	_, err := GetCandidates(context.Background(), store, catalog, groups)
	assertKind(t, err, InvalidArgument)
}

func TestGetCandidatesS1EndToEnd(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	groups := []core.RequestGroup{
		{Resources: map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500}},
	}
	result, err := GetCandidates(context.Background(), store, catalog, groups)
	if err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, "S1 end-to-end candidate count", len(result.AllocationRequests), 2)
	assert.DeepEqual(t, "S1 end-to-end summary count", len(result.ProviderSummaries), 2)
}

// TestGetCandidatesMultiGroupPinsSecondGroupToSameProvider exercises the
// multi-group composition path (spec §4.5): a second, use_same_provider=true
// group must draw every one of its classes from one provider, joined by
// Cartesian product onto the primary group's candidates.
func TestGetCandidatesMultiGroupPinsSecondGroupToSameProvider(t *testing.T) {
	catalog := newTestCatalog()
	store, ids := s1Topology()
	// the primary group yields cn1 and cn2; the second group yields one
	// single-provider VCPU candidate each for cn1, cn2 and cn3. Every one of
	// the 2 x 3 joined draws fits its tiles (a merged cn1 VCPU draw of 2 is
	// far below cn1's capacity), so all six combinations survive the join.
	_ = ids
	groups := []core.RequestGroup{
		{Resources: map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500}},
		{Resources: map[string]uint64{"VCPU": 1}, UseSameProvider: true},
	}
	result, err := GetCandidates(context.Background(), store, catalog, groups)
	if err != nil {
		t.Fatal(err)
	}
	for _, candidate := range result.AllocationRequests {
		providers := make(map[core.ProviderID]int)
		for _, tuple := range candidate.Allocations {
			if tuple.ClassID == mustClassID(t, catalog, "VCPU") {
				providers[tuple.ProviderID]++
			}
		}
		for providerID, count := range providers {
			if count > 1 {
				t.Fatalf("provider %d received multiple separate VCPU tuples instead of one merged tuple", providerID)
			}
		}
	}
	assert.DeepEqual(t, "multi-group candidate count", len(result.AllocationRequests), 6)
}

// TestGetCandidatesMultiGroupRejectsMixedSecondaryCandidate guards the
// use_same_provider invariant (spec §4.5): a secondary group whose classes
// can only be satisfied by drawing from two different providers within a
// single candidate (one local, one reached via aggregate sharing) must be
// dropped entirely, not joined as-is.
func TestGetCandidatesMultiGroupRejectsMixedSecondaryCandidate(t *testing.T) {
	catalog := newTestCatalog()
	store := placementtest.New()
	cn1 := store.Provider("cn1", "00000000-0000-0000-0000-000000000001")
	ss := store.Provider("ss", "00000000-0000-0000-0000-0000000000aa")
	store.Inventory(cn1, "VCPU", 24, placementtest.WithAllocationRatio(16))
	store.Aggregate(cn1, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Trait(ss, core.MarkerTraitSharesViaAggregate)
	store.Inventory(ss, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))

	groups := []core.RequestGroup{
		{Resources: map[string]uint64{"VCPU": 1}},
		{Resources: map[string]uint64{"VCPU": 1, "DISK_GB": 10}, UseSameProvider: true},
	}
	result, err := GetCandidates(context.Background(), store, catalog, groups)
	if err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, "mixed-provider secondary candidate rejected", len(result.AllocationRequests), 0)
}

func TestGetCandidatesEmptyResultLaw(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	groups := []core.RequestGroup{
		{Resources: map[string]uint64{"VCPU": 1, "DISK_GB": 999999}},
	}
	result, err := GetCandidates(context.Background(), store, catalog, groups)
	if err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, "empty-result law: candidates", len(result.AllocationRequests), 0)
	assert.DeepEqual(t, "empty-result law: summaries", len(result.ProviderSummaries), 0)
}

func mustClassID(t *testing.T, catalog *core.Catalog, name string) core.ResourceClassID {
	t.Helper()
	rc, ok := catalog.ClassByName(name)
	if !ok {
		t.Fatalf("class %q not seeded", name)
	}
	return rc.ID
}
