// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/placementtest"
)

func newTestCatalog() *core.Catalog {
	catalog := core.NewCatalog()
	catalog.SeedStandardClasses([]string{"VCPU", "MEMORY_MB", "DISK_GB"})
	catalog.SeedStandardTraits([]string{core.MarkerTraitSharesViaAggregate, "HW_CPU_X86_AVX2"})
	return catalog
}

// s1Topology builds the three-provider, all-local topology from spec
// scenario S1: cn1, cn2, cn3 each carry VCPU and MEMORY_MB identically;
// DISK_GB is 2000 on cn1/cn2 and 1000 on cn3, so only cn1/cn2 can supply a
// 1500 DISK_GB request.
var providerUUIDs = map[string]string{
	"cn1": "00000000-0000-0000-0000-000000000001",
	"cn2": "00000000-0000-0000-0000-000000000002",
	"cn3": "00000000-0000-0000-0000-000000000003",
	"ss":  "00000000-0000-0000-0000-0000000000aa",
}

func s1Topology() (*placementtest.Store, map[string]int64) {
	store := placementtest.New()
	ids := make(map[string]int64)
	for _, name := range []string{"cn1", "cn2", "cn3"} {
		id := store.Provider(name, providerUUIDs[name])
		ids[name] = id
		store.Inventory(id, "VCPU", 24, placementtest.WithAllocationRatio(16))
		store.Inventory(id, "MEMORY_MB", 32768, placementtest.WithMinUnit(64), placementtest.WithStepSize(64), placementtest.WithAllocationRatio(1.5))
	}
	store.Inventory(ids["cn1"], "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10), placementtest.WithStepSize(10))
	store.Inventory(ids["cn2"], "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10), placementtest.WithStepSize(10))
	store.Inventory(ids["cn3"], "DISK_GB", 1000, placementtest.WithReserved(100), placementtest.WithMinUnit(10), placementtest.WithStepSize(10))
	return store, ids
}

func candidateProviderSets(t *testing.T, idx *ProviderIndex, candidates []core.AllocationRequest) []map[string]bool {
	t.Helper()
	var sets []map[string]bool
	for _, c := range candidates {
		set := make(map[string]bool)
		for _, tuple := range c.Allocations {
			p, ok := idx.Provider(tuple.ProviderID)
			if !ok {
				t.Fatalf("candidate references unknown provider id %d", tuple.ProviderID)
			}
			set[p.Name] = true
		}
		sets = append(sets, set)
	}
	return sets
}

func sortedProviderNames(sets []map[string]bool) []string {
	var names []string
	for _, set := range sets {
		var inSet []string
		for name := range set {
			inSet = append(inSet, name)
		}
		sort.Strings(inSet)
		names = append(names, joinNames(inSet))
	}
	sort.Strings(names)
	return names
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += "+"
		}
		out += n
	}
	return out
}

func TestS1AllLocal(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := EnumerateCandidates(idx, resources, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	assert.DeepEqual(t, "S1 candidate provider sets", sortedProviderNames(sets), []string{"cn1", "cn2"})
}

func TestS2LocalPlusSharedDisk(t *testing.T) {
	catalog := newTestCatalog()
	store := placementtest.New()
	cn1 := store.Provider("cn1", "00000000-0000-0000-0000-000000000001")
	cn2 := store.Provider("cn2", "00000000-0000-0000-0000-000000000002")
	ss := store.Provider("ss", "00000000-0000-0000-0000-0000000000aa")
	for _, id := range []int64{cn1, cn2} {
		store.Inventory(id, "VCPU", 24, placementtest.WithAllocationRatio(16))
		store.Inventory(id, "MEMORY_MB", 32768, placementtest.WithMinUnit(64), placementtest.WithStepSize(64), placementtest.WithAllocationRatio(1.5))
		store.Aggregate(id, "aaaaaaaa-0000-0000-0000-00000000000a")
	}
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Trait(ss, core.MarkerTraitSharesViaAggregate)
	store.Inventory(ss, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))

	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := EnumerateCandidates(idx, resources, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	assert.DeepEqual(t, "S2 candidate provider sets", sortedProviderNames(sets), []string{"cn1+ss", "cn2+ss"})
}

func TestS3OnlySharingTarget(t *testing.T) {
	catalog := newTestCatalog()
	store := placementtest.New()
	cn1 := store.Provider("cn1", "00000000-0000-0000-0000-000000000001")
	ss := store.Provider("ss", "00000000-0000-0000-0000-0000000000aa")
	store.Inventory(cn1, "VCPU", 24, placementtest.WithAllocationRatio(16))
	store.Aggregate(cn1, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Trait(ss, core.MarkerTraitSharesViaAggregate)
	store.Inventory(ss, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))

	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"DISK_GB": 10})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := EnumerateCandidates(idx, resources, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	assert.DeepEqual(t, "S3 candidate provider sets", sortedProviderNames(sets), []string{"ss"})

	summaries := BuildSummaries(idx, candidates)
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one provider summary, got %d", len(summaries))
	}
	p, _ := idx.Provider(summaries[0].ProviderID)
	assert.DeepEqual(t, "S3 summary provider", p.Name, "ss")
}

func TestS4RequiredTraitAbsentYieldsEmptyResult(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500})
	if err != nil {
		t.Fatal(err)
	}
	traitIDs, err := ResolveTraits(idx, []string{"HW_CPU_X86_AVX2"})
	if err != nil {
		t.Fatal(err)
	}
	required := map[core.TraitID]bool{traitIDs["HW_CPU_X86_AVX2"]: true}
	candidates, err := EnumerateCandidates(idx, resources, required, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, "S4 candidate count", len(candidates), 0)
	assert.DeepEqual(t, "S4 summary count", len(BuildSummaries(idx, candidates)), 0)
}

func TestS5RequiredTraitOnOneProvider(t *testing.T) {
	catalog := newTestCatalog()
	store, ids := s1Topology()
	store.Trait(ids["cn2"], "HW_CPU_X86_AVX2")
	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 1, "MEMORY_MB": 64, "DISK_GB": 1500})
	if err != nil {
		t.Fatal(err)
	}
	traitIDs, err := ResolveTraits(idx, []string{"HW_CPU_X86_AVX2"})
	if err != nil {
		t.Fatal(err)
	}
	required := map[core.TraitID]bool{traitIDs["HW_CPU_X86_AVX2"]: true}
	candidates, err := EnumerateCandidates(idx, resources, required, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	assert.DeepEqual(t, "S5 candidate provider sets", sortedProviderNames(sets), []string{"cn2"})

	summaries := BuildSummaries(idx, candidates)
	p, _ := idx.Provider(summaries[0].ProviderID)
	assert.DeepEqual(t, "S5 summary provider", p.Name, "cn2")
	assert.DeepEqual(t, "S5 summary trait count", len(summaries[0].TraitIDs), 1)
}

func TestS6TwoDisjointAggregatesShareOneProvider(t *testing.T) {
	catalog := newTestCatalog()
	store := placementtest.New()
	cn1 := store.Provider("cn1", "00000000-0000-0000-0000-000000000001")
	cn2 := store.Provider("cn2", "00000000-0000-0000-0000-000000000002")
	ss := store.Provider("ss", "00000000-0000-0000-0000-0000000000aa")
	store.Inventory(cn1, "VCPU", 24, placementtest.WithAllocationRatio(16))
	store.Inventory(cn2, "VCPU", 24, placementtest.WithAllocationRatio(16))
	store.Aggregate(cn1, "aaaaaaaa-0000-0000-0000-000000000001")
	store.Aggregate(cn2, "aaaaaaaa-0000-0000-0000-000000000002")
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-000000000001")
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-000000000002")
	store.Trait(ss, core.MarkerTraitSharesViaAggregate)
	store.Inventory(ss, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))

	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 2, "DISK_GB": 1500})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := EnumerateCandidates(idx, resources, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	assert.DeepEqual(t, "S6 candidate provider sets", sortedProviderNames(sets), []string{"cn1+ss", "cn2+ss"})
}

// TestMixedCandidateOmittedWhenRootSatisfiesClassLocally guards against Nova
// bug #1724613: when a root provider's own tile already satisfies one of
// the requested classes, the mixed step must not ALSO pair that root's
// other, locally-unsatisfied class with an aggregate-linked sharing
// provider while substituting the sharing provider for the already-covered
// class too. Concretely: cn1 supplies VCPU alone and ALSO carries its own
// DISK_GB tile big enough for the request, while ss shares a second
// DISK_GB tile via aggregate. The only real candidate draws both classes
// from cn1; a "cn1 supplies VCPU, ss supplies DISK_GB" combination must not
// appear, since cn1 never needed ss's help in the first place.
func TestMixedCandidateOmittedWhenRootSatisfiesClassLocally(t *testing.T) {
	catalog := newTestCatalog()
	store := placementtest.New()
	cn1 := store.Provider("cn1", "00000000-0000-0000-0000-000000000001")
	ss := store.Provider("ss", "00000000-0000-0000-0000-0000000000aa")
	store.Inventory(cn1, "VCPU", 24, placementtest.WithAllocationRatio(16))
	store.Inventory(cn1, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))
	store.Aggregate(cn1, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Aggregate(ss, "aaaaaaaa-0000-0000-0000-00000000000a")
	store.Trait(ss, core.MarkerTraitSharesViaAggregate)
	store.Inventory(ss, "DISK_GB", 2000, placementtest.WithReserved(100), placementtest.WithMinUnit(10))

	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	resources, err := ResolveClasses(idx, map[string]uint64{"VCPU": 1, "DISK_GB": 10})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := EnumerateCandidates(idx, resources, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	sets := candidateProviderSets(t, idx, candidates)
	// cn1 alone is the only real candidate; "cn1+ss" is not, since cn1
	// already covers DISK_GB by itself and never needs ss.
	assert.DeepEqual(t, "bug #1724613 candidate provider sets", sortedProviderNames(sets), []string{"cn1"})
}

func TestS7EmptyResourcesIsInvalidArgument(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ResolveClasses(idx, map[string]uint64{})
	if err != nil {
		t.Fatalf("ResolveClasses of an empty map should not itself fail: %v", err)
	}
	_, err = EnumerateCandidates(idx, map[core.ResourceClassID]uint64{}, nil, nil)
	assertKind(t, err, InvalidArgument)
}

func TestS8UnknownTraitFails(t *testing.T) {
	catalog := newTestCatalog()
	store, _ := s1Topology()
	idx, err := BuildProviderIndex(context.Background(), store, catalog)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ResolveTraits(idx, []string{"UNKNOWN_TRAIT"})
	assertKind(t, err, UnknownTrait)
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error of kind %q, got nil", want)
	}
	var placementErr *Error
	if !errors.As(err, &placementErr) {
		t.Fatalf("expected a *placement.Error, got %T: %v", err, err)
	}
	assert.DeepEqual(t, "error kind", placementErr.Kind, want)
}
