// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"fmt"
	"sort"

	"github.com/gofrs/uuid"

	"github.com/sapcc/placement/internal/core"
)

// EnumerateCandidates is the Candidate Enumerator (C6), the algorithmic
// core of the engine (spec §4.5). It combines the Local Matcher (C4) and
// Sharing Graph (C5) results to produce every valid
// core.AllocationRequest for one RequestGroup with UseSameProvider=false.
//
// memberOf is the supplemented MemberOfAny filter (SPEC_FULL.md): when
// non-empty, only providers belonging to at least one of these aggregates
// are considered at all, before any other constraint is applied. An empty
// filter means "unrestricted", preserving spec.md's examples unchanged.
func EnumerateCandidates(idx *ProviderIndex, resources map[core.ResourceClassID]uint64, requiredTraitIDs map[core.TraitID]bool, memberOf map[uuid.UUID]bool) ([]core.AllocationRequest, error) {
	if len(resources) == 0 {
		return nil, invalidArgumentf("the primary request group must have a non-empty resources map")
	}

	universe := restrictToMemberOf(idx, idx.AllProviderIDs(), memberOf)

	classIDs := make([]core.ResourceClassID, 0, len(resources))
	for c := range resources {
		classIDs = append(classIDs, c)
	}
	sort.Slice(classIDs, func(i, j int) bool { return classIDs[i] < classIDs[j] })

	// S_c: sharing providers, per class, with a satisfiable tile. Trait
	// filtering is applied only to local roots (spec §9's first design
	// ambiguity: "an implementation MAY apply trait filtering only to
	// local roots (matching the observed semantics)" -- this is the
	// choice made here).
	sharingByClass := make(map[core.ResourceClassID][]core.ProviderID, len(classIDs))
	// L_c: providers that, alone, carry a satisfiable tile for each class
	// and hold every required trait (spec §4.5 step 1).
	localByClass := make(map[core.ResourceClassID]map[core.ProviderID]bool, len(classIDs))
	for _, classID := range classIDs {
		sharingByClass[classID] = filterByUniverse(SharingProvidersFor(idx, classID, resources[classID]), universe)
		localByClass[classID] = LocalMatchForClass(idx, classID, resources[classID], requiredTraitIDs)
	}

	var candidates []core.AllocationRequest
	seen := make(map[string]bool)
	emit := func(tuples []core.AllocationTuple) {
		key := candidateKey(tuples)
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, core.AllocationRequest{Allocations: tuples})
	}

	// Step 2: local-only candidates. localAll is the L_c intersection over
	// all classes restricted to providers satisfying every required
	// trait: exactly LocalMatch's result.
	localAll, err := LocalMatch(idx, resources, requiredTraitIDs)
	if err != nil {
		return nil, err
	}
	for providerID := range localAll {
		if !universe[providerID] {
			continue
		}
		tuples := make([]core.AllocationTuple, len(classIDs))
		for i, classID := range classIDs {
			tuples[i] = core.AllocationTuple{ProviderID: providerID, ClassID: classID, Amount: resources[classID]}
		}
		emit(tuples)
	}

	// Step 3: mixed candidates. A root is any universe provider holding a
	// satisfiable local tile for at least one requested class (L_c
	// membership for some c).
	for _, rootID := range rootProviders(universe, classIDs, localByClass) {
		choices := make([][]core.ProviderID, len(classIDs))
		ok := true
		for i, classID := range classIDs {
			var options []core.ProviderID
			// When the root already satisfies this class out of its own
			// inventory, sharing-provider alternatives for the SAME class
			// are not offered alongside it: Nova bug #1724613 established
			// that a cn+ss candidate is never returned when cn alone
			// already covers the class, only the local-only candidate is.
			if localByClass[classID][rootID] {
				options = append(options, rootID)
			} else {
				for _, s := range sharingByClass[classID] {
					if s == rootID {
						continue // avoid counting the root twice under its own sharing-provider identity
					}
					if idx.AggregateLinked(rootID, s) {
						options = append(options, s)
					}
				}
			}
			if len(options) == 0 {
				ok = false
				break
			}
			choices[i] = options
		}
		if !ok {
			continue
		}
		forEachCombination(choices, func(combo []core.ProviderID) {
			tuples := make([]core.AllocationTuple, len(classIDs))
			for i, classID := range classIDs {
				tuples[i] = core.AllocationTuple{ProviderID: combo[i], ClassID: classID, Amount: resources[classID]}
			}
			emit(tuples)
		})
	}

	// Step 4: all-sharing candidates. No aggregate-linkage constraint
	// applies between two sharing providers.
	allSharingChoices := make([][]core.ProviderID, len(classIDs))
	anyEmpty := false
	for i, classID := range classIDs {
		allSharingChoices[i] = sharingByClass[classID]
		if len(allSharingChoices[i]) == 0 {
			anyEmpty = true
		}
	}
	if !anyEmpty {
		forEachCombination(allSharingChoices, func(combo []core.ProviderID) {
			tuples := make([]core.AllocationTuple, len(classIDs))
			for i, classID := range classIDs {
				tuples[i] = core.AllocationTuple{ProviderID: combo[i], ClassID: classID, Amount: resources[classID]}
			}
			emit(tuples)
		})
	}

	return candidates, nil
}

func restrictToMemberOf(idx *ProviderIndex, ids []core.ProviderID, memberOf map[uuid.UUID]bool) map[core.ProviderID]bool {
	result := make(map[core.ProviderID]bool, len(ids))
	for _, id := range ids {
		if len(memberOf) == 0 {
			result[id] = true
			continue
		}
		for agg := range idx.AggregatesOf(id) {
			if memberOf[agg] {
				result[id] = true
				break
			}
		}
	}
	return result
}

// filterByUniverse restricts a provider list to those present in universe,
// preserving order.
func filterByUniverse(providers []core.ProviderID, universe map[core.ProviderID]bool) []core.ProviderID {
	var result []core.ProviderID
	for _, p := range providers {
		if universe[p] {
			result = append(result, p)
		}
	}
	return result
}

func rootProviders(universe map[core.ProviderID]bool, classIDs []core.ResourceClassID, localByClass map[core.ResourceClassID]map[core.ProviderID]bool) []core.ProviderID {
	var result []core.ProviderID
	for providerID := range universe {
		hasOne := false
		for _, classID := range classIDs {
			if localByClass[classID][providerID] {
				hasOne = true
				break
			}
		}
		if hasOne {
			result = append(result, providerID)
		}
	}
	return result
}

// forEachCombination calls fn once for every element of the cross product
// of choices[0] x choices[1] x ... x choices[n-1].
func forEachCombination(choices [][]core.ProviderID, fn func(combo []core.ProviderID)) {
	n := len(choices)
	if n == 0 {
		return
	}
	combo := make([]core.ProviderID, n)
	var recurse func(i int)
	recurse = func(i int) {
		if i == n {
			fn(combo)
			return
		}
		for _, p := range choices[i] {
			combo[i] = p
			recurse(i + 1)
		}
	}
	recurse(0)
}

// candidateKey builds the de-duplication key for step 6: two candidates
// are equal iff their (provider, class, amount) multisets are equal.
func candidateKey(tuples []core.AllocationTuple) string {
	sorted := make([]core.AllocationTuple, len(tuples))
	copy(sorted, tuples)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ClassID != sorted[j].ClassID {
			return sorted[i].ClassID < sorted[j].ClassID
		}
		return sorted[i].ProviderID < sorted[j].ProviderID
	})
	key := ""
	for _, t := range sorted {
		key += fmt.Sprintf("%d:%d:%d|", t.ProviderID, t.ClassID, t.Amount)
	}
	return key
}
