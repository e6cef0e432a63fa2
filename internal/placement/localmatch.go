// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import "github.com/sapcc/placement/internal/core"

// LocalMatch returns the set of provider IDs that, alone, satisfy every
// (class, amount) pair in `resources` (per the satisfiability criteria of
// §4.1) and hold every trait in `requiredTraits` (spec §4.3). Fails with
// InvalidArgument if resources is empty.
//
// It is the intersection, over every requested class, of LocalMatchForClass
// for that class: a provider only belongs to the intersection if it alone
// can carry the whole request.
//
// Ordering: the returned set carries no order; callers must not rely on
// one. For a fixed snapshot, the set is deterministic.
func LocalMatch(idx *ProviderIndex, resources map[core.ResourceClassID]uint64, requiredTraits map[core.TraitID]bool) (map[core.ProviderID]bool, error) {
	if len(resources) == 0 {
		return nil, invalidArgumentf("LocalMatch requires a non-empty resources map")
	}

	var result map[core.ProviderID]bool
	for classID, amount := range resources {
		classSet := LocalMatchForClass(idx, classID, amount, requiredTraits)
		if result == nil {
			result = classSet
			continue
		}
		for providerID := range result {
			if !classSet[providerID] {
				delete(result, providerID)
			}
		}
	}
	return result, nil
}

// LocalMatchForClass is the L_c set from spec §4.5 step 1: providers that,
// alone, carry a satisfiable tile for the single class c and hold every
// trait in requiredTraits. When requiredTraits is non-empty the trait
// filter is applied via ProvidersHavingAllTraits first, narrowing the scan
// to trait-eligible providers before the tile check.
func LocalMatchForClass(idx *ProviderIndex, classID core.ResourceClassID, amount uint64, requiredTraits map[core.TraitID]bool) map[core.ProviderID]bool {
	ids := idx.AllProviderIDs()
	if len(requiredTraits) > 0 {
		eligible, err := ProvidersHavingAllTraits(idx, requiredTraits)
		if err != nil {
			return map[core.ProviderID]bool{}
		}
		ids = ids[:0]
		for providerID := range eligible {
			ids = append(ids, providerID)
		}
	}

	result := make(map[core.ProviderID]bool)
	for _, providerID := range ids {
		if tile, ok := idx.Tile(providerID, classID); ok && Satisfiable(tile, idx.Usage(providerID, classID), amount) {
			result[providerID] = true
		}
	}
	return result
}
