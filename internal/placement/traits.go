// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import "github.com/sapcc/placement/internal/core"

// ResolveTraits maps trait names to internal IDs via the catalog embedded
// in the snapshot. Every name must resolve; otherwise the call fails with
// UnknownTrait (spec §4.2). Callers must never reach C4/C5/C6 with
// unresolved names.
func ResolveTraits(idx *ProviderIndex, names []string) (map[string]core.TraitID, error) {
	result := make(map[string]core.TraitID, len(names))
	for _, name := range names {
		t, ok := idx.Catalog().TraitByName(name)
		if !ok {
			return nil, unknownTraitf("unknown trait %q", name)
		}
		result[name] = t.ID
	}
	return result, nil
}

// ProvidersHavingAllTraits returns the set of provider IDs whose trait set
// is a superset of `ids`. Fails with InvalidArgument when called with an
// empty id set, since an empty constraint would trivially match the entire
// universe and that is always a caller bug here (spec §4.2).
func ProvidersHavingAllTraits(idx *ProviderIndex, ids map[core.TraitID]bool) (map[core.ProviderID]bool, error) {
	if len(ids) == 0 {
		return nil, invalidArgumentf("ProvidersHavingAllTraits requires a non-empty trait id set")
	}
	result := make(map[core.ProviderID]bool)
	for _, providerID := range idx.AllProviderIDs() {
		if idx.HasAllTraits(providerID, ids) {
			result[providerID] = true
		}
	}
	return result, nil
}
