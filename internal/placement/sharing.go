// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"github.com/gofrs/uuid"

	"github.com/sapcc/placement/internal/core"
)

// SharingProvidersFor returns the sharing providers (spec §4.4: providers
// bearing the MISC_SHARES_VIA_AGGREGATE marker trait) that hold a
// satisfiable tile for the given class and amount.
func SharingProvidersFor(idx *ProviderIndex, classID core.ResourceClassID, amount uint64) []core.ProviderID {
	var result []core.ProviderID
	for _, providerID := range idx.AllProviderIDs() {
		if !idx.IsSharing(providerID) {
			continue
		}
		tile, ok := idx.Tile(providerID, classID)
		if !ok {
			continue
		}
		if Satisfiable(tile, idx.Usage(providerID, classID), amount) {
			result = append(result, providerID)
		}
	}
	return result
}

// AggregatesOf returns the aggregate UUIDs a provider belongs to.
func AggregatesOf(idx *ProviderIndex, providerID core.ProviderID) []uuid.UUID {
	set := idx.AggregatesOf(providerID)
	result := make([]uuid.UUID, 0, len(set))
	for u := range set {
		result = append(result, u)
	}
	return result
}

// Reachable reports whether a non-sharing provider L may draw resources
// from a sharing provider S (spec §4.4): their aggregate sets must
// intersect. The relation is symmetric but practically consulted L->S, as
// documented in spec.md.
func Reachable(idx *ProviderIndex, l, s core.ProviderID) bool {
	return idx.AggregateLinked(l, s)
}
