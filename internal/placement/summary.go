// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import "github.com/sapcc/placement/internal/core"

// BuildSummaries implements the Summary Builder (C7, spec §4.6). For every
// provider appearing in any candidate, it emits a ProviderSummary with one
// resources entry per class the provider contributes in at least one
// candidate, capacity/used computed per §4.1, and the provider's full
// trait set. Providers that are merely aggregate-linked to a selected
// sharing provider but never themselves appear in a candidate tuple are
// not listed.
func BuildSummaries(idx *ProviderIndex, candidates []core.AllocationRequest) []core.ProviderSummary {
	// providerID -> set of classIDs it contributes, preserving first-seen order
	classesByProvider := make(map[core.ProviderID][]core.ResourceClassID)
	seenClass := make(map[core.ProviderID]map[core.ResourceClassID]bool)
	var order []core.ProviderID
	seenProvider := make(map[core.ProviderID]bool)

	for _, candidate := range candidates {
		for _, tuple := range candidate.Allocations {
			if !seenProvider[tuple.ProviderID] {
				seenProvider[tuple.ProviderID] = true
				order = append(order, tuple.ProviderID)
				seenClass[tuple.ProviderID] = make(map[core.ResourceClassID]bool)
			}
			if !seenClass[tuple.ProviderID][tuple.ClassID] {
				seenClass[tuple.ProviderID][tuple.ClassID] = true
				classesByProvider[tuple.ProviderID] = append(classesByProvider[tuple.ProviderID], tuple.ClassID)
			}
		}
	}

	summaries := make([]core.ProviderSummary, 0, len(order))
	for _, providerID := range order {
		var resources []core.ProviderResourceSummary
		for _, classID := range classesByProvider[providerID] {
			tile, ok := idx.Tile(providerID, classID)
			if !ok {
				continue
			}
			resources = append(resources, core.ProviderResourceSummary{
				ClassID:  classID,
				Capacity: EffectiveCapacity(tile),
				Used:     idx.Usage(providerID, classID),
			})
		}
		traitIDs := make([]core.TraitID, 0, len(idx.TraitsOf(providerID)))
		for t := range idx.TraitsOf(providerID) {
			traitIDs = append(traitIDs, t)
		}
		summaries = append(summaries, core.ProviderSummary{
			ProviderID: providerID,
			Resources:  resources,
			TraitIDs:   traitIDs,
		})
	}
	return summaries
}
