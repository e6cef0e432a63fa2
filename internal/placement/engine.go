// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/db"
)

// Result is the return value of GetCandidates (spec §6):
// get_candidates(context, request_groups) -> { allocation_requests, provider_summaries }.
type Result struct {
	AllocationRequests []core.AllocationRequest
	ProviderSummaries  []core.ProviderSummary
}

// GetCandidates is the engine's one primary operation (spec §6). The first
// group must have UseSameProvider=false and a non-empty Resources map, or
// the call fails with InvalidArgument. Subsequent groups with
// UseSameProvider=true are joined onto every primary candidate by Cartesian
// product, each such group's classes pinned to one provider, with capacity
// deducted across the join so that a provider appearing in both groups
// cannot be double-booked beyond its tile (spec §4.5, "Multi-group
// composition").
func GetCandidates(ctx context.Context, store db.Store, catalog *core.Catalog, groups []core.RequestGroup) (Result, error) {
	if len(groups) == 0 {
		return Result{}, invalidArgumentf("at least one request group is required")
	}
	primary := groups[0]
	if primary.UseSameProvider {
		return Result{}, invalidArgumentf("the first request group must have use_same_provider=false")
	}
	if len(primary.Resources) == 0 {
		return Result{}, invalidArgumentf("the first request group must have a non-empty resources map")
	}

	idx, err := BuildProviderIndex(ctx, store, catalog)
	if err != nil {
		return Result{}, err
	}

	resolved, err := resolveGroup(idx, primary)
	if err != nil {
		return Result{}, err
	}

	candidates, err := EnumerateCandidates(idx, resolved.resources, resolved.requiredTraits, resolved.memberOf)
	if err != nil {
		return Result{}, err
	}

	for _, group := range groups[1:] {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, cancelledError(ctxErr)
		}
		if !group.UseSameProvider {
			return Result{}, invalidArgumentf("only the first request group may have use_same_provider=false")
		}
		resolvedGroup, err := resolveGroup(idx, group)
		if err != nil {
			return Result{}, err
		}
		groupCandidates, err := EnumerateCandidates(idx, resolvedGroup.resources, resolvedGroup.requiredTraits, resolvedGroup.memberOf)
		if err != nil {
			return Result{}, err
		}
		candidates = joinSameProvider(idx, candidates, singleProviderCandidates(groupCandidates))
		if len(candidates) == 0 {
			break
		}
	}

	return Result{
		AllocationRequests: candidates,
		ProviderSummaries:  BuildSummaries(idx, candidates),
	}, nil
}

type resolvedGroup struct {
	resources      map[core.ResourceClassID]uint64
	requiredTraits map[core.TraitID]bool
	memberOf       map[uuid.UUID]bool
}

func resolveGroup(idx *ProviderIndex, group core.RequestGroup) (resolvedGroup, error) {
	resources, err := ResolveClasses(idx, group.Resources)
	if err != nil {
		return resolvedGroup{}, err
	}
	traitIDs, err := ResolveTraits(idx, group.RequiredTraits)
	if err != nil {
		return resolvedGroup{}, err
	}
	requiredTraits := make(map[core.TraitID]bool, len(traitIDs))
	for _, id := range traitIDs {
		requiredTraits[id] = true
	}
	memberOf := make(map[uuid.UUID]bool, len(group.MemberOfAny))
	for _, u := range group.MemberOfAny {
		memberOf[u] = true
	}
	return resolvedGroup{resources: resources, requiredTraits: requiredTraits, memberOf: memberOf}, nil
}

// singleProviderCandidates keeps only the candidates of a use_same_provider
// group whose tuples all name the same ProviderID. EnumerateCandidates, run
// on its own, may legitimately return mixed candidates (spec §4.5 step 3)
// that draw different classes from different providers; a use_same_provider
// group must reject those, since the invariant requires every class in the
// group to come from one and the same provider.
func singleProviderCandidates(candidates []core.AllocationRequest) []core.AllocationRequest {
	var result []core.AllocationRequest
	for _, c := range candidates {
		if len(c.Allocations) == 0 {
			continue
		}
		provider := c.Allocations[0].ProviderID
		pinned := true
		for _, t := range c.Allocations[1:] {
			if t.ProviderID != provider {
				pinned = false
				break
			}
		}
		if pinned {
			result = append(result, c)
		}
	}
	return result
}

// joinSameProvider combines every primary candidate with every group
// candidate by Cartesian product, deducting the group's draw from any
// class the two candidates share on the same provider and rejecting the
// combination if that shared draw would exceed the provider's remaining
// capacity (spec §4.5's per-provider capacity deduction across the join).
func joinSameProvider(idx *ProviderIndex, primary, group []core.AllocationRequest) []core.AllocationRequest {
	var joined []core.AllocationRequest
	for _, p := range primary {
		for _, g := range group {
			if combined, ok := mergeCandidates(idx, p, g); ok {
				joined = append(joined, combined)
			}
		}
	}
	return joined
}

// mergeCandidates merges two candidates' allocation tuples. A (provider,
// class) pair appearing in both has its draws summed and re-checked against
// the provider's remaining capacity (spec §4.5's "capacity deducted across
// the join"); the combination is rejected if the summed draw no longer
// fits the provider's tile.
func mergeCandidates(idx *ProviderIndex, a, b core.AllocationRequest) (core.AllocationRequest, bool) {
	type key struct {
		provider core.ProviderID
		class    core.ResourceClassID
	}
	amounts := make(map[key]uint64)
	var order []key
	add := func(t core.AllocationTuple) {
		k := key{t.ProviderID, t.ClassID}
		if _, ok := amounts[k]; !ok {
			order = append(order, k)
		}
		amounts[k] += t.Amount
	}
	for _, t := range a.Allocations {
		add(t)
	}
	for _, t := range b.Allocations {
		add(t)
	}
	tuples := make([]core.AllocationTuple, len(order))
	for i, k := range order {
		tile, ok := idx.Tile(k.provider, k.class)
		if !ok || !Satisfiable(tile, idx.Usage(k.provider, k.class), amounts[k]) {
			return core.AllocationRequest{}, false
		}
		tuples[i] = core.AllocationTuple{ProviderID: k.provider, ClassID: k.class, Amount: amounts[k]}
	}
	return core.AllocationRequest{Allocations: tuples}, true
}
