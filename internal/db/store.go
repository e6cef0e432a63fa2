// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package db

import "context"

// Store is the abstract, read-only interface the placement engine consumes
// (spec §6). Concrete implementations include the gorp-backed
// PostgresStore in this package and, for tests, an in-memory fixture under
// internal/placementtest.
type Store interface {
	// ListInventory returns inventory tiles, optionally restricted to the
	// given provider IDs and/or resource class names. A nil/empty slice
	// means "no restriction on this dimension".
	ListInventory(ctx context.Context, providerIDs []int64, classNames []string) ([]InventoryRow, error)

	// ListUsage returns the current aggregate usage (sum of Allocation.Used)
	// for each (provider, class) pair among the given providers/classes.
	// Pairs with no allocations are simply absent from the result.
	ListUsage(ctx context.Context, providerIDs []int64, classNames []string) (map[ProviderClassKey]uint64, error)

	// ListTraitsOf returns, for each given provider ID, the set of trait
	// names it holds.
	ListTraitsOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error)

	// ListAggregatesOf returns, for each given provider ID, the set of
	// aggregate UUIDs it belongs to.
	ListAggregatesOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error)

	// ProvidersWithTrait returns the IDs of providers holding the given
	// trait name.
	ProvidersWithTrait(ctx context.Context, traitName string) ([]int64, error)

	// ListProviders returns every known provider. Used by the engine to
	// build its working universe before applying filters.
	ListProviders(ctx context.Context) ([]ResourceProviderRow, error)
}

// ProviderClassKey identifies one (provider, resource class) pair, used as
// a map key for usage lookups.
type ProviderClassKey struct {
	ProviderID int64
	ClassName  string
}
