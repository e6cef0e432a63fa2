// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import "github.com/sapcc/placement/internal/core"

// EffectiveCapacity computes floor((total - reserved) * allocation_ratio)
// per spec §4.1. Truncation toward zero happens after the ratio
// multiplication, matching the spec's wording exactly.
func EffectiveCapacity(t core.InventoryTile) uint64 {
	usable := t.Total - t.Reserved // invariant: reserved < total, so this never underflows a valid tile
	return uint64(float64(usable) * t.AllocationRatio)
}

// Remaining computes effective_capacity - usage.
// Returns 0 (not a negative number, since the return type is unsigned) when
// usage exceeds effective capacity; callers only use Remaining as an upper
// bound in Satisfiable, where overcommitted tiles simply satisfy nothing.
func Remaining(t core.InventoryTile, usage uint64) uint64 {
	capacity := EffectiveCapacity(t)
	if usage >= capacity {
		return 0
	}
	return capacity - usage
}

// Satisfiable reports whether requested amount `a` can be carved out of
// tile `t` given current usage `u`, per spec §4.1:
//
//	a >= min_unit, a <= max_unit, a mod step_size == 0, a <= remaining
func Satisfiable(t core.InventoryTile, usage uint64, amount uint64) bool {
	if amount < t.MinUnit || amount > t.MaxUnit {
		return false
	}
	if t.StepSize != 0 && amount%t.StepSize != 0 {
		return false
	}
	return amount <= Remaining(t, usage)
}
