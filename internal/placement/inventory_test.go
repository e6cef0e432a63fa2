// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import (
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/placement/internal/core"
)

func TestEffectiveCapacity(t *testing.T) {
	tile := core.DefaultedInventoryTile(core.InventoryTile{
		Total: 2000, Reserved: 100, AllocationRatio: 1.5,
	})
	assert.DeepEqual(t, "effective capacity", EffectiveCapacity(tile), uint64(2850))
}

func TestSatisfiableHonorsMinMaxStep(t *testing.T) {
	tile := core.DefaultedInventoryTile(core.InventoryTile{
		Total: 2000, Reserved: 100, MinUnit: 10, MaxUnit: 1000, StepSize: 10,
	})
	cases := []struct {
		amount uint64
		want   bool
	}{
		{5, false},    // below min_unit
		{1500, false}, // above max_unit
		{15, false},   // not a multiple of step_size
		{1000, true},
		{10, true},
	}
	for _, c := range cases {
		got := Satisfiable(tile, 0, c.amount)
		assert.DeepEqual(t, "satisfiable(amount)", got, c.want)
	}
}

func TestSatisfiableHonorsRemaining(t *testing.T) {
	tile := core.DefaultedInventoryTile(core.InventoryTile{
		Total: 2000, Reserved: 100, MinUnit: 10, StepSize: 10,
	})
	// effective capacity is 1900; with 1500 already used, only 400 remains
	assert.DeepEqual(t, "satisfiable within remaining", Satisfiable(tile, 1500, 400), true)
	assert.DeepEqual(t, "satisfiable beyond remaining", Satisfiable(tile, 1500, 410), false)
}

// TestSatisfiableHonorsNonDividingStep covers a step_size that does not
// evenly divide max_unit: max_unit is still an independent bound, enforced
// even for an amount that is a valid multiple of step_size.
func TestSatisfiableHonorsNonDividingStep(t *testing.T) {
	tile := core.DefaultedInventoryTile(core.InventoryTile{
		Total: 2000, MaxUnit: 1000, StepSize: 7,
	})
	cases := []struct {
		amount uint64
		want   bool
	}{
		{994, true},  // largest multiple of 7 not exceeding max_unit
		{1001, false}, // a valid multiple of 7, but exceeds max_unit
		{1000, false}, // within max_unit, but not a multiple of 7
	}
	for _, c := range cases {
		got := Satisfiable(tile, 0, c.amount)
		assert.DeepEqual(t, "satisfiable(amount) with non-dividing step", got, c.want)
	}
}

// TestEffectiveCapacityFractionalRatioBoundary covers a fractional
// allocation_ratio (below 1.0, i.e. over-reservation rather than
// over-commitment) and an amount landing exactly on the resulting capacity
// boundary.
func TestEffectiveCapacityFractionalRatioBoundary(t *testing.T) {
	tile := core.DefaultedInventoryTile(core.InventoryTile{
		Total: 1000, AllocationRatio: 0.5,
	})
	assert.DeepEqual(t, "fractional-ratio effective capacity", EffectiveCapacity(tile), uint64(500))
	assert.DeepEqual(t, "satisfiable exactly at capacity boundary", Satisfiable(tile, 0, 500), true)
	assert.DeepEqual(t, "satisfiable one past capacity boundary", Satisfiable(tile, 0, 501), false)
}
