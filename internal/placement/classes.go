// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package placement

import "github.com/sapcc/placement/internal/core"

// ResolveClasses maps resource class names to internal IDs, the symmetric
// counterpart to ResolveTraits. spec.md names "unknown resource class
// name" as an InvalidArgument case in §6 without assigning it to a
// component; this is the resolver that check serves (supplemented per
// SPEC_FULL.md, grounded on original_source's CUSTOM_ namespace
// validation).
func ResolveClasses(idx *ProviderIndex, names map[string]uint64) (map[core.ResourceClassID]uint64, error) {
	result := make(map[core.ResourceClassID]uint64, len(names))
	for name, amount := range names {
		if amount < 1 {
			return nil, invalidArgumentf("requested amount for %q must be >= 1, got %d", name, amount)
		}
		rc, ok := idx.Catalog().ClassByName(name)
		if !ok {
			return nil, invalidArgumentf("unknown resource class %q", name)
		}
		result[rc.ID] = amount
	}
	return result, nil
}
