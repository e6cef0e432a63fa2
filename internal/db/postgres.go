// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"fmt"

	gorp "github.com/go-gorp/gorp/v3"
)

// PostgresStore is the gorp-backed Store implementation used in
// production. It issues one query per Store method, each serializable with
// respect to Postgres's own isolation (spec §5).
type PostgresStore struct {
	DB *gorp.DbMap
}

// NewPostgresStore wraps an initialized gorp.DbMap (see InitORM) as a Store.
func NewPostgresStore(dbMap *gorp.DbMap) *PostgresStore {
	return &PostgresStore{DB: dbMap}
}

func (s *PostgresStore) ListInventory(ctx context.Context, providerIDs []int64, classNames []string) ([]InventoryRow, error) {
	fields := make(map[string]any)
	if len(providerIDs) > 0 {
		fields["provider_id"] = toAnySlice(providerIDs)
	}
	if len(classNames) > 0 {
		fields["resource_class"] = classNames
	}
	where, args := BuildSimpleWhereClause(fields, 0)
	query := "SELECT * FROM inventories"
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := s.DB.WithContext(ctx).Select(InventoryRow{}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("while listing inventory: %w", err)
	}
	result := make([]InventoryRow, len(rows))
	for i, r := range rows {
		result[i] = *r.(*InventoryRow) //nolint:forcetypeassert // gorp returns pointers to the registered row type here
	}
	return result, nil
}

func (s *PostgresStore) ListUsage(ctx context.Context, providerIDs []int64, classNames []string) (map[ProviderClassKey]uint64, error) {
	fields := make(map[string]any)
	if len(providerIDs) > 0 {
		fields["provider_id"] = toAnySlice(providerIDs)
	}
	if len(classNames) > 0 {
		fields["resource_class"] = classNames
	}
	where, args := BuildSimpleWhereClause(fields, 0)
	query := "SELECT provider_id, resource_class, SUM(used) AS used FROM allocations"
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY provider_id, resource_class"

	var rows []struct {
		ProviderID    int64  `db:"provider_id"`
		ResourceClass string `db:"resource_class"`
		Used          uint64 `db:"used"`
	}
	_, err := s.DB.WithContext(ctx).Select(&rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("while listing usage: %w", err)
	}
	result := make(map[ProviderClassKey]uint64, len(rows))
	for _, r := range rows {
		result[ProviderClassKey{ProviderID: r.ProviderID, ClassName: r.ResourceClass}] = r.Used
	}
	return result, nil
}

func (s *PostgresStore) ListTraitsOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error) {
	if len(providerIDs) == 0 {
		return map[int64][]string{}, nil
	}
	where, args := BuildSimpleWhereClause(map[string]any{"provider_id": toAnySlice(providerIDs)}, 0)
	index, err := BuildArrayIndexOfDBResult(s.DB.WithContext(ctx), func(r ProviderTraitRow) int64 { return r.ProviderID },
		"SELECT * FROM provider_traits WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("while listing provider traits: %w", err)
	}
	result := make(map[int64][]string, len(index))
	for providerID, rows := range index {
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.TraitName
		}
		result[providerID] = names
	}
	return result, nil
}

func (s *PostgresStore) ListAggregatesOf(ctx context.Context, providerIDs []int64) (map[int64][]string, error) {
	if len(providerIDs) == 0 {
		return map[int64][]string{}, nil
	}
	where, args := BuildSimpleWhereClause(map[string]any{"provider_id": toAnySlice(providerIDs)}, 0)
	index, err := BuildArrayIndexOfDBResult(s.DB.WithContext(ctx), func(r ProviderAggregateRow) int64 { return r.ProviderID },
		"SELECT * FROM provider_aggregates WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("while listing provider aggregates: %w", err)
	}
	result := make(map[int64][]string, len(index))
	for providerID, rows := range index {
		uuids := make([]string, len(rows))
		for i, r := range rows {
			uuids[i] = r.AggregateUUID
		}
		result[providerID] = uuids
	}
	return result, nil
}

func (s *PostgresStore) ProvidersWithTrait(ctx context.Context, traitName string) ([]int64, error) {
	var rows []ProviderTraitRow
	_, err := s.DB.WithContext(ctx).Select(&rows, "SELECT * FROM provider_traits WHERE trait_name = $1", traitName)
	if err != nil {
		return nil, fmt.Errorf("while listing providers with trait %s: %w", traitName, err)
	}
	result := make([]int64, len(rows))
	for i, r := range rows {
		result[i] = r.ProviderID
	}
	return result, nil
}

func (s *PostgresStore) ListProviders(ctx context.Context) ([]ResourceProviderRow, error) {
	var rows []ResourceProviderRow
	_, err := s.DB.WithContext(ctx).Select(&rows, "SELECT * FROM resource_providers")
	if err != nil {
		return nil, fmt.Errorf("while listing resource providers: %w", err)
	}
	return rows, nil
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
