// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package db

var sqlMigrations = map[string]string{
	"001_initial.up.sql": `
		CREATE TABLE resource_providers (
			id          BIGSERIAL  NOT NULL PRIMARY KEY,
			uuid        TEXT       NOT NULL UNIQUE,
			name        TEXT       NOT NULL UNIQUE,
			generation  BIGINT     NOT NULL DEFAULT 0
		);

		CREATE TABLE inventories (
			provider_id       BIGINT   NOT NULL REFERENCES resource_providers ON DELETE CASCADE,
			resource_class    TEXT     NOT NULL,
			total             BIGINT   NOT NULL,
			reserved          BIGINT   NOT NULL DEFAULT 0,
			min_unit          BIGINT   NOT NULL DEFAULT 1,
			max_unit          BIGINT   NOT NULL,
			step_size         BIGINT   NOT NULL DEFAULT 1,
			allocation_ratio  REAL     NOT NULL DEFAULT 1.0,
			PRIMARY KEY (provider_id, resource_class)
		);

		CREATE TABLE allocations (
			id              BIGSERIAL  NOT NULL PRIMARY KEY,
			consumer_uuid   TEXT       NOT NULL,
			provider_id     BIGINT     NOT NULL REFERENCES resource_providers ON DELETE CASCADE,
			resource_class  TEXT       NOT NULL,
			used            BIGINT     NOT NULL
		);
		CREATE INDEX allocations_provider_class_idx ON allocations (provider_id, resource_class);

		CREATE TABLE provider_traits (
			provider_id  BIGINT  NOT NULL REFERENCES resource_providers ON DELETE CASCADE,
			trait_name   TEXT    NOT NULL,
			PRIMARY KEY (provider_id, trait_name)
		);
		CREATE INDEX provider_traits_trait_idx ON provider_traits (trait_name);

		CREATE TABLE provider_aggregates (
			provider_id     BIGINT  NOT NULL REFERENCES resource_providers ON DELETE CASCADE,
			aggregate_uuid  TEXT    NOT NULL,
			PRIMARY KEY (provider_id, aggregate_uuid)
		);
		CREATE INDEX provider_aggregates_aggregate_idx ON provider_aggregates (aggregate_uuid);
	`,
	"001_initial.down.sql": `
		DROP TABLE provider_aggregates;
		DROP TABLE provider_traits;
		DROP TABLE allocations;
		DROP TABLE inventories;
		DROP TABLE resource_providers;
	`,
}
