// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"os"

	"github.com/sapcc/go-bits/errext"
	"github.com/sapcc/go-bits/logg"
	yaml "gopkg.in/yaml.v2"
)

// CatalogConfiguration is the YAML document that seeds the standard
// resource class and trait catalog at startup. Modeled on
// ClusterConfiguration (internal/core/config.go in the teacher), but scoped
// to just the two catalogs this engine needs.
type CatalogConfiguration struct {
	StandardResourceClasses []string `yaml:"standard_resource_classes"`
	StandardTraits          []string `yaml:"standard_traits"`
}

// NewCatalogConfigurationFromFile loads a CatalogConfiguration from a YAML
// file, the way core.NewConfiguration loads ClusterConfiguration in the
// teacher.
func NewCatalogConfigurationFromFile(path string) (cfg CatalogConfiguration, errs errext.ErrorSet) {
	buf, err := os.ReadFile(path)
	if err != nil {
		errs.Addf("cannot read catalog configuration from %s: %w", path, err)
		return cfg, errs
	}
	err = yaml.UnmarshalStrict(buf, &cfg)
	if err != nil {
		errs.Addf("cannot parse catalog configuration from %s: %w", path, err)
		return cfg, errs
	}
	errs.Append(cfg.Validate())
	return cfg, errs
}

// Validate reports, at once via errext.ErrorSet, an empty
// standard_resource_classes list and a standard_traits list lacking the
// marker trait, mirroring internal/core/constraints.go's validation style in
// the teacher. Duplicate names and CUSTOM_-prefixed standard names are not
// reported here; NewCatalog returns those as an error.
func (cfg CatalogConfiguration) Validate() (errs errext.ErrorSet) {
	if len(cfg.StandardResourceClasses) == 0 {
		errs.Addf("standard_resource_classes must not be empty")
	}
	hasMarker := false
	for _, name := range cfg.StandardTraits {
		if name == MarkerTraitSharesViaAggregate {
			hasMarker = true
		}
	}
	if !hasMarker {
		errs.Addf("standard_traits must include the marker trait %s", MarkerTraitSharesViaAggregate)
	}
	return errs
}

// NewCatalog builds and seeds a Catalog from this configuration. If seeding
// panics on a malformed entry that Validate did not already catch, the panic
// is recovered and returned as an error.
func (cfg CatalogConfiguration) NewCatalog() (catalog *Catalog, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("catalog seed failed: %v", r)
		}
	}()
	catalog = NewCatalog()
	catalog.SeedStandardClasses(cfg.StandardResourceClasses)
	catalog.SeedStandardTraits(cfg.StandardTraits)
	logg.Debug("seeded catalog with %d standard resource classes and %d standard traits",
		len(cfg.StandardResourceClasses), len(cfg.StandardTraits))
	return catalog, nil
}
