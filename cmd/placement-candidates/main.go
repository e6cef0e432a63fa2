// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"

	"github.com/sapcc/placement/internal/api"
	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/db"
	"github.com/sapcc/placement/internal/pprofapi"
)

func main() {
	configPath := osext.GetenvOrDefault("PLACEMENT_CATALOG_CONFIG_PATH", "/etc/placement/catalog.yaml")
	catalogCfg, errs := core.NewCatalogConfigurationFromFile(configPath)
	if !errs.IsEmpty() {
		for _, err := range errs {
			logg.Error(err.Error())
		}
		logg.Fatal("cannot load catalog configuration (see errors above)")
	}
	catalog, err := catalogCfg.NewCatalog()
	if err != nil {
		logg.Fatal(err.Error())
	}

	dbConn, err := db.Init()
	if err != nil {
		logg.Fatal("cannot connect to database: %s", err.Error())
	}
	dbMap := db.InitORM(dbConn)
	store := db.NewPostgresStore(dbMap)

	v1API := api.NewV1API(store, catalog)
	handler := httpapi.Compose(
		v1API,
		httpapi.HealthCheckAPI{SkipRequestLog: true},
		pprofapi.API{IsAuthorized: func(r *http.Request) bool { return osext.GetenvBool("PLACEMENT_DEBUG_PPROF") }},
	)
	handler = logg.Middleware{}.Wrap(handler)

	if allowedOrigins := os.Getenv("PLACEMENT_CORS_ALLOWED_ORIGINS"); allowedOrigins != "" {
		handler = cors.New(cors.Options{
			AllowedOrigins: []string{allowedOrigins},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(handler)
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	listenAddress := osext.GetenvOrDefault("PLACEMENT_API_LISTEN_ADDRESS", ":8080")
	logg.Info("listening on " + listenAddress)
	err = http.ListenAndServe(listenAddress, mux) //nolint:gosec // no timeouts configured, matching the teacher's cmd/limes/main.go
	if err != nil {
		logg.Fatal(err.Error())
	}
}
