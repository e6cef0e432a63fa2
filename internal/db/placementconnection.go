// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"database/sql"
	"os"

	"github.com/dlmiddlecote/sqlstats"
	gorp "github.com/go-gorp/gorp/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sapcc/go-bits/easypg"
	"github.com/sapcc/go-bits/osext"
	"github.com/sapcc/go-bits/sqlext"
)

// Configuration returns the easypg.Configuration object that func Init()
// needs to initialize the DB connection, mirroring the teacher's
// db.Configuration().
func Configuration() easypg.Configuration {
	return easypg.Configuration{
		Migrations: sqlMigrations,
	}
}

// Init initializes the connection to the Postgres database backing the
// placement engine's provider/inventory/allocation/trait/aggregate tables.
// Connection parameters come from the PLACEMENT_DB_* environment variables.
// Hostname, port, username and database name fall back to the matching
// LIMES_DB_* variable for parity with the teacher; the password and
// connection options are read from PLACEMENT_DB_* only.
func Init() (*sql.DB, error) {
	dbURL, err := easypg.URLFrom(easypg.URLParts{
		HostName:          envOrLimesEnv("PLACEMENT_DB_HOSTNAME", "LIMES_DB_HOSTNAME", "localhost"),
		Port:              envOrLimesEnv("PLACEMENT_DB_PORT", "LIMES_DB_PORT", "5432"),
		UserName:          envOrLimesEnv("PLACEMENT_DB_USERNAME", "LIMES_DB_USERNAME", "postgres"),
		Password:          os.Getenv("PLACEMENT_DB_PASSWORD"),
		ConnectionOptions: os.Getenv("PLACEMENT_DB_CONNECTION_OPTIONS"),
		DatabaseName:      envOrLimesEnv("PLACEMENT_DB_NAME", "LIMES_DB_NAME", "placement"),
	})
	if err != nil {
		return nil, err
	}
	dbConn, err := easypg.Connect(dbURL, Configuration())
	if err != nil {
		return nil, err
	}
	prometheus.MustRegister(sqlstats.NewStatsCollector("placement", dbConn))
	return dbConn, nil
}

func envOrLimesEnv(primary, fallback, defaultValue string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return osext.GetenvOrDefault(fallback, defaultValue)
}

// InitORM wraps a database connection into a gorp.DbMap instance holding
// the placement engine's own tables.
func InitORM(dbConn *sql.DB) *gorp.DbMap {
	// the candidate engine issues many short reads per request; cap pool size
	// so this process does not starve its neighbors for DB connections
	dbConn.SetMaxOpenConns(16)

	dbMap := &gorp.DbMap{Db: dbConn, Dialect: gorp.PostgresDialect{}}
	initPlacementGorp(dbMap)
	return dbMap
}

// Interface provides the common methods that both SQL connections and
// transactions implement, exactly as in the teacher's db.Interface.
type Interface interface {
	// from database/sql
	sqlext.Executor

	// from github.com/go-gorp/gorp/v3
	Insert(args ...any) error
	Update(args ...any) (int64, error)
	Delete(args ...any) (int64, error)
	Select(i any, query string, args ...any) ([]any, error)
}
