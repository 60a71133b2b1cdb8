// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure MySQL and SQLite connections based on the application's configuration.
//
// # Connect
//
// Connect establishes a connection for the configured driver. The MySQL path
// sets pool limits and verifies the connection with a ping; the SQLite path
// opens the configured database file (or :memory:).
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The startup
// check uses MissingColumns to warn when the migrated claim tables have
// drifted from the models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "claim_list", []string{"id", "status"})
package database
