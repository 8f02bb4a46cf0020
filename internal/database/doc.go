// Package database opens the optional PostgreSQL connection pool used for
// reference data such as the providers table.
package database
