// Package postgres backs the benchmark core with PostgreSQL via pgx: the
// pool's dialer, mapping of PostgreSQL errors onto the store taxonomy,
// goose-driven schema migration, the reset-and-seed store, and the page
// workload that composes pool, scope, and strategy into one fetch task.
package postgres
