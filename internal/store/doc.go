// Package store defines the persistence-layer contracts shared by the
// query strategies, the seeding code, and the benchmark workload: the
// Querier abstraction over a connection or transaction, per-run query
// instrumentation, the transaction scope runner, and the error taxonomy
// that PostgreSQL failures are mapped onto.
package store
