// Package domain defines the core entities of the benchmark workload
// (owners, tasks, annotations) together with their validation rules and
// the static schema descriptors that map entity fields to table columns.
package domain
