package domain

import "strings"

// Column describes one mapped column of an entity table.
type Column struct {
	// Name is the column name in the database.
	Name string

	// Type is the PostgreSQL column type.
	Type string

	// Constraint holds any column-level constraint clause, or "".
	Constraint string
}

// TableSchema is an explicit, statically declared field-to-column mapping
// for one entity. Queries and DDL reference these descriptors instead of
// repeating table and column names as string literals. Entities stay plain
// records; the mapping lives here, separately, by composition.
type TableSchema struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnList returns the comma-separated column list for a SELECT or
// INSERT against this table.
func (s TableSchema) ColumnList() string {
	return strings.Join(s.ColumnNames(), ", ")
}

// QualifiedColumnList returns the column list with each column prefixed by
// the given table alias, as "alias.col".
func (s TableSchema) QualifiedColumnList(alias string) string {
	names := s.ColumnNames()
	for i, n := range names {
		names[i] = alias + "." + n
	}
	return strings.Join(names, ", ")
}

// AliasedColumnList returns the column list with each column prefixed by
// the table alias and renamed to "prefix_col", for joined queries whose
// rows carry columns from more than one table.
func (s TableSchema) AliasedColumnList(alias, prefix string) string {
	names := s.ColumnNames()
	for i, n := range names {
		names[i] = alias + "." + n + " AS " + prefix + "_" + n
	}
	return strings.Join(names, ", ")
}

// Static schema descriptors for the three entity tables. These are the
// single authority on table and column naming.
var (
	OwnerSchema = TableSchema{
		Name: "owners",
		Columns: []Column{
			{Name: "id", Type: "BIGSERIAL", Constraint: "PRIMARY KEY"},
			{Name: "username", Type: "TEXT", Constraint: "UNIQUE NOT NULL"},
		},
	}

	TaskSchema = TableSchema{
		Name: "tasks",
		Columns: []Column{
			{Name: "id", Type: "BIGSERIAL", Constraint: "PRIMARY KEY"},
			{Name: "title", Type: "TEXT", Constraint: "NOT NULL"},
			{Name: "is_done", Type: "BOOLEAN", Constraint: "NOT NULL DEFAULT FALSE"},
			{Name: "owner_id", Type: "BIGINT", Constraint: "NOT NULL REFERENCES owners (id)"},
		},
	}

	AnnotationSchema = TableSchema{
		Name: "annotations",
		Columns: []Column{
			{Name: "id", Type: "BIGSERIAL", Constraint: "PRIMARY KEY"},
			{Name: "body", Type: "TEXT", Constraint: "NOT NULL"},
			{Name: "task_id", Type: "BIGINT", Constraint: "NOT NULL REFERENCES tasks (id)"},
		},
	}
)
