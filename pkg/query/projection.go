// Package query renders parameterized PostgreSQL SELECT statements from
// view property names, composable predicates, and sort fields.
package query

import "strings"

// ProjectionMap binds view property names to qualified columns over a base
// table and its joins. Columns are selected in the order they are projected.
type ProjectionMap struct {
	table   string
	alias   string
	joins   []string
	columns map[string]string
	order   []string
}

// NewProjectionMap starts a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   schema + "." + table + " " + alias,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps a base table column to viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.ProjectJoined(p.alias, column, viewName)
}

// ProjectJoined maps a column of the table joined as alias to viewName.
func (p *ProjectionMap) ProjectJoined(alias, column, viewName string) *ProjectionMap {
	qualified := alias + "." + column
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Join appends a join clause such as "JOIN public.users u ON u.id = p.creator_id".
func (p *ProjectionMap) Join(clause string) *ProjectionMap {
	p.joins = append(p.joins, clause)
	return p
}

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.table
}

// From returns the base table followed by its joins.
func (p *ProjectionMap) From() string {
	return strings.Join(append([]string{p.table}, p.joins...), " ")
}

// Column resolves viewName, passing unmapped names through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	return p.order
}
