package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a view property name resolved
// through the ProjectionMap.
type SortField struct {
	Field      string
	Descending bool
}

// Builder renders SELECT statements over a ProjectionMap. Every predicate
// passed to Where is ANDed, and $%d placeholders are numbered in order.
type Builder struct {
	projection *ProjectionMap
	clauses    []string
	args       []any
	sort       []SortField
}

// NewBuilder creates a Builder ordered by sort when listing.
func NewBuilder(projection *ProjectionMap, sort ...SortField) *Builder {
	return &Builder{projection: projection, sort: sort}
}

// Where appends required predicates.
func (b *Builder) Where(preds ...Predicate) *Builder {
	for _, p := range preds {
		clause, args := p.render(b.projection)
		b.clauses = append(b.clauses, clause)
		b.args = append(b.args, args...)
	}
	return b
}

// WhereEquals adds an equality predicate unless value is nil or a nil pointer.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.Where(Equals(field, value))
}

// Build renders the filtered, ordered listing.
func (b *Builder) Build() (string, []any) {
	return b.compose(b.projection.Columns(), true, "")
}

// BuildCount renders a COUNT(*) over the same filters.
func (b *Builder) BuildCount() (string, []any) {
	return b.compose("COUNT(*)", false, "")
}

// BuildPage renders the ordered listing windowed by skip and limit.
func (b *Builder) BuildPage(skip, limit int) (string, []any) {
	return b.compose(b.projection.Columns(), true, fmt.Sprintf(" LIMIT %d OFFSET %d", limit, skip))
}

// BuildSingle renders a lookup of one row by idField, ignoring other predicates.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return NewBuilder(b.projection).Where(Equals(idField, id)).compose(b.projection.Columns(), false, "")
}

// BuildSingleOrNull renders the first row matching the current predicates.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	return b.compose(b.projection.Columns(), false, " LIMIT 1")
}

func (b *Builder) compose(selection string, ordered bool, tail string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selection)
	sb.WriteString(" FROM ")
	sb.WriteString(b.projection.From())

	if len(b.clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(number(strings.Join(b.clauses, " AND ")))
	}

	if ordered && len(b.sort) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, f := range b.sort {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.projection.Column(f.Field))
			if f.Descending {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
	}

	sb.WriteString(tail)
	return sb.String(), b.args
}

// number rewrites each $%d marker to $1, $2, ... in order of appearance.
func number(clause string) string {
	var sb strings.Builder
	n := 0
	for {
		i := strings.Index(clause, "$%d")
		if i < 0 {
			sb.WriteString(clause)
			return sb.String()
		}
		n++
		sb.WriteString(clause[:i])
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
		clause = clause[i+3:]
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
