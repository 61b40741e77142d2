package query

import (
	"fmt"
	"slices"
	"strings"
)

type predicateKind int

const (
	kindEquals predicateKind = iota
	kindContains
	kindIn
	kindAny
	kindAll
	kindExists
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Predicate is an immutable filter condition rendered against a ProjectionMap.
// Field names are view property names and resolve to qualified columns at build time.
// Predicates compose with AnyOf and AllOf into AND/OR trees.
type Predicate struct {
	kind     predicateKind
	field    string
	args     []any
	children []Predicate
	clause   string
}

// Equals matches rows where field equals value.
func Equals(field string, value any) Predicate {
	return Predicate{kind: kindEquals, field: field, args: []any{value}}
}

// Contains matches rows where field contains value as a case-insensitive substring.
// LIKE wildcards in value are escaped and match literally.
func Contains(field, value string) Predicate {
	pattern := "%" + likeEscaper.Replace(value) + "%"
	return Predicate{kind: kindContains, field: field, args: []any{pattern}}
}

// In matches rows where field equals any of values. An empty set matches nothing.
func In(field string, values ...any) Predicate {
	return Predicate{kind: kindIn, field: field, args: slices.Clone(values)}
}

// AnyOf matches rows satisfying at least one of preds. An empty group matches nothing.
func AnyOf(preds ...Predicate) Predicate {
	return Predicate{kind: kindAny, children: slices.Clone(preds)}
}

// AllOf matches rows satisfying every one of preds. An empty group matches everything.
func AllOf(preds ...Predicate) Predicate {
	return Predicate{kind: kindAll, children: slices.Clone(preds)}
}

// Exists matches rows for which the correlated sub-select returns a row.
// Parameters in subquery are written as $%d and numbered with the rest of the query.
func Exists(subquery string, args ...any) Predicate {
	return Predicate{kind: kindExists, clause: subquery, args: slices.Clone(args)}
}

func (p Predicate) render(proj *ProjectionMap) (string, []any) {
	switch p.kind {
	case kindEquals:
		return fmt.Sprintf("%s = $%%d", proj.Column(p.field)), p.args
	case kindContains:
		return fmt.Sprintf("%s ILIKE $%%d", proj.Column(p.field)), p.args
	case kindIn:
		if len(p.args) == 0 {
			return "FALSE", nil
		}
		placeholders := make([]string, len(p.args))
		for i := range p.args {
			placeholders[i] = "$%d"
		}
		return fmt.Sprintf("%s IN (%s)", proj.Column(p.field), strings.Join(placeholders, ", ")), p.args
	case kindAny:
		if len(p.children) == 0 {
			return "FALSE", nil
		}
		return renderGroup(proj, p.children, " OR ")
	case kindAll:
		if len(p.children) == 0 {
			return "TRUE", nil
		}
		return renderGroup(proj, p.children, " AND ")
	case kindExists:
		return fmt.Sprintf("EXISTS (%s)", p.clause), p.args
	}
	return "FALSE", nil
}

func renderGroup(proj *ProjectionMap, children []Predicate, sep string) (string, []any) {
	clauses := make([]string, len(children))
	args := make([]any, 0, len(children))
	for i, child := range children {
		clause, childArgs := child.render(proj)
		clauses[i] = clause
		args = append(args, childArgs...)
	}
	return "(" + strings.Join(clauses, sep) + ")", args
}
