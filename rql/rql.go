package rql

import (
	"fmt"
	"strings"
)

// Node is a node in the resource-query tree. All implementations live
// in this package; the set of shapes is closed.
type Node interface {
	fmt.Stringer
	node()
}

// LogicOp is the combinator of a GroupExpr.
type LogicOp uint8

// Logical operators.
const (
	OpAnd LogicOp = iota
	OpOr
)

// String returns the query-language name of the operator.
func (op LogicOp) String() string {
	if op == OpOr {
		return "or"
	}
	return "and"
}

// CompareOp is the operator of a CompareExpr.
type CompareOp uint8

// Comparison operators.
const (
	EQOp CompareOp = iota
	NEOp
	LTOp
	LEOp
	GTOp
	GEOp
)

// String returns the query-language name of the operator.
func (op CompareOp) String() string {
	switch op {
	case NEOp:
		return "ne"
	case LTOp:
		return "lt"
	case LEOp:
		return "le"
	case GTOp:
		return "gt"
	case GEOp:
		return "ge"
	default:
		return "eq"
	}
}

// AggregateFn is an aggregate function applied to a field.
type AggregateFn uint8

// Aggregate functions.
const (
	FnMax AggregateFn = iota
	FnMin
	FnMean
	FnSum
	FnCount
)

// String returns the query-language name of the function.
func (fn AggregateFn) String() string {
	switch fn {
	case FnMin:
		return "min"
	case FnMean:
		return "mean"
	case FnSum:
		return "sum"
	case FnCount:
		return "count"
	default:
		return "max"
	}
}

// GroupExpr combines child nodes with a logical operator.
type GroupExpr struct {
	Op LogicOp
	Xs []Node
}

// CompareExpr compares a field against a single value.
type CompareExpr struct {
	Op    CompareOp
	Field string
	Value any
}

// MemberExpr tests a field for membership in a value set.
// Negate selects NOT IN semantics (the "out" operator).
type MemberExpr struct {
	Negate bool
	Field  string
	Values []any
}

// MatchMode selects the pattern-match flavor of a MatchExpr.
type MatchMode uint8

// Pattern-match modes.
const (
	MatchLike MatchMode = iota
	MatchContains
	MatchExcludes
)

// String returns the query-language name of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchContains:
		return "contains"
	case MatchExcludes:
		return "excludes"
	default:
		return "like"
	}
}

// MatchExpr matches a field against one or more wildcard patterns.
// Patterns use the query-language wildcards: '*' for any run of
// characters and '?' for a single character.
type MatchExpr struct {
	Mode     MatchMode
	Field    string
	Patterns []any
}

// CallExpr applies an aggregate function to a field. It appears either
// bare (a single-row aggregate query) or as a term of AggregateClause.
type CallExpr struct {
	Fn    AggregateFn
	Field string
}

// PropertyExpr names a bare field, used as a grouping term inside
// AggregateClause.
type PropertyExpr struct {
	Name string
}

// SortEntry is one field of a sort clause.
type SortEntry struct {
	Field string
	Desc  bool
}

// SortClause orders the result set by its entries, in order.
type SortClause struct {
	Entries []SortEntry
}

// SelectClause restricts the fields included in the result.
type SelectClause struct {
	Fields []string
}

// AggregateClause holds a mixed list of grouping terms (PropertyExpr)
// and aggregate terms (CallExpr).
type AggregateClause struct {
	Terms []Node
}

// DistinctClause requests duplicate elimination.
type DistinctClause struct{}

// ValuesClause requests the distinct values of a single field.
type ValuesClause struct {
	Field string
}

// LimitClause pages the result set. Start is one-based.
type LimitClause struct {
	Start int64
	Count int64
}

// FirstClause requests only the first row.
type FirstClause struct{}

// OneClause requests exactly one row.
type OneClause struct{}

// NoopExpr is the empty query.
type NoopExpr struct{}

func (*GroupExpr) node()       {}
func (*CompareExpr) node()     {}
func (*MemberExpr) node()      {}
func (*MatchExpr) node()       {}
func (*CallExpr) node()        {}
func (*PropertyExpr) node()    {}
func (*SortClause) node()      {}
func (*SelectClause) node()    {}
func (*AggregateClause) node() {}
func (*DistinctClause) node()  {}
func (*ValuesClause) node()    {}
func (*LimitClause) node()     {}
func (*FirstClause) node()     {}
func (*OneClause) node()       {}
func (*NoopExpr) node()        {}

// And combines nodes with AND semantics.
func And(xs ...Node) *GroupExpr { return &GroupExpr{Op: OpAnd, Xs: xs} }

// Or combines nodes with OR semantics.
func Or(xs ...Node) *GroupExpr { return &GroupExpr{Op: OpOr, Xs: xs} }

// EQ matches rows whose field equals v. A nil v matches NULL.
func EQ(field string, v any) *CompareExpr { return &CompareExpr{Op: EQOp, Field: field, Value: v} }

// NE matches rows whose field does not equal v. A nil v matches NOT NULL.
func NE(field string, v any) *CompareExpr { return &CompareExpr{Op: NEOp, Field: field, Value: v} }

// LT matches rows whose field is less than v.
func LT(field string, v any) *CompareExpr { return &CompareExpr{Op: LTOp, Field: field, Value: v} }

// LE matches rows whose field is less than or equal to v.
func LE(field string, v any) *CompareExpr { return &CompareExpr{Op: LEOp, Field: field, Value: v} }

// GT matches rows whose field is greater than v.
func GT(field string, v any) *CompareExpr { return &CompareExpr{Op: GTOp, Field: field, Value: v} }

// GE matches rows whose field is greater than or equal to v.
func GE(field string, v any) *CompareExpr { return &CompareExpr{Op: GEOp, Field: field, Value: v} }

// In matches rows whose field is one of vs, in order.
func In(field string, vs ...any) *MemberExpr { return &MemberExpr{Field: field, Values: vs} }

// Out matches rows whose field is none of vs.
func Out(field string, vs ...any) *MemberExpr {
	return &MemberExpr{Negate: true, Field: field, Values: vs}
}

// Like matches rows whose field matches any of the wildcard patterns.
func Like(field string, patterns ...any) *MatchExpr {
	return &MatchExpr{Mode: MatchLike, Field: field, Patterns: patterns}
}

// Contains matches rows whose field matches any of the wildcard
// patterns; patterns are OR-joined like Like.
func Contains(field string, patterns ...any) *MatchExpr {
	return &MatchExpr{Mode: MatchContains, Field: field, Patterns: patterns}
}

// Excludes matches rows whose field matches none of the wildcard
// patterns; patterns are AND-joined NOT LIKE terms.
func Excludes(field string, patterns ...any) *MatchExpr {
	return &MatchExpr{Mode: MatchExcludes, Field: field, Patterns: patterns}
}

// Max aggregates the maximum of field.
func Max(field string) *CallExpr { return &CallExpr{Fn: FnMax, Field: field} }

// Min aggregates the minimum of field.
func Min(field string) *CallExpr { return &CallExpr{Fn: FnMin, Field: field} }

// Mean aggregates the average of field.
func Mean(field string) *CallExpr { return &CallExpr{Fn: FnMean, Field: field} }

// Sum aggregates the sum of field.
func Sum(field string) *CallExpr { return &CallExpr{Fn: FnSum, Field: field} }

// Count aggregates the count of field.
func Count(field string) *CallExpr { return &CallExpr{Fn: FnCount, Field: field} }

// Property names a bare grouping field inside Aggregate.
func Property(name string) *PropertyExpr { return &PropertyExpr{Name: name} }

// Sort orders the result by the given entries.
func Sort(entries ...SortEntry) *SortClause { return &SortClause{Entries: entries} }

// Asc sorts a field ascending.
func Asc(field string) SortEntry { return SortEntry{Field: field} }

// Desc sorts a field descending.
func Desc(field string) SortEntry { return SortEntry{Field: field, Desc: true} }

// Select restricts the included fields.
func Select(fields ...string) *SelectClause { return &SelectClause{Fields: fields} }

// Aggregate groups the result by its PropertyExpr terms and computes
// its CallExpr terms.
func Aggregate(terms ...Node) *AggregateClause { return &AggregateClause{Terms: terms} }

// Distinct requests duplicate elimination.
func Distinct() *DistinctClause { return &DistinctClause{} }

// Values requests the distinct values of a single field.
func Values(field string) *ValuesClause { return &ValuesClause{Field: field} }

// Limit pages the result: start is one-based, count is the page size.
func Limit(start, count int64) *LimitClause { return &LimitClause{Start: start, Count: count} }

// First requests only the first row.
func First() *FirstClause { return &FirstClause{} }

// One requests exactly one row.
func One() *OneClause { return &OneClause{} }

// Noop is the empty query.
func Noop() *NoopExpr { return &NoopExpr{} }

// Walk calls f for n and, when n is a GroupExpr, for every node
// reachable through nested groups. Clause nodes are visited but not
// descended into. Walk stops early when f returns false.
func Walk(n Node, f func(Node) bool) {
	walk(n, f)
}

func walk(n Node, f func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !f(n) {
		return false
	}
	if g, ok := n.(*GroupExpr); ok {
		for _, x := range g.Xs {
			if !walk(x, f) {
				return false
			}
		}
	}
	return true
}

func (g *GroupExpr) String() string {
	xs := make([]string, len(g.Xs))
	for i, x := range g.Xs {
		xs[i] = x.String()
	}
	return fmt.Sprintf("%s(%s)", g.Op, strings.Join(xs, ","))
}

func (c *CompareExpr) String() string {
	return fmt.Sprintf("%s(%s,%s)", c.Op, c.Field, literal(c.Value))
}

func (m *MemberExpr) String() string {
	name := "in"
	if m.Negate {
		name = "out"
	}
	return fmt.Sprintf("%s(%s,%s)", name, m.Field, literals(m.Values))
}

func (m *MatchExpr) String() string {
	return fmt.Sprintf("%s(%s,%s)", m.Mode, m.Field, literals(m.Patterns))
}

func (c *CallExpr) String() string { return fmt.Sprintf("%s(%s)", c.Fn, c.Field) }

func (p *PropertyExpr) String() string { return p.Name }

func (s *SortClause) String() string {
	entries := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		dir := "+"
		if e.Desc {
			dir = "-"
		}
		entries[i] = dir + e.Field
	}
	return fmt.Sprintf("sort(%s)", strings.Join(entries, ","))
}

func (s *SelectClause) String() string {
	return fmt.Sprintf("select(%s)", strings.Join(s.Fields, ","))
}

func (a *AggregateClause) String() string {
	terms := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		terms[i] = t.String()
	}
	return fmt.Sprintf("aggregate(%s)", strings.Join(terms, ","))
}

func (*DistinctClause) String() string { return "distinct()" }

func (v *ValuesClause) String() string { return fmt.Sprintf("values(%s)", v.Field) }

func (l *LimitClause) String() string { return fmt.Sprintf("limit(%d,%d)", l.Start, l.Count) }

func (*FirstClause) String() string { return "first()" }

func (*OneClause) String() string { return "one()" }

func (*NoopExpr) String() string { return "noop()" }

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "null()"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

func literals(vs []any) string {
	ls := make([]string, len(vs))
	for i, v := range vs {
		ls[i] = literal(v)
	}
	return strings.Join(ls, ",")
}
