package tsql

import (
	"strconv"
	"strings"

	"github.com/queryfront/tsql/rql"
	"github.com/queryfront/tsql/schema"
)

// Compiler compiles query trees into SQL Server statements for entities
// registered in its schema registry. The compiler holds no mutable
// state; all methods are safe for concurrent use.
type Compiler struct {
	reg *schema.Registry
}

// New returns a compiler over the given registry.
func New(reg *schema.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// queryInfo is the clause summary of one query tree.
type queryInfo struct {
	sel      *rql.SelectClause
	agg      *rql.AggregateClause
	calls    []*rql.CallExpr
	values   *rql.ValuesClause
	limit    *rql.LimitClause
	distinct bool
	first    bool
}

// analyze walks n once and records which clause nodes are present.
// Aggregate calls reached by the walk are bare: the walk does not
// descend into aggregate clauses.
func analyze(n rql.Node) queryInfo {
	var info queryInfo
	rql.Walk(n, func(x rql.Node) bool {
		switch x := x.(type) {
		case *rql.SelectClause:
			info.sel = x
		case *rql.AggregateClause:
			info.agg = x
		case *rql.CallExpr:
			info.calls = append(info.calls, x)
		case *rql.ValuesClause:
			info.values = x
		case *rql.LimitClause:
			info.limit = x
		case *rql.DistinctClause:
			info.distinct = true
		case *rql.FirstClause:
			info.first = true
		}
		return true
	})
	return info
}

// validateFields resolves every field reference in the tree so that an
// unknown name fails the whole compilation, not only the clause that
// happens to render it.
func validateFields(e *schema.Entity, n rql.Node) error {
	var err error
	resolve := func(name string) bool {
		if _, lookupErr := resolveField(e, name); lookupErr != nil {
			err = lookupErr
			return false
		}
		return true
	}
	rql.Walk(n, func(x rql.Node) bool {
		switch x := x.(type) {
		case *rql.CompareExpr:
			return resolve(x.Field)
		case *rql.MemberExpr:
			return resolve(x.Field)
		case *rql.MatchExpr:
			return resolve(x.Field)
		case *rql.CallExpr:
			return resolve(x.Field)
		case *rql.ValuesClause:
			return resolve(x.Field)
		case *rql.SortClause:
			for _, entry := range x.Entries {
				if !resolve(entry.Field) {
					return false
				}
			}
		case *rql.SelectClause:
			for _, name := range x.Fields {
				if !resolve(name) {
					return false
				}
			}
		case *rql.AggregateClause:
			for _, term := range x.Terms {
				switch term := term.(type) {
				case *rql.PropertyExpr:
					if !resolve(term.Name) {
						return false
					}
				case *rql.CallExpr:
					if !resolve(term.Field) {
						return false
					}
				}
			}
		}
		return true
	})
	return err
}

// Collection compiles the query tree into the collection statement for
// the entity type of v. batchLimit caps the page size; noPaging drops
// the paging clause for shapes that allow it, unless the tree carries
// an explicit limit.
func (c *Compiler) Collection(v any, n rql.Node, batchLimit int64, noPaging bool) (*Statement, error) {
	e, err := c.reg.Describe(v)
	if err != nil {
		return nil, err
	}
	if n == nil {
		n = rql.Noop()
	}
	if err := validateFields(e, n); err != nil {
		return nil, err
	}
	info := analyze(n)
	if _, ok := n.(*rql.NoopExpr); ok {
		return c.standardShape(e, n, info, batchLimit, true)
	}
	switch {
	case len(info.calls) > 0:
		return c.bareAggregate(e, n, info)
	case info.values != nil:
		return c.valuesShape(e, n, info, batchLimit, noPaging)
	case noPaging && info.limit == nil:
		if info.agg != nil {
			return c.groupedAggregate(e, n, info, batchLimit, false)
		}
		return c.standardShape(e, n, info, batchLimit, false)
	case info.agg != nil:
		return c.groupedAggregate(e, n, info, batchLimit, true)
	default:
		return c.standardShape(e, n, info, batchLimit, true)
	}
}

// sqlFns maps aggregate functions to their SQL names.
var sqlFns = map[rql.AggregateFn]string{
	rql.FnMax:   "max",
	rql.FnMin:   "min",
	rql.FnMean:  "avg",
	rql.FnSum:   "sum",
	rql.FnCount: "count",
}

// aggregateTerm renders one aggregate select term, aliased back to the
// property name.
func aggregateTerm(f *schema.Field, fn rql.AggregateFn) string {
	return sqlFns[fn] + "(" + qualify(f) + ") as " + ident(f.Name)
}

// bareAggregate emits the single-row aggregate shape: one row of
// aggregate values, no grouping, no ordering, no paging.
func (c *Compiler) bareAggregate(e *schema.Entity, n rql.Node, info queryInfo) (*Statement, error) {
	aggregated := make(map[string]bool, len(info.calls))
	terms := make([]string, len(info.calls))
	for i, call := range info.calls {
		f, err := resolveField(e, call.Field)
		if err != nil {
			return nil, err
		}
		aggregated[strings.ToLower(f.Name)] = true
		terms[i] = aggregateTerm(f, call.Fn)
	}
	if info.sel != nil {
		for _, name := range info.sel.Fields {
			if !aggregated[strings.ToLower(name)] {
				return nil, ErrFieldNotAggregated
			}
		}
	}
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	var b Builder
	b.WriteString("SELECT ").WriteString(strings.Join(terms, ", "))
	b.WriteString(" FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
	if where != "" {
		b.WriteString(" WHERE ").WriteString(where)
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// valuesShape emits the distinct values of a single field.
func (c *Compiler) valuesShape(e *schema.Entity, n rql.Node, info queryInfo, batchLimit int64, noPaging bool) (*Statement, error) {
	if info.first {
		return nil, ErrIncompatibleClauses
	}
	f, err := resolveField(e, info.values.Field)
	if err != nil {
		return nil, err
	}
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	order, err := CompileOrderBy(e, n)
	if err != nil {
		return nil, err
	}
	if order == "" {
		order = qualify(f)
	}
	var b Builder
	b.WriteString("SELECT DISTINCT ").WriteString(qualify(f))
	b.WriteString(" FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
	if where != "" {
		b.WriteString(" WHERE ").WriteString(where)
	}
	b.WriteString(" ORDER BY ").WriteString(order)
	if !noPaging || info.limit != nil {
		b.WriteString(" ").WriteString(pagingClause(info.limit, batchLimit))
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// groupedAggregate emits the grouped aggregate shape: property terms
// become the select and group-by columns, call terms the aggregates.
func (c *Compiler) groupedAggregate(e *schema.Entity, n rql.Node, info queryInfo, batchLimit int64, paged bool) (*Statement, error) {
	var (
		terms   []string
		grouped []string
	)
	for _, term := range info.agg.Terms {
		switch term := term.(type) {
		case *rql.PropertyExpr:
			f, err := resolveField(e, term.Name)
			if err != nil {
				return nil, err
			}
			terms = append(terms, qualify(f))
			grouped = append(grouped, qualify(f))
		case *rql.CallExpr:
			f, err := resolveField(e, term.Field)
			if err != nil {
				return nil, err
			}
			terms = append(terms, aggregateTerm(f, term.Fn))
		}
	}
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	order, err := CompileOrderBy(e, n)
	if err != nil {
		return nil, err
	}
	var b Builder
	b.WriteString("SELECT ").WriteString(strings.Join(terms, ", "))
	b.WriteString(" FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
	if where != "" {
		b.WriteString(" WHERE ").WriteString(where)
	}
	if len(grouped) > 0 {
		b.WriteString(" GROUP BY ").WriteString(strings.Join(grouped, ", "))
	}
	if order == "" && paged && len(grouped) > 0 {
		order = grouped[0]
	}
	if order != "" {
		b.WriteString(" ORDER BY ").WriteString(order)
	}
	if paged {
		b.WriteString(" ").WriteString(pagingClause(info.limit, batchLimit))
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// standardShape emits the plain field-list select, optionally paged.
func (c *Compiler) standardShape(e *schema.Entity, n rql.Node, info queryInfo, batchLimit int64, paged bool) (*Statement, error) {
	fields := includedFields(e, info)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = qualify(f)
	}
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	order, err := CompileOrderBy(e, n)
	if err != nil {
		return nil, err
	}
	if order == "" {
		order = fallbackOrder(e)
	}
	var b Builder
	b.WriteString("SELECT ")
	if info.distinct {
		b.WriteString("DISTINCT ")
	}
	if info.first {
		b.WriteString("TOP 1 ")
	}
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString("\n FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
	if where != "" {
		b.WriteString("\n WHERE ").WriteString(where)
	}
	b.WriteString("\n ORDER BY ").WriteString(order)
	// TOP 1 already caps the result; the two clauses are mutually
	// exclusive in T-SQL.
	if paged && !info.first {
		b.WriteString("\n").WriteString(pagingClause(info.limit, batchLimit))
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// includedFields applies the field-inclusion rule: the primary key is
// always included, other fields only when no explicit select is present
// or when listed in it. Under aggregation, distinct, or values shapes
// the result rows no longer map 1:1 to stored rows, so the primary-key
// auto-inclusion is suppressed.
func includedFields(e *schema.Entity, info queryInfo) []*schema.Field {
	relaxed := info.agg != nil || len(info.calls) > 0 || info.distinct || info.values != nil
	var out []*schema.Field
	for _, f := range e.Fields() {
		switch {
		case f.PrimaryKey && !relaxed:
			out = append(out, f)
		case info.sel == nil:
			out = append(out, f)
		case selectedField(info.sel, f.Name):
			out = append(out, f)
		}
	}
	return out
}

func selectedField(sel *rql.SelectClause, name string) bool {
	for _, s := range sel.Fields {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// fallbackOrder generates the ordering used when the query carries no
// sort clause: the unqualified primary-key names, or every field name
// in declaration order for a keyless entity.
func fallbackOrder(e *schema.Entity) string {
	fields := e.Keys()
	if len(fields) == 0 {
		fields = e.Fields()
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// pagingClause renders OFFSET/FETCH from the optional limit clause.
// Start is one-based; the fetch count is kept within [1, batchLimit],
// since FETCH NEXT rejects non-positive row counts at execution time.
func pagingClause(limit *rql.LimitClause, batchLimit int64) string {
	start, count := int64(1), batchLimit
	if limit != nil {
		start, count = limit.Start, limit.Count
	}
	if start < 1 {
		start = 1
	}
	if count > batchLimit {
		count = batchLimit
	}
	if count < 1 {
		count = 1
	}
	return "OFFSET " + strconv.FormatInt(start-1, 10) +
		" ROWS FETCH NEXT " + strconv.FormatInt(count, 10) + " ROWS ONLY"
}
