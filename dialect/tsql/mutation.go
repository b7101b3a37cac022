package tsql

import (
	"reflect"
	"strings"

	"github.com/queryfront/tsql/rql"
	"github.com/queryfront/tsql/schema"
)

// One compiles the single-entity select for the entity type of v. The
// statement is never paged; the caller consumes only the first row.
func (c *Compiler) One(v any, n rql.Node) (*Statement, error) {
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
	return c.standardShape(e, n, analyze(n), 0, false)
}

// Count compiles the row-count statement for the query. The shape
// mirrors Collection: queries that produce a single row by construction
// count as 1 without touching the table; distinct, values and grouped
// shapes count the rows of their select as a subquery.
func (c *Compiler) Count(v any, n rql.Node) (*Statement, error) {
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
	if len(info.calls) > 0 || info.first {
		return &Statement{Text: "SELECT 1"}, nil
	}
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	var b Builder
	switch {
	case info.values != nil:
		f, err := resolveField(e, info.values.Field)
		if err != nil {
			return nil, err
		}
		b.WriteString("SELECT COUNT(*) FROM (SELECT DISTINCT ").WriteString(qualify(f))
		b.WriteString(" FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
		if where != "" {
			b.WriteString(" WHERE ").WriteString(where)
		}
		b.WriteString(") AS ").Ident("T")
	case info.agg != nil:
		inner, err := c.groupedSelect(e, info, where)
		if err != nil {
			return nil, err
		}
		b.WriteString("SELECT COUNT(*) FROM (").WriteString(inner).WriteString(") AS ").Ident("T")
	case info.distinct:
		fields := includedFields(e, info)
		cols := make([]string, len(fields))
		for i, f := range fields {
			cols[i] = qualify(f)
		}
		b.WriteString("SELECT COUNT(*) FROM (SELECT DISTINCT ").WriteString(strings.Join(cols, ", "))
		b.WriteString(" FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
		if where != "" {
			b.WriteString(" WHERE ").WriteString(where)
		}
		b.WriteString(") AS ").Ident("T")
	default:
		b.WriteString("SELECT COUNT(*) FROM ").WriteString(tableRef(e)).WriteString(" WITH(NOLOCK)")
		if where != "" {
			b.WriteString(" WHERE ").WriteString(where)
		}
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// groupedSelect renders the grouped aggregate select used as a count
// subquery: no ordering, no paging.
func (c *Compiler) groupedSelect(e *schema.Entity, info queryInfo, where string) (string, error) {
	var (
		terms   []string
		grouped []string
	)
	for _, term := range info.agg.Terms {
		switch term := term.(type) {
		case *rql.PropertyExpr:
			f, err := resolveField(e, term.Name)
			if err != nil {
				return "", err
			}
			terms = append(terms, qualify(f))
			grouped = append(grouped, qualify(f))
		case *rql.CallExpr:
			f, err := resolveField(e, term.Field)
			if err != nil {
				return "", err
			}
			terms = append(terms, aggregateTerm(f, term.Fn))
		}
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
	return b.String(), nil
}

// Insert compiles the insert statement for item. Identity and
// auto-generated columns are excluded from the column list; when the
// entity has an identity column, an OUTPUT clause returns the generated
// key in the same round trip.
func (c *Compiler) Insert(item any) (*Statement, error) {
	e, err := c.reg.Describe(item)
	if err != nil {
		return nil, err
	}
	rv := reflect.Indirect(reflect.ValueOf(item))
	ps := &Params{}
	var cols, names []string
	for _, f := range e.Fields() {
		if f.Identity || f.AutoGenerated {
			continue
		}
		p, err := ps.bind(f, fieldValue(rv, f))
		if err != nil {
			return nil, err
		}
		cols = append(cols, ident(f.Column))
		names = append(names, p.Name)
	}
	var b Builder
	b.WriteString("INSERT INTO ").WriteString(tableRef(e))
	b.WriteString(" (").WriteString(strings.Join(cols, ", ")).WriteString(")")
	if id := e.Identity(); id != nil {
		b.WriteString(" OUTPUT inserted.").Ident(id.Column)
	}
	b.WriteString(" VALUES (").WriteString(strings.Join(names, ", ")).WriteString(")")
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// Update compiles the update statement for item with the predicate of
// n. A select clause in n restricts the SET list; without one, fields
// marked skip-on-update are left alone. Key and auto-generated columns
// are never set.
func (c *Compiler) Update(item any, n rql.Node) (*Statement, error) {
	e, err := c.reg.Describe(item)
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
	rv := reflect.Indirect(reflect.ValueOf(item))
	ps := &Params{}
	var sets []string
	for _, f := range e.Fields() {
		if f.PrimaryKey || f.Identity || f.AutoGenerated {
			continue
		}
		if info.sel != nil {
			if !selectedField(info.sel, f.Name) {
				continue
			}
		} else if f.SkipOnUpdate {
			continue
		}
		p, err := ps.bind(f, fieldValue(rv, f))
		if err != nil {
			return nil, err
		}
		sets = append(sets, ident(f.Column)+" = "+p.Name)
	}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	var b Builder
	b.WriteString("UPDATE ").WriteString(tableRef(e))
	b.WriteString(" SET ").WriteString(strings.Join(sets, ", "))
	if where != "" {
		b.WriteString(" WHERE ").WriteString(where)
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// Delete compiles the delete statement for the entity type of v with
// the predicate of n.
func (c *Compiler) Delete(v any, n rql.Node) (*Statement, error) {
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
	ps := &Params{}
	where, err := CompileWhere(e, n, ps)
	if err != nil {
		return nil, err
	}
	var b Builder
	b.WriteString("DELETE FROM ").WriteString(tableRef(e))
	if where != "" {
		b.WriteString(" WHERE ").WriteString(where)
	}
	return &Statement{Text: b.String(), Params: ps.List()}, nil
}

// fieldValue reads the struct field backing f from rv.
func fieldValue(rv reflect.Value, f *schema.Field) any {
	idx := f.StructIndex()
	if !rv.IsValid() || idx < 0 || idx >= rv.NumField() {
		return nil
	}
	return rv.Field(idx).Interface()
}
