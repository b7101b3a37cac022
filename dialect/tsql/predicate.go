package tsql

import (
	"strings"

	"github.com/queryfront/tsql/rql"
	"github.com/queryfront/tsql/schema"
)

// CompileWhere lowers the predicate subtree of n into a WHERE fragment,
// appending bind parameters to ps in placeholder order. Clause nodes
// (sort, select, paging and the like) contribute nothing; a tree with
// no predicates compiles to the empty string.
func CompileWhere(e *schema.Entity, n rql.Node, ps *Params) (string, error) {
	return compileWhere(e, n, ps, false)
}

func compileWhere(e *schema.Entity, n rql.Node, ps *Params, nested bool) (string, error) {
	switch n := n.(type) {
	case *rql.GroupExpr:
		return compileGroup(e, n, ps, nested)
	case *rql.CompareExpr:
		return compileCompare(e, n, ps)
	case *rql.MemberExpr:
		return compileMember(e, n, ps)
	case *rql.MatchExpr:
		return compileMatch(e, n, ps)
	default:
		return "", nil
	}
}

func compileGroup(e *schema.Entity, g *rql.GroupExpr, ps *Params, nested bool) (string, error) {
	sep := " AND "
	if g.Op == rql.OpOr {
		sep = " OR "
	}
	parts := make([]string, 0, len(g.Xs))
	for _, x := range g.Xs {
		part, err := compileWhere(e, x, ps, true)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	switch {
	case len(parts) == 0:
		return "", nil
	case len(parts) == 1:
		return parts[0], nil
	case nested:
		return "(" + strings.Join(parts, sep) + ")", nil
	default:
		return strings.Join(parts, sep), nil
	}
}

var compareOps = map[rql.CompareOp]string{
	rql.EQOp: "=",
	rql.NEOp: "<>",
	rql.LTOp: "<",
	rql.LEOp: "<=",
	rql.GTOp: ">",
	rql.GEOp: ">=",
}

func compileCompare(e *schema.Entity, c *rql.CompareExpr, ps *Params) (string, error) {
	f, err := resolveField(e, c.Field)
	if err != nil {
		return "", err
	}
	if indirect(c.Value) == nil {
		switch c.Op {
		case rql.EQOp:
			return qualify(f) + " IS NULL", nil
		case rql.NEOp:
			return qualify(f) + " IS NOT NULL", nil
		default:
			return "", ErrNullComparison
		}
	}
	p, err := ps.bind(f, c.Value)
	if err != nil {
		return "", err
	}
	return qualify(f) + " " + compareOps[c.Op] + " " + p.Name, nil
}

func compileMember(e *schema.Entity, m *rql.MemberExpr, ps *Params) (string, error) {
	f, err := resolveField(e, m.Field)
	if err != nil {
		return "", err
	}
	if len(m.Values) == 0 {
		return "", nil
	}
	names := make([]string, len(m.Values))
	for i, v := range m.Values {
		p, err := ps.bind(f, v)
		if err != nil {
			return "", err
		}
		names[i] = p.Name
	}
	op := " IN ("
	if m.Negate {
		op = " NOT IN ("
	}
	return qualify(f) + op + strings.Join(names, ", ") + ")", nil
}

func compileMatch(e *schema.Entity, m *rql.MatchExpr, ps *Params) (string, error) {
	f, err := resolveField(e, m.Field)
	if err != nil {
		return "", err
	}
	if len(m.Patterns) == 0 {
		return "", nil
	}
	op, sep := " LIKE (", " OR "
	if m.Mode == rql.MatchExcludes {
		op, sep = " NOT LIKE (", " AND "
	}
	terms := make([]string, len(m.Patterns))
	for i, pat := range m.Patterns {
		s, ok := toString(indirect(pat))
		if !ok {
			return "", coerr(f, pat)
		}
		p, err := ps.bind(f, translatePattern(s))
		if err != nil {
			return "", err
		}
		terms[i] = qualify(f) + op + p.Name + ")"
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return "(" + strings.Join(terms, sep) + ")", nil
}

// translatePattern rewrites query-language wildcards to their LIKE
// equivalents: '*' to '%' and '?' to '_'.
func translatePattern(s string) string {
	s = strings.ReplaceAll(s, "*", "%")
	return strings.ReplaceAll(s, "?", "_")
}

// CompileOrderBy lowers the sort clauses of n into an ORDER BY
// fragment with fully qualified columns. Sort clauses nested under
// logical groups concatenate in visit order; a tree without sort
// clauses compiles to the empty string.
func CompileOrderBy(e *schema.Entity, n rql.Node) (string, error) {
	var (
		parts   []string
		walkErr error
	)
	rql.Walk(n, func(x rql.Node) bool {
		s, ok := x.(*rql.SortClause)
		if !ok {
			return true
		}
		for _, entry := range s.Entries {
			f, err := resolveField(e, entry.Field)
			if err != nil {
				walkErr = err
				return false
			}
			part := qualify(f)
			if entry.Desc {
				part += " desc"
			}
			parts = append(parts, part)
		}
		return true
	})
	if walkErr != nil {
		return "", walkErr
	}
	return strings.Join(parts, ", "), nil
}

// resolveField looks up a query field name on e, case-insensitively.
func resolveField(e *schema.Entity, name string) (*schema.Field, error) {
	f, ok := e.Field(name)
	if !ok {
		return nil, &UnknownFieldError{Table: e.Table, Field: name}
	}
	return f, nil
}
