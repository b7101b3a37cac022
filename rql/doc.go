// Package rql defines the resource-query abstract syntax tree consumed
// by the statement compilers in dialect/tsql.
//
// A query is a tree of Node values. Internal And/Or nodes combine
// predicate children; leaf nodes carry comparisons, set membership and
// pattern matches; clause nodes (Sort, Select, Aggregate, Distinct,
// Values, Limit, First, One) shape the statement the compiler emits.
//
// Trees are immutable values: build them once with the constructors and
// share them freely across goroutines.
//
//	q := rql.And(
//	    rql.EQ("Status", "active"),
//	    rql.Like("LastName", "T*", "J*"),
//	    rql.Sort(rql.Asc("LastName"), rql.Desc("CreatedAt")),
//	    rql.Limit(1, 25),
//	)
//
// Node implements String, rendering the canonical query-language form:
//
//	and(eq(Status,"active"),like(LastName,"T*","J*"),sort(+LastName,-CreatedAt),limit(1,25))
//
// The tree is usually produced by an upstream query-string parser; this
// package only defines the shapes the compiler understands.
package rql
