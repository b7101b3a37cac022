// Package tsql compiles resource-query trees into SQL Server
// statements and materializes result rows back into entities.
//
// The Compiler is the main entry point. Given a registry of entity
// metadata, it builds collection, point-query and mutation statements
// with positional @P0-style parameters:
//
//	reg := schema.NewRegistry()
//	reg.MustRegister(Author{}, schema.New("Authors",
//	    schema.Int("AuthorId").Key().Identity(),
//	    schema.VarChar("FirstName").Len(50),
//	    schema.VarChar("LastName").Len(50),
//	    schema.VarChar("Website").Nullable(),
//	).Schema("dbo"))
//
//	c := tsql.New(reg)
//	stmt, err := c.Collection(Author{}, rql.And(
//	    rql.EQ("LastName", "Twain"),
//	    rql.Sort(rql.Asc("FirstName")),
//	), 100, false)
//
// Statements carry their bind parameters in placeholder order; Args
// converts them to sql.Named values for database/sql execution. ScanRow
// performs the inverse mapping from a result row to an entity struct.
//
// All compilation is pure and allocation-local: the compiler holds no
// mutable state and is safe for concurrent use.
package tsql
