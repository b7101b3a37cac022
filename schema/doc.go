// Package schema declares entity metadata: which table backs a mapped
// type and how each of its properties binds to a column.
//
// Metadata is built once at startup with the fluent field builders and
// registered against a prototype struct type:
//
//	var reg = schema.NewRegistry()
//
//	type Author struct {
//	    AuthorID  int
//	    FirstName string
//	    LastName  string
//	    Website   *string
//	}
//
//	reg.MustRegister(Author{}, schema.New("Authors",
//	    schema.Int("AuthorId").Key().Identity(),
//	    schema.VarChar("FirstName").Len(50),
//	    schema.VarChar("LastName").Len(50),
//	    schema.VarChar("Website").Len(200).Nullable(),
//	).Schema("dbo"))
//
// Definitions can also be loaded from YAML files with LoadYAML.
//
// Registered entities are immutable; lookups through Registry.Describe
// are cheap and safe for concurrent use. A field without a descriptor
// is invisible to every statement builder.
package schema
