package tsql

import (
	"strings"

	"github.com/queryfront/tsql/schema"
)

// Builder is a low-level SQL text builder with bracket-quoted
// identifiers. Each statement builder allocates its own Builder; the
// type holds no shared state.
type Builder struct {
	sb strings.Builder
}

// WriteString appends raw text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Ident appends a bracket-quoted identifier.
func (b *Builder) Ident(name string) *Builder {
	b.sb.WriteString("[")
	b.sb.WriteString(name)
	b.sb.WriteString("]")
	return b
}

// IdentComma appends bracket-quoted identifiers separated by ", ".
func (b *Builder) IdentComma(names ...string) *Builder {
	for i, name := range names {
		if i > 0 {
			b.Comma()
		}
		b.Ident(name)
	}
	return b
}

// Comma appends ", ".
func (b *Builder) Comma() *Builder {
	b.sb.WriteString(", ")
	return b
}

// String returns the accumulated text.
func (b *Builder) String() string {
	return b.sb.String()
}

// ident quotes a single identifier.
func ident(name string) string {
	return "[" + name + "]"
}

// qualify renders the fully qualified column reference for f:
// [schema].[table].[column], or [table].[column] when the owning table
// has no schema.
func qualify(f *schema.Field) string {
	var b Builder
	if f.OwnerSchema != "" {
		b.Ident(f.OwnerSchema).WriteString(".")
	}
	b.Ident(f.OwnerTable).WriteString(".").Ident(f.Column)
	return b.String()
}

// tableRef renders the FROM-clause table reference for e, without the
// lock hint.
func tableRef(e *schema.Entity) string {
	var b Builder
	if e.Schema != "" {
		b.Ident(e.Schema).WriteString(".")
	}
	b.Ident(e.Table)
	return b.String()
}
