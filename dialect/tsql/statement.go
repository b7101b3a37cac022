package tsql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/queryfront/tsql/schema"
)

// Statement is a compiled SQL statement: the text and the bind
// parameters it references, in binding order. Statements are built
// fresh per call and never share state.
type Statement struct {
	Text   string
	Params []*Param
}

// Args returns the parameters as sql.Named arguments for execution
// with database/sql.
func (s *Statement) Args() []any {
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		args[i] = sql.Named(strings.TrimPrefix(p.Name, "@"), p.Value)
	}
	return args
}

// Param is one bind parameter of a statement. Name is the positional
// placeholder as it appears in the text (@P0, @P1, ...). Value already
// carries the representation the driver expects for Type.
type Param struct {
	Name  string
	Type  schema.NativeType
	Value any
	// Precision and Scale are set for the decimal family.
	Precision int
	Scale     int
}

// Params accumulates the bind parameters of one statement under
// construction. The clause compilers share a single Params so that
// placeholder numbering is strictly increasing across the statement.
type Params struct {
	list []*Param
}

// List returns the accumulated parameters in binding order.
func (ps *Params) List() []*Param {
	return ps.list
}

// bind coerces v for f, appends the parameter and returns it.
func (ps *Params) bind(f *schema.Field, v any) (*Param, error) {
	p, err := BindParam(fmt.Sprintf("@P%d", len(ps.list)), f, v)
	if err != nil {
		return nil, err
	}
	ps.list = append(ps.list, p)
	return p, nil
}
