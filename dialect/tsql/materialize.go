package tsql

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/queryfront/tsql/rql"
	"github.com/queryfront/tsql/schema"
)

// RowScanner is the result-row surface the materializer reads from.
// *sql.Rows satisfies it.
type RowScanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

// ScanRow materializes the current row of rows into dest, a pointer to
// a registered entity struct. The query tree decides which fields are
// read, with the same inclusion rule the statement builders use.
// Cancellation is checked between fields; a cancelled context abandons
// the partially built entity and returns the context's error.
func (c *Compiler) ScanRow(ctx context.Context, rows RowScanner, dest any, n rql.Node) error {
	e, err := c.reg.Describe(dest)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &schema.NotAnEntityError{Type: reflect.TypeOf(dest)}
	}
	rv = rv.Elem()
	if n == nil {
		n = rql.Noop()
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	cells := make([]any, len(cols))
	for i := range cells {
		cells[i] = new(any)
	}
	if err := rows.Scan(cells...); err != nil {
		return err
	}
	byColumn := make(map[string]any, len(cols))
	for i, col := range cols {
		byColumn[strings.ToLower(col)] = *(cells[i].(*any))
	}
	for _, f := range includedFields(e, analyze(n)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, ok := byColumn[strings.ToLower(f.Column)]
		if !ok {
			cell, ok = byColumn[strings.ToLower(f.Name)]
		}
		if !ok {
			continue
		}
		target := rv.Field(f.StructIndex())
		if cell == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v, err := canonicalize(f, cell)
		if err != nil {
			return err
		}
		if err := assign(target, v, f); err != nil {
			return err
		}
	}
	return nil
}

// canonicalize converts a raw result cell to the canonical Go value of
// the field's native type, mirroring the write-path coercions.
func canonicalize(f *schema.Field, cell any) (any, error) {
	cell = indirect(cell)
	switch {
	case f.Type.Integer():
		if f.Type == schema.TypeBit {
			return coerceBit(f, cell)
		}
		i, ok := toInt64(cell)
		if !ok {
			return nil, coerr(f, cell)
		}
		return i, nil
	case f.Type.Decimal():
		d, err := toDecimal(f, cell)
		if err != nil {
			return nil, err
		}
		return d, nil
	case f.Type.Floating():
		fl, ok := toFloat64(cell)
		if !ok {
			return nil, coerr(f, cell)
		}
		return fl, nil
	case f.Type == schema.TypeHierarchyID:
		s, ok := toString(cell)
		if !ok {
			return nil, coerr(f, cell)
		}
		return strings.ReplaceAll(s, "/", "-"), nil
	case f.Type.Textual():
		s, ok := toString(cell)
		if !ok {
			return nil, coerr(f, cell)
		}
		// A char(1) column reads back as the single character even
		// when the backend pads or over-delivers.
		if (f.Type == schema.TypeChar || f.Type == schema.TypeNChar) && f.Size == 1 && s != "" {
			for _, r := range s {
				return string(r), nil
			}
		}
		return s, nil
	case f.Type.Binary():
		switch cell := cell.(type) {
		case []byte:
			return cell, nil
		default:
			return nil, coerr(f, cell)
		}
	case f.Type.Temporal():
		t, ok := toTime(cell)
		if !ok {
			return nil, coerr(f, cell)
		}
		if f.Type == schema.TypeDateTimeOffset {
			return t, nil
		}
		return t.UTC(), nil
	case f.Type == schema.TypeUniqueIdentifier:
		return coerceUUID(f, cell)
	default:
		return nil, coerr(f, cell)
	}
}

// assign stores a canonical value into the struct field, converting to
// the field's Go kind. A pointer field is allocated and set through.
func assign(target reflect.Value, v any, f *schema.Field) error {
	if target.Kind() == reflect.Pointer {
		target.Set(reflect.New(target.Type().Elem()))
		target = target.Elem()
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target.Type()) {
		target.Set(rv)
		return nil
	}
	switch target.Kind() {
	case reflect.Bool:
		switch v := v.(type) {
		case bool:
			target.SetBool(v)
			return nil
		case int64:
			target.SetBool(v != 0)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := toInt64(v); ok {
			target.SetInt(i)
			return nil
		}
		if s, ok := v.(string); ok && len(s) > 0 && target.Kind() == reflect.Int32 {
			// rune target for a single-character column
			target.SetInt(int64([]rune(s)[0]))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := toInt64(v); ok && i >= 0 {
			target.SetUint(uint64(i))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch v := v.(type) {
		case *apd.Decimal:
			fl, err := v.Float64()
			if err != nil {
				return coerr(f, v)
			}
			target.SetFloat(fl)
			return nil
		default:
			if fl, ok := toFloat64(v); ok {
				target.SetFloat(fl)
				return nil
			}
		}
	case reflect.String:
		switch v := v.(type) {
		case *apd.Decimal:
			target.SetString(v.Text('f'))
			return nil
		case uuid.UUID:
			target.SetString(v.String())
			return nil
		case time.Time:
			target.SetString(v.Format(time.RFC3339Nano))
			return nil
		default:
			if s, ok := toString(v); ok {
				target.SetString(s)
				return nil
			}
		}
	case reflect.Slice:
		if target.Type().Elem().Kind() == reflect.Uint8 {
			if b, ok := v.([]byte); ok {
				target.SetBytes(b)
				return nil
			}
			if id, ok := v.(uuid.UUID); ok {
				target.SetBytes(id[:])
				return nil
			}
		}
	case reflect.Struct:
		if d, ok := v.(*apd.Decimal); ok && target.Type() == reflect.TypeOf(apd.Decimal{}) {
			target.Set(reflect.ValueOf(*d))
			return nil
		}
	}
	if rv.Type().ConvertibleTo(target.Type()) {
		target.Set(rv.Convert(target.Type()))
		return nil
	}
	return coerr(f, v)
}
