package tsql

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/queryfront/tsql/schema"
)

// epoch is the zero value bound for non-nullable date/time columns.
var epoch = time.Unix(0, 0).UTC()

// BindParam coerces v to the native representation of f's type and
// returns the parameter under the given placeholder name.
//
// A nil value binds NULL when the field is nullable and the native zero
// value (0, "", epoch date, empty bytes, nil GUID) otherwise. A value
// whose shape the native type does not accept fails with an error
// matching ErrUnsupportedCoercion.
func BindParam(name string, f *schema.Field, v any) (*Param, error) {
	p := &Param{Name: name, Type: f.Type}
	if f.Type.Decimal() {
		p.Precision, p.Scale = decimalPrecision(f)
	}
	v = indirect(v)
	if v == nil {
		if f.Nullable {
			return p, nil
		}
		p.Value = nativeZero(f)
		return p, nil
	}
	val, err := coerceValue(f, v)
	if err != nil {
		return nil, err
	}
	p.Value = val
	return p, nil
}

func coerceValue(f *schema.Field, v any) (any, error) {
	switch f.Type {
	case schema.TypeInt, schema.TypeBigInt, schema.TypeSmallInt, schema.TypeTinyInt:
		i, ok := toInt64(v)
		if !ok {
			return nil, coerr(f, v)
		}
		return i, nil
	case schema.TypeBit:
		return coerceBit(f, v)
	case schema.TypeDecimal, schema.TypeNumeric, schema.TypeMoney, schema.TypeSmallMoney:
		d, err := toDecimal(f, v)
		if err != nil {
			return nil, err
		}
		return d.Text('f'), nil
	case schema.TypeFloat, schema.TypeReal:
		fl, ok := toFloat64(v)
		if !ok {
			return nil, coerr(f, v)
		}
		return fl, nil
	case schema.TypeChar, schema.TypeNChar, schema.TypeVarChar, schema.TypeNVarChar,
		schema.TypeText, schema.TypeNText, schema.TypeXML:
		s, ok := toString(v)
		if !ok {
			return nil, coerr(f, v)
		}
		return s, nil
	case schema.TypeHierarchyID:
		s, ok := toString(v)
		if !ok {
			return nil, coerr(f, v)
		}
		// Path segments travel as '-' in the query language and '/'
		// in the backend; inverse of the read path.
		return strings.ReplaceAll(s, "-", "/"), nil
	case schema.TypeBinary, schema.TypeVarBinary, schema.TypeImage:
		return coerceBinary(f, v)
	case schema.TypeDate, schema.TypeDateTime, schema.TypeDateTime2, schema.TypeSmallDateTime, schema.TypeTime:
		t, ok := toTime(v)
		if !ok {
			return nil, coerr(f, v)
		}
		return t.UTC(), nil
	case schema.TypeDateTimeOffset:
		// The offset is part of the stored value; do not rebase.
		t, ok := toTime(v)
		if !ok {
			return nil, coerr(f, v)
		}
		return t, nil
	case schema.TypeUniqueIdentifier:
		return coerceUUID(f, v)
	default:
		return nil, fmt.Errorf("tsql: field %s: %w", f.Name, schema.ErrUnsupportedNativeType)
	}
}

// nativeZero returns the value bound for a nil source on a non-nullable
// column.
func nativeZero(f *schema.Field) any {
	switch {
	case f.Type == schema.TypeBit:
		return false
	case f.Type.Integer():
		return int64(0)
	case f.Type.Decimal():
		return "0"
	case f.Type.Floating():
		return float64(0)
	case f.Type.Textual():
		return ""
	case f.Type.Binary():
		return []byte{}
	case f.Type.Temporal():
		return epoch
	case f.Type == schema.TypeUniqueIdentifier:
		return uuid.Nil
	default:
		return nil
	}
}

func coerceBit(f *schema.Field, v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, coerr(f, v)
		}
		return b, nil
	}
	if i, ok := toInt64(v); ok {
		return i != 0, nil
	}
	return nil, coerr(f, v)
}

func coerceBinary(f *schema.Field, v any) (any, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		data, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, coerr(f, v)
		}
		return data, nil
	default:
		return nil, coerr(f, v)
	}
}

func coerceUUID(f *schema.Field, v any) (any, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		id, err := uuid.FromBytes(v)
		if err != nil {
			return nil, coerr(f, v)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, coerr(f, v)
		}
		return id, nil
	default:
		return nil, coerr(f, v)
	}
}

// decimalPrecision resolves the effective precision and scale of a
// decimal-family field. The money types have a fixed scale of 4.
func decimalPrecision(f *schema.Field) (precision, scale int) {
	precision, scale = f.Precision, f.Scale
	switch f.Type {
	case schema.TypeMoney:
		precision, scale = 19, 4
	case schema.TypeSmallMoney:
		precision, scale = 10, 4
	}
	if precision == 0 {
		precision = 18
	}
	return precision, scale
}

func toDecimal(f *schema.Field, v any) (*apd.Decimal, error) {
	var d *apd.Decimal
	switch v := v.(type) {
	case *apd.Decimal:
		d = v
	case apd.Decimal:
		d = &v
	case string:
		parsed, _, err := apd.NewFromString(v)
		if err != nil {
			return nil, coerr(f, v)
		}
		d = parsed
	default:
		if i, ok := toInt64(v); ok {
			d = apd.New(i, 0)
		} else if fl, ok := toFloat64(v); ok {
			parsed, _, err := apd.NewFromString(strconv.FormatFloat(fl, 'f', -1, 64))
			if err != nil {
				return nil, coerr(f, v)
			}
			d = parsed
		} else {
			return nil, coerr(f, v)
		}
	}
	precision, scale := decimalPrecision(f)
	ctx := apd.BaseContext.WithPrecision(uint32(precision))
	var out apd.Decimal
	if _, err := ctx.Quantize(&out, d, -int32(scale)); err != nil {
		return nil, coerr(f, v)
	}
	return &out, nil
}

// indirect unwraps pointers; a nil pointer becomes nil.
func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		if float32(int64(v)) == v {
			return int64(v), true
		}
	case float64:
		if float64(int64(v)) == v {
			return int64(v), true
		}
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		if fl, err := strconv.ParseFloat(v, 64); err == nil {
			return fl, true
		}
		return 0, false
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// timeFormats are accepted textual shapes for date/time values, tried
// in order.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

func toTime(v any) (time.Time, bool) {
	switch v := v.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeFormats {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func coerr(f *schema.Field, v any) error {
	return &CoercionError{Type: f.Type, Source: fmt.Sprintf("%T", v)}
}
