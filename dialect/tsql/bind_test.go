package tsql

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryfront/tsql/schema"
)

func buildField(t *testing.T, b *schema.FieldBuilder) *schema.Field {
	t.Helper()
	e, err := schema.New("Things", b).Schema("dbo").Build("Things")
	require.NoError(t, err)
	return e.Fields()[0]
}

func TestBindIntegerWidths(t *testing.T) {
	f := buildField(t, schema.Int("N"))
	for _, v := range []any{42, int8(42), int16(42), int32(42), int64(42), uint(42), float64(42), "42"} {
		p, err := BindParam("@P0", f, v)
		require.NoError(t, err)
		assert.Equal(t, int64(42), p.Value, "source %T", v)
	}
}

func TestBindNonIntegralFloat(t *testing.T) {
	f := buildField(t, schema.Int("N"))
	_, err := BindParam("@P0", f, 4.2)
	assert.ErrorIs(t, err, ErrUnsupportedCoercion)
}

func TestBindBit(t *testing.T) {
	f := buildField(t, schema.Bit("Flag"))
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{1, true},
		{0, false},
		{"true", true},
	}
	for _, tt := range tests {
		p, err := BindParam("@P0", f, tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Value, "source %v", tt.in)
	}
}

func TestBindDecimal(t *testing.T) {
	f := buildField(t, schema.Decimal("Price", 10, 2))
	tests := []struct {
		in   any
		want string
	}{
		{"12.3456", "12.35"},
		{12, "12.00"},
		{apd.New(125, -1), "12.50"},
	}
	for _, tt := range tests {
		p, err := BindParam("@P0", f, tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Value, "source %v", tt.in)
		assert.Equal(t, 10, p.Precision)
		assert.Equal(t, 2, p.Scale)
	}
}

func TestBindMoneyScale(t *testing.T) {
	f := buildField(t, schema.Money("Amount"))
	p, err := BindParam("@P0", f, 5)
	require.NoError(t, err)
	assert.Equal(t, "5.0000", p.Value)
	assert.Equal(t, 4, p.Scale)
}

func TestBindHierarchyPath(t *testing.T) {
	f := buildField(t, schema.HierarchyID("Path"))
	p, err := BindParam("@P0", f, "1-2-3")
	require.NoError(t, err)
	assert.Equal(t, "1/2/3", p.Value)
}

func TestBindBinary(t *testing.T) {
	f := buildField(t, schema.VarBinary("Blob"))
	p, err := BindParam("@P0", f, "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), p.Value)

	p, err = BindParam("@P0", f, []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, p.Value)

	_, err = BindParam("@P0", f, "not base64!!")
	assert.ErrorIs(t, err, ErrUnsupportedCoercion)
}

func TestBindTimeNormalizedToUTC(t *testing.T) {
	f := buildField(t, schema.DateTime("CreatedAt"))
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	p, err := BindParam("@P0", f, in)
	require.NoError(t, err)
	got, ok := p.Value.(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(in))
}

func TestBindTimeFromString(t *testing.T) {
	f := buildField(t, schema.Date("BornOn"))
	p, err := BindParam("@P0", f, "1835-11-30")
	require.NoError(t, err)
	got, ok := p.Value.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 1835, got.Year())
}

func TestBindUUID(t *testing.T) {
	f := buildField(t, schema.UUID("Id"))
	id := uuid.New()
	for _, v := range []any{id, id.String(), id[:]} {
		p, err := BindParam("@P0", f, v)
		require.NoError(t, err)
		assert.Equal(t, id, p.Value, "source %T", v)
	}
	_, err := BindParam("@P0", f, "not a guid")
	assert.ErrorIs(t, err, ErrUnsupportedCoercion)
}

func TestBindNullPolicy(t *testing.T) {
	tests := []struct {
		name    string
		builder *schema.FieldBuilder
		want    any
	}{
		{"nullable text", schema.VarChar("A").Nullable(), nil},
		{"text zero", schema.VarChar("A"), ""},
		{"int zero", schema.Int("A"), int64(0)},
		{"decimal zero", schema.Decimal("A", 10, 2), "0"},
		{"binary zero", schema.VarBinary("A"), []byte{}},
		{"temporal zero", schema.DateTime("A"), epoch},
		{"guid zero", schema.UUID("A"), uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := buildField(t, tt.builder)
			p, err := BindParam("@P0", f, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value)
		})
	}
}

func TestBindNilPointer(t *testing.T) {
	f := buildField(t, schema.VarChar("A").Nullable())
	var s *string
	p, err := BindParam("@P0", f, s)
	require.NoError(t, err)
	assert.Nil(t, p.Value)

	v := "x"
	p, err = BindParam("@P0", f, &v)
	require.NoError(t, err)
	assert.Equal(t, "x", p.Value)
}

func TestBindUnsupportedShape(t *testing.T) {
	f := buildField(t, schema.Int("N"))
	_, err := BindParam("@P0", f, struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedCoercion)
	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, schema.TypeInt, ce.Type)
	assert.Equal(t, "struct {}", ce.Source)
}

// Binding a value and reading the bound cell back yields the original
// under the native type's equality.
func TestBindRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		builder *schema.FieldBuilder
		in      any
	}{
		{"varchar", schema.VarChar("A"), "Twain"},
		{"int", schema.Int("A"), int64(42)},
		{"bit", schema.Bit("A"), true},
		{"varbinary", schema.VarBinary("A"), []byte{0xde, 0xad}},
		{"uniqueidentifier", schema.UUID("A"), uuid.New()},
		{"hierarchyid", schema.HierarchyID("A"), "1-2-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := buildField(t, tt.builder)
			p, err := BindParam("@P0", f, tt.in)
			require.NoError(t, err)
			got, err := canonicalize(f, p.Value)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}

	t.Run("decimal", func(t *testing.T) {
		f := buildField(t, schema.Decimal("A", 10, 2))
		p, err := BindParam("@P0", f, "12.3456")
		require.NoError(t, err)
		got, err := canonicalize(f, p.Value)
		require.NoError(t, err)
		assert.Equal(t, "12.35", got.(*apd.Decimal).Text('f'))
	})

	t.Run("datetime", func(t *testing.T) {
		f := buildField(t, schema.DateTime("A"))
		in := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
		p, err := BindParam("@P0", f, in)
		require.NoError(t, err)
		got, err := canonicalize(f, p.Value)
		require.NoError(t, err)
		assert.True(t, got.(time.Time).Equal(in))
	})
}
